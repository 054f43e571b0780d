package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/config"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewClient(config.KhaltiConfig{
		GatewayURL: srv.URL,
		SecretKey:  "test-secret",
		Timeout:    2 * time.Second,
	}, log)
}

func TestInitiateSendsPayload(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/epayment/initiate/" {
			t.Fatalf("path %s", r.URL.Path)
		}
		if h := r.Header.Get("Authorization"); h != "Key test-secret" {
			t.Fatalf("authorization header %q", h)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(`{"pidx":"P1","payment_url":"https://pay.example/P1","expires_in":1800}`))
	})

	res, err := c.Initiate(context.Background(), payment.InitiateRequest{
		ReturnURL:         "http://front/orderstatus",
		WebsiteURL:        "http://front",
		Amount:            12550,
		PurchaseOrderID:   "abc",
		PurchaseOrderName: "Order-abc",
		Customer:          payment.Customer{Name: "Sita", Email: "s@example.com", Phone: "9800000000"},
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.Pidx != "P1" || res.PaymentURL != "https://pay.example/P1" {
		t.Fatalf("unexpected result %+v", res)
	}

	want := map[string]any{
		"return_url":          "http://front/orderstatus",
		"website_url":         "http://front",
		"amount":              float64(12550),
		"purchase_order_id":   "abc",
		"purchase_order_name": "Order-abc",
		"customer_info": map[string]any{
			"name":  "Sita",
			"email": "s@example.com",
			"phone": "9800000000",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pidx":"P1","total_amount":1000,"status":"Completed","transaction_id":"T9","fee":0,"refunded":false}`))
	})

	res, err := c.Lookup(context.Background(), "P1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := &payment.LookupResult{Pidx: "P1", Status: "Completed", TransactionID: "T9", TotalAmount: 1000}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("lookup mismatch (-want +got):\n%s", diff)
	}
}

func TestGatewayErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid token.","status_code":401}`))
	})

	_, err := c.Lookup(context.Background(), "P1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 401 || apiErr.Detail != "Invalid token." {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestMissingSecret(t *testing.T) {
	c := NewClient(config.KhaltiConfig{GatewayURL: "http://unused"}, logrus.New())
	if _, err := c.Lookup(context.Background(), "P1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
