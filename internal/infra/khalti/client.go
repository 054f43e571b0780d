// Package khalti talks to the Khalti ePayment API.
package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/config"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
)

var ErrNotConfigured = errors.New("khalti: secret key not configured")

// APIError carries the gateway's own explanation of a rejected call.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("khalti: status %d: %s", e.Status, e.Detail)
}

func (e *APIError) GatewayDetail() string {
	return e.Detail
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       *logrus.Logger
}

func NewClient(cfg config.KhaltiConfig, log *logrus.Logger) *Client {
	return &Client{
		baseURL:   cfg.GatewayURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       log,
	}
}

// --------- Wire types ---------

type customerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type initiateRequest struct {
	ReturnURL         string       `json:"return_url"`
	WebsiteURL        string       `json:"website_url"`
	Amount            int64        `json:"amount"`
	PurchaseOrderID   string       `json:"purchase_order_id"`
	PurchaseOrderName string       `json:"purchase_order_name"`
	CustomerInfo      customerInfo `json:"customer_info"`
}

type initiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

type lookupRequest struct {
	Pidx string `json:"pidx"`
}

type lookupResponse struct {
	Pidx          string  `json:"pidx"`
	TotalAmount   int64   `json:"total_amount"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	Fee           int64   `json:"fee"`
	Refunded      bool    `json:"refunded"`
}

type errorResponse struct {
	Detail    string   `json:"detail"`
	Error     string   `json:"error"`
	ErrorKey  string   `json:"error_key"`
	ReturnURL []string `json:"return_url"`
}

// --------- Gateway ---------

func (c *Client) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	body := initiateRequest{
		ReturnURL:         req.ReturnURL,
		WebsiteURL:        req.WebsiteURL,
		Amount:            req.Amount,
		PurchaseOrderID:   req.PurchaseOrderID,
		PurchaseOrderName: req.PurchaseOrderName,
		CustomerInfo: customerInfo{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
	}

	var out initiateResponse
	raw, err := c.post(ctx, "/epayment/initiate/", body, &out)
	if err != nil {
		return nil, err
	}
	if out.Pidx == "" || out.PaymentURL == "" {
		return nil, fmt.Errorf("khalti: initiate response missing pidx or payment_url")
	}

	return &payment.InitiateResult{
		Pidx:       out.Pidx,
		PaymentURL: out.PaymentURL,
		Raw:        raw,
	}, nil
}

func (c *Client) Lookup(ctx context.Context, pidx string) (*payment.LookupResult, error) {
	var out lookupResponse
	if _, err := c.post(ctx, "/epayment/lookup/", lookupRequest{Pidx: pidx}, &out); err != nil {
		return nil, err
	}

	res := &payment.LookupResult{
		Pidx:        out.Pidx,
		Status:      out.Status,
		TotalAmount: out.TotalAmount,
	}
	if out.TransactionID != nil {
		res.TransactionID = *out.TransactionID
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) (json.RawMessage, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("khalti: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("khalti: build %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Key "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("khalti: call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("khalti: read %s: %w", path, err)
	}

	c.log.WithFields(logrus.Fields{
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Info("khalti call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("khalti: decode %s: %w", path, err)
	}
	return raw, nil
}

// errorDetail picks the most useful message out of an error body.
func errorDetail(raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Detail != "":
			return e.Detail
		case e.Error != "":
			return e.Error
		}
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}

var (
	_ payment.Gateway       = (*Client)(nil)
	_ payment.DetailedError = (*APIError)(nil)
)
