package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// --------- fakes ---------

type fakeGateway struct {
	mu        sync.Mutex
	initiated []domain.InitiateRequest
	next      int
	failWith  error
	statuses  map[string]domain.LookupResult
	amounts   map[string]int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		statuses: make(map[string]domain.LookupResult),
		amounts:  make(map[string]int64),
	}
}

func (g *fakeGateway) Initiate(_ context.Context, req domain.InitiateRequest) (*domain.InitiateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failWith != nil {
		return nil, g.failWith
	}
	g.initiated = append(g.initiated, req)
	g.next++
	pidx := "pidx-" + string(rune('A'+g.next-1))
	g.amounts[pidx] = req.Amount
	return &domain.InitiateResult{
		Pidx:       pidx,
		PaymentURL: "https://pay.example/" + pidx,
		Raw:        json.RawMessage(`{"pidx":"` + pidx + `"}`),
	}, nil
}

func (g *fakeGateway) Lookup(_ context.Context, pidx string) (*domain.LookupResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, ok := g.statuses[pidx]
	if !ok {
		return nil, errors.New("unknown pidx")
	}
	return &res, nil
}

// settle reports pidx in status, paid for the amount it was opened with.
func (g *fakeGateway) settle(pidx, status, tid string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[pidx] = domain.LookupResult{Pidx: pidx, Status: status, TransactionID: tid, TotalAmount: g.amounts[pidx]}
}

type gatewayDetailErr struct{}

func (gatewayDetailErr) Error() string         { return "gateway said no" }
func (gatewayDetailErr) GatewayDetail() string { return "Amount should be greater than Rs. 10" }

// --------- fixture ---------

type fixture struct {
	store    *memory.Store
	payments *memory.Payments
	orders   *memory.Orders
	carts    *memory.Carts
	gateway  *fakeGateway
	checkout *Checkout
	verify   *VerifyPayment
	webhook  *HandleWebhook
	product  models.Product
	other    models.Product
}

const statusURL = "http://shop.test/orderstatus"

func setup(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	products := memory.NewProducts(store)

	glasses := models.Product{Name: "Aviator", Price: decimal.RequireFromString("1500.50"), Stock: 10}
	lens := models.Product{Name: "Lens", Price: decimal.RequireFromString("250"), Stock: 10}
	for _, p := range []*models.Product{&glasses, &lens} {
		if err := products.Create(context.Background(), p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	payments := memory.NewPayments(store)
	gateway := newFakeGateway()
	reconcile := NewReconcile(payments, log)

	return &fixture{
		store:    store,
		payments: payments,
		orders:   memory.NewOrders(store),
		carts:    memory.NewCarts(store),
		gateway:  gateway,
		checkout: NewCheckout(payments, gateway, URLs{ReturnURL: statusURL, WebsiteURL: "http://shop.test"}, log),
		verify:   NewVerifyPayment(gateway, reconcile, log),
		webhook:  NewHandleWebhook(gateway, reconcile, statusURL, log),
		product:  glasses,
		other:    lens,
	}
}

func (f *fixture) input(userID uint, total string, products ...models.Product) CheckoutInput {
	items := make([]models.OrderItem, 0, len(products))
	for _, p := range products {
		items = append(items, models.OrderItem{ProductID: p.ID, Quantity: 1})
	}
	return CheckoutInput{
		UserID:     userID,
		Items:      items,
		TotalPrice: decimal.RequireFromString(total),
		ShippingAddress: models.ShippingAddress{
			Name: "Ram Thapa", Email: "ram@mail.np", Address: "Lazimpat", City: "Kathmandu", Zip: "44600",
		},
	}
}

func (f *fixture) fillCart(t *testing.T, userID uint) {
	t.Helper()
	c := &models.Cart{
		UserID: userID,
		Items:  []models.CartItem{{ProductID: f.product.ID, Quantity: 2}},
		Bill:   decimal.RequireFromString("3001"),
	}
	if err := f.carts.Save(context.Background(), c); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

// --------- checkout ---------

func TestCheckoutCreatesPendingCardOrder(t *testing.T) {
	f := setup(t)

	res, err := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	id := uuid.MustParse(res.OrderID)
	o, err := f.orders.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load order: %v", err)
	}

	if o.PaymentMethod != "card" || o.Status != "pending" || o.PaymentStatus != "pending" {
		t.Fatalf("unexpected order state %+v", o)
	}
	if o.KhaltiPidx != res.Pidx || len(o.KhaltiData) == 0 {
		t.Fatalf("gateway reference not stored: %q %s", o.KhaltiPidx, o.KhaltiData)
	}
	if o.Items[0].NameAtPurchase != "Aviator" || !o.Items[0].PriceAtPurchase.Equal(f.product.Price) {
		t.Fatalf("item snapshot not filled: %+v", o.Items[0])
	}

	want := domain.InitiateRequest{
		ReturnURL:         statusURL,
		WebsiteURL:        "http://shop.test",
		Amount:            150050,
		PurchaseOrderID:   res.OrderID,
		PurchaseOrderName: "Order-" + res.OrderID[len(res.OrderID)-6:],
		Customer:          domain.Customer{Name: "Ram Thapa", Email: "ram@mail.np", Phone: domain.DefaultPhone},
	}
	if diff := cmp.Diff([]domain.InitiateRequest{want}, f.gateway.initiated); diff != "" {
		t.Fatalf("initiate mismatch (-want +got):\n%s", diff)
	}

	p, err := f.payments.GetPaymentByOrder(context.Background(), id)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if p.Pidx != res.Pidx || p.Status != "pending" || p.PaymentGateway != "khalti" {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestCheckoutTwiceUpdatesSinglePendingOrder(t *testing.T) {
	f := setup(t)

	first, err := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := f.checkout.Execute(context.Background(), f.input(7, "1750.50", f.product, f.other))
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	if first.OrderID != second.OrderID {
		t.Fatalf("expected the pending order to be reused, got %s and %s", first.OrderID, second.OrderID)
	}

	orders, _ := f.orders.ListByUser(context.Background(), 7)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if len(orders[0].Items) != 2 || !orders[0].TotalPrice.Equal(decimal.RequireFromString("1750.50")) {
		t.Fatalf("order not refreshed: %+v", orders[0])
	}

	p, _ := f.payments.GetPaymentByOrder(context.Background(), uuid.MustParse(first.OrderID))
	if p.Pidx != second.Pidx {
		t.Fatalf("payment should carry the newest pidx %s, got %s", second.Pidx, p.Pidx)
	}
}

func TestConcurrentCheckoutsKeepOnePendingOrder(t *testing.T) {
	f := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.checkout.Execute(context.Background(), f.input(9, "1500.50", f.product))
		}()
	}
	wg.Wait()

	orders, _ := f.orders.ListByUser(context.Background(), 9)
	if len(orders) != 1 {
		t.Fatalf("expected 1 pending order, got %d", len(orders))
	}
}

func TestCheckoutRejectsPendingCODOrder(t *testing.T) {
	f := setup(t)

	cod := &models.Order{
		UserID:        7,
		Items:         []models.OrderItem{{ProductID: f.product.ID, Quantity: 1}},
		PaymentMethod: "cod",
		TotalPrice:    f.product.Price,
	}
	if err := f.orders.Create(context.Background(), cod); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	_, err := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	if !httperr.IsBusiness(err, "pending_order_exists") {
		t.Fatalf("expected pending_order_exists, got %v", err)
	}
	if len(f.gateway.initiated) != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestCheckoutMinimumAmount(t *testing.T) {
	f := setup(t)

	_, err := f.checkout.Execute(context.Background(), f.input(7, "0.99", f.product))
	if !httperr.IsBusiness(err, "amount_too_low") {
		t.Fatalf("expected amount_too_low, got %v", err)
	}

	if n, _ := f.orders.Count(context.Background()); n != 0 {
		t.Fatalf("nothing may be persisted below the minimum, found %d orders", n)
	}

	if _, err := f.checkout.Execute(context.Background(), f.input(7, "1.00", f.product)); err != nil {
		t.Fatalf("NPR 1.00 must be accepted: %v", err)
	}
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.checkout.Execute(context.Background(), f.input(7, "10", models.Product{ID: 404}))
	if !httperr.IsBusiness(err, "product_not_found") {
		t.Fatalf("expected product_not_found, got %v", err)
	}
}

func TestGatewayFailureMarksOrderFailed(t *testing.T) {
	f := setup(t)
	f.gateway.failWith = gatewayDetailErr{}

	_, err := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	if kind, _ := httperr.KindOf(err); kind != httperr.KindExternal {
		t.Fatalf("expected external error, got %v", err)
	}

	var be httperr.BusinessError
	if !errors.As(err, &be) || be.Message != "Payment initialization failed: Amount should be greater than Rs. 10" {
		t.Fatalf("gateway detail not surfaced: %v", err)
	}

	orders, _ := f.orders.ListByUser(context.Background(), 7)
	if len(orders) != 1 || orders[0].Status != "failed" || orders[0].PaymentStatus != "failed" {
		t.Fatalf("order must be marked failed: %+v", orders)
	}
}

// --------- verify / webhook ---------

func TestVerifyCompletedSettlesEverything(t *testing.T) {
	f := setup(t)
	f.fillCart(t, 7)

	res, _ := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	f.gateway.settle(res.Pidx, "Completed", "txn-1")

	out, err := f.verify.Execute(context.Background(), res.Pidx)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !out.Paid || out.TransactionID != "txn-1" || out.OrderID != res.OrderID {
		t.Fatalf("unexpected outcome %+v", out)
	}

	o, _ := f.orders.Get(context.Background(), uuid.MustParse(res.OrderID))
	if o.Status != "delivered" || o.PaymentStatus != "paid" {
		t.Fatalf("order not settled: %s/%s", o.Status, o.PaymentStatus)
	}

	p, _ := f.payments.GetPaymentByPidx(context.Background(), res.Pidx)
	if p.Status != "success" || p.TransactionID == nil || *p.TransactionID != "txn-1" || p.PaymentDate == nil {
		t.Fatalf("payment not settled: %+v", p)
	}

	c, _ := f.carts.GetByUser(context.Background(), 7)
	if len(c.Items) != 0 || !c.Bill.IsZero() {
		t.Fatalf("cart not cleared: %+v", c)
	}
}

func TestVerifyNotCompletedFailsAndKeepsCart(t *testing.T) {
	f := setup(t)
	f.fillCart(t, 7)

	res, _ := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	f.gateway.settle(res.Pidx, "User canceled", "")

	out, err := f.verify.Execute(context.Background(), res.Pidx)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Paid || out.GatewayStatus != "User canceled" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	o, _ := f.orders.Get(context.Background(), uuid.MustParse(res.OrderID))
	if o.Status != "failed" || o.PaymentStatus != "failed" {
		t.Fatalf("order not failed: %s/%s", o.Status, o.PaymentStatus)
	}
	p, _ := f.payments.GetPaymentByPidx(context.Background(), res.Pidx)
	if p.Status != "failed" {
		t.Fatalf("payment not failed: %s", p.Status)
	}
	c, _ := f.carts.GetByUser(context.Background(), 7)
	if len(c.Items) != 1 {
		t.Fatalf("cart must be untouched, got %d items", len(c.Items))
	}
}

func TestVerifyRequiresPidx(t *testing.T) {
	f := setup(t)
	if _, err := f.verify.Execute(context.Background(), ""); !httperr.IsBusiness(err, "missing_pidx") {
		t.Fatalf("expected missing_pidx, got %v", err)
	}
}

func TestWebhookReplayIsNoop(t *testing.T) {
	f := setup(t)

	res, _ := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	f.gateway.settle(res.Pidx, "Completed", "txn-9")

	in := WebhookInput{Pidx: res.Pidx, Status: "Completed", TransactionID: "txn-9", PurchaseOrderID: res.OrderID}
	want := statusURL + "?success=true&order_id=" + res.OrderID

	if got := f.webhook.Execute(context.Background(), in); got != want {
		t.Fatalf("first call redirect %q", got)
	}
	before, _ := f.payments.GetPaymentByPidx(context.Background(), res.Pidx)

	if got := f.webhook.Execute(context.Background(), in); got != want {
		t.Fatalf("replay redirect %q", got)
	}
	after, _ := f.payments.GetPaymentByPidx(context.Background(), res.Pidx)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("replay changed the payment (-before +after):\n%s", diff)
	}
}

func TestSuccessIsNeverDowngraded(t *testing.T) {
	f := setup(t)

	res, _ := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	f.gateway.settle(res.Pidx, "Completed", "txn-2")
	if _, err := f.verify.Execute(context.Background(), res.Pidx); err != nil {
		t.Fatalf("verify: %v", err)
	}

	f.gateway.settle(res.Pidx, "Expired", "")
	out, err := f.verify.Execute(context.Background(), res.Pidx)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if !out.Paid || out.TransactionID != "txn-2" {
		t.Fatalf("settled payment reopened: %+v", out)
	}

	o, _ := f.orders.Get(context.Background(), uuid.MustParse(res.OrderID))
	if o.Status != "delivered" {
		t.Fatalf("order downgraded to %s", o.Status)
	}
}

func TestStalePaymentDoesNotSettleRepricedOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.checkout.Execute(ctx, f.input(7, "1500.50", f.product))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	f.gateway.failWith = errors.New("gateway down")
	if _, err := f.checkout.Execute(ctx, f.input(7, "1750.50", f.product, f.other)); err == nil {
		t.Fatalf("expected the second checkout to fail")
	}

	f.gateway.settle(first.Pidx, "Completed", "txn-old")

	_, err = f.verify.Execute(ctx, first.Pidx)
	if !httperr.IsBusiness(err, "amount_mismatch") {
		t.Fatalf("expected amount_mismatch, got %v", err)
	}

	got := f.webhook.Execute(ctx, WebhookInput{Pidx: first.Pidx, Status: "Completed", PurchaseOrderID: first.OrderID})
	if got != statusURL+"?error=processing_error" {
		t.Fatalf("webhook redirect = %s", got)
	}

	o, _ := f.orders.Get(ctx, uuid.MustParse(first.OrderID))
	if o.PaymentStatus == "paid" || o.Status == "delivered" {
		t.Fatalf("repriced order settled by the old payment: %s/%s", o.Status, o.PaymentStatus)
	}
	p, _ := f.payments.GetPaymentByPidx(ctx, first.Pidx)
	if p.Status == "success" || p.TransactionID != nil {
		t.Fatalf("stale payment recorded as success: %+v", p)
	}
}

func TestWebhookRedirects(t *testing.T) {
	f := setup(t)

	res, _ := f.checkout.Execute(context.Background(), f.input(7, "1500.50", f.product))
	f.gateway.settle(res.Pidx, "Expired", "")

	cases := []struct {
		name string
		in   WebhookInput
		want string
	}{
		{
			name: "missing parameters",
			in:   WebhookInput{Pidx: res.Pidx},
			want: statusURL + "?error=invalid_parameters",
		},
		{
			name: "unknown pidx",
			in:   WebhookInput{Pidx: "nope", Status: "Completed", PurchaseOrderID: res.OrderID},
			want: statusURL + "?error=processing_error",
		},
		{
			name: "failed payment",
			in:   WebhookInput{Pidx: res.Pidx, Status: "Expired", PurchaseOrderID: res.OrderID},
			want: statusURL + "?status=failed&order_id=" + res.OrderID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.webhook.Execute(context.Background(), tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
