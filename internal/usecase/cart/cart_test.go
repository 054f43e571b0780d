package cart

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

func setup(t *testing.T) (*memory.Carts, *AddCartItem, models.Product, models.Product) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	products := memory.NewProducts(store)

	frame := models.Product{Name: "Frame", Price: decimal.RequireFromString("1200.25"), Stock: 3}
	pouch := models.Product{Name: "Pouch", Price: decimal.RequireFromString("150"), Stock: 10}
	for _, p := range []*models.Product{&frame, &pouch} {
		if err := products.Create(context.Background(), p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	carts := memory.NewCarts(store)
	return carts, NewAddCartItem(carts, log), frame, pouch
}

func TestGetCartWithoutCart(t *testing.T) {
	carts, _, _, _ := setup(t)

	c, err := NewGetCart(carts).Execute(context.Background(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.UserID != 5 || len(c.Items) != 0 || !c.Bill.IsZero() {
		t.Fatalf("expected empty cart, got %+v", c)
	}
}

func TestAddItemRecomputesBill(t *testing.T) {
	carts, add, frame, pouch := setup(t)
	ctx := context.Background()

	if _, err := add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: frame.ID, Quantity: 2}); err != nil {
		t.Fatalf("add frame: %v", err)
	}
	c, err := add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: pouch.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add pouch: %v", err)
	}

	if !c.Bill.Equal(decimal.RequireFromString("2550.50")) {
		t.Fatalf("expected bill 2550.50, got %s", c.Bill)
	}

	c, err = add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: frame.ID, Quantity: -2})
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(c.Items) != 1 || !c.Bill.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected only the pouch left, got %+v", c)
	}

	stored, _ := carts.GetByUser(ctx, 5)
	if len(stored.Items) != 1 || stored.Items[0].ProductID != pouch.ID {
		t.Fatalf("stored cart mismatch: %+v", stored)
	}
}

func TestAddItemEnforcesStock(t *testing.T) {
	_, add, frame, _ := setup(t)

	_, err := add.Execute(context.Background(), AddCartItemInput{UserID: 5, ProductID: frame.ID, Quantity: 4})
	if !httperr.IsBusiness(err, "insufficient_stock") {
		t.Fatalf("expected insufficient_stock, got %v", err)
	}

	_, err = add.Execute(context.Background(), AddCartItemInput{UserID: 5, ProductID: 999, Quantity: 1})
	if !httperr.IsBusiness(err, "product_not_found") {
		t.Fatalf("expected product_not_found, got %v", err)
	}
}

func TestRemoveItemKeepsOtherLineIDs(t *testing.T) {
	carts, add, frame, pouch := setup(t)
	ctx := context.Background()

	add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: frame.ID, Quantity: 1})
	c, _ := add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: pouch.ID, Quantity: 1})

	frameLine, caseLine := c.Items[0].ID, c.Items[1].ID

	c, err := NewRemoveCartItem(carts).Execute(ctx, 5, frameLine)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].ID != caseLine {
		t.Fatalf("unexpected items %+v", c.Items)
	}

	if _, err := NewRemoveCartItem(carts).Execute(ctx, 5, frameLine); !httperr.IsBusiness(err, "item_not_found") {
		t.Fatalf("expected item_not_found, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	carts, add, frame, _ := setup(t)
	ctx := context.Background()

	add.Execute(ctx, AddCartItemInput{UserID: 5, ProductID: frame.ID, Quantity: 1})

	uc := NewClearCart(carts)
	for i := 0; i < 2; i++ {
		if err := uc.Execute(ctx, 5); err != nil {
			t.Fatalf("clear #%d: %v", i, err)
		}
	}
	if err := uc.Execute(ctx, 6); err != nil {
		t.Fatalf("clearing a missing cart: %v", err)
	}

	c, _ := NewGetCart(carts).Execute(ctx, 5)
	if len(c.Items) != 0 || !c.Bill.IsZero() {
		t.Fatalf("cart not empty: %+v", c)
	}
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	carts, add, _, pouch := setup(t)
	ctx := context.Background()

	const adds = 8
	errs := make(chan error, adds)

	var wg sync.WaitGroup
	for range adds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := add.Execute(ctx, AddCartItemInput{UserID: 9, ProductID: pouch.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	c, err := carts.GetByUser(ctx, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != adds {
		t.Fatalf("expected one line of %d, got %+v", adds, c.Items)
	}
	if want := decimal.NewFromInt(150 * adds); !c.Bill.Equal(want) {
		t.Fatalf("bill = %s, want %s", c.Bill, want)
	}
}
