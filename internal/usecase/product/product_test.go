package product

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/storage"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func setup(t *testing.T) (*Service, string) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	dir := t.TempDir()
	disk, err := storage.NewLocalDisk(dir)
	if err != nil {
		t.Fatal(err)
	}

	return NewService(memory.NewProducts(memory.NewStore()), NewUploader(disk, log), log), dir
}

func onDisk(dir, url string) bool {
	_, err := os.Stat(filepath.Join(dir, strings.TrimPrefix(url, storage.PublicPrefix+"/")))
	return err == nil
}

func ptr[T any](v T) *T { return &v }

func TestProductImageLifecycle(t *testing.T) {
	svc, dir := setup(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Fields{
		Name:  ptr("Aviator frames"),
		Brand: ptr("RayBan"),
		Price: ptr(decimal.RequireFromString("4500.5")),
		Stock: ptr(3),
	}, pngBytes(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(p.Image, "/uploads/products/") || !strings.HasSuffix(p.Image, ".webp") {
		t.Fatalf("unexpected image url %q", p.Image)
	}
	if !onDisk(dir, p.Image) {
		t.Fatalf("image not written")
	}
	first := p.Image

	updated, err := svc.Update(ctx, p.ID, Fields{Stock: ptr(5)}, pngBytes(t))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Aviator frames" || updated.Stock != 5 {
		t.Fatalf("unset fields must be kept: %+v", updated)
	}
	if onDisk(dir, first) {
		t.Fatalf("replaced image must be deleted")
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if onDisk(dir, updated.Image) {
		t.Fatalf("image must be deleted with the product")
	}
	if _, err := svc.Get(ctx, p.ID); !httperr.IsBusiness(err, "product_not_found") {
		t.Fatalf("expected product_not_found, got %v", err)
	}
}

func TestProductValidation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, Fields{Price: ptr(decimal.NewFromInt(10))}, nil); !httperr.IsBusiness(err, "missing_fields") {
		t.Fatalf("expected missing_fields, got %v", err)
	}
	if _, err := svc.Create(ctx, Fields{Name: ptr("Lens"), Price: ptr(decimal.NewFromInt(-1))}, nil); !httperr.IsBusiness(err, "invalid_price") {
		t.Fatalf("expected invalid_price, got %v", err)
	}
	if _, err := svc.Create(ctx, Fields{Name: ptr("Lens"), Price: ptr(decimal.NewFromInt(10))}, []byte("GIF89a")); !httperr.IsBusiness(err, "unsupported_file_type") {
		t.Fatalf("expected unsupported_file_type, got %v", err)
	}

	n, _ := svc.Count(ctx)
	if n != 0 {
		t.Fatalf("failed creates must not persist, got %d", n)
	}
}
