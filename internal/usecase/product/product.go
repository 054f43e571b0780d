package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/catalog"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

const imageFolder = "products"

// Fields holds what a client may set on a product. Nil leaves the current
// value on update.
type Fields struct {
	Name        *string
	Brand       *string
	Description *string
	Price       *decimal.Decimal
	SKU         *string
	Stock       *int
}

type Service struct {
	repo   catalog.Repository
	images *Uploader
	log    *logrus.Logger
}

func NewService(repo catalog.Repository, images *Uploader, log *logrus.Logger) *Service {
	return &Service{repo: repo, images: images, log: log}
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, httperr.MapNotFound(err, "product_not_found", "Product not found")
	}
	return p, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Create stores a product. image may be nil.
func (s *Service) Create(ctx context.Context, f Fields, image []byte) (*models.Product, error) {
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return nil, httperr.ErrValidation("missing_fields", "Please enter all required fields: missing name")
	}
	if f.Price == nil {
		return nil, httperr.ErrValidation("missing_fields", "Please enter all required fields: missing price")
	}

	p := &models.Product{}
	if err := apply(p, f); err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.images.Store(ctx, imageFolder, image)
		if err != nil {
			return nil, err
		}
		p.Image = url
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.images.Discard(ctx, p.Image)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": p.ID,
		"name":       p.Name,
	}).Info("product created")

	return p, nil
}

func (s *Service) Update(ctx context.Context, id uint, f Fields, image []byte) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p, f); err != nil {
		return nil, err
	}

	old := ""
	if image != nil {
		url, err := s.images.Store(ctx, imageFolder, image)
		if err != nil {
			return nil, err
		}
		old, p.Image = p.Image, url
	}

	if err := s.repo.Save(ctx, p); err != nil {
		if image != nil {
			s.images.Discard(ctx, p.Image)
		}
		return nil, err
	}

	s.images.Discard(ctx, old)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return httperr.MapNotFound(err, "product_not_found", "Product not found")
	}

	s.images.Discard(ctx, p.Image)

	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func apply(p *models.Product, f Fields) error {
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return httperr.ErrValidation("invalid_name", "Name cannot be empty")
		}
		p.Name = name
	}
	if f.Brand != nil {
		p.Brand = strings.TrimSpace(*f.Brand)
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Price != nil {
		if f.Price.IsNegative() {
			return httperr.ErrValidation("invalid_price", "Price cannot be negative")
		}
		p.Price = f.Price.Round(2)
	}
	if f.SKU != nil {
		p.SKU = strings.TrimSpace(*f.SKU)
	}
	if f.Stock != nil {
		if *f.Stock < 0 {
			return httperr.ErrValidation("invalid_stock", "Stock cannot be negative")
		}
		p.Stock = *f.Stock
	}
	return nil
}
