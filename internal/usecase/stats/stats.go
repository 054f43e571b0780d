// Package stats backs the admin dashboard counters.
package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/account"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/catalog"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/review"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

const (
	Products     = "products"
	Doctors      = "doctors"
	Users        = "users"
	Appointments = "appointments"
	Orders       = "orders"
	Reviews      = "reviews"
)

// Kinds is the order the dashboard lists counters in.
var Kinds = []string{Products, Doctors, Users, Appointments, Orders, Reviews}

type counter func(ctx context.Context) (int64, error)

type Service struct {
	counters map[string]counter
}

func NewService(
	products catalog.Repository,
	users account.Repository,
	appointments appointment.Repository,
	orders order.Repository,
	reviews review.Repository,
) *Service {
	return &Service{counters: map[string]counter{
		Products: products.Count,
		Doctors: func(ctx context.Context) (int64, error) {
			return users.CountByRole(ctx, models.RoleDoctor)
		},
		Users: func(ctx context.Context) (int64, error) {
			return users.CountByRole(ctx, "")
		},
		Appointments: appointments.Count,
		Orders:       orders.Count,
		Reviews:      reviews.Count,
	}}
}

func (s *Service) Count(ctx context.Context, kind string) (int64, error) {
	c, ok := s.counters[kind]
	if !ok {
		return 0, httperr.ErrNotFound("unknown_counter", "Unknown counter "+kind)
	}
	return c(ctx)
}

// Summary gathers every counter concurrently.
func (s *Service) Summary(ctx context.Context) (map[string]int64, error) {
	results := make([]int64, len(Kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			n, err := s.counters[kind](ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", kind, err)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(Kinds))
	for i, kind := range Kinds {
		out[kind] = results[i]
	}
	return out, nil
}
