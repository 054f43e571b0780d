package order

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type ListUserOrders struct {
	repo domain.Repository
}

func NewListUserOrders(repo domain.Repository) *ListUserOrders {
	return &ListUserOrders{repo: repo}
}

func (uc *ListUserOrders) Execute(ctx context.Context, actor auth.Identity, userID uint) ([]models.Order, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, httperr.ErrForbidden("forbidden", "You cannot view these orders")
	}
	return uc.repo.ListByUser(ctx, userID)
}

type ListAllOrders struct {
	repo domain.Repository
}

func NewListAllOrders(repo domain.Repository) *ListAllOrders {
	return &ListAllOrders{repo: repo}
}

func (uc *ListAllOrders) Execute(ctx context.Context) ([]models.Order, error) {
	return uc.repo.List(ctx)
}
