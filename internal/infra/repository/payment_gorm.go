package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(repo domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx})
	})
}

func (r *PaymentGormRepository) LockCheckout(ctx context.Context, userID uint) error {
	return advisoryLock(ctx, r.db, fmt.Sprintf("checkout:%d", userID))
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *PaymentGormRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Order
// --------------------------------------------------

func (r *PaymentGormRepository) FindPendingOrder(
	ctx context.Context,
	userID uint,
	productIDs []uint,
) (*models.Order, error) {

	if len(productIDs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, "pending").
		Where(
			"EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_id IN ?)",
			productIDs,
		).
		Order("created_at DESC").
		First(&o).Error

	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PaymentGormRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items.Product").Create(o).Error
}

func (r *PaymentGormRepository) SaveOrder(ctx context.Context, o *models.Order) error {
	return replaceOrderItems(ctx, r.db, o)
}

func (r *PaymentGormRepository) GetOrderForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*models.Order, error) {

	var o models.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PaymentGormRepository) UpdateOrderState(
	ctx context.Context,
	id uuid.UUID,
	status string,
	paymentStatus string,
) error {
	return notFoundIfNone(r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"payment_status": paymentStatus,
		}))
}

func (r *PaymentGormRepository) AttachGateway(
	ctx context.Context,
	id uuid.UUID,
	pidx string,
	raw json.RawMessage,
) error {
	return notFoundIfNone(r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"khalti_pidx": pidx,
			"khalti_data": raw,
		}))
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *PaymentGormRepository) GetPaymentByPidx(
	ctx context.Context,
	pidx string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pidx = ?", pidx).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetPaymentByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentGormRepository) SavePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --------------------------------------------------
// Cart
// --------------------------------------------------

func (r *PaymentGormRepository) ClearCart(ctx context.Context, userID uint) error {
	return clearCart(ctx, r.db, userID)
}

// Compile-time check
var _ domain.Repository = (*PaymentGormRepository)(nil)
