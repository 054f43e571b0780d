package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/notification"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationGormRepository) ListByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var list []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *NotificationGormRepository) Get(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationGormRepository) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}

	n.Read = true
	if err := r.db.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationGormRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationGormRepository) Delete(ctx context.Context, id uint) error {
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&models.Notification{}, id))
}

func (r *NotificationGormRepository) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

var _ domain.Repository = (*NotificationGormRepository)(nil)
