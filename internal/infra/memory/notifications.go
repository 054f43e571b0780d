package memory

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/notification"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Notifications struct{ s *Store }

func NewNotifications(s *Store) *Notifications { return &Notifications{s: s} }

var _ notification.Repository = (*Notifications)(nil)

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n.ID = r.s.nextID()
	n.CreatedAt = r.s.now()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID uint) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Notifications) Get(_ context.Context, id uint) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r *Notifications) MarkRead(_ context.Context, id uint) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return &n, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r *Notifications) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *Notifications) DeleteAllForUser(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for id, n := range r.s.notifications {
		if n.UserID == userID {
			delete(r.s.notifications, id)
			count++
		}
	}
	return count, nil
}
