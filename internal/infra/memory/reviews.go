package memory

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/review"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Reviews struct{ s *Store }

func NewReviews(s *Store) *Reviews { return &Reviews{s: s} }

var _ review.Repository = (*Reviews)(nil)

func (r *Reviews) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u := r.s.userRef(id)
	if u == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *Reviews) Create(_ context.Context, rv *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv.ID = r.s.nextID()
	rv.CreatedAt = r.s.now()
	rv.UpdatedAt = rv.CreatedAt

	stored := *rv
	stored.Author = nil
	r.s.reviews[rv.ID] = stored
	return nil
}

func (r *Reviews) Get(_ context.Context, id uint) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rv, nil
}

func (r *Reviews) Save(_ context.Context, rv *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[rv.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	rv.UpdatedAt = r.s.now()

	stored := *rv
	stored.Author = nil
	r.s.reviews[rv.ID] = stored
	return nil
}

func (r *Reviews) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *Reviews) ListByDoctor(_ context.Context, doctorID uint) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Review, 0)
	for _, rv := range r.s.reviews {
		if rv.DoctorID == doctorID {
			rv.Author = r.s.userRef(rv.UserID)
			out = append(out, rv)
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

func (r *Reviews) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.reviews)), nil
}
