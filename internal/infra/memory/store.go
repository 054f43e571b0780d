// Package memory keeps every repository in process memory. It backs the test
// suites and STORE=memory for running the API without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// Store is shared by all memory repositories.
type Store struct {
	mu sync.Mutex

	// tx serialises Transaction callbacks. There is no rollback.
	tx sync.Mutex

	now func() time.Time
	seq uint

	users         map[uint]models.User
	products      map[uint]models.Product
	carts         map[uint]models.Cart // by user id
	orders        map[uuid.UUID]models.Order
	payments      map[uint]models.Payment
	appointments  map[uint]models.Appointment
	notifications map[uint]models.Notification
	reviews       map[uint]models.Review
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[uint]models.User),
		products:      make(map[uint]models.Product),
		carts:         make(map[uint]models.Cart),
		orders:        make(map[uuid.UUID]models.Order),
		payments:      make(map[uint]models.Payment),
		appointments:  make(map[uint]models.Appointment),
		notifications: make(map[uint]models.Notification),
		reviews:       make(map[uint]models.Review),
	}
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

func (s *Store) transaction(ctx context.Context, fn func() error) error {
	s.tx.Lock()
	defer s.tx.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}

// uniqueViolation mimics what Postgres reports for a unique index.
func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: constraint,
	}
}

// userRef and productRef stand in for gorm Preload; they expect s.mu held.
func (s *Store) userRef(id uint) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (s *Store) productRef(id uint) *models.Product {
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	return &p
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	o.KhaltiData = append([]byte(nil), o.KhaltiData...)
	return o
}

func cloneCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem(nil), c.Items...)
	return c
}
