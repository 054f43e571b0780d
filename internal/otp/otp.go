// Package otp issues short-lived single-use codes bound to a subject and a
// purpose, such as e-mail verification or password reset.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalid = errors.New("otp: invalid code")
	ErrExpired = errors.New("otp: code expired")
)

// MaxAttempts wrong guesses burn the code.
const MaxAttempts = 5

// Token is what the store keeps for one outstanding code.
type Token struct {
	ID        string
	Subject   string
	Purpose   string
	Code      string
	ExpiresAt time.Time
}

type Store interface {
	// Put replaces any outstanding token for the same subject and purpose.
	// keep is how long the store may retain it.
	Put(ctx context.Context, tok Token, keep time.Duration) error

	// Take removes and returns the token when code matches. A mismatch counts
	// an attempt and returns ErrInvalid, as does a missing token.
	Take(ctx context.Context, subject, purpose, code string) (*Token, error)
}

type Service struct {
	store Store
	now   func() time.Time

	// grace keeps expired tokens around long enough to report ErrExpired
	// rather than ErrInvalid.
	grace time.Duration
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		grace: time.Hour,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Issue(ctx context.Context, subject, purpose string, ttl time.Duration) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	tok := Token{
		ID:        uuid.NewString(),
		Subject:   subject,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: s.now().Add(ttl),
	}

	if err := s.store.Put(ctx, tok, ttl+s.grace); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

func (s *Service) Redeem(ctx context.Context, subject, purpose, code string) error {
	if code == "" {
		return ErrInvalid
	}

	tok, err := s.store.Take(ctx, subject, purpose, code)
	if err != nil {
		return err
	}

	if !s.now().Before(tok.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func key(subject, purpose string) string {
	return "otp:" + purpose + ":" + subject
}
