package review

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

func setup(t *testing.T) (*Service, models.User, models.User, models.User) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	users := memory.NewUsers(store)

	doctor := models.User{FirstName: "Sita", LastName: "Rai", Email: "sita@clinic.np", Role: models.RoleDoctor}
	alice := models.User{FirstName: "Alice", LastName: "K", Email: "alice@mail.np", Role: models.RoleUser}
	bob := models.User{FirstName: "Bob", LastName: "S", Email: "bob@mail.np", Role: models.RoleUser}
	for _, u := range []*models.User{&doctor, &alice, &bob} {
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return NewService(memory.NewReviews(store), log), doctor, alice, bob
}

func as(u models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func TestReviewsAndAverage(t *testing.T) {
	svc, doctor, alice, bob := setup(t)
	ctx := context.Background()

	for _, in := range []CreateReviewInput{
		{Actor: as(alice), DoctorID: doctor.ID, Rating: 5, Body: "Great"},
		{Actor: as(bob), DoctorID: doctor.ID, Rating: 4, Body: "Good"},
		{Actor: as(bob), DoctorID: doctor.ID, Rating: 4},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := svc.ListForDoctor(ctx, doctor.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Total != 3 || got.AverageRating != 4.3 {
		t.Fatalf("unexpected summary total=%d avg=%v", got.Total, got.AverageRating)
	}
	if got.Reviews[0].Author == nil {
		t.Fatalf("authors must be loaded")
	}

	empty, _ := svc.ListForDoctor(ctx, 999)
	if empty.Total != 0 || empty.AverageRating != 0 || empty.Reviews == nil {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestReviewValidation(t *testing.T) {
	svc, doctor, alice, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateReviewInput{Actor: as(alice), DoctorID: doctor.ID, Rating: 6}); !httperr.IsBusiness(err, "invalid_rating") {
		t.Fatalf("expected invalid_rating, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateReviewInput{Actor: as(doctor), DoctorID: alice.ID, Rating: 5}); !httperr.IsBusiness(err, "doctor_not_found") {
		t.Fatalf("expected doctor_not_found, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateReviewInput{Actor: as(doctor), DoctorID: doctor.ID, Rating: 5}); !httperr.IsBusiness(err, "self_review") {
		t.Fatalf("expected self_review, got %v", err)
	}
}

func TestOnlyAuthorEditsAndDeletes(t *testing.T) {
	svc, doctor, alice, bob := setup(t)
	ctx := context.Background()

	r, _ := svc.Create(ctx, CreateReviewInput{Actor: as(alice), DoctorID: doctor.ID, Rating: 3})

	rating := 5
	if _, err := svc.Update(ctx, UpdateReviewInput{Actor: as(bob), ID: r.ID, Rating: &rating}); err == nil {
		t.Fatalf("bob must not edit alice's review")
	}

	updated, err := svc.Update(ctx, UpdateReviewInput{Actor: as(alice), ID: r.ID, Rating: &rating})
	if err != nil || updated.Rating != 5 {
		t.Fatalf("update: %+v %v", updated, err)
	}

	if err := svc.Delete(ctx, as(bob), r.ID); err == nil {
		t.Fatalf("bob must not delete alice's review")
	}

	admin := auth.Identity{UserID: 100, Role: models.RoleAdmin}
	if err := svc.Delete(ctx, admin, r.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, r.ID); !httperr.IsBusiness(err, "review_not_found") {
		t.Fatalf("expected review_not_found, got %v", err)
	}
}
