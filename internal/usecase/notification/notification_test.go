package notification

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

func newService(t *testing.T) (*Service, *memory.Notifications) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := memory.NewNotifications(memory.NewStore())
	return NewService(repo, log), repo
}

func TestInboxLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := auth.Identity{UserID: 2, Role: models.RoleDoctor}

	first, err := svc.Create(ctx, 2, "first")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _ := svc.Create(ctx, 2, "second")
	svc.Create(ctx, 3, "someone else")

	list, _ := svc.List(ctx, 2)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	n, err := svc.MarkRead(ctx, owner, first.ID)
	if err != nil || !n.Read {
		t.Fatalf("mark read: %+v %v", n, err)
	}

	_, err = svc.MarkRead(ctx, auth.Identity{UserID: 3, Role: models.RoleUser}, second.ID)
	if kind, _ := httperr.KindOf(err); kind != httperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	count, _ := svc.MarkAllRead(ctx, 2)
	if count != 1 {
		t.Fatalf("expected one unread left, marked %d", count)
	}

	if err := svc.Delete(ctx, owner, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, owner, first.ID); !httperr.IsBusiness(err, "notification_not_found") {
		t.Fatalf("expected notification_not_found, got %v", err)
	}

	removed, _ := svc.DeleteAll(ctx, 2)
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if left, _ := svc.List(ctx, 3); len(left) != 1 {
		t.Fatalf("other users' notifications must survive")
	}
}
