package services_test

import (
	"context"
	"testing"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
)

func TestInbox(t *testing.T) {
	db := testsupport.NewDB(t)
	inbox := services.NewInboxService(db)
	notifier := services.NewNotifier(db, logging.NewNop())
	user := testsupport.CreateUser(t, db, models.RoleArtist)
	other := testsupport.CreateUser(t, db, models.RoleArtist)
	ctx := context.Background()

	for _, typ := range []models.NotificationType{models.NotifySplitInvite, models.NotifySplitUpdated, models.NotifySplitReady} {
		notifier.Send(ctx, services.Event{Type: typ, SongTitle: "Tune"}, []string{user.ID})
	}
	notifier.Send(ctx, services.Event{Type: models.NotifyGeneral}, []string{other.ID})

	page, err := inbox.List(ctx, user.ID, false, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Notifications) != 3 || page.Unread != 3 {
		t.Fatalf("expected 3 unread, got %d/%d", len(page.Notifications), page.Unread)
	}

	first := page.Notifications[0]
	read, err := inbox.MarkRead(ctx, user.ID, first.ID)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !read.Read {
		t.Error("expected the notification to be read")
	}
	// Idempotent
	if _, err := inbox.MarkRead(ctx, user.ID, first.ID); err != nil {
		t.Errorf("MarkRead twice failed: %v", err)
	}
	_, err = inbox.MarkRead(ctx, other.ID, first.ID)
	assertCode(t, err, 404)

	unread, err := inbox.List(ctx, user.ID, true, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(unread.Notifications) != 2 || unread.Unread != 2 {
		t.Errorf("expected 2 unread, got %d/%d", len(unread.Notifications), unread.Unread)
	}

	limited, err := inbox.List(ctx, user.ID, false, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited.Notifications) != 1 {
		t.Errorf("expected the limit to apply, got %d", len(limited.Notifications))
	}

	n, err := inbox.MarkManyRead(ctx, user.ID, []string{unread.Notifications[0].ID, first.ID})
	if err != nil {
		t.Fatalf("MarkManyRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 changed, got %d", n)
	}

	n, err = inbox.MarkManyRead(ctx, user.ID, nil)
	if err != nil {
		t.Fatalf("MarkManyRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the last unread to change, got %d", n)
	}

	if n := testsupport.Count(t, db, &models.Notification{}, "user_id = ? AND is_read = ?", other.ID, false); n != 1 {
		t.Error("another user's notifications must be untouched")
	}
}
