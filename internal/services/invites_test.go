package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
)

func TestCreateInvite(t *testing.T) {
	db := testsupport.NewDB(t)
	svc := services.NewInviteService(db, logging.NewNop())
	now := time.Now().UTC().Truncate(time.Second)
	svc.Now = func() time.Time { return now }
	admin := testsupport.CreateUser(t, db, models.RoleAdmin)
	ctx := context.Background()

	invite, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleLabel})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(invite.Code) != 12 || invite.Role != models.RoleLabel {
		t.Errorf("unexpected invite: %+v", invite)
	}
	if !invite.ExpiresAt.Equal(now.Add(services.DefaultInviteTTL)) {
		t.Errorf("expected default lifetime, expires %s", invite.ExpiresAt)
	}

	short, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleAdmin, TTLHours: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !short.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("expected a two hour lifetime, expires %s", short.ExpiresAt)
	}
	if short.Code == invite.Code {
		t.Error("codes must be unique")
	}

	_, err = svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleArtist})
	assertCode(t, err, 400)
	_, err = svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleLabel, TTLHours: 24*30 + 1})
	assertCode(t, err, 400)
}

func TestRedeemInvite(t *testing.T) {
	db := testsupport.NewDB(t)
	svc := services.NewInviteService(db, logging.NewNop())
	admin := testsupport.CreateUser(t, db, models.RoleAdmin)
	artist := testsupport.CreateUser(t, db, models.RoleArtist)
	second := testsupport.CreateUser(t, db, models.RoleArtist)
	ctx := context.Background()

	invite, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleLabel})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Codes are case-insensitive and trimmed
	user, err := svc.Redeem(ctx, testsupport.Current(artist), "  "+invite.Code+" ")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if user.Role != models.RoleLabel {
		t.Errorf("expected LABEL, got %s", user.Role)
	}
	if n := testsupport.Count(t, db, &models.InviteCode{}, "id = ? AND used_by = ?", invite.ID, artist.ID); n != 1 {
		t.Error("invite should record who used it")
	}
	if n := testsupport.Count(t, db, &models.AuditLog{}, "action = ?", services.AuditInviteRedeemed); n != 1 {
		t.Errorf("expected one redemption audit, got %d", n)
	}

	_, err = svc.Redeem(ctx, testsupport.Current(second), invite.Code)
	assertCode(t, err, 400)
	_, err = svc.Redeem(ctx, testsupport.Current(second), "NOPE")
	assertCode(t, err, 404)
	_, err = svc.Redeem(ctx, testsupport.Current(second), " ")
	assertCode(t, err, 400)

	another, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// The upgraded account is no longer an artist
	_, err = svc.Redeem(ctx, testsupport.Current(*user), another.Code)
	assertCode(t, err, 400)
}

func TestRedeemExpiredInvite(t *testing.T) {
	db := testsupport.NewDB(t)
	svc := services.NewInviteService(db, logging.NewNop())
	admin := testsupport.CreateUser(t, db, models.RoleAdmin)
	artist := testsupport.CreateUser(t, db, models.RoleArtist)
	ctx := context.Background()

	invite, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleLabel, TTLHours: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	svc.Now = func() time.Time { return invite.ExpiresAt }

	_, err = svc.Redeem(ctx, testsupport.Current(artist), invite.Code)
	assertCode(t, err, 400)
	var reloaded models.User
	db.Where("id = ?", artist.ID).First(&reloaded)
	if reloaded.Role != models.RoleArtist {
		t.Errorf("expired invite must not upgrade, got %s", reloaded.Role)
	}
}

func TestRedeemInviteOnce(t *testing.T) {
	db := testsupport.NewDB(t)
	svc := services.NewInviteService(db, logging.NewNop())
	admin := testsupport.CreateUser(t, db, models.RoleAdmin)
	ctx := context.Background()

	invite, err := svc.Create(ctx, admin.ID, services.CreateInviteInput{Role: models.RoleLabel})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const redeemers = 5
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < redeemers; i++ {
		user := testsupport.CreateUser(t, db, models.RoleArtist)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Redeem(ctx, testsupport.Current(user), invite.Code); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("expected exactly one redemption, got %d", won)
	}
	if n := testsupport.Count(t, db, &models.User{}, "role = ?", models.RoleLabel); n != 1 {
		t.Errorf("expected one upgraded account, got %d", n)
	}
}
