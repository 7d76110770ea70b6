package services_test

import (
	"context"
	"testing"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type splitFixture struct {
	db      *gorm.DB
	svc     *services.SplitService
	creator models.User
	co      models.User
	admin   models.User
	other   models.User
}

func newSplitFixture(t *testing.T) *splitFixture {
	t.Helper()
	db := testsupport.NewDB(t)
	log := logging.NewNop()
	return &splitFixture{
		db:      db,
		svc:     services.NewSplitService(db, services.NewNotifier(db, log), log),
		creator: testsupport.CreateUser(t, db, models.RoleArtist),
		co:      testsupport.CreateUser(t, db, models.RoleArtist),
		admin:   testsupport.CreateUser(t, db, models.RoleAdmin),
		other:   testsupport.CreateUser(t, db, models.RoleArtist),
	}
}

// sheet creates a sheet with the creator and co-writer linked
func (f *splitFixture) sheet(t *testing.T, status models.SplitStatus, creatorPct, coPct string) *models.SplitSheet {
	t.Helper()
	return testsupport.CreateSheet(t, f.db, f.creator.ID, status,
		testsupport.Writer(f.creator.ID, creatorPct),
		testsupport.Writer(f.co.ID, coPct),
		testsupport.Producer("", "50"),
	)
}

func input(userID *string, kind models.ContributorType, pct string) services.ContributorInput {
	return services.ContributorInput{
		UserID:          userID,
		LegalName:       "Name",
		ContributorType: kind,
		Percentage:      decimal.RequireFromString(pct),
	}
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	if !types.HasCode(err, code) {
		t.Fatalf("expected code %d, got %v", code, err)
	}
}

func contributorOf(sheet *models.SplitSheet, userID string) models.Contributor {
	for _, c := range sheet.Contributors {
		if c.IsLinkedTo(userID) {
			return c
		}
	}
	return models.Contributor{}
}

func countType(rows []models.Notification, typ models.NotificationType) int {
	n := 0
	for _, r := range rows {
		if r.Type == typ {
			n++
		}
	}
	return n
}

func TestCreateSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	sheet, err := f.svc.Create(ctx, testsupport.Current(f.creator), services.CreateSplitInput{
		FinalTitle: "  Midnight  ",
		Contributors: []services.ContributorInput{
			input(&f.creator.ID, models.ContributorWriter, "30"),
			input(&f.co.ID, models.ContributorWriter, "10"),
			input(nil, models.ContributorProducer, "50"),
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sheet.Status != models.StatusPending || sheet.Version != 1 {
		t.Errorf("expected PENDING v1, got %s v%d", sheet.Status, sheet.Version)
	}
	if !sheet.TotalPercentage.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected cached total 90, got %s", sheet.TotalPercentage)
	}
	if sheet.Song.Title != "Midnight" {
		t.Errorf("expected trimmed title, got %q", sheet.Song.Title)
	}

	invites := testsupport.Notifications(t, f.db, f.co.ID)
	if len(invites) != 1 || invites[0].Type != models.NotifySplitInvite {
		t.Errorf("expected one invite for the co-writer, got %+v", invites)
	}
	if len(testsupport.Notifications(t, f.db, f.creator.ID)) != 0 {
		t.Error("creator should not be notified of their own sheet")
	}
	if n := testsupport.Count(t, f.db, &models.AuditLog{}, "split_sheet_id = ? AND action = ?", sheet.ID, services.AuditSplitCreated); n != 1 {
		t.Errorf("expected one audit row, got %d", n)
	}
}

func TestCreateSplitValidation(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	valid := []services.ContributorInput{
		input(&f.creator.ID, models.ContributorWriter, "50"),
		input(nil, models.ContributorProducer, "50"),
	}

	tests := []struct {
		name  string
		actor models.User
		in    services.CreateSplitInput
		code  int
	}{
		{"missing title", f.creator, services.CreateSplitInput{Contributors: valid}, 400},
		{"no contributors", f.creator, services.CreateSplitInput{FinalTitle: "x"}, 400},
		{"bad status", f.creator, services.CreateSplitInput{FinalTitle: "x", Status: models.StatusDisputed, Contributors: valid}, 400},
		{"signed but writers short", f.creator, services.CreateSplitInput{
			FinalTitle: "x",
			Status:     models.StatusSigned,
			Contributors: []services.ContributorInput{
				input(&f.creator.ID, models.ContributorWriter, "40"),
			},
		}, 400},
		{"bad percentage", f.creator, services.CreateSplitInput{
			FinalTitle:   "x",
			Contributors: []services.ContributorInput{input(nil, models.ContributorWriter, "101")},
		}, 400},
		{"bad type", f.creator, services.CreateSplitInput{
			FinalTitle:   "x",
			Contributors: []services.ContributorInput{input(nil, "MIXER", "10")},
		}, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, testsupport.Current(tt.actor), tt.in)
			assertCode(t, err, tt.code)
		})
	}

	label := testsupport.CreateUser(t, f.db, models.RoleLabel)
	_, err := f.svc.Create(ctx, testsupport.Current(label), services.CreateSplitInput{FinalTitle: "x", Contributors: valid})
	assertCode(t, err, 403)

	if n := testsupport.Count(t, f.db, &models.SplitSheet{}, "1 = 1"); n != 0 {
		t.Errorf("rejected creates must not persist, found %d sheets", n)
	}
}

func TestCreateSplitSigned(t *testing.T) {
	f := newSplitFixture(t)
	sheet, err := f.svc.Create(context.Background(), testsupport.Current(f.creator), services.CreateSplitInput{
		WorkingTitle: "Demo",
		Status:       models.StatusSigned,
		Contributors: []services.ContributorInput{
			input(&f.creator.ID, models.ContributorWriter, "25"),
			input(&f.co.ID, models.ContributorWriter, "25"),
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sheet.Status != models.StatusSigned {
		t.Errorf("expected SIGNED, got %s", sheet.Status)
	}
	rows := testsupport.Notifications(t, f.db, f.co.ID)
	if countType(rows, models.NotifySplitFinalized) != 1 {
		t.Errorf("expected a finalized notification, got %+v", rows)
	}
}

func TestGetAndListSplits(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	mine := f.sheet(t, models.StatusPending, "25", "25")
	testsupport.CreateSheet(t, f.db, f.other.ID, models.StatusPending, testsupport.Writer(f.other.ID, "50"))

	view, err := f.svc.Get(ctx, testsupport.Current(f.co), mine.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if view.Permissions.ViewerRole != services.ViewerContributor || !view.WriterTotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected view: %+v", view.Permissions)
	}

	_, err = f.svc.Get(ctx, testsupport.Current(f.other), mine.ID)
	assertCode(t, err, 403)
	_, err = f.svc.Get(ctx, testsupport.Current(f.co), "missing")
	assertCode(t, err, 404)

	list, err := f.svc.List(ctx, testsupport.Current(f.co))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("contributor should see only their sheet, got %d", len(list))
	}

	all, err := f.svc.List(ctx, testsupport.Current(f.admin))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin should see both sheets, got %d", len(all))
	}
}

func updateInput(version *int, contributors ...services.ContributorInput) services.UpdateSplitInput {
	in := services.UpdateSplitInput{FinalTitle: "Renamed", Contributors: contributors}
	if version != nil {
		in.Version = types.OptionalInt{Value: *version, Set: true}
	}
	return in
}

func TestUpdateSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	sheet := f.sheet(t, models.StatusPending, "25", "25")
	newcomer := testsupport.CreateUser(t, f.db, models.RoleArtist)

	version := 1
	updated, err := f.svc.Update(ctx, testsupport.Current(f.creator), sheet.ID, updateInput(&version,
		input(&f.creator.ID, models.ContributorWriter, "20"),
		input(&f.co.ID, models.ContributorWriter, "20"),
		input(&newcomer.ID, models.ContributorWriter, "10"),
		input(nil, models.ContributorProducer, "50"),
	))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Version != 2 || updated.Song.Title != "Renamed" || len(updated.Contributors) != 4 {
		t.Errorf("unexpected update result: v%d %q %d contributors", updated.Version, updated.Song.Title, len(updated.Contributors))
	}
	if !updated.TotalPercentage.Equal(services.Total(updated.Contributors)) {
		t.Errorf("cached total %s out of sync", updated.TotalPercentage)
	}

	newRows := testsupport.Notifications(t, f.db, newcomer.ID)
	if len(newRows) != 1 || newRows[0].Type != models.NotifySplitInvite {
		t.Errorf("newcomer should get exactly one invite, got %+v", newRows)
	}
	coRows := testsupport.Notifications(t, f.db, f.co.ID)
	if countType(coRows, models.NotifySplitUpdated) != 1 {
		t.Errorf("existing contributor should get an update, got %+v", coRows)
	}

	// Stale version
	stale := 1
	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), sheet.ID, updateInput(&stale,
		input(&f.creator.ID, models.ContributorWriter, "50"),
	))
	assertCode(t, err, 409)
	if ce, _ := types.AsCustomError(err); ce.Type != types.KindVersion {
		t.Errorf("expected a version error, got %s", ce.Type)
	}

	// No version means last write wins
	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), sheet.ID, updateInput(nil,
		input(&f.creator.ID, models.ContributorWriter, "50"),
	))
	if err != nil {
		t.Fatalf("unversioned update failed: %v", err)
	}
}

func TestUpdateSplitRejections(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	pending := f.sheet(t, models.StatusPending, "25", "25")
	signed := f.sheet(t, models.StatusSigned, "25", "25")
	fifty := input(&f.creator.ID, models.ContributorWriter, "50")

	_, err := f.svc.Update(ctx, testsupport.Current(f.co), pending.ID, updateInput(nil, fifty))
	assertCode(t, err, 403)

	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), pending.ID, updateInput(nil,
		input(&f.creator.ID, models.ContributorWriter, "49"),
	))
	assertCode(t, err, 400)

	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), signed.ID, updateInput(nil, fifty))
	assertCode(t, err, 403)

	// Access is decided before the body is validated
	short := input(&f.creator.ID, models.ContributorWriter, "10")
	_, err = f.svc.Update(ctx, testsupport.Current(f.other), pending.ID, updateInput(nil, short))
	assertCode(t, err, 403)
	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), signed.ID, updateInput(nil, short))
	assertCode(t, err, 403)
	_, err = f.svc.Update(ctx, testsupport.Current(f.creator), "missing-sheet", updateInput(nil, short))
	assertCode(t, err, 404)

	if _, err := f.svc.Update(ctx, testsupport.Current(f.admin), signed.ID, updateInput(nil, fifty)); err != nil {
		t.Errorf("admin should edit a signed sheet: %v", err)
	}

	reloaded := testsupport.ReloadSheet(t, f.db, pending.ID)
	if reloaded.Version != 1 || len(reloaded.Contributors) != 3 {
		t.Errorf("rejected updates must not change the sheet: v%d, %d contributors", reloaded.Version, len(reloaded.Contributors))
	}
}

func pct(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func str(v string) *string { return &v }

func TestPatchContributor(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	sheet := f.sheet(t, models.StatusPending, "25", "20")
	coRow := contributorOf(sheet, f.co.ID)
	creatorRow := contributorOf(sheet, f.creator.ID)

	// A contributor edits their own details but not their percentage
	res, err := f.svc.PatchContributor(ctx, testsupport.Current(f.co), sheet.ID, services.ContributorPatch{
		ContributorID: coRow.ID,
		StageName:     str("DJ Co"),
	})
	if err != nil {
		t.Fatalf("PatchContributor failed: %v", err)
	}
	if res.Contributor.StageName != "DJ Co" || res.Version != 2 {
		t.Errorf("unexpected patch result: %+v", res)
	}

	_, err = f.svc.PatchContributor(ctx, testsupport.Current(f.co), sheet.ID, services.ContributorPatch{
		ContributorID: coRow.ID,
		Percentage:    pct("25"),
	})
	assertCode(t, err, 403)

	_, err = f.svc.PatchContributor(ctx, testsupport.Current(f.co), sheet.ID, services.ContributorPatch{
		ContributorID: creatorRow.ID,
		StageName:     str("hijack"),
	})
	assertCode(t, err, 403)

	_, err = f.svc.PatchContributor(ctx, testsupport.Current(f.other), sheet.ID, services.ContributorPatch{
		ContributorID: coRow.ID,
		StageName:     str("x"),
	})
	assertCode(t, err, 403)

	_, err = f.svc.PatchContributor(ctx, testsupport.Current(f.creator), sheet.ID, services.ContributorPatch{ContributorID: coRow.ID})
	assertCode(t, err, 400)

	_, err = f.svc.PatchContributor(ctx, testsupport.Current(f.creator), sheet.ID, services.ContributorPatch{
		ContributorID: "nope",
		StageName:     str("x"),
	})
	assertCode(t, err, 404)

	// The creator tops the writers up to 50; the total is recomputed and READY fires
	res, err = f.svc.PatchContributor(ctx, testsupport.Current(f.creator), sheet.ID, services.ContributorPatch{
		ContributorID: coRow.ID,
		Percentage:    pct("25"),
	})
	if err != nil {
		t.Fatalf("PatchContributor failed: %v", err)
	}
	if !res.TotalPercentage.Equal(decimal.NewFromInt(100)) || !res.WriterTotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected totals 100/50, got %s/%s", res.TotalPercentage, res.WriterTotal)
	}
	reloaded := testsupport.ReloadSheet(t, f.db, sheet.ID)
	if !reloaded.TotalPercentage.Equal(services.Total(reloaded.Contributors)) {
		t.Errorf("cached total %s does not match live sum", reloaded.TotalPercentage)
	}
	if countType(testsupport.Notifications(t, f.db, f.creator.ID), models.NotifySplitReady) != 1 {
		t.Error("creator should be told the sheet is ready")
	}
}

func TestPatchContributorDisputed(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	sheet := f.sheet(t, models.StatusDisputed, "30", "15")
	coRow := contributorOf(sheet, f.co.ID)

	res, err := f.svc.PatchContributor(ctx, testsupport.Current(f.co), sheet.ID, services.ContributorPatch{
		ContributorID: coRow.ID,
		Percentage:    pct("20"),
	})
	if err != nil {
		t.Fatalf("contributor should change their percentage while disputed: %v", err)
	}
	if res.Status != models.StatusDisputed {
		t.Errorf("patch must not change status, got %s", res.Status)
	}

	rows := testsupport.Notifications(t, f.db, f.creator.ID)
	if countType(rows, models.NotifySplitDisputed) != 1 {
		t.Fatalf("creator should get a disputed-percentage notification, got %+v", rows)
	}
	for _, r := range rows {
		if r.Type == models.NotifySplitDisputed && r.Title != "Percentage changed on disputed split sheet" {
			t.Errorf("unexpected title %q", r.Title)
		}
	}
	if countType(rows, models.NotifySplitReady) != 1 {
		t.Error("writers reached 50, creator should get READY")
	}
}

func TestFinalizeSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		status models.SplitStatus
		coPct  string
		actor  func() models.User
		code   int
	}{
		{"pending at fifty", models.StatusPending, "25", func() models.User { return f.creator }, 0},
		{"disputed at fifty", models.StatusDisputed, "25", func() models.User { return f.creator }, 0},
		{"admin", models.StatusPending, "25", func() models.User { return f.admin }, 0},
		{"writers short", models.StatusPending, "24.999", func() models.User { return f.creator }, 400},
		{"writers over", models.StatusPending, "26", func() models.User { return f.creator }, 400},
		{"already signed", models.StatusSigned, "25", func() models.User { return f.creator }, 400},
		{"draft", models.StatusDraft, "25", func() models.User { return f.creator }, 400},
		{"reversed", models.StatusReversed, "25", func() models.User { return f.creator }, 400},
		{"contributor", models.StatusPending, "25", func() models.User { return f.co }, 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := f.sheet(t, tt.status, "25", tt.coPct)
			signed, err := f.svc.Finalize(ctx, testsupport.Current(tt.actor()), sheet.ID)
			if tt.code != 0 {
				assertCode(t, err, tt.code)
				after := testsupport.ReloadSheet(t, f.db, sheet.ID)
				if after.Status != tt.status || after.Version != sheet.Version {
					t.Errorf("failed finalize changed state: %s v%d", after.Status, after.Version)
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize failed: %v", err)
			}
			if signed.Status != models.StatusSigned || signed.DisputedBy != nil || signed.Version != sheet.Version+1 {
				t.Errorf("unexpected finalized sheet: %s disputedBy=%v v%d", signed.Status, signed.DisputedBy, signed.Version)
			}
		})
	}
}

func TestDisputeSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		status models.SplitStatus
		actor  func() models.User
		code   int
	}{
		{"pending by contributor", models.StatusPending, func() models.User { return f.co }, 0},
		{"signed by contributor", models.StatusSigned, func() models.User { return f.co }, 0},
		{"by creator", models.StatusPending, func() models.User { return f.creator }, 403},
		{"by stranger", models.StatusPending, func() models.User { return f.other }, 403},
		{"already disputed", models.StatusDisputed, func() models.User { return f.co }, 400},
		{"draft", models.StatusDraft, func() models.User { return f.co }, 400},
		{"published", models.StatusPublished, func() models.User { return f.co }, 400},
		{"reversed", models.StatusReversed, func() models.User { return f.co }, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := f.sheet(t, tt.status, "25", "25")
			disputed, err := f.svc.Dispute(ctx, testsupport.Current(tt.actor()), sheet.ID, services.DisputeInput{Reason: "wrong split"})
			if tt.code != 0 {
				assertCode(t, err, tt.code)
				after := testsupport.ReloadSheet(t, f.db, sheet.ID)
				if after.Status != tt.status || after.DisputedBy != nil {
					t.Errorf("failed dispute changed state: %s", after.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Dispute failed: %v", err)
			}
			if disputed.Status != models.StatusDisputed || disputed.DisputedBy == nil || *disputed.DisputedBy != f.co.ID {
				t.Errorf("unexpected disputed sheet: %+v", disputed)
			}
		})
	}

	rows := testsupport.Notifications(t, f.db, f.creator.ID)
	if countType(rows, models.NotifySplitDisputed) != 2 {
		t.Errorf("creator should be told about both disputes, got %d", countType(rows, models.NotifySplitDisputed))
	}
}

func TestNotifyParties(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	pending := f.sheet(t, models.StatusPending, "25", "25")
	signed := f.sheet(t, models.StatusSigned, "25", "25")

	n, err := f.svc.NotifyParties(ctx, testsupport.Current(f.creator), pending.ID, services.NotifyInput{Message: "please review"})
	if err != nil {
		t.Fatalf("NotifyParties failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 notification, got %d", n)
	}
	rows := testsupport.Notifications(t, f.db, f.co.ID)
	if len(rows) != 1 || rows[0].Message != "please review" {
		t.Errorf("unexpected notification: %+v", rows)
	}

	_, err = f.svc.NotifyParties(ctx, testsupport.Current(f.creator), signed.ID, services.NotifyInput{})
	assertCode(t, err, 400)
	_, err = f.svc.NotifyParties(ctx, testsupport.Current(f.other), pending.ID, services.NotifyInput{})
	assertCode(t, err, 403)
}

func TestDeleteSplit(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	signed := f.sheet(t, models.StatusSigned, "25", "25")
	testsupport.CreateSignature(t, f.db, signed.ID, f.co.ID)
	f.svc.Notifier.Send(ctx, services.Event{Type: models.NotifySplitFinalized, SplitSheetID: signed.ID}, []string{f.co.ID})

	err := f.svc.Delete(ctx, testsupport.Current(f.creator), signed.ID)
	assertCode(t, err, 403)
	err = f.svc.Delete(ctx, testsupport.Current(f.co), signed.ID)
	assertCode(t, err, 403)

	if err := f.svc.Delete(ctx, testsupport.Current(f.admin), signed.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	for _, model := range []any{&models.Contributor{}, &models.Signature{}, &models.Notification{}, &models.AuditLog{}} {
		if n := testsupport.Count(t, f.db, model, "split_sheet_id = ?", signed.ID); n != 0 {
			t.Errorf("expected no %T rows left, got %d", model, n)
		}
	}
	if n := testsupport.Count(t, f.db, &models.SplitSheet{}, "id = ?", signed.ID); n != 0 {
		t.Error("sheet still exists")
	}
	if n := testsupport.Count(t, f.db, &models.Song{}, "id = ?", signed.SongID); n != 0 {
		t.Error("orphaned song should be removed")
	}
	if n := testsupport.Count(t, f.db, &models.AuditLog{}, "action = ?", services.AuditSplitDeleted); n != 1 {
		t.Errorf("expected a deletion audit row, got %d", n)
	}

	pending := f.sheet(t, models.StatusPending, "25", "25")
	if err := f.svc.Delete(ctx, testsupport.Current(f.creator), pending.ID); err != nil {
		t.Errorf("creator should delete an unsigned sheet: %v", err)
	}
	err = f.svc.Delete(ctx, testsupport.Current(f.creator), pending.ID)
	assertCode(t, err, 404)
}
