package services_test

import (
	"testing"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]models.SplitStatus]bool{
		{models.StatusPending, models.StatusDisputed}: true,
		{models.StatusSigned, models.StatusDisputed}:  true,
		{models.StatusPending, models.StatusSigned}:   true,
		{models.StatusDisputed, models.StatusSigned}:  true,
	}
	all := []models.SplitStatus{
		models.StatusDraft, models.StatusPending, models.StatusSigned,
		models.StatusDisputed, models.StatusPublished, models.StatusReversed,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.SplitStatus{from, to}]
			if got := services.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func permSheet(status models.SplitStatus, creatorID string, contributors ...models.Contributor) *models.SplitSheet {
	for i := range contributors {
		contributors[i].ID = "c" + string(rune('1'+i))
	}
	return &models.SplitSheet{
		ID:           "sheet",
		CreatedBy:    &creatorID,
		Status:       status,
		Contributors: contributors,
	}
}

func linked(userID string, kind models.ContributorType, pct int64) models.Contributor {
	c := models.Contributor{ContributorType: kind, Percentage: decimal.NewFromInt(pct)}
	if userID != "" {
		c.UserID = &userID
	}
	return c
}

func TestDerivePermissions(t *testing.T) {
	creator := models.CurrentUser{ID: "creator", Role: models.RoleArtist}
	contributor := models.CurrentUser{ID: "co", Role: models.RoleArtist}
	admin := models.CurrentUser{ID: "admin", Role: models.RoleAdmin}
	stranger := models.CurrentUser{ID: "stranger", Role: models.RoleArtist}

	complete := func(status models.SplitStatus) *models.SplitSheet {
		return permSheet(status, "creator",
			linked("creator", models.ContributorWriter, 25),
			linked("co", models.ContributorWriter, 25),
			linked("", models.ContributorProducer, 50),
		)
	}

	t.Run("stranger sees nothing", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusPending), stranger)
		if p.CanView() || p.CanEdit || p.CanDelete || len(p.EditableContributorIDs) != 0 {
			t.Errorf("unexpected permissions for stranger: %+v", p)
		}
	})

	t.Run("creator on pending", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusPending), creator)
		if p.ViewerRole != services.ViewerCreator {
			t.Errorf("expected creator role, got %q", p.ViewerRole)
		}
		if !p.CanEdit || !p.CanEditPercentage || !p.CanFinalize || !p.CanDelete || !p.CanNotify {
			t.Errorf("creator should fully manage a pending sheet: %+v", p)
		}
		if p.CanDispute {
			t.Error("creator must not dispute their own sheet")
		}
		if len(p.EditableContributorIDs) != 3 {
			t.Errorf("creator should edit every row, got %v", p.EditableContributorIDs)
		}
	})

	t.Run("creator on signed", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusSigned), creator)
		if p.CanEdit || p.CanDelete || p.CanFinalize || p.CanNotify || p.CanEditPercentage {
			t.Errorf("signed sheet is read-only for its creator: %+v", p)
		}
	})

	t.Run("contributor on pending", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusPending), contributor)
		if p.ViewerRole != services.ViewerContributor {
			t.Errorf("expected contributor role, got %q", p.ViewerRole)
		}
		if p.CanEdit || p.CanDelete || p.CanFinalize || p.CanEditPercentage {
			t.Errorf("contributor has too much power: %+v", p)
		}
		if !p.CanDispute {
			t.Error("contributor should dispute a pending sheet")
		}
		if len(p.EditableContributorIDs) != 1 || p.EditableContributorIDs[0] != "c2" {
			t.Errorf("contributor should edit only their own row, got %v", p.EditableContributorIDs)
		}
	})

	t.Run("contributor on disputed", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusDisputed), contributor)
		if !p.CanEditPercentage {
			t.Error("contributor edits percentages while disputed")
		}
		if p.CanDispute {
			t.Error("a disputed sheet cannot be disputed again")
		}
	})

	t.Run("admin on signed", func(t *testing.T) {
		p := services.DerivePermissions(complete(models.StatusSigned), admin)
		if p.ViewerRole != services.ViewerAdmin {
			t.Errorf("expected admin role, got %q", p.ViewerRole)
		}
		if !p.CanEdit || !p.CanDelete || !p.CanEditPercentage || len(p.EditableContributorIDs) != 3 {
			t.Errorf("admin overrides signed: %+v", p)
		}
		if p.CanFinalize {
			t.Error("a signed sheet cannot be finalized again")
		}
	})

	t.Run("finalize needs writers at fifty", func(t *testing.T) {
		sheet := permSheet(models.StatusPending, "creator",
			linked("creator", models.ContributorWriter, 40),
			linked("", models.ContributorProducer, 60),
		)
		if services.DerivePermissions(sheet, creator).CanFinalize {
			t.Error("finalize must wait for writers to total 50")
		}
	})
}
