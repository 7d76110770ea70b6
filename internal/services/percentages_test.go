package services_test

import (
	"testing"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/testsupport"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/shopspring/decimal"
)

func TestTotals(t *testing.T) {
	contributors := []models.Contributor{
		testsupport.Writer("", "25.5"),
		testsupport.Writer("", "24.5"),
		testsupport.Producer("", "50"),
	}

	if got := services.Total(contributors); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected total 100, got %s", got)
	}
	if got := services.WriterTotal(contributors); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected writer total 50, got %s", got)
	}
	if !services.WritersComplete(contributors) {
		t.Error("expected writers to be complete")
	}
}

func TestCheckFinalize(t *testing.T) {
	tests := []struct {
		name    string
		writers []string
		wantErr bool
	}{
		{"exactly fifty", []string{"30", "20"}, false},
		{"fractional exact", []string{"33.333", "16.667"}, false},
		{"under", []string{"30", "19.999"}, true},
		{"over", []string{"30", "20.001"}, true},
		{"no writers", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contributors []models.Contributor
			for _, pct := range tt.writers {
				contributors = append(contributors, testsupport.Writer("", pct))
			}
			// Producers never count toward the writer half
			contributors = append(contributors, testsupport.Producer("", "50"))

			err := services.CheckFinalize(contributors)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFinalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !types.HasCode(err, 400) {
				t.Errorf("expected a 400 validation error, got %v", err)
			}
		})
	}
}

func TestValidatePercentage(t *testing.T) {
	for _, ok := range []string{"0", "50", "100", "0.001"} {
		if err := services.ValidatePercentage(decimal.RequireFromString(ok)); err != nil {
			t.Errorf("expected %s to be valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"-0.001", "100.001", "250"} {
		if err := services.ValidatePercentage(decimal.RequireFromString(bad)); err == nil {
			t.Errorf("expected %s to be rejected", bad)
		}
	}
}

func TestRecomputeTotal(t *testing.T) {
	db := testsupport.NewDB(t)
	creator := testsupport.CreateUser(t, db, models.RoleArtist)
	sheet := testsupport.CreateSheet(t, db, creator.ID, models.StatusPending,
		testsupport.Writer(creator.ID, "50"),
		testsupport.Producer("", "50"),
	)

	// Drift the cached total, then change a contributor behind its back
	db.Model(&models.SplitSheet{}).Where("id = ?", sheet.ID).Update("total_percentage", 7)
	db.Model(&models.Contributor{}).Where("id = ?", sheet.Contributors[0].ID).Update("percentage", decimal.NewFromInt(40))

	total, err := services.RecomputeTotal(db, sheet.ID)
	if err != nil {
		t.Fatalf("RecomputeTotal failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected 90, got %s", total)
	}
	reloaded := testsupport.ReloadSheet(t, db, sheet.ID)
	if !reloaded.TotalPercentage.Equal(services.Total(reloaded.Contributors)) {
		t.Errorf("stored total %s does not match live sum", reloaded.TotalPercentage)
	}
}
