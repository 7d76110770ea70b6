package services

import (
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WriterShare is the exact total writer contributors must reach before signing;
// producers hold the other half.
var WriterShare = decimal.NewFromInt(50)

var (
	minPercentage = decimal.Zero
	maxPercentage = decimal.NewFromInt(100)
)

// Total sums every contributor's percentage
func Total(contributors []models.Contributor) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributors {
		total = total.Add(c.Percentage)
	}
	return total
}

// WriterTotal sums WRITER contributors only
func WriterTotal(contributors []models.Contributor) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributors {
		if c.ContributorType == models.ContributorWriter {
			total = total.Add(c.Percentage)
		}
	}
	return total
}

// WritersComplete reports whether writers hold exactly WriterShare
func WritersComplete(contributors []models.Contributor) bool {
	return WriterTotal(contributors).Equal(WriterShare)
}

// CheckFinalize rejects a move to SIGNED unless writers sum to exactly 50
func CheckFinalize(contributors []models.Contributor) error {
	total := WriterTotal(contributors)
	if !total.Equal(WriterShare) {
		return types.NewValidationError("writer percentages must total exactly %s%% (currently %s%%)",
			WriterShare.String(), total.String())
	}
	return nil
}

// ValidatePercentage bounds a single contributor's stake to 0..100
func ValidatePercentage(p decimal.Decimal) error {
	if p.LessThan(minPercentage) || p.GreaterThan(maxPercentage) {
		return types.NewValidationError("percentage must be between 0 and 100, got %s", p.String())
	}
	return nil
}

// RecomputeTotal re-sums the persisted contributors of a sheet and stores the
// result in total_percentage. It must run inside the mutating transaction.
func RecomputeTotal(tx *gorm.DB, sheetID string) (decimal.Decimal, error) {
	var contributors []models.Contributor
	if err := tx.Where("split_sheet_id = ?", sheetID).Find(&contributors).Error; err != nil {
		return decimal.Zero, err
	}
	total := Total(contributors)
	if err := tx.Model(&models.SplitSheet{}).
		Where("id = ?", sheetID).
		Update("total_percentage", total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
