// fixtures.go
//
// Royalty split sheets, notifications and account deletion for songwriters
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of split-sheet-webapp.
// split-sheet-webapp is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// split-sheet-webapp is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with split-sheet-webapp.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testsupport

import (
	"testing"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateUser creates a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	id := models.NewID()
	user := models.User{
		ID:       id,
		Email:    id[:8] + "@example.com",
		Name:     "User " + id[:8],
		Username: "user_" + id[:8],
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateProfile creates a profile with optional affiliations
func CreateProfile(t *testing.T, db *gorm.DB, userID string, publisherID, proOrgID, labelID *string) models.Profile {
	t.Helper()
	profile := models.Profile{
		UserID:      userID,
		DisplayName: "Profile " + userID[:8],
		Phone:       "555-0100",
		Bio:         "bio",
		PublisherID: publisherID,
		ProOrgID:    proOrgID,
		LabelID:     labelID,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

// Current converts a user row into a request caller
func Current(u models.User) models.CurrentUser {
	return models.CurrentUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Writer builds a WRITER contributor, linked when userID is non-empty
func Writer(userID string, pct string) models.Contributor {
	return contributor(userID, models.ContributorWriter, pct)
}

// Producer builds a PRODUCER contributor, linked when userID is non-empty
func Producer(userID string, pct string) models.Contributor {
	return contributor(userID, models.ContributorProducer, pct)
}

func contributor(userID string, kind models.ContributorType, pct string) models.Contributor {
	c := models.Contributor{
		LegalName:       "Legal " + string(kind),
		StageName:       "Stage " + string(kind),
		Role:            "songwriter",
		ContributorType: kind,
		Percentage:      decimal.RequireFromString(pct),
		Email:           "contact@example.com",
		Phone:           "555-0101",
		Address:         "1 Main St",
	}
	if userID != "" {
		id := userID
		c.UserID = &id
	}
	return c
}

// CreateSheet creates a song and a split sheet with the given contributors.
// createdBy may be empty for an orphaned sheet.
func CreateSheet(t *testing.T, db *gorm.DB, createdBy string, status models.SplitStatus, contributors ...models.Contributor) *models.SplitSheet {
	t.Helper()

	song := models.Song{Title: "Song " + models.NewID()[:8], WorkingTitle: "Working"}
	if err := db.Create(&song).Error; err != nil {
		t.Fatalf("Failed to create song: %v", err)
	}

	total := decimal.Zero
	for _, c := range contributors {
		total = total.Add(c.Percentage)
	}

	sheet := models.SplitSheet{
		SongID:          song.ID,
		Version:         1,
		AgreementDate:   time.Now().UTC(),
		Status:          status,
		TotalPercentage: total,
	}
	if createdBy != "" {
		id := createdBy
		sheet.CreatedBy = &id
	}
	if err := db.Omit("Song", "Contributors").Create(&sheet).Error; err != nil {
		t.Fatalf("Failed to create split sheet: %v", err)
	}

	for i := range contributors {
		contributors[i].SplitSheetID = sheet.ID
		if err := db.Create(&contributors[i]).Error; err != nil {
			t.Fatalf("Failed to create contributor: %v", err)
		}
	}

	return ReloadSheet(t, db, sheet.ID)
}

// ReloadSheet loads a sheet with its song and contributors
func ReloadSheet(t *testing.T, db *gorm.DB, id string) *models.SplitSheet {
	t.Helper()
	var sheet models.SplitSheet
	err := db.Preload("Song").
		Preload("Contributors", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("id = ?", id).
		First(&sheet).Error
	if err != nil {
		t.Fatalf("Failed to load split sheet %s: %v", id, err)
	}
	return &sheet
}

// CreateSignature records a signature by userID on a sheet
func CreateSignature(t *testing.T, db *gorm.DB, sheetID, userID string) models.Signature {
	t.Helper()
	uid := userID
	sig := models.Signature{
		SplitSheetID:  sheetID,
		UserID:        &uid,
		SignatureData: "data:image/png;base64,AAAA",
		SignedAt:      time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
		IPAddress:     "127.0.0.1",
	}
	if err := db.Create(&sig).Error; err != nil {
		t.Fatalf("Failed to create signature: %v", err)
	}
	return sig
}

// Notifications returns a user's notifications oldest first
func Notifications(t *testing.T, db *gorm.DB, userID string) []models.Notification {
	t.Helper()
	var rows []models.Notification
	if err := db.Where("user_id = ?", userID).Order("created_at, id").Find(&rows).Error; err != nil {
		t.Fatalf("Failed to load notifications: %v", err)
	}
	return rows
}

// Count counts rows of model matching the condition
func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}
