package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/metrics"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateSplitInput is the body of PUT /splits/:id. Version is optional; when
// present it must match the stored version.
type UpdateSplitInput struct {
	FinalTitle    string             `json:"finalTitle"`
	WorkingTitle  string             `json:"workingTitle"`
	AgreementDate *time.Time         `json:"agreementDate"`
	Clauses       *string            `json:"clauses"`
	Contributors  []ContributorInput `json:"contributors"`
	Version       types.OptionalInt  `json:"version" swaggertype:"integer"`
}

// ContributorPatch is the allow-listed field set of PATCH /splits/:id/contributor.
// Nil fields are left untouched.
type ContributorPatch struct {
	ContributorID  string           `json:"contributorId"`
	LegalName      *string          `json:"legalName"`
	StageName      *string          `json:"stageName"`
	Role           *string          `json:"role"`
	Percentage     *decimal.Decimal `json:"percentage"`
	ProAffiliation *string          `json:"proAffiliation"`
	IPINumber      *string          `json:"ipiNumber"`
	PublisherName  *string          `json:"publisherName"`
	PublisherIPI   *string          `json:"publisherIpi"`
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	Address        *string          `json:"address"`
}

func (p ContributorPatch) columns() map[string]any {
	updates := make(map[string]any)
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	set("legal_name", p.LegalName)
	set("stage_name", p.StageName)
	set("role", p.Role)
	set("pro_affiliation", p.ProAffiliation)
	set("ipi_number", p.IPINumber)
	set("publisher_name", p.PublisherName)
	set("publisher_ipi", p.PublisherIPI)
	set("email", p.Email)
	set("phone", p.Phone)
	set("address", p.Address)
	if p.Percentage != nil {
		updates["percentage"] = *p.Percentage
	}
	return updates
}

// PatchResult is returned by PatchContributor
type PatchResult struct {
	Contributor     models.Contributor `json:"contributor"`
	TotalPercentage decimal.Decimal    `json:"totalPercentage"`
	WriterTotal     decimal.Decimal    `json:"writerTotal"`
	Version         int                `json:"version"`
	Status          models.SplitStatus `json:"status"`
}

// Update replaces the song fields and the whole contributor set
func (s *SplitService) Update(ctx context.Context, actor models.CurrentUser, id string, in UpdateSplitInput) (*models.SplitSheet, error) {
	in.FinalTitle = strings.TrimSpace(in.FinalTitle)
	in.WorkingTitle = strings.TrimSpace(in.WorkingTitle)
	if in.FinalTitle == "" && in.WorkingTitle == "" {
		return nil, types.NewValidationError("a song title is required")
	}

	var (
		sheet        *models.SplitSheet
		previous     map[string]struct{}
		contributors []models.Contributor
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSheet(tx, id, true)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !current.IsCreator(actor.ID) {
			return types.NewForbiddenError("only the creator or an admin can edit this split sheet")
		}
		if current.Status == models.StatusSigned && !actor.IsAdmin() {
			return types.NewForbiddenError("a signed split sheet can only be edited by an admin")
		}
		if in.Version.Set && in.Version.Value != current.Version {
			return types.NewVersionError()
		}
		contributors, err = buildContributors(in.Contributors)
		if err != nil {
			return err
		}
		if err := CheckFinalize(contributors); err != nil {
			return err
		}
		previous = linkedUserIDs(current.Contributors)

		if err := tx.Model(&models.Song{}).Where("id = ?", current.SongID).Updates(map[string]any{
			"title":         in.FinalTitle,
			"working_title": in.WorkingTitle,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("split_sheet_id = ?", current.ID).Delete(&models.Contributor{}).Error; err != nil {
			return err
		}
		for i := range contributors {
			contributors[i].SplitSheetID = current.ID
		}
		if err := tx.Create(&contributors).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"total_percentage": Total(contributors),
			"version":          gorm.Expr("version + 1"),
		}
		if in.AgreementDate != nil {
			updates["agreement_date"] = in.AgreementDate.UTC()
		}
		if in.Clauses != nil {
			updates["clauses"] = *in.Clauses
		}
		if err := tx.Model(&models.SplitSheet{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
			return err
		}

		if err := writeAudit(tx, &current.ID, strPtr(actor.ID), AuditSplitUpdated, map[string]any{
			"fromVersion":  current.Version,
			"contributors": len(contributors),
			"admin":        actor.IsAdmin(),
		}); err != nil {
			return err
		}

		sheet, err = loadSheet(tx, current.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	var invitees []string
	for userID := range linkedUserIDs(sheet.Contributors) {
		if _, ok := previous[userID]; !ok && userID != actor.ID {
			invitees = append(invitees, userID)
		}
	}
	if len(invitees) > 0 {
		s.Notifier.Send(ctx, Event{
			Type:         models.NotifySplitInvite,
			SplitSheetID: sheet.ID,
			SongTitle:    sheet.Song.DisplayTitle(),
			ActorID:      actor.ID,
		}, keys(toSet(invitees)))
	}
	s.Notifier.Dispatch(ctx, Event{
		Type:         models.NotifySplitUpdated,
		SplitSheetID: sheet.ID,
		SongTitle:    sheet.Song.DisplayTitle(),
		ActorID:      actor.ID,
		Contributors: sheet.Contributors,
		Extra:        creatorOf(sheet),
		Exclude:      invitees,
	})

	return sheet, nil
}

// PatchContributor applies an allow-listed patch to one contributor row
func (s *SplitService) PatchContributor(ctx context.Context, actor models.CurrentUser, id string, patch ContributorPatch) (*PatchResult, error) {
	if patch.ContributorID == "" {
		return nil, types.NewValidationError("contributorId is required")
	}
	if patch.Percentage != nil {
		if err := ValidatePercentage(*patch.Percentage); err != nil {
			return nil, err
		}
	}
	updates := patch.columns()
	if len(updates) == 0 {
		return nil, types.NewValidationError("no editable fields supplied")
	}

	var (
		sheet  *models.SplitSheet
		result PatchResult
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSheet(tx, id, true)
		if err != nil {
			return err
		}
		perms := DerivePermissions(current, actor)
		if !perms.CanView() {
			return types.NewForbiddenError("you do not have access to this split sheet")
		}

		var target *models.Contributor
		for i := range current.Contributors {
			if current.Contributors[i].ID == patch.ContributorID {
				target = &current.Contributors[i]
				break
			}
		}
		if target == nil {
			return types.NewNotFoundError("contributor %s not found on this split sheet", patch.ContributorID)
		}
		if !contains(perms.EditableContributorIDs, target.ID) {
			return types.NewForbiddenError("you cannot edit this contributor")
		}
		if patch.Percentage != nil && !perms.CanEditPercentage {
			return types.NewForbiddenError("percentages can only be changed by contributors while the split sheet is disputed")
		}

		if err := tx.Model(&models.Contributor{}).Where("id = ?", target.ID).Updates(updates).Error; err != nil {
			return err
		}
		if patch.Percentage != nil {
			if _, err := RecomputeTotal(tx, current.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.SplitSheet{}).Where("id = ?", current.ID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}

		details := map[string]any{"contributorId": target.ID, "fields": sortedKeys(updates)}
		if patch.Percentage != nil {
			details["from"] = target.Percentage.String()
			details["to"] = patch.Percentage.String()
		}
		if err := writeAudit(tx, &current.ID, strPtr(actor.ID), AuditContributorUpdated, details); err != nil {
			return err
		}

		sheet, err = loadSheet(tx, current.ID, false)
		if err != nil {
			return err
		}
		for _, c := range sheet.Contributors {
			if c.ID == target.ID {
				result.Contributor = c
			}
		}
		result.TotalPercentage = sheet.TotalPercentage
		result.WriterTotal = WriterTotal(sheet.Contributors)
		result.Version = sheet.Version
		result.Status = sheet.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	title := sheet.Song.DisplayTitle()
	if patch.Percentage != nil && sheet.Status == models.StatusDisputed && !sheet.IsCreator(actor.ID) {
		s.Notifier.Dispatch(ctx, Event{
			Type:         models.NotifySplitDisputed,
			SplitSheetID: sheet.ID,
			SongTitle:    title,
			ActorID:      actor.ID,
			Contributors: sheet.Contributors,
			Extra:        creatorOf(sheet),
			Title:        "Percentage changed on disputed split sheet",
			Message:      percentageChangedMessage(title, result.Contributor),
		})
	} else {
		s.Notifier.Dispatch(ctx, Event{
			Type:         models.NotifySplitUpdated,
			SplitSheetID: sheet.ID,
			SongTitle:    title,
			ActorID:      actor.ID,
			Contributors: sheet.Contributors,
			Extra:        creatorOf(sheet),
		})
	}

	// Level-triggered: fires on every percentage patch that lands on exactly 50.
	if patch.Percentage != nil &&
		(sheet.Status == models.StatusPending || sheet.Status == models.StatusDisputed) &&
		WritersComplete(sheet.Contributors) && sheet.CreatedBy != nil {
		s.Notifier.Send(ctx, Event{
			Type:         models.NotifySplitReady,
			SplitSheetID: sheet.ID,
			SongTitle:    title,
			ActorID:      actor.ID,
		}, creatorOf(sheet))
	}

	return &result, nil
}

// Finalize moves a PENDING or DISPUTED sheet to SIGNED
func (s *SplitService) Finalize(ctx context.Context, actor models.CurrentUser, id string) (*models.SplitSheet, error) {
	var sheet *models.SplitSheet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSheet(tx, id, true)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !current.IsCreator(actor.ID) {
			return types.NewForbiddenError("only the creator or an admin can finalize this split sheet")
		}
		if !CanTransition(current.Status, models.StatusSigned) {
			return types.NewValidationError("cannot finalize a split sheet in status %s", current.Status)
		}
		if err := CheckFinalize(current.Contributors); err != nil {
			return err
		}

		if err := tx.Model(&models.SplitSheet{}).Where("id = ?", current.ID).Updates(map[string]any{
			"status":      models.StatusSigned,
			"disputed_by": nil,
			"version":     gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}
		if err := writeAudit(tx, &current.ID, strPtr(actor.ID), AuditSplitFinalized, map[string]any{
			"from":        current.Status,
			"writerTotal": WriterTotal(current.Contributors).String(),
		}); err != nil {
			return err
		}

		sheet, err = loadSheet(tx, current.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SplitTransitions.WithLabelValues(string(models.StatusSigned)).Inc()
	s.Notifier.Dispatch(ctx, Event{
		Type:         models.NotifySplitFinalized,
		SplitSheetID: sheet.ID,
		SongTitle:    sheet.Song.DisplayTitle(),
		ActorID:      actor.ID,
		Contributors: sheet.Contributors,
		Extra:        creatorOf(sheet),
	})
	return sheet, nil
}

// DisputeInput is the optional body of POST /splits/:id/dispute
type DisputeInput struct {
	Reason string `json:"reason"`
}

// Dispute moves a PENDING or SIGNED sheet to DISPUTED on behalf of a linked
// contributor who did not create it.
func (s *SplitService) Dispute(ctx context.Context, actor models.CurrentUser, id string, in DisputeInput) (*models.SplitSheet, error) {
	var sheet *models.SplitSheet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSheet(tx, id, true)
		if err != nil {
			return err
		}
		r := relate(current, actor)
		if r.creator {
			return types.NewForbiddenError("the creator cannot dispute their own split sheet")
		}
		if !r.contributor {
			return types.NewForbiddenError("only a linked contributor can dispute this split sheet")
		}
		if !CanTransition(current.Status, models.StatusDisputed) {
			return types.NewValidationError("cannot dispute a split sheet in status %s", current.Status)
		}

		if err := tx.Model(&models.SplitSheet{}).Where("id = ?", current.ID).Updates(map[string]any{
			"status":      models.StatusDisputed,
			"disputed_by": actor.ID,
			"version":     gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}
		if err := writeAudit(tx, &current.ID, strPtr(actor.ID), AuditSplitDisputed, map[string]any{
			"from":   current.Status,
			"reason": strings.TrimSpace(in.Reason),
		}); err != nil {
			return err
		}

		sheet, err = loadSheet(tx, current.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.SplitTransitions.WithLabelValues(string(models.StatusDisputed)).Inc()
	s.Notifier.Dispatch(ctx, Event{
		Type:         models.NotifySplitDisputed,
		SplitSheetID: sheet.ID,
		SongTitle:    sheet.Song.DisplayTitle(),
		ActorID:      actor.ID,
		Contributors: sheet.Contributors,
		Extra:        creatorOf(sheet),
	})
	return sheet, nil
}

// NotifyInput is the optional body of POST /splits/:id/notify
type NotifyInput struct {
	Message string `json:"message"`
}

// NotifyParties re-broadcasts SPLIT_UPDATED to every resolved party and
// returns the number of notifications written.
func (s *SplitService) NotifyParties(ctx context.Context, actor models.CurrentUser, id string, in NotifyInput) (int, error) {
	sheet, err := loadSheet(s.DB.WithContext(ctx), id, false)
	if err != nil {
		return 0, err
	}
	if !DerivePermissions(sheet, actor).CanView() {
		return 0, types.NewForbiddenError("you do not have access to this split sheet")
	}
	if sheet.Status == models.StatusSigned {
		return 0, types.NewValidationError("a signed split sheet cannot be re-broadcast")
	}

	return s.Notifier.Dispatch(ctx, Event{
		Type:         models.NotifySplitUpdated,
		SplitSheetID: sheet.ID,
		SongTitle:    sheet.Song.DisplayTitle(),
		ActorID:      actor.ID,
		Contributors: sheet.Contributors,
		Extra:        creatorOf(sheet),
		Message:      strings.TrimSpace(in.Message),
	}), nil
}

// Delete removes a sheet and everything hanging off it. The owning song goes
// too once no other sheet references it.
func (s *SplitService) Delete(ctx context.Context, actor models.CurrentUser, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadSheet(tx, id, true)
		if err != nil {
			return err
		}
		perms := DerivePermissions(current, actor)
		if !perms.CanDelete {
			if current.Status == models.StatusSigned && (perms.ViewerRole == ViewerCreator) {
				return types.NewForbiddenError("only an admin can delete a signed split sheet")
			}
			return types.NewForbiddenError("only the creator or an admin can delete this split sheet")
		}

		cascade := []any{
			&models.Contributor{},
			&models.Signature{},
			&models.Notification{},
			&models.AuditLog{},
		}
		for _, model := range cascade {
			if err := tx.Where("split_sheet_id = ?", current.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.SplitSheet{}, "id = ?", current.ID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.SplitSheet{}).Where("song_id = ?", current.SongID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Delete(&models.Song{}, "id = ?", current.SongID).Error; err != nil {
				return err
			}
		}

		return writeAudit(tx, nil, strPtr(actor.ID), AuditSplitDeleted, map[string]any{
			"splitSheetId": current.ID,
			"songTitle":    current.Song.DisplayTitle(),
			"status":       current.Status,
			"songRemoved":  remaining == 0,
		})
	})
}

func percentageChangedMessage(song string, c models.Contributor) string {
	name := c.StageName
	if name == "" {
		name = c.LegalName
	}
	if name == "" {
		name = "A contributor"
	}
	if song == "" {
		song = "Untitled"
	}
	return name + " changed their percentage to " + c.Percentage.String() + "% on \"" + song + "\"."
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortedKeys(m map[string]any) []string {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return keys(set)
}

// IsNotFound reports whether err is a not-found condition from this package or gorm
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || types.HasCode(err, 404)
}
