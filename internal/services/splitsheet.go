package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/metrics"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ContributorInput is one contributor row as submitted by clients
type ContributorInput struct {
	UserID          *string                `json:"userId"`
	LegalName       string                 `json:"legalName"`
	StageName       string                 `json:"stageName"`
	Role            string                 `json:"role"`
	ContributorType models.ContributorType `json:"contributorType"`
	Percentage      decimal.Decimal        `json:"percentage"`
	ProAffiliation  string                 `json:"proAffiliation"`
	IPINumber       string                 `json:"ipiNumber"`
	PublisherName   string                 `json:"publisherName"`
	PublisherIPI    string                 `json:"publisherIpi"`
	PublisherID     *string                `json:"publisherId"`
	ProOrgID        *string                `json:"proOrgId"`
	LabelID         *string                `json:"labelId"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	Address         string                 `json:"address"`
}

// CreateSplitInput is the body of POST /splits
type CreateSplitInput struct {
	FinalTitle    string             `json:"finalTitle"`
	WorkingTitle  string             `json:"workingTitle"`
	AgreementDate *time.Time         `json:"agreementDate"`
	Clauses       string             `json:"clauses"`
	Status        models.SplitStatus `json:"status"`
	Contributors  []ContributorInput `json:"contributors"`
}

// SheetView is a sheet with the caller's derived permissions
type SheetView struct {
	Sheet       *models.SplitSheet `json:"splitSheet"`
	Permissions Permissions        `json:"permissions"`
	WriterTotal decimal.Decimal    `json:"writerTotal"`
}

// SplitService implements the split sheet lifecycle
type SplitService struct {
	DB       *gorm.DB
	Notifier *Notifier
	Log      *slog.Logger
}

// NewSplitService wires a split service
func NewSplitService(db *gorm.DB, notifier *Notifier, log *slog.Logger) *SplitService {
	return &SplitService{DB: db, Notifier: notifier, Log: log}
}

func buildContributors(inputs []ContributorInput) ([]models.Contributor, error) {
	if len(inputs) == 0 {
		return nil, types.NewValidationError("at least one contributor is required")
	}
	out := make([]models.Contributor, 0, len(inputs))
	for i, in := range inputs {
		switch in.ContributorType {
		case models.ContributorWriter, models.ContributorProducer:
		default:
			return nil, types.NewValidationError("contributor %d: contributorType must be WRITER or PRODUCER", i+1)
		}
		if err := ValidatePercentage(in.Percentage); err != nil {
			return nil, err
		}
		out = append(out, models.Contributor{
			UserID:          normalizeID(in.UserID),
			LegalName:       strings.TrimSpace(in.LegalName),
			StageName:       strings.TrimSpace(in.StageName),
			Role:            in.Role,
			ContributorType: in.ContributorType,
			Percentage:      in.Percentage,
			ProAffiliation:  in.ProAffiliation,
			IPINumber:       in.IPINumber,
			PublisherName:   in.PublisherName,
			PublisherIPI:    in.PublisherIPI,
			PublisherID:     normalizeID(in.PublisherID),
			ProOrgID:        normalizeID(in.ProOrgID),
			LabelID:         normalizeID(in.LabelID),
			Email:           in.Email,
			Phone:           in.Phone,
			Address:         in.Address,
		})
	}
	return out, nil
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func linkedUserIDs(contributors []models.Contributor) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, c := range contributors {
		if c.UserID != nil {
			ids[*c.UserID] = struct{}{}
		}
	}
	return ids
}

func creatorOf(sheet *models.SplitSheet) []string {
	if sheet.CreatedBy == nil {
		return nil
	}
	return []string{*sheet.CreatedBy}
}

// Create stores a new sheet, its song and contributors in one transaction
func (s *SplitService) Create(ctx context.Context, actor models.CurrentUser, in CreateSplitInput) (*models.SplitSheet, error) {
	if actor.Role != models.RoleArtist && actor.Role != models.RoleAdmin {
		return nil, types.NewForbiddenError("only artists and admins can create split sheets")
	}
	in.FinalTitle = strings.TrimSpace(in.FinalTitle)
	in.WorkingTitle = strings.TrimSpace(in.WorkingTitle)
	if in.FinalTitle == "" && in.WorkingTitle == "" {
		return nil, types.NewValidationError("a song title is required")
	}

	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if status != models.StatusPending && status != models.StatusSigned {
		return nil, types.NewValidationError("status must be PENDING or SIGNED")
	}

	contributors, err := buildContributors(in.Contributors)
	if err != nil {
		return nil, err
	}
	if status == models.StatusSigned {
		if err := CheckFinalize(contributors); err != nil {
			return nil, err
		}
	}

	agreementDate := time.Now().UTC()
	if in.AgreementDate != nil {
		agreementDate = in.AgreementDate.UTC()
	}

	var sheet models.SplitSheet
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		song := models.Song{Title: in.FinalTitle, WorkingTitle: in.WorkingTitle}
		if err := tx.Create(&song).Error; err != nil {
			return err
		}

		sheet = models.SplitSheet{
			SongID:          song.ID,
			CreatedBy:       strPtr(actor.ID),
			Version:         1,
			AgreementDate:   agreementDate,
			Status:          status,
			TotalPercentage: Total(contributors),
			Clauses:         in.Clauses,
		}
		if err := tx.Omit(clause.Associations).Create(&sheet).Error; err != nil {
			return err
		}

		for i := range contributors {
			contributors[i].SplitSheetID = sheet.ID
		}
		if err := tx.Create(&contributors).Error; err != nil {
			return err
		}

		sheet.Song = song
		sheet.Contributors = contributors
		return writeAudit(tx, &sheet.ID, strPtr(actor.ID), AuditSplitCreated, map[string]any{
			"status":          status,
			"contributors":    len(contributors),
			"totalPercentage": sheet.TotalPercentage.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.SplitTransitions.WithLabelValues(string(status)).Inc()

	eventType := models.NotifySplitInvite
	if status == models.StatusSigned {
		eventType = models.NotifySplitFinalized
	}
	s.Notifier.Dispatch(ctx, Event{
		Type:         eventType,
		SplitSheetID: sheet.ID,
		SongTitle:    sheet.Song.DisplayTitle(),
		ActorID:      actor.ID,
		Contributors: sheet.Contributors,
	})

	return &sheet, nil
}

// Get returns the sheet with the caller's permissions. Callers with no
// relation to the sheet are refused.
func (s *SplitService) Get(ctx context.Context, actor models.CurrentUser, id string) (*SheetView, error) {
	sheet, err := loadSheet(s.DB.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	perms := DerivePermissions(sheet, actor)
	if !perms.CanView() {
		return nil, types.NewForbiddenError("you do not have access to this split sheet")
	}
	return &SheetView{Sheet: sheet, Permissions: perms, WriterTotal: WriterTotal(sheet.Contributors)}, nil
}

// List returns sheets the caller created or contributes to; admins see all
func (s *SplitService) List(ctx context.Context, actor models.CurrentUser) ([]models.SplitSheet, error) {
	query := s.DB.WithContext(ctx).
		Preload("Song").
		Preload("Contributors").
		Order("updated_at DESC").
		Limit(200)
	if !actor.IsAdmin() {
		query = query.Where("created_by = ? OR id IN (?)", actor.ID,
			s.DB.Model(&models.Contributor{}).Select("split_sheet_id").Where("user_id = ?", actor.ID))
	}
	var sheets []models.SplitSheet
	if err := query.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// loadSheet fetches a sheet with song and contributors, optionally locking
// the sheet row for the rest of the transaction.
func loadSheet(db *gorm.DB, id string, forUpdate bool) (*models.SplitSheet, error) {
	query := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
	if forUpdate {
		query = lockForUpdate(query)
	}
	var sheet models.SplitSheet
	err := query.
		Preload("Song").
		Preload("Contributors", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("id = ?", id).
		First(&sheet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("split sheet %s not found", id)
		}
		return nil, err
	}
	return &sheet, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE; sqlite ignores it
func lockForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
