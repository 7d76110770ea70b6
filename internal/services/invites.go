package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"gorm.io/gorm"
)

const (
	// DefaultInviteTTL applies when no lifetime is requested
	DefaultInviteTTL = 72 * time.Hour
	// MaxInviteTTL caps invite lifetimes
	MaxInviteTTL = 30 * 24 * time.Hour
)

// CreateInviteInput is the body of POST /admin/invites
type CreateInviteInput struct {
	Role     models.Role `json:"role"`
	TTLHours int         `json:"ttlHours"`
}

// InviteService issues and redeems role-upgrade codes
type InviteService struct {
	DB  *gorm.DB
	Log *slog.Logger
	Now func() time.Time
}

// NewInviteService wires an invite service
func NewInviteService(db *gorm.DB, log *slog.Logger) *InviteService {
	return &InviteService{DB: db, Log: log, Now: time.Now}
}

// Create issues a new single-use code granting role
func (s *InviteService) Create(ctx context.Context, createdBy string, in CreateInviteInput) (*models.InviteCode, error) {
	if in.Role != models.RoleLabel && in.Role != models.RoleAdmin {
		return nil, types.NewValidationError("role must be LABEL or ADMIN")
	}
	ttl := DefaultInviteTTL
	if in.TTLHours > 0 {
		ttl = time.Duration(in.TTLHours) * time.Hour
	}
	if ttl > MaxInviteTTL {
		return nil, types.NewValidationError("invite lifetime cannot exceed %d hours", int(MaxInviteTTL.Hours()))
	}

	invite := models.InviteCode{
		Code:      newInviteCode(),
		Role:      in.Role,
		CreatedBy: createdBy,
		ExpiresAt: s.Now().Add(ttl),
	}
	if err := s.DB.WithContext(ctx).Create(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.NewConflictError("invite code collision, try again")
		}
		return nil, err
	}
	s.Log.Info("invite code created", "role", invite.Role, "expiresAt", invite.ExpiresAt, "by", createdBy)
	return &invite, nil
}

// Redeem upgrades an ARTIST account to the code's role. The code is claimed
// with a conditional update so concurrent redemptions use it once.
func (s *InviteService) Redeem(ctx context.Context, actor models.CurrentUser, code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, types.NewValidationError("code is required")
	}
	now := s.Now()

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.InviteCode
		if err := tx.Where("code = ?", code).First(&invite).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("invite code not found")
			}
			return err
		}
		if invite.UsedBy != nil {
			return types.NewValidationError("invite code has already been used")
		}
		if !now.Before(invite.ExpiresAt) {
			return types.NewValidationError("invite code has expired")
		}
		if actor.Role != models.RoleArtist {
			return types.NewValidationError("only artist accounts can redeem invite codes")
		}

		res := tx.Model(&models.InviteCode{}).
			Where("id = ? AND used_by IS NULL", invite.ID).
			Updates(map[string]any{"used_by": actor.ID, "used_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewValidationError("invite code has already been used")
		}

		if err := tx.Model(&models.User{}).Where("id = ?", actor.ID).Update("role", invite.Role).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", actor.ID).First(&user).Error; err != nil {
			return err
		}
		return writeAudit(tx, nil, strPtr(actor.ID), AuditInviteRedeemed, map[string]any{
			"inviteId": invite.ID,
			"role":     invite.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("invite code redeemed", "userId", actor.ID, "role", user.Role)
	return &user, nil
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(models.NewID(), "-", "")[:12])
}
