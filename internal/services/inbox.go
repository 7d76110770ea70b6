package services

import (
	"context"
	"errors"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
	"gorm.io/gorm"
)

// InboxPage is a page of a user's notifications
type InboxPage struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

// InboxService reads and acknowledges a user's notifications
type InboxService struct {
	DB *gorm.DB
}

// NewInboxService wires an inbox service
func NewInboxService(db *gorm.DB) *InboxService {
	return &InboxService{DB: db}
}

// List returns the newest notifications for userID
func (s *InboxService) List(ctx context.Context, userID string, unreadOnly bool, limit int) (*InboxPage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := s.DB.WithContext(ctx)

	query := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	page := InboxPage{Notifications: []models.Notification{}}
	if err := query.Find(&page.Notifications).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&page.Unread).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// MarkRead marks one of the user's notifications read. Read never reverts.
func (s *InboxService) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	db := s.DB.WithContext(ctx)
	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("notification %s not found", id)
		}
		return nil, err
	}
	if !n.Read {
		if err := db.Model(&models.Notification{}).
			Where("id = ? AND is_read = ?", n.ID, false).
			Update("is_read", true).Error; err != nil {
			return nil, err
		}
		n.Read = true
	}
	return &n, nil
}

// MarkManyRead marks the listed notifications read, or all of them when ids
// is empty, and returns the number that changed.
func (s *InboxService) MarkManyRead(ctx context.Context, userID string, ids []string) (int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	res := query.Update("is_read", true)
	return res.RowsAffected, res.Error
}
