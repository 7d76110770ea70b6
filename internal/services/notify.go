package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/metrics"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"gorm.io/gorm"
)

// Event describes a split sheet mutation to fan out
type Event struct {
	Type         models.NotificationType
	SplitSheetID string
	SongTitle    string
	ActorID      string
	Contributors []models.Contributor
	// Extra recipients always considered, e.g. the sheet creator
	Extra []string
	// Exclude recipients already notified by another event
	Exclude []string
	// Title and Message override the template when set
	Title   string
	Message string
}

// Notifier resolves interested parties and persists notification rows.
// Failures are logged and never returned to the caller.
type Notifier struct {
	DB  *gorm.DB
	Log *slog.Logger
}

// NewNotifier creates a notifier over db
func NewNotifier(db *gorm.DB, log *slog.Logger) *Notifier {
	return &Notifier{DB: db, Log: log}
}

// Recipients returns the sorted, distinct user ids interested in a sheet:
// linked contributors, staff of linked publishers, PRO orgs and labels, plus
// extra. The actor is always excluded.
func (n *Notifier) Recipients(ctx context.Context, contributors []models.Contributor, actorID string, extra ...string) ([]string, error) {
	set := make(map[string]struct{})
	add := func(id string) {
		if id != "" && id != actorID {
			set[id] = struct{}{}
		}
	}

	publisherIDs := make(map[string]struct{})
	proOrgIDs := make(map[string]struct{})
	labelIDs := make(map[string]struct{})
	for _, c := range contributors {
		if c.UserID != nil {
			add(*c.UserID)
		}
		if c.PublisherID != nil && *c.PublisherID != "" {
			publisherIDs[*c.PublisherID] = struct{}{}
		}
		if c.ProOrgID != nil && *c.ProOrgID != "" {
			proOrgIDs[*c.ProOrgID] = struct{}{}
		}
		if c.LabelID != nil && *c.LabelID != "" {
			labelIDs[*c.LabelID] = struct{}{}
		}
	}
	for _, id := range extra {
		add(id)
	}

	staff := []struct {
		column string
		ids    map[string]struct{}
	}{
		{"publisher_id", publisherIDs},
		{"pro_org_id", proOrgIDs},
		{"label_id", labelIDs},
	}
	for _, s := range staff {
		if len(s.ids) == 0 {
			continue
		}
		var userIDs []string
		if err := n.DB.WithContext(ctx).Model(&models.Profile{}).
			Where(s.column+" IN ?", keys(s.ids)).
			Pluck("user_id", &userIDs).Error; err != nil {
			return nil, fmt.Errorf("resolve %s staff: %w", s.column, err)
		}
		for _, id := range userIDs {
			add(id)
		}
	}

	return keys(set), nil
}

// Dispatch fans an event out to every resolved recipient in one bulk insert
// and returns the number of rows written.
func (n *Notifier) Dispatch(ctx context.Context, ev Event) int {
	recipients, err := n.Recipients(ctx, ev.Contributors, ev.ActorID, ev.Extra...)
	if err != nil {
		n.fail(ev, err)
		return 0
	}
	if len(ev.Exclude) > 0 {
		recipients = without(recipients, ev.Exclude)
	}
	return n.Send(ctx, ev, recipients)
}

// Send writes one notification per recipient without resolving parties
func (n *Notifier) Send(ctx context.Context, ev Event, recipients []string) int {
	if len(recipients) == 0 {
		return 0
	}
	title, message := notificationTemplate(ev.Type, ev.SongTitle)
	if ev.Title != "" {
		title = ev.Title
	}
	if ev.Message != "" {
		message = ev.Message
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, models.Notification{
			UserID:       userID,
			Type:         ev.Type,
			Title:        title,
			Message:      message,
			SplitSheetID: strPtr(ev.SplitSheetID),
		})
	}
	if err := n.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		n.fail(ev, err)
		return 0
	}
	metrics.NotificationsCreated.WithLabelValues(string(ev.Type)).Add(float64(len(rows)))
	return len(rows)
}

func (n *Notifier) fail(ev Event, err error) {
	metrics.NotificationFailures.WithLabelValues(string(ev.Type)).Inc()
	n.Log.Error("notification fan-out failed",
		"type", ev.Type,
		"splitSheetId", ev.SplitSheetID,
		"error", err,
	)
}

func notificationTemplate(t models.NotificationType, song string) (string, string) {
	if song == "" {
		song = "Untitled"
	}
	switch t {
	case models.NotifySplitInvite:
		return "You've been added to a split sheet", fmt.Sprintf("You were added as a contributor on %q.", song)
	case models.NotifySplitUpdated:
		return "Split sheet updated", fmt.Sprintf("The split sheet for %q was updated.", song)
	case models.NotifySplitFinalized:
		return "Split sheet finalized", fmt.Sprintf("The split sheet for %q has been signed.", song)
	case models.NotifySplitDisputed:
		return "Split sheet disputed", fmt.Sprintf("The split sheet for %q is in dispute.", song)
	case models.NotifySplitReady:
		return "Split sheet ready to finalize", fmt.Sprintf("Writer percentages on %q now total 50%%. It can be finalized.", song)
	default:
		return "Notification", song
	}
}

func without(ids, exclude []string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := ids[:0]
	for _, id := range ids {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
