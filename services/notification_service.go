package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// Notifier raises notifications for an actor
type Notifier interface {
	Notify(ctx context.Context, actor session.Actor, kind, message string) (*models.Notification, error)
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores a new unread notification for the actor
func (s *NotificationService) Notify(ctx context.Context, actor session.Actor, kind, message string) (*models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(kind) == "" {
		return nil, invalid("type", "notification type is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, invalid("message", "notification message is required")
	}

	notification := models.Notification{
		UserID:  actor.ID,
		Type:    kind,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, persistence("create notification", err)
	}
	return &notification, nil
}

// ListNotifications returns the actor's notifications newest first. A
// non-positive limit returns all of them.
func (s *NotificationService) ListNotifications(ctx context.Context, actor session.Actor, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Scopes(ownedBy(actor))
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, persistence("list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor session.Actor) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).Scopes(ownedBy(actor)).
		Where("is_read = ?", false).Count(&count).Error
	if err != nil {
		return 0, persistence("count unread notifications", err)
	}
	return count, nil
}

// MarkRead flags a notification as read. Marking an already read notification succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Notification, error) {
	return updateOwned[models.Notification](ctx, s.db, actor, id,
		map[string]interface{}{"is_read": true}, "mark notification read")
}
