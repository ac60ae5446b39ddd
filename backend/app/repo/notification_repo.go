package repo

import (
	"context"

	"bugtracker/backend/app/models"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByBug returns the recorded notifications of a bug, oldest first.
func (r *NotificationRepository) ListByBug(ctx context.Context, bugID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.WithContext(ctx).Where("bug_id = ?", bugID).Order("id ASC").Find(&out).Error
	return out, err
}
