package repo

import (
	"context"

	"bugtracker/backend/app/models"

	"gorm.io/gorm"
)

type BugFilter struct {
	Severity string
	Status   string
}

type BugRepository struct{ db *gorm.DB }

func NewBugRepository(db *gorm.DB) *BugRepository { return &BugRepository{db: db} }

// Create inserts the bug together with its assignment rows.
func (r *BugRepository) Create(ctx context.Context, b *models.Bug) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BugRepository) FindByID(ctx context.Context, id uint) (*models.Bug, error) {
	var b models.Bug
	if err := r.db.WithContext(ctx).Preload("Assignees", byUserID).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByProject returns at most limit bugs of a project, narrowed by exact
// severity and status matches when set.
func (r *BugRepository) ListByProject(ctx context.Context, projectID uint, f BugFilter, limit int) ([]models.Bug, error) {
	q := r.db.WithContext(ctx).Preload("Assignees", byUserID).Where("project_id = ?", projectID)
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var bugs []models.Bug
	err := q.Order("id ASC").Limit(limit).Find(&bugs).Error
	return bugs, err
}

func byUserID(db *gorm.DB) *gorm.DB { return db.Order("user_id ASC") }

// Updates writes only the given columns.
func (r *BugRepository) Updates(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Bug{}).Where("id = ?", id).Updates(fields).Error
}

func (r *BugRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bug_id = ?", id).Delete(&models.BugAssignee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bug{}, id).Error
	})
}
