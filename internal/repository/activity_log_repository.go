package repository

import (
	"context"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// ActivityLogStats summarizes the audit trail for the admin dashboard.
type ActivityLogStats struct {
	Total       int64            `json:"total"`
	Today       int64            `json:"today"`
	ByAction    map[string]int64 `json:"by_action"`
	ByModelType map[string]int64 `json:"by_model_type"`
}

// ActivityLogRepository defines the interface for audit trail data access
type ActivityLogRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	CreateInTx(tx *gorm.DB, log *models.ActivityLog) error
	FindByID(ctx context.Context, id uint) (*models.ActivityLog, error)
	List(ctx context.Context, query *ListQuery) ([]models.ActivityLog, int64, error)
	Stats(ctx context.Context) (*ActivityLogStats, error)
	Truncate(ctx context.Context) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateInTx writes the log row on the caller's transaction so it commits
// atomically with the mutation it records.
func (r *activityLogRepository) CreateInTx(tx *gorm.DB, log *models.ActivityLog) error {
	return tx.Create(log).Error
}

func (r *activityLogRepository) FindByID(ctx context.Context, id uint) (*models.ActivityLog, error) {
	var log models.ActivityLog
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *activityLogRepository) List(ctx context.Context, query *ListQuery) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Preload("User")

	if query.Filters["action"] != "" {
		db = db.Where("action = ?", query.Filters["action"])
	}

	if query.Filters["model_type"] != "" {
		db = db.Where("model_type = ?", query.Filters["model_type"])
	}

	if query.Filters["user_id"] != "" {
		db = db.Where("user_id = ?", query.Filters["user_id"])
	}

	if query.Filters["from"] != "" {
		db = db.Where("created_at >= ?", query.Filters["from"])
	}

	if query.Filters["to"] != "" {
		db = db.Where("created_at <= ?", query.Filters["to"])
	}

	if query.Search != "" {
		db = db.Where("description ILIKE ?", "%"+query.Search+"%")
	}

	db.Count(&total)

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("created_at DESC").Find(&logs).Error
	return logs, total, err
}

func (r *activityLogRepository) Stats(ctx context.Context) (*ActivityLogStats, error) {
	stats := &ActivityLogStats{
		ByAction:    make(map[string]int64),
		ByModelType: make(map[string]int64),
	}

	db := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	if err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("created_at >= ?", today).
		Count(&stats.Today).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byAction []bucket
	if err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Select("action AS key, COUNT(*) AS count").
		Group("action").
		Scan(&byAction).Error; err != nil {
		return nil, err
	}
	for _, b := range byAction {
		stats.ByAction[b.Key] = b.Count
	}

	var byModel []bucket
	if err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Select("model_type AS key, COUNT(*) AS count").
		Where("model_type IS NOT NULL").
		Group("model_type").
		Scan(&byModel).Error; err != nil {
		return nil, err
	}
	for _, b := range byModel {
		stats.ByModelType[b.Key] = b.Count
	}

	return stats, nil
}

// Truncate removes every log row and reports how many were deleted.
func (r *activityLogRepository) Truncate(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.ActivityLog{})
	return res.RowsAffected, res.Error
}
