package repository

import (
	"context"
	"errors"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateActiveEntry is returned when a clock-in races another clock-in
// for the same user and loses to the partial unique index on open entries.
var ErrDuplicateActiveEntry = errors.New("user already has an active time entry")

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	FindByID(ctx context.Context, id uint) (*models.TimeEntry, error)
	FindActiveByUser(ctx context.Context, userID uint) (*models.TimeEntry, error)
	CreateOpen(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error
	Create(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error
	Update(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error
	Delete(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error
	List(ctx context.Context, query *ListQuery) ([]models.TimeEntry, int64, error)
	ListForUsers(ctx context.Context, userIDs []uint, query *ListQuery) ([]models.TimeEntry, int64, error)
}

type timeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) FindByID(ctx context.Context, id uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		Preload("Project.Client").
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) FindActiveByUser(ctx context.Context, userID uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ? AND end_time IS NULL", userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateOpen inserts an open entry for entry.UserID. The user row is locked
// for the duration of the transaction and the partial unique index on open
// entries backstops any writer that slipped past the lock, so at most one
// open entry per user can ever exist.
func (r *timeEntryRepository) CreateOpen(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, entry.UserID).Error; err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("user_id = ? AND end_time IS NULL", entry.UserID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrDuplicateActiveEntry
		}

		if err := tx.Create(entry).Error; err != nil {
			if isUniqueViolation(err, "index_time_entries_one_active_per_user") {
				return ErrDuplicateActiveEntry
			}
			return err
		}

		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			if isUniqueViolation(err, "index_time_entries_one_active_per_user") {
				return ErrDuplicateActiveEntry
			}
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *timeEntryRepository) Update(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			if isUniqueViolation(err, "index_time_entries_one_active_per_user") {
				return ErrDuplicateActiveEntry
			}
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *timeEntryRepository) Delete(ctx context.Context, entry *models.TimeEntry, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(entry).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *timeEntryRepository) List(ctx context.Context, query *ListQuery) ([]models.TimeEntry, int64, error) {
	return r.list(ctx, nil, query)
}

// ListForUsers restricts the listing to the given user ids. An empty slice
// yields no rows, which is what a leader with no team should see.
func (r *timeEntryRepository) ListForUsers(ctx context.Context, userIDs []uint, query *ListQuery) ([]models.TimeEntry, int64, error) {
	if len(userIDs) == 0 {
		return []models.TimeEntry{}, 0, nil
	}
	return r.list(ctx, userIDs, query)
}

func (r *timeEntryRepository) list(ctx context.Context, userIDs []uint, query *ListQuery) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Preload("User").
		Preload("Project").
		Preload("Project.Client")

	if userIDs != nil {
		db = db.Where("user_id IN ?", userIDs)
	}

	if query.Filters["user_id"] != "" {
		db = db.Where("user_id = ?", query.Filters["user_id"])
	}

	if query.Filters["project_id"] != "" {
		db = db.Where("project_id = ?", query.Filters["project_id"])
	}

	if query.Filters["from"] != "" {
		db = db.Where("start_time >= ?", query.Filters["from"])
	}

	if query.Filters["to"] != "" {
		db = db.Where("start_time <= ?", query.Filters["to"])
	}

	if query.Filters["open"] == "true" {
		db = db.Where("end_time IS NULL")
	}

	db.Count(&total)

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("start_time DESC").Find(&entries).Error
	return entries, total, err
}
