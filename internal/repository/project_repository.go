package repository

import (
	"context"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// AuditFunc runs inside a mutation's transaction so the audit trail commits
// or rolls back with the change it describes.
type AuditFunc func(tx *gorm.DB) error

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	FindByQRToken(ctx context.Context, token string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project, audit AuditFunc) error
	Update(ctx context.Context, project *models.Project, audit AuditFunc) error
	Delete(ctx context.Context, project *models.Project, audit AuditFunc) error
	List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByQRToken(ctx context.Context, token string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("qr_code_token = ?", token).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *projectRepository) Delete(ctx context.Context, project *models.Project, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(project).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *projectRepository) List(ctx context.Context, query *ListQuery) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Project{}).Preload("Client")

	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if query.Filters["client_id"] != "" {
		db = db.Where("client_id = ?", query.Filters["client_id"])
	}

	db.Count(&total)

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("name ASC").Find(&projects).Error
	return projects, total, err
}

func (r *projectRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
