package repository

import (
	"context"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Client, error)
	Create(ctx context.Context, client *models.Client, audit AuditFunc) error
	Update(ctx context.Context, client *models.Client, audit AuditFunc) error
	Delete(ctx context.Context, client *models.Client, audit AuditFunc) error
	List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error)
	CountProjects(ctx context.Context, clientID uint) (int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Preload("Projects").
		First(&client, id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(client).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *clientRepository) Delete(ctx context.Context, client *models.Client, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(client).Error; err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *clientRepository) List(ctx context.Context, query *ListQuery) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Client{})

	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	db.Count(&total)

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Order("name ASC").Find(&clients).Error
	return clients, total, err
}

func (r *clientRepository) CountProjects(ctx context.Context, clientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}
