package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"gorm.io/gorm"
)

// ClientService handles client management
type ClientService struct {
	clients repository.ClientRepository
	audit   *AuditService
}

// NewClientService creates a new client service
func NewClientService(clients repository.ClientRepository, audit *AuditService) *ClientService {
	return &ClientService{clients: clients, audit: audit}
}

// ClientInput carries the fields accepted when creating or updating a client.
type ClientInput struct {
	Name          string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
}

// List returns clients matching the query.
func (s *ClientService) List(ctx context.Context, query *repository.ListQuery) ([]models.Client, int64, error) {
	return s.clients.List(ctx, query)
}

// Get returns a single client with its projects.
func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return client, nil
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, input ClientInput, actor Actor) (*models.Client, error) {
	client := &models.Client{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
	}

	auditFn := func(tx *gorm.DB) error {
		return s.audit.Entry(actor, models.ActionCreated, "Client", client.ID,
			nil, nil, fmt.Sprintf("Client %s créé", client.Name))(tx)
	}

	if err := s.clients.Create(ctx, client, auditFn); err != nil {
		return nil, err
	}
	return client, nil
}

// Update modifies a client.
func (s *ClientService) Update(ctx context.Context, id uint, input ClientInput, actor Actor) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Name != "" {
		client.Name = input.Name
	}
	if input.ContactPerson != nil {
		client.ContactPerson = input.ContactPerson
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.Address != nil {
		client.Address = input.Address
	}

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "Client", client.ID,
		nil, nil, fmt.Sprintf("Client %s modifié", client.Name))

	if err := s.clients.Update(ctx, client, auditFn); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client. A client that still owns projects cannot be
// deleted.
func (s *ClientService) Delete(ctx context.Context, id uint, actor Actor) error {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	count, err := s.clients.CountProjects(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrClientHasProjects
	}

	auditFn := s.audit.Entry(actor, models.ActionDeleted, "Client", client.ID,
		nil, nil, fmt.Sprintf("Client %s supprimé", client.Name))

	return s.clients.Delete(ctx, client, auditFn)
}
