package services

import (
	"context"
	"testing"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockClientRepo struct {
	repository.ClientRepository
	clients      map[uint]*models.Client
	projectCount int64
	deleted      bool
}

func (m *mockClientRepo) FindByID(ctx context.Context, id uint) (*models.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClientRepo) Create(ctx context.Context, client *models.Client, audit repository.AuditFunc) error {
	client.ID = 1
	m.clients[client.ID] = client
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *models.Client, audit repository.AuditFunc) error {
	m.clients[client.ID] = client
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, client *models.Client, audit repository.AuditFunc) error {
	m.deleted = true
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func (m *mockClientRepo) CountProjects(ctx context.Context, clientID uint) (int64, error) {
	return m.projectCount, nil
}

func str(s string) *string { return &s }

func newTestClientService(clients *mockClientRepo) *ClientService {
	return NewClientService(clients, NewAuditService(&mockAuditLogRepo{}, false))
}

func TestClientCreate(t *testing.T) {
	clients := &mockClientRepo{clients: map[uint]*models.Client{}}
	svc := newTestClientService(clients)

	client, err := svc.Create(context.Background(), ClientInput{
		Name:          "Immo Centre",
		ContactPerson: str("Anne Peeters"),
		Email:         str("anne@immocentre.be"),
	}, Actor{})

	assert.NoError(t, err)
	assert.Equal(t, "Immo Centre", client.Name)
	assert.Equal(t, "Anne Peeters", *client.ContactPerson)
}

func TestClientUpdatePatchesOnlyProvidedFields(t *testing.T) {
	clients := &mockClientRepo{clients: map[uint]*models.Client{
		1: {ID: 1, Name: "Immo Centre", ContactPerson: str("Anne Peeters"), Phone: str("02 123 45 67")},
	}}
	svc := newTestClientService(clients)

	client, err := svc.Update(context.Background(), 1, ClientInput{
		Phone: str("02 765 43 21"),
	}, Actor{})

	assert.NoError(t, err)
	assert.Equal(t, "Immo Centre", client.Name)
	assert.Equal(t, "Anne Peeters", *client.ContactPerson)
	assert.Equal(t, "02 765 43 21", *client.Phone)
}

func TestClientDeleteBlockedWhileProjectsRemain(t *testing.T) {
	clients := &mockClientRepo{
		clients:      map[uint]*models.Client{1: {ID: 1, Name: "Immo Centre"}},
		projectCount: 2,
	}
	svc := newTestClientService(clients)

	err := svc.Delete(context.Background(), 1, Actor{})

	assert.ErrorIs(t, err, ErrClientHasProjects)
	assert.False(t, clients.deleted)
}
