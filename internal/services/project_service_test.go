package services

import (
	"context"
	"testing"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project, audit repository.AuditFunc) error {
	m.projects[project.ID] = project
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func token(s string) *string { return &s }

func newTestProjectService(projects *mockProjectRepo) *ProjectService {
	return NewProjectService(projects, NewAuditService(&mockAuditLogRepo{}, false))
}

func TestValidateQRCode(t *testing.T) {
	projects := &mockProjectRepo{projects: map[uint]*models.Project{
		1: {ID: 1, Name: "Chantier centre", Status: models.ProjectStatusActive, QRCodeToken: token("aaaa1111")},
		2: {ID: 2, Name: "Chantier fermé", Status: models.ProjectStatusArchived, QRCodeToken: token("bbbb2222")},
	}}
	svc := newTestProjectService(projects)
	ctx := context.Background()

	resp, err := svc.ValidateQRCode(ctx, qrPayloadType, "aaaa1111")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)

	// A scanner that omits the type field still validates
	resp, err = svc.ValidateQRCode(ctx, "", "aaaa1111")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)

	_, err = svc.ValidateQRCode(ctx, "some_other_app", "aaaa1111")
	assert.ErrorIs(t, err, ErrInvalidQRCode, "foreign payload types are rejected")

	_, err = svc.ValidateQRCode(ctx, qrPayloadType, "unknown")
	assert.ErrorIs(t, err, ErrInvalidQRCode)

	_, err = svc.ValidateQRCode(ctx, qrPayloadType, "")
	assert.ErrorIs(t, err, ErrInvalidQRCode)

	_, err = svc.ValidateQRCode(ctx, qrPayloadType, "bbbb2222")
	assert.ErrorIs(t, err, ErrInvalidQRCode, "archived projects cannot be clocked into")
}

func TestQRCodeMintsTokenWhenMissing(t *testing.T) {
	projects := &mockProjectRepo{projects: map[uint]*models.Project{
		3: {ID: 3, Name: "Chantier neuf", Status: models.ProjectStatusActive},
	}}
	svc := newTestProjectService(projects)

	payload, err := svc.QRCode(context.Background(), 3, Actor{})

	assert.NoError(t, err)
	assert.Equal(t, qrPayloadType, payload.Type)
	assert.Len(t, payload.Token, 32)
	assert.NotNil(t, projects.projects[3].QRCodeToken, "minted token must be persisted")
}

func TestRegenerateQRCodeRotatesToken(t *testing.T) {
	projects := &mockProjectRepo{projects: map[uint]*models.Project{
		1: {ID: 1, Name: "Chantier centre", Status: models.ProjectStatusActive, QRCodeToken: token("aaaa1111")},
	}}
	svc := newTestProjectService(projects)
	ctx := context.Background()

	payload, err := svc.RegenerateQRCode(ctx, 1, Actor{})
	assert.NoError(t, err)
	assert.NotEqual(t, "aaaa1111", payload.Token)
	assert.Len(t, payload.Token, 32)

	// The printed code is now dead
	_, err = svc.ValidateQRCode(ctx, qrPayloadType, "aaaa1111")
	assert.ErrorIs(t, err, ErrInvalidQRCode)

	resp, err := svc.ValidateQRCode(ctx, qrPayloadType, payload.Token)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
}

func TestQRCodeUnknownProject(t *testing.T) {
	svc := newTestProjectService(&mockProjectRepo{projects: map[uint]*models.Project{}})
	_, err := svc.QRCode(context.Background(), 42, Actor{})
	assert.ErrorIs(t, err, ErrNotFound)
}
