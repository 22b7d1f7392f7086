package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// qrPayloadType tags QR payloads so a scanner can reject foreign codes.
const qrPayloadType = "best_time_project"

// QRPayload is the content encoded into a project's QR code.
type QRPayload struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	ProjectID uint   `json:"project_id"`
	Name      string `json:"name"`
}

// ProjectService handles project management and QR codes
type ProjectService struct {
	projects repository.ProjectRepository
	audit    *AuditService
}

// NewProjectService creates a new project service
func NewProjectService(projects repository.ProjectRepository, audit *AuditService) *ProjectService {
	return &ProjectService{projects: projects, audit: audit}
}

// CreateProjectInput carries the fields accepted when creating a project.
type CreateProjectInput struct {
	Name           string
	ClientID       *uint
	Description    *string
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius *int
}

// UpdateProjectInput carries a project edit. Nil fields are left untouched.
type UpdateProjectInput struct {
	Name           *string
	ClientID       *uint
	Description    *string
	Status         *string
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius *int
}

// List returns projects matching the query.
func (s *ProjectService) List(ctx context.Context, query *repository.ListQuery) ([]models.ProjectResponse, int64, error) {
	projects, total, err := s.projects.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = projects[i].ToResponse()
	}
	return out, total, nil
}

// Get returns a single project.
func (s *ProjectService) Get(ctx context.Context, id uint) (*models.ProjectResponse, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := project.ToResponse()
	return &resp, nil
}

// Create registers a new project with a fresh QR token.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput, actor Actor) (*models.ProjectResponse, error) {
	token := newQRToken()
	project := &models.Project{
		Name:           input.Name,
		ClientID:       input.ClientID,
		Description:    input.Description,
		Status:         models.ProjectStatusActive,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		GeofenceRadius: input.GeofenceRadius,
		QRCodeToken:    &token,
	}

	auditFn := func(tx *gorm.DB) error {
		return s.audit.Entry(actor, models.ActionCreated, "Project", project.ID,
			nil, projectSnapshot(project), fmt.Sprintf("Chantier %s créé", project.Name))(tx)
	}

	if err := s.projects.Create(ctx, project, auditFn); err != nil {
		return nil, err
	}

	resp := project.ToResponse()
	return &resp, nil
}

// Update modifies a project. Only non-nil input fields are applied.
func (s *ProjectService) Update(ctx context.Context, id uint, input UpdateProjectInput, actor Actor) (*models.ProjectResponse, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldSnap := projectSnapshot(project)

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.ClientID != nil {
		project.ClientID = input.ClientID
	}
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.Status != nil {
		if *input.Status != models.ProjectStatusActive && *input.Status != models.ProjectStatusArchived {
			return nil, fmt.Errorf("statut invalide: %s", *input.Status)
		}
		project.Status = *input.Status
	}
	if input.Latitude != nil {
		project.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		project.Longitude = input.Longitude
	}
	if input.GeofenceRadius != nil {
		project.GeofenceRadius = input.GeofenceRadius
	}

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "Project", project.ID,
		oldSnap, projectSnapshot(project), fmt.Sprintf("Chantier %s modifié", project.Name))

	if err := s.projects.Update(ctx, project, auditFn); err != nil {
		return nil, err
	}

	resp := project.ToResponse()
	return &resp, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id uint, actor Actor) error {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	auditFn := s.audit.Entry(actor, models.ActionDeleted, "Project", project.ID,
		projectSnapshot(project), nil, fmt.Sprintf("Chantier %s supprimé", project.Name))

	return s.projects.Delete(ctx, project, auditFn)
}

// QRCode returns the project's QR payload, minting a token if the project
// never had one.
func (s *ProjectService) QRCode(ctx context.Context, id uint, actor Actor) (*QRPayload, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.QRCodeToken == nil {
		return s.rotateToken(ctx, project, actor)
	}

	return &QRPayload{
		Type:      qrPayloadType,
		Token:     *project.QRCodeToken,
		ProjectID: project.ID,
		Name:      project.Name,
	}, nil
}

// RegenerateQRCode replaces the project's token, invalidating printed codes.
func (s *ProjectService) RegenerateQRCode(ctx context.Context, id uint, actor Actor) (*QRPayload, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.rotateToken(ctx, project, actor)
}

func (s *ProjectService) rotateToken(ctx context.Context, project *models.Project, actor Actor) (*QRPayload, error) {
	token := newQRToken()
	project.QRCodeToken = &token

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "Project", project.ID,
		nil, nil, fmt.Sprintf("QR code du chantier %s régénéré", project.Name))

	if err := s.projects.Update(ctx, project, auditFn); err != nil {
		return nil, err
	}

	return &QRPayload{
		Type:      qrPayloadType,
		Token:     token,
		ProjectID: project.ID,
		Name:      project.Name,
	}, nil
}

// ValidateQRCode resolves a scanned token to its project. Archived projects
// and unknown tokens are both rejected as invalid.
func (s *ProjectService) ValidateQRCode(ctx context.Context, payloadType, token string) (*models.ProjectResponse, error) {
	if payloadType != "" && payloadType != qrPayloadType {
		return nil, ErrInvalidQRCode
	}
	if token == "" {
		return nil, ErrInvalidQRCode
	}

	project, err := s.projects.FindByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidQRCode
		}
		return nil, err
	}
	if !project.IsActive() {
		return nil, ErrInvalidQRCode
	}

	resp := project.ToResponse()
	return &resp, nil
}

func newQRToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func projectSnapshot(p *models.Project) map[string]interface{} {
	return map[string]interface{}{
		"name":            p.Name,
		"client_id":       p.ClientID,
		"status":          p.Status,
		"latitude":        p.Latitude,
		"longitude":       p.Longitude,
		"geofence_radius": p.GeofenceRadius,
	}
}
