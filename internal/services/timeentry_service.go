package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/besttime/besttime-api/internal/geo"
	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/besttime/besttime-api/internal/statemachine"
	"gorm.io/gorm"
)

// TimeEntryService handles clock-in/clock-out and time entry management
type TimeEntryService struct {
	entries  repository.TimeEntryRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	orgs     repository.OrganizationRepository
	team     *TeamService
	audit    *AuditService
}

// NewTimeEntryService creates a new time entry service
func NewTimeEntryService(
	entries repository.TimeEntryRepository,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	orgs repository.OrganizationRepository,
	team *TeamService,
	audit *AuditService,
) *TimeEntryService {
	return &TimeEntryService{
		entries:  entries,
		users:    users,
		projects: projects,
		orgs:     orgs,
		team:     team,
		audit:    audit,
	}
}

// StartInput carries the clock-in payload.
type StartInput struct {
	ProjectID        *uint
	Description      string
	Latitude         *float64
	Longitude        *float64
	LocationAccuracy *float64
	QRCodeScanned    bool
}

// StopInput carries the clock-out payload.
type StopInput struct {
	Latitude         *float64
	Longitude        *float64
	LocationAccuracy *float64
}

// CreateInput carries a manually encoded entry.
type CreateInput struct {
	UserID      uint
	ProjectID   *uint
	StartTime   time.Time
	EndTime     *time.Time
	Description string
}

// UpdateInput carries a time entry edit. Nil fields are left untouched.
type UpdateInput struct {
	ProjectID   *uint
	StartTime   *time.Time
	EndTime     *time.Time
	Description *string
}

// Start clocks the user in. At most one open entry per user can exist;
// when one already does, ErrActiveEntryExists is returned and the handler
// surfaces the existing entry alongside the conflict.
func (s *TimeEntryService) Start(ctx context.Context, user *models.User, input StartInput, actor Actor) (*models.TimeEntryResponse, error) {
	active, err := s.findActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	machine := statemachine.NewClockFSM(active)
	if err := machine.ClockIn(ctx); err != nil {
		return nil, ErrActiveEntryExists
	}

	now := time.Now()
	entry := &models.TimeEntry{
		UserID:           user.ID,
		ProjectID:        input.ProjectID,
		StartTime:        now,
		Description:      input.Description,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		LocationAccuracy: input.LocationAccuracy,
		QRCodeScanned:    input.QRCodeScanned,
	}
	if input.Latitude != nil && input.Longitude != nil {
		capturedAt := now
		entry.LocationCapturedAt = &capturedAt
	}

	within, err := s.evaluateGeofence(ctx, user, input.ProjectID, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Pointage d'entrée de %s", user.DisplayName())
	if within != nil && !*within {
		description += " (hors zone du chantier)"
	}

	auditFn := func(tx *gorm.DB) error {
		return s.audit.Entry(actor, models.ActionClockIn, "TimeEntry", entry.ID,
			nil, entry.Snapshot(), description)(tx)
	}

	if err := s.entries.CreateOpen(ctx, entry, auditFn); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveEntry) {
			return nil, ErrActiveEntryExists
		}
		return nil, err
	}

	resp := entry.ToResponse()
	resp.WithinGeofence = within
	return &resp, nil
}

// Stop closes the user's open entry. A second stop in a row finds nothing
// open and returns ErrNoActiveEntry.
func (s *TimeEntryService) Stop(ctx context.Context, user *models.User, input StopInput, actor Actor) (*models.TimeEntryResponse, error) {
	active, err := s.findActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	machine := statemachine.NewClockFSM(active)
	if err := machine.ClockOut(ctx); err != nil {
		return nil, ErrNoActiveEntry
	}

	oldSnap := active.Snapshot()

	now := time.Now()
	active.EndTime = &now
	if input.Latitude != nil && input.Longitude != nil {
		active.Latitude = input.Latitude
		active.Longitude = input.Longitude
		active.LocationAccuracy = input.LocationAccuracy
		active.LocationCapturedAt = &now
	}
	active.Duration = active.CalculateDuration()

	within, err := s.evaluateGeofence(ctx, user, active.ProjectID, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Pointage de sortie de %s (%s)", user.DisplayName(), active.FormattedDuration())
	if within != nil && !*within {
		description += " (hors zone du chantier)"
	}

	auditFn := s.audit.Entry(actor, models.ActionClockOut, "TimeEntry", active.ID,
		oldSnap, active.Snapshot(), description)

	if err := s.entries.Update(ctx, active, auditFn); err != nil {
		return nil, err
	}

	resp := active.ToResponse()
	resp.WithinGeofence = within
	return &resp, nil
}

// Active returns the user's open entry, or ErrNoActiveEntry.
func (s *TimeEntryService) Active(ctx context.Context, userID uint) (*models.TimeEntryResponse, error) {
	active, err := s.findActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveEntry
	}
	resp := active.ToResponse()
	return &resp, nil
}

// Create records a manually encoded entry, possibly on behalf of another
// user. Closed entries skip the open-entry guard; open ones go through the
// same guarded insert as Start.
func (s *TimeEntryService) Create(ctx context.Context, actorUser *models.User, input CreateInput, actor Actor) (*models.TimeEntryResponse, error) {
	if input.EndTime != nil && !input.EndTime.After(input.StartTime) {
		return nil, ErrEndBeforeStart
	}

	if input.UserID != actorUser.ID {
		allowed, err := s.team.CanActOn(ctx, actorUser, input.UserID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrUnauthorized
		}
	}

	subject, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := &models.TimeEntry{
		UserID:      input.UserID,
		ProjectID:   input.ProjectID,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Description: input.Description,
	}
	if input.UserID != actorUser.ID {
		entry.EncodedByUserID = &actorUser.ID
	}
	entry.Duration = entry.CalculateDuration()

	description := fmt.Sprintf("Pointage encodé pour %s", subject.DisplayName())

	auditFn := func(tx *gorm.DB) error {
		return s.audit.Entry(actor, models.ActionCreated, "TimeEntry", entry.ID,
			nil, entry.Snapshot(), description)(tx)
	}

	if entry.EndTime == nil {
		err = s.entries.CreateOpen(ctx, entry, auditFn)
	} else {
		err = s.entries.Create(ctx, entry, auditFn)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveEntry) {
			return nil, ErrActiveEntryExists
		}
		return nil, err
	}

	resp := entry.ToResponse()
	return &resp, nil
}

// Get returns one entry if the actor may see it.
func (s *TimeEntryService) Get(ctx context.Context, actorUser *models.User, id uint) (*models.TimeEntryResponse, error) {
	entry, err := s.findVisible(ctx, actorUser, id)
	if err != nil {
		return nil, err
	}
	resp := entry.ToResponse()
	return &resp, nil
}

// Update edits an entry. Duration is recomputed on save.
func (s *TimeEntryService) Update(ctx context.Context, actorUser *models.User, id uint, input UpdateInput, actor Actor) (*models.TimeEntryResponse, error) {
	entry, err := s.findVisible(ctx, actorUser, id)
	if err != nil {
		return nil, err
	}

	oldSnap := entry.Snapshot()

	if input.ProjectID != nil {
		entry.ProjectID = input.ProjectID
	}
	if input.StartTime != nil {
		entry.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		entry.EndTime = input.EndTime
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}

	if entry.EndTime != nil && !entry.EndTime.After(entry.StartTime) {
		return nil, ErrEndBeforeStart
	}
	entry.Duration = entry.CalculateDuration()

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "TimeEntry", entry.ID,
		oldSnap, entry.Snapshot(), fmt.Sprintf("Pointage %d modifié", entry.ID))

	if err := s.entries.Update(ctx, entry, auditFn); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveEntry) {
			return nil, ErrActiveEntryExists
		}
		return nil, err
	}

	resp := entry.ToResponse()
	return &resp, nil
}

// Delete removes an entry.
func (s *TimeEntryService) Delete(ctx context.Context, actorUser *models.User, id uint, actor Actor) error {
	entry, err := s.findVisible(ctx, actorUser, id)
	if err != nil {
		return err
	}

	auditFn := s.audit.Entry(actor, models.ActionDeleted, "TimeEntry", entry.ID,
		entry.Snapshot(), nil, fmt.Sprintf("Pointage %d supprimé", entry.ID))

	return s.entries.Delete(ctx, entry, auditFn)
}

// List returns the entries visible to the actor: everyone for admins, the
// resolved team plus self for managers, own entries for everyone else.
func (s *TimeEntryService) List(ctx context.Context, actorUser *models.User, query *repository.ListQuery) ([]models.TimeEntryResponse, int64, error) {
	var (
		entries []models.TimeEntry
		total   int64
		err     error
	)

	if actorUser.IsAdmin() {
		entries, total, err = s.entries.List(ctx, query)
	} else {
		var ids []uint
		ids, err = s.team.ResolveWithSelf(ctx, actorUser)
		if err != nil {
			return nil, 0, err
		}
		entries, total, err = s.entries.ListForUsers(ctx, ids, query)
	}
	if err != nil {
		return nil, 0, err
	}

	out := make([]models.TimeEntryResponse, len(entries))
	for i := range entries {
		out[i] = entries[i].ToResponse()
	}
	return out, total, nil
}

// findActive returns the user's open entry or nil, distinguishing "none"
// from real lookup errors.
func (s *TimeEntryService) findActive(ctx context.Context, userID uint) (*models.TimeEntry, error) {
	active, err := s.entries.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return active, nil
}

func (s *TimeEntryService) findVisible(ctx context.Context, actorUser *models.User, id uint) (*models.TimeEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed, err := s.team.CanActOn(ctx, actorUser, entry.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}
	return entry, nil
}

// evaluateGeofence checks the captured position against the project's
// effective radius. The result is advisory: nil when the check cannot run
// (no project, no coordinates on either side, geofencing disabled).
func (s *TimeEntryService) evaluateGeofence(ctx context.Context, user *models.User, projectID *uint, lat, lon *float64) (*bool, error) {
	if projectID == nil || lat == nil || lon == nil {
		return nil, nil
	}

	project, err := s.projects.FindByID(ctx, *projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !project.HasLocation() {
		return nil, nil
	}

	orgEnabled := false
	var orgRadius *int
	if user.OrganizationID != nil {
		org, err := s.orgs.FindByID(ctx, *user.OrganizationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if org != nil {
			orgEnabled = org.GeofencingEnabled
			orgRadius = org.GeofencingRadius
		}
	}

	radius, enabled := geo.EffectiveRadius(project.GeofenceRadius, orgEnabled, orgRadius)
	if !enabled {
		return nil, nil
	}

	within := geo.WithinRadius(
		geo.Point{Latitude: *lat, Longitude: *lon},
		geo.Point{Latitude: *project.Latitude, Longitude: *project.Longitude},
		float64(radius),
	)
	return &within, nil
}
