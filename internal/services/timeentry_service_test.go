package services

import (
	"context"
	"testing"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockTimeEntryRepo struct {
	repository.TimeEntryRepository
	active        *models.TimeEntry
	createOpenErr error
	created       *models.TimeEntry
	updated       *models.TimeEntry
}

func (m *mockTimeEntryRepo) FindActiveByUser(ctx context.Context, userID uint) (*models.TimeEntry, error) {
	if m.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.active, nil
}

func (m *mockTimeEntryRepo) CreateOpen(ctx context.Context, entry *models.TimeEntry, audit repository.AuditFunc) error {
	if m.createOpenErr != nil {
		return m.createOpenErr
	}
	entry.ID = 1
	m.created = entry
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func (m *mockTimeEntryRepo) Create(ctx context.Context, entry *models.TimeEntry, audit repository.AuditFunc) error {
	entry.ID = 2
	m.created = entry
	if audit != nil {
		return audit(nil)
	}
	return nil
}

func (m *mockTimeEntryRepo) Update(ctx context.Context, entry *models.TimeEntry, audit repository.AuditFunc) error {
	m.updated = entry
	if audit != nil {
		return audit(nil)
	}
	return nil
}

type mockProjectRepo struct {
	repository.ProjectRepository
	projects map[uint]*models.Project
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) FindByQRToken(ctx context.Context, token string) (*models.Project, error) {
	for _, p := range m.projects {
		if p.QRCodeToken != nil && *p.QRCodeToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockOrgRepo struct {
	repository.OrganizationRepository
	orgs map[uint]*models.Organization
}

func (m *mockOrgRepo) FindByID(ctx context.Context, id uint) (*models.Organization, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockUserRepo struct {
	repository.UserRepository
	users map[uint]*models.User
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestTimeEntryService(entries *mockTimeEntryRepo, users *mockUserRepo, projects *mockProjectRepo, orgs *mockOrgRepo, teams *mockTeamRepo) *TimeEntryService {
	audit := NewAuditService(&mockAuditLogRepo{}, false)
	team := NewTeamService(users, teams, audit)
	return NewTimeEntryService(entries, users, projects, orgs, team, audit)
}

func testWorker() *models.User {
	return &models.User{ID: 5, Role: models.RoleOuvrier, Name: "Jean Dupont", IsActive: true}
}

func TestStartCreatesOpenEntry(t *testing.T) {
	entries := &mockTimeEntryRepo{}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	resp, err := svc.Start(context.Background(), testWorker(), StartInput{Description: "coulage dalle"}, Actor{})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, uint(5), resp.UserID)
	assert.NotNil(t, entries.created)
	assert.WithinDuration(t, time.Now(), entries.created.StartTime, 2*time.Second)
}

func TestStartConflictsWithActiveEntry(t *testing.T) {
	entries := &mockTimeEntryRepo{
		active: &models.TimeEntry{ID: 9, UserID: 5, StartTime: time.Now().Add(-time.Hour)},
	}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	resp, err := svc.Start(context.Background(), testWorker(), StartInput{}, Actor{})

	assert.ErrorIs(t, err, ErrActiveEntryExists)
	assert.Nil(t, resp)
	assert.Nil(t, entries.created, "no second entry may be inserted")
}

func TestStartMapsRacingDuplicateToConflict(t *testing.T) {
	// The database-level guard can fire even when the pre-check saw no
	// active entry. The caller must still see the same conflict.
	entries := &mockTimeEntryRepo{createOpenErr: repository.ErrDuplicateActiveEntry}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	_, err := svc.Start(context.Background(), testWorker(), StartInput{}, Actor{})

	assert.ErrorIs(t, err, ErrActiveEntryExists)
}

func TestStartAnnotatesGeofenceWithoutRejecting(t *testing.T) {
	lat, lon := 50.8467, 4.3499
	radius := 100
	orgID := uint(1)
	projects := &mockProjectRepo{projects: map[uint]*models.Project{
		7: {ID: 7, Name: "Chantier centre", Latitude: &lat, Longitude: &lon, GeofenceRadius: &radius, Status: models.ProjectStatusActive},
	}}
	entries := &mockTimeEntryRepo{}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, projects, &mockOrgRepo{}, &mockTeamRepo{})

	user := testWorker()
	user.OrganizationID = &orgID

	// Atomium, several km from the project
	farLat, farLon := 50.8949, 4.3415
	projectID := uint(7)

	resp, err := svc.Start(context.Background(), user, StartInput{
		ProjectID: &projectID,
		Latitude:  &farLat,
		Longitude: &farLon,
	}, Actor{})

	assert.NoError(t, err, "geofence result is advisory, the clock-in must succeed")
	assert.NotNil(t, resp.WithinGeofence)
	assert.False(t, *resp.WithinGeofence)
	assert.NotNil(t, entries.created)
}

func TestStopClosesEntryAndComputesDuration(t *testing.T) {
	start := time.Now().Add(-2*time.Hour - 30*time.Minute)
	entries := &mockTimeEntryRepo{
		active: &models.TimeEntry{ID: 9, UserID: 5, StartTime: start},
	}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	resp, err := svc.Stop(context.Background(), testWorker(), StopInput{}, Actor{})

	assert.NoError(t, err)
	assert.NotNil(t, resp.EndTime)
	assert.NotNil(t, resp.Duration)
	assert.InDelta(t, 9000, *resp.Duration, 2)
	assert.InDelta(t, 2.5, RoundHours(*resp.Duration), 0.01)
}

func TestStopWithoutActiveEntryIsNotFound(t *testing.T) {
	entries := &mockTimeEntryRepo{}
	svc := newTestTimeEntryService(entries, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	_, err := svc.Stop(context.Background(), testWorker(), StopInput{}, Actor{})
	assert.ErrorIs(t, err, ErrNoActiveEntry)

	// A second stop right after a successful one hits the same path: no
	// open entry, same error.
	_, err = svc.Stop(context.Background(), testWorker(), StopInput{}, Actor{})
	assert.ErrorIs(t, err, ErrNoActiveEntry)
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	svc := newTestTimeEntryService(&mockTimeEntryRepo{}, &mockUserRepo{}, &mockProjectRepo{}, &mockOrgRepo{}, &mockTeamRepo{})

	start := time.Now()
	end := start.Add(-time.Hour)
	user := testWorker()

	_, err := svc.Create(context.Background(), user, CreateInput{
		UserID:    user.ID,
		StartTime: start,
		EndTime:   &end,
	}, Actor{})

	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestCreateOnBehalfRequiresManagement(t *testing.T) {
	users := &mockUserRepo{users: map[uint]*models.User{
		10: {ID: 10, Role: models.RoleOuvrier},
	}}
	teams := &mockTeamRepo{ouvriers: map[uint][]uint{1: {10}}}
	entries := &mockTimeEntryRepo{}
	svc := newTestTimeEntryService(entries, users, &mockProjectRepo{}, &mockOrgRepo{}, teams)

	start := time.Now().Add(-8 * time.Hour)
	end := start.Add(7 * time.Hour)

	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	resp, err := svc.Create(context.Background(), responsable, CreateInput{
		UserID:    10,
		StartTime: start,
		EndTime:   &end,
	}, Actor{})

	assert.NoError(t, err)
	assert.Equal(t, uint(10), resp.UserID)
	assert.Equal(t, uint(1), *resp.EncodedByUserID)

	stranger := &models.User{ID: 2, Role: models.RoleResponsable}
	_, err = svc.Create(context.Background(), stranger, CreateInput{
		UserID:    10,
		StartTime: start,
		EndTime:   &end,
	}, Actor{})

	assert.ErrorIs(t, err, ErrUnauthorized)
}
