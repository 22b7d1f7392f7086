package services

import (
	"context"
	"errors"
	"testing"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// mockTeamRepo overrides only the lookups a test needs; anything else
// panics, which is what we want.
type mockTeamRepo struct {
	repository.TeamRepository
	ouvriers      map[uint][]uint
	teamOuvriers  map[uint][]uint
	gestionnaires map[uint][]uint

	attached []uint
	detached []uint
}

// The edge mutations mirror the real repository's transaction: the audit
// write happens inside it, and a failing audit aborts the edge change.
func (m *mockTeamRepo) edgeMutation(audit repository.AuditFunc, record *[]uint, memberID uint) error {
	if audit != nil {
		if err := audit(nil); err != nil {
			return err
		}
	}
	*record = append(*record, memberID)
	return nil
}

func (m *mockTeamRepo) AttachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.attached, ouvrierID)
}

func (m *mockTeamRepo) AttachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.attached, ouvrierID)
}

func (m *mockTeamRepo) DetachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.detached, ouvrierID)
}

func (m *mockTeamRepo) DetachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.detached, ouvrierID)
}

func (m *mockTeamRepo) AttachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.attached, gestionnaireID)
}

func (m *mockTeamRepo) DetachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit repository.AuditFunc) error {
	return m.edgeMutation(audit, &m.detached, gestionnaireID)
}

func (m *mockTeamRepo) ManagedOuvrierIDs(ctx context.Context, responsableID uint) ([]uint, error) {
	return m.ouvriers[responsableID], nil
}

func (m *mockTeamRepo) TeamOuvrierIDs(ctx context.Context, teamLeaderID uint) ([]uint, error) {
	return m.teamOuvriers[teamLeaderID], nil
}

func (m *mockTeamRepo) ManagedGestionnaireIDs(ctx context.Context, responsableID uint) ([]uint, error) {
	return m.gestionnaires[responsableID], nil
}

type mockAuditLogRepo struct {
	repository.ActivityLogRepository
	created []*models.ActivityLog
	inTxErr error
}

func (m *mockAuditLogRepo) Create(ctx context.Context, log *models.ActivityLog) error {
	m.created = append(m.created, log)
	return nil
}

func (m *mockAuditLogRepo) CreateInTx(tx *gorm.DB, log *models.ActivityLog) error {
	if m.inTxErr != nil {
		return m.inTxErr
	}
	m.created = append(m.created, log)
	return nil
}

func newTestTeamService(teams *mockTeamRepo) *TeamService {
	audit := NewAuditService(&mockAuditLogRepo{}, false)
	return NewTeamService(nil, teams, audit)
}

func TestResolveResponsableMergesOuvriersAndGestionnaires(t *testing.T) {
	teams := &mockTeamRepo{
		ouvriers:      map[uint][]uint{1: {10, 11}},
		gestionnaires: map[uint][]uint{1: {20, 10}}, // 10 appears in both sets
	}
	svc := newTestTeamService(teams)

	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	ids, err := svc.Resolve(context.Background(), responsable)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{10, 11, 20}, ids)
}

func TestResolveTeamLeader(t *testing.T) {
	teams := &mockTeamRepo{
		teamOuvriers: map[uint][]uint{2: {30, 31, 32}},
	}
	svc := newTestTeamService(teams)

	leader := &models.User{ID: 2, Role: models.RoleTeamLeader}
	ids, err := svc.Resolve(context.Background(), leader)

	assert.NoError(t, err)
	assert.Equal(t, []uint{30, 31, 32}, ids)
}

func TestResolveOuvrierIsEmpty(t *testing.T) {
	svc := newTestTeamService(&mockTeamRepo{})

	ouvrier := &models.User{ID: 3, Role: models.RoleOuvrier}
	ids, err := svc.Resolve(context.Background(), ouvrier)

	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveWithSelfIncludesManager(t *testing.T) {
	teams := &mockTeamRepo{teamOuvriers: map[uint][]uint{2: {30}}}
	svc := newTestTeamService(teams)

	leader := &models.User{ID: 2, Role: models.RoleTeamLeader}
	ids, err := svc.ResolveWithSelf(context.Background(), leader)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{30, 2}, ids)
}

func TestCanActOn(t *testing.T) {
	teams := &mockTeamRepo{
		ouvriers: map[uint][]uint{1: {10}},
	}
	svc := newTestTeamService(teams)
	ctx := context.Background()

	admin := &models.User{ID: 99, Role: models.RoleAdmin}
	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	ouvrier := &models.User{ID: 10, Role: models.RoleOuvrier}

	allowed, err := svc.CanActOn(ctx, admin, 10)
	assert.NoError(t, err)
	assert.True(t, allowed, "admin may act on anyone")

	allowed, err = svc.CanActOn(ctx, ouvrier, 10)
	assert.NoError(t, err)
	assert.True(t, allowed, "everyone may act on themselves")

	allowed, err = svc.CanActOn(ctx, responsable, 10)
	assert.NoError(t, err)
	assert.True(t, allowed, "responsable may act on a managed ouvrier")

	allowed, err = svc.CanActOn(ctx, responsable, 11)
	assert.NoError(t, err)
	assert.False(t, allowed, "responsable may not act outside their team")

	allowed, err = svc.CanActOn(ctx, ouvrier, 11)
	assert.NoError(t, err)
	assert.False(t, allowed, "ouvriers may not act on each other")
}

func TestAttachOuvrierWritesAuditInMutation(t *testing.T) {
	logs := &mockAuditLogRepo{}
	teams := &mockTeamRepo{}
	users := &mockUserRepo{users: map[uint]*models.User{
		10: {ID: 10, Role: models.RoleOuvrier},
	}}
	svc := NewTeamService(users, teams, NewAuditService(logs, true))

	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	err := svc.AttachOuvrier(context.Background(), responsable, 10, Actor{})

	assert.NoError(t, err)
	assert.Equal(t, []uint{10}, teams.attached)
	assert.Len(t, logs.created, 1)
	assert.Equal(t, models.ActionUpdated, logs.created[0].Action)
}

func TestAttachOuvrierStrictAuditFailureAbortsMutation(t *testing.T) {
	logs := &mockAuditLogRepo{inTxErr: errors.New("disk full")}
	teams := &mockTeamRepo{}
	users := &mockUserRepo{users: map[uint]*models.User{
		10: {ID: 10, Role: models.RoleOuvrier},
	}}
	svc := NewTeamService(users, teams, NewAuditService(logs, true))

	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	err := svc.AttachOuvrier(context.Background(), responsable, 10, Actor{})

	assert.Error(t, err)
	assert.Empty(t, teams.attached, "a failed strict audit must abort the edge change")
}

func TestDetachGestionnaireStrictAuditFailureAbortsMutation(t *testing.T) {
	logs := &mockAuditLogRepo{inTxErr: errors.New("disk full")}
	teams := &mockTeamRepo{}
	svc := NewTeamService(nil, teams, NewAuditService(logs, true))

	responsable := &models.User{ID: 1, Role: models.RoleResponsable}
	err := svc.DetachGestionnaire(context.Background(), responsable, 20, Actor{})

	assert.Error(t, err)
	assert.Empty(t, teams.detached)
}
