package repository

import (
	"context"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// TeamRepository exposes the three membership edge tables that tie the
// hierarchy together: responsables to their ouvriers, team leaders to their
// ouvriers, and responsables to the gestionnaires they manage.
type TeamRepository interface {
	ManagedOuvrierIDs(ctx context.Context, responsableID uint) ([]uint, error)
	TeamOuvrierIDs(ctx context.Context, teamLeaderID uint) ([]uint, error)
	ManagedGestionnaireIDs(ctx context.Context, responsableID uint) ([]uint, error)

	ManagedOuvriers(ctx context.Context, responsableID uint) ([]models.User, error)
	TeamOuvriers(ctx context.Context, teamLeaderID uint) ([]models.User, error)
	ManagedGestionnaires(ctx context.Context, responsableID uint) ([]models.User, error)

	AttachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit AuditFunc) error
	DetachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit AuditFunc) error
	AttachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit AuditFunc) error
	DetachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit AuditFunc) error
	AttachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit AuditFunc) error
	DetachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit AuditFunc) error

	AvailableGestionnaires(ctx context.Context, responsableID uint) ([]models.User, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) ManagedOuvrierIDs(ctx context.Context, responsableID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("user_responsables").
		Where("responsable_id = ?", responsableID).
		Pluck("ouvrier_id", &ids).Error
	return ids, err
}

func (r *teamRepository) TeamOuvrierIDs(ctx context.Context, teamLeaderID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("team_leaders").
		Where("team_leader_id = ?", teamLeaderID).
		Pluck("ouvrier_id", &ids).Error
	return ids, err
}

func (r *teamRepository) ManagedGestionnaireIDs(ctx context.Context, responsableID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("responsable_gestionnaires").
		Where("responsable_id = ?", responsableID).
		Pluck("gestionnaire_id", &ids).Error
	return ids, err
}

func (r *teamRepository) usersByEdge(ctx context.Context, table, ownerColumn, memberColumn string, ownerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN "+table+" ON "+table+"."+memberColumn+" = users.id").
		Where(table+"."+ownerColumn+" = ?", ownerID).
		Order(userDisplayNameSQL + " ASC").
		Find(&users).Error
	return users, err
}

func (r *teamRepository) ManagedOuvriers(ctx context.Context, responsableID uint) ([]models.User, error) {
	return r.usersByEdge(ctx, "user_responsables", "responsable_id", "ouvrier_id", responsableID)
}

func (r *teamRepository) TeamOuvriers(ctx context.Context, teamLeaderID uint) ([]models.User, error) {
	return r.usersByEdge(ctx, "team_leaders", "team_leader_id", "ouvrier_id", teamLeaderID)
}

func (r *teamRepository) ManagedGestionnaires(ctx context.Context, responsableID uint) ([]models.User, error) {
	return r.usersByEdge(ctx, "responsable_gestionnaires", "responsable_id", "gestionnaire_id", responsableID)
}

func (r *teamRepository) attach(ctx context.Context, table, ownerColumn, memberColumn string, ownerID, memberID uint, audit AuditFunc) error {
	// ON CONFLICT DO NOTHING keeps attach idempotent.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			"INSERT INTO "+table+" ("+ownerColumn+", "+memberColumn+") VALUES (?, ?) ON CONFLICT DO NOTHING",
			ownerID, memberID,
		).Error
		if err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *teamRepository) detach(ctx context.Context, table, ownerColumn, memberColumn string, ownerID, memberID uint, audit AuditFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			"DELETE FROM "+table+" WHERE "+ownerColumn+" = ? AND "+memberColumn+" = ?",
			ownerID, memberID,
		).Error
		if err != nil {
			return err
		}
		if audit != nil {
			return audit(tx)
		}
		return nil
	})
}

func (r *teamRepository) AttachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit AuditFunc) error {
	return r.attach(ctx, "user_responsables", "responsable_id", "ouvrier_id", responsableID, ouvrierID, audit)
}

func (r *teamRepository) DetachOuvrier(ctx context.Context, responsableID, ouvrierID uint, audit AuditFunc) error {
	return r.detach(ctx, "user_responsables", "responsable_id", "ouvrier_id", responsableID, ouvrierID, audit)
}

func (r *teamRepository) AttachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit AuditFunc) error {
	return r.attach(ctx, "team_leaders", "team_leader_id", "ouvrier_id", teamLeaderID, ouvrierID, audit)
}

func (r *teamRepository) DetachTeamOuvrier(ctx context.Context, teamLeaderID, ouvrierID uint, audit AuditFunc) error {
	return r.detach(ctx, "team_leaders", "team_leader_id", "ouvrier_id", teamLeaderID, ouvrierID, audit)
}

func (r *teamRepository) AttachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit AuditFunc) error {
	return r.attach(ctx, "responsable_gestionnaires", "responsable_id", "gestionnaire_id", responsableID, gestionnaireID, audit)
}

func (r *teamRepository) DetachGestionnaire(ctx context.Context, responsableID, gestionnaireID uint, audit AuditFunc) error {
	return r.detach(ctx, "responsable_gestionnaires", "responsable_id", "gestionnaire_id", responsableID, gestionnaireID, audit)
}

// AvailableGestionnaires lists gestionnaires not yet attached to the
// given responsable.
func (r *teamRepository) AvailableGestionnaires(ctx context.Context, responsableID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleGestionnaire).
		Where("is_active = ?", true).
		Where("id NOT IN (?)",
			r.db.Table("responsable_gestionnaires").
				Select("gestionnaire_id").
				Where("responsable_id = ?", responsableID)).
		Order(userDisplayNameSQL + " ASC").
		Find(&users).Error
	return users, err
}
