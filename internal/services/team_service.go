package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"gorm.io/gorm"
)

// TeamService resolves the management hierarchy. Every permission and every
// team-scoped query goes through Resolve/CanActOn so visibility is decided
// in exactly one place.
type TeamService struct {
	users repository.UserRepository
	teams repository.TeamRepository
	audit *AuditService
}

// NewTeamService creates a new team service
func NewTeamService(users repository.UserRepository, teams repository.TeamRepository, audit *AuditService) *TeamService {
	return &TeamService{users: users, teams: teams, audit: audit}
}

// Resolve returns the set of user ids the manager oversees, not counting the
// manager themselves. Responsables oversee their attached ouvriers and
// gestionnaires; team leaders oversee their team's ouvriers. Everyone else
// oversees nobody. Admins never reach the resolver.
func (s *TeamService) Resolve(ctx context.Context, manager *models.User) ([]uint, error) {
	switch manager.Role {
	case models.RoleResponsable:
		ouvriers, err := s.teams.ManagedOuvrierIDs(ctx, manager.ID)
		if err != nil {
			return nil, err
		}
		gestionnaires, err := s.teams.ManagedGestionnaireIDs(ctx, manager.ID)
		if err != nil {
			return nil, err
		}
		return mergeIDs(ouvriers, gestionnaires), nil
	case models.RoleTeamLeader:
		return s.teams.TeamOuvrierIDs(ctx, manager.ID)
	default:
		return []uint{}, nil
	}
}

// ResolveWithSelf is Resolve plus the manager's own id, the scope used for
// dashboards and entry listings.
func (s *TeamService) ResolveWithSelf(ctx context.Context, manager *models.User) ([]uint, error) {
	ids, err := s.Resolve(ctx, manager)
	if err != nil {
		return nil, err
	}
	return mergeIDs(ids, []uint{manager.ID}), nil
}

// CanActOn reports whether actor may read or mutate data belonging to
// subjectID. Admins may act on anyone, everyone may act on themselves,
// managers may act on their resolved set.
func (s *TeamService) CanActOn(ctx context.Context, actor *models.User, subjectID uint) (bool, error) {
	if actor.IsAdmin() || actor.ID == subjectID {
		return true, nil
	}

	ids, err := s.Resolve(ctx, actor)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func mergeIDs(lists ...[]uint) []uint {
	seen := make(map[uint]struct{})
	out := make([]uint, 0)
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Members returns the manager's team as full user records.
func (s *TeamService) Members(ctx context.Context, manager *models.User) ([]models.UserResponse, error) {
	var (
		users []models.User
		err   error
	)

	switch manager.Role {
	case models.RoleResponsable:
		users, err = s.teams.ManagedOuvriers(ctx, manager.ID)
	case models.RoleTeamLeader:
		users, err = s.teams.TeamOuvriers(ctx, manager.ID)
	default:
		return []models.UserResponse{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

// Gestionnaires returns the gestionnaires attached to a responsable.
func (s *TeamService) Gestionnaires(ctx context.Context, responsableID uint) ([]models.UserResponse, error) {
	users, err := s.teams.ManagedGestionnaires(ctx, responsableID)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

// AvailableGestionnaires returns active gestionnaires not yet attached to the
// responsable.
func (s *TeamService) AvailableGestionnaires(ctx context.Context, responsableID uint) ([]models.UserResponse, error) {
	users, err := s.teams.AvailableGestionnaires(ctx, responsableID)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

// AttachGestionnaire links a gestionnaire to a responsable.
func (s *TeamService) AttachGestionnaire(ctx context.Context, responsable *models.User, gestionnaireID uint, actor Actor) error {
	target, err := s.users.FindByID(ctx, gestionnaireID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !target.IsGestionnaire() {
		return fmt.Errorf("l'utilisateur %d n'est pas gestionnaire", gestionnaireID)
	}

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", gestionnaireID, nil, nil,
		fmt.Sprintf("Gestionnaire %s rattaché à %s", target.DisplayName(), responsable.DisplayName()))

	return s.teams.AttachGestionnaire(ctx, responsable.ID, gestionnaireID, auditFn)
}

// DetachGestionnaire unlinks a gestionnaire from a responsable.
func (s *TeamService) DetachGestionnaire(ctx context.Context, responsable *models.User, gestionnaireID uint, actor Actor) error {
	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", gestionnaireID, nil, nil,
		fmt.Sprintf("Gestionnaire %d détaché de %s", gestionnaireID, responsable.DisplayName()))

	return s.teams.DetachGestionnaire(ctx, responsable.ID, gestionnaireID, auditFn)
}

// AttachOuvrier links an ouvrier to a responsable or a team leader,
// depending on the manager's role.
func (s *TeamService) AttachOuvrier(ctx context.Context, manager *models.User, ouvrierID uint, actor Actor) error {
	target, err := s.users.FindByID(ctx, ouvrierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", ouvrierID, nil, nil,
		fmt.Sprintf("%s ajouté à l'équipe de %s", target.DisplayName(), manager.DisplayName()))

	switch manager.Role {
	case models.RoleResponsable:
		return s.teams.AttachOuvrier(ctx, manager.ID, ouvrierID, auditFn)
	case models.RoleTeamLeader:
		return s.teams.AttachTeamOuvrier(ctx, manager.ID, ouvrierID, auditFn)
	default:
		return ErrUnauthorized
	}
}

// DetachOuvrier removes an ouvrier from the manager's team.
func (s *TeamService) DetachOuvrier(ctx context.Context, manager *models.User, ouvrierID uint, actor Actor) error {
	auditFn := s.audit.Entry(actor, models.ActionUpdated, "User", ouvrierID, nil, nil,
		fmt.Sprintf("Ouvrier %d retiré de l'équipe de %s", ouvrierID, manager.DisplayName()))

	switch manager.Role {
	case models.RoleResponsable:
		return s.teams.DetachOuvrier(ctx, manager.ID, ouvrierID, auditFn)
	case models.RoleTeamLeader:
		return s.teams.DetachTeamOuvrier(ctx, manager.ID, ouvrierID, auditFn)
	default:
		return ErrUnauthorized
	}
}
