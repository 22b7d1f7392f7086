package services

import (
	"context"
	"encoding/json"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/besttime/besttime-api/pkg/logger"
	"gorm.io/gorm"
)

// Actor identifies who performed an audited action. A nil UserID means the
// system itself acted.
type Actor struct {
	UserID    *uint
	IPAddress string
	UserAgent string
}

// AuditService writes the activity trail. In strict mode a failed audit
// write rolls back the mutation it describes; otherwise the failure is
// logged and the mutation stands.
type AuditService struct {
	logs   repository.ActivityLogRepository
	strict bool
}

// NewAuditService creates a new audit service
func NewAuditService(logs repository.ActivityLogRepository, strict bool) *AuditService {
	return &AuditService{logs: logs, strict: strict}
}

func buildLog(actor Actor, action, modelType string, modelID uint, oldValues, newValues map[string]interface{}, description string) *models.ActivityLog {
	log := &models.ActivityLog{
		UserID:      actor.UserID,
		Action:      action,
		Description: description,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	}
	if modelType != "" {
		log.ModelType = &modelType
	}
	if modelID != 0 {
		log.ModelID = &modelID
	}

	if oldValues != nil {
		if data, err := json.Marshal(oldValues); err == nil {
			log.OldValues = data
		}
	}
	if newValues != nil {
		if data, err := json.Marshal(newValues); err == nil {
			log.NewValues = data
		}
	}

	return log
}

// Entry builds an AuditFunc that records the action on the mutation's own
// transaction.
func (s *AuditService) Entry(actor Actor, action, modelType string, modelID uint, oldValues, newValues map[string]interface{}, description string) repository.AuditFunc {
	return func(tx *gorm.DB) error {
		log := buildLog(actor, action, modelType, modelID, oldValues, newValues, description)
		if err := s.logs.CreateInTx(tx, log); err != nil {
			if s.strict {
				return err
			}
			logger.Warn("audit write failed", "action", action, "model_type", modelType, "error", err)
		}
		return nil
	}
}

// Record writes a standalone audit row outside any transaction, for events
// that are not database mutations (login, logout).
func (s *AuditService) Record(ctx context.Context, actor Actor, action, modelType string, modelID uint, description string) error {
	log := buildLog(actor, action, modelType, modelID, nil, nil, description)
	if err := s.logs.Create(ctx, log); err != nil {
		if s.strict {
			return err
		}
		logger.Warn("audit write failed", "action", action, "model_type", modelType, "error", err)
	}
	return nil
}

// List returns audit rows for the admin activity screen.
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.ActivityLogResponse, int64, error) {
	logs, total, err := s.logs.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.ActivityLogResponse, len(logs))
	for i := range logs {
		out[i] = logs[i].ToResponse()
	}
	return out, total, nil
}

// Get returns a single audit row.
func (s *AuditService) Get(ctx context.Context, id uint) (*models.ActivityLogResponse, error) {
	log, err := s.logs.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := log.ToResponse()
	return &resp, nil
}

// Stats summarizes the trail for the admin dashboard.
func (s *AuditService) Stats(ctx context.Context) (*repository.ActivityLogStats, error) {
	return s.logs.Stats(ctx)
}

// Clear wipes the trail and records that it was wiped.
func (s *AuditService) Clear(ctx context.Context, actor Actor) (int64, error) {
	deleted, err := s.logs.Truncate(ctx)
	if err != nil {
		return 0, err
	}
	_ = s.Record(ctx, actor, models.ActionDeleted, "ActivityLog", 0, "Journal d'activité vidé")
	return deleted, nil
}
