package services

import (
	"context"
	"errors"
	"testing"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAuditEntryStrictPropagatesFailure(t *testing.T) {
	logs := &mockAuditLogRepo{inTxErr: errors.New("disk full")}
	svc := NewAuditService(logs, true)

	fn := svc.Entry(Actor{}, models.ActionCreated, "Project", 1, nil, nil, "Chantier créé")
	err := fn(nil)

	assert.Error(t, err, "strict mode must roll the mutation back")
}

func TestAuditEntryLenientSwallowsFailure(t *testing.T) {
	logs := &mockAuditLogRepo{inTxErr: errors.New("disk full")}
	svc := NewAuditService(logs, false)

	fn := svc.Entry(Actor{}, models.ActionCreated, "Project", 1, nil, nil, "Chantier créé")
	err := fn(nil)

	assert.NoError(t, err, "a failed audit write must not lose the mutation")
	assert.Empty(t, logs.created)
}

func TestAuditEntryRecordsValues(t *testing.T) {
	logs := &mockAuditLogRepo{}
	svc := NewAuditService(logs, true)

	actorID := uint(7)
	fn := svc.Entry(Actor{UserID: &actorID, IPAddress: "10.0.0.1"}, models.ActionUpdated, "Project", 3,
		map[string]interface{}{"name": "avant"},
		map[string]interface{}{"name": "après"},
		"Chantier modifié")

	assert.NoError(t, fn(nil))
	assert.Len(t, logs.created, 1)

	log := logs.created[0]
	assert.Equal(t, models.ActionUpdated, log.Action)
	assert.Equal(t, &actorID, log.UserID)
	assert.Equal(t, "Project", *log.ModelType)
	assert.Equal(t, uint(3), *log.ModelID)
	assert.Equal(t, "10.0.0.1", log.IPAddress)
	assert.JSONEq(t, `{"name":"avant"}`, string(log.OldValues))
	assert.JSONEq(t, `{"name":"après"}`, string(log.NewValues))
}

func TestAuditRecordSystemActor(t *testing.T) {
	logs := &mockAuditLogRepo{}
	svc := NewAuditService(logs, true)

	err := svc.Record(context.Background(), Actor{}, models.ActionLogin, "", 0, "Connexion")

	assert.NoError(t, err)
	assert.Len(t, logs.created, 1)
	assert.Nil(t, logs.created[0].UserID)
	assert.Nil(t, logs.created[0].ModelType)
	assert.Nil(t, logs.created[0].ModelID)
}
