package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/models"
	"github.com/triton-consulting-group/tcg-application-portal-sub000/internal/repository"
)

// TestAuditRepository_Log verifies audit entry creation with generated ID
// and timestamp, for both admin-initiated and system actions.
func TestAuditRepository_Log(t *testing.T) {
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)
	actorID := 1
	objectID := 7

	tests := []struct {
		name string
		log  *models.AuditLog
	}{
		{
			name: "admin status change",
			log: &models.AuditLog{
				ActorID:    &actorID,
				Action:     "UPDATE_STATUS",
				ObjectType: "applicant",
				ObjectID:   &objectID,
				IPAddress:  "10.0.0.5",
				UserAgent:  "Mozilla/5.0",
			},
		},
		{
			name: "system assignment run (no actor)",
			log: &models.AuditLog{
				ActorID:    nil,
				Action:     "RUN_ASSIGNMENT",
				ObjectType: "assignment_run",
				ObjectID:   nil,
				IPAddress:  "",
				UserAgent:  "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)

			mock.ExpectQuery("INSERT INTO audit_logs").
				WithArgs(tt.log.ActorID, tt.log.Action, tt.log.ObjectType,
					tt.log.ObjectID, tt.log.IPAddress, tt.log.UserAgent).
				WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(10, testTime))

			repo := repository.NewAuditRepository()
			err := repo.Log(context.Background(), tt.log)

			assert.NoError(t, err)
			assert.Equal(t, 10, tt.log.ID)
			assert.Equal(t, testTime, tt.log.CreatedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestAuditRepository_ListRecent verifies retrieval of recent entries in
// reverse chronological order.
func TestAuditRepository_ListRecent(t *testing.T) {
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)
	actorID := 1

	mock := newMockDB(t)

	rows := pgxmock.NewRows([]string{
		"id", "actor_id", "action", "object_type", "object_id",
		"ip_address", "user_agent", "created_at",
	}).
		AddRow(2, &actorID, "UPDATE_STATUS", "applicant", &actorID, "10.0.0.5", "Mozilla/5.0", testTime.Add(time.Hour)).
		AddRow(1, nil, "RUN_ASSIGNMENT", "assignment_run", nil, "", "", testTime)

	mock.ExpectQuery("SELECT(.+)FROM audit_logs").
		WithArgs(100).
		WillReturnRows(rows)

	repo := repository.NewAuditRepository()
	logs, err := repo.ListRecent(context.Background(), 100)

	assert.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "UPDATE_STATUS", logs[0].Action, "newest entry first")
	assert.Nil(t, logs[1].ActorID, "system actions have no actor")
	assert.NoError(t, mock.ExpectationsWereMet())
}
