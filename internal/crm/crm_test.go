package crm

import (
	"context"
	"testing"

	"crm-gateway/internal/database"
	"crm-gateway/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	return db
}

func mustCreateLead(t *testing.T, svc *LeadService, input CreateLeadInput) *models.Lead {
	t.Helper()
	lead, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	return lead
}
