package postgres

import (
	"testing"

	"salora-service/internal/domain/certificate"
	"salora-service/internal/domain/order"
	"salora-service/internal/domain/plan"

	"github.com/stretchr/testify/require"
)

// The repositories are constructed over the shared DB wrapper and must keep
// satisfying the domain contracts the services are wired against.
var (
	_ plan.Repository        = (*PlanRepository)(nil)
	_ certificate.Repository = (*CertificateRepository)(nil)
	_ order.Repository       = (*OrderRepository)(nil)
)

func TestNewDBSharesPool(t *testing.T) {
	db := NewDB(nil)
	require.Nil(t, db.Pool())

	planRepo := NewPlanRepository(db)
	certRepo := NewCertificateRepository(db)
	orderRepo := NewOrderRepository(db)

	require.Same(t, db, planRepo.db)
	require.Same(t, db, certRepo.db)
	require.Same(t, db, orderRepo.db)
}
