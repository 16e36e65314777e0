package services

import (
	"testing"

	"gorm.io/gorm"

	"finanzas/internal/metrics"
	"finanzas/internal/models"
	"finanzas/internal/testutil"
)

// fixture wires the services the way the server does, on a fresh database.
type fixture struct {
	db           *gorm.DB
	metrics      *metrics.Metrics
	accounts     AccountServicer
	categories   CategoryServicer
	budgets      BudgetServicer
	transactions TransactionServicer
	user         *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	m := metrics.New()
	accounts := NewAccountService(db)
	budgets := NewBudgetService(db, m)
	return &fixture{
		db:           db,
		metrics:      m,
		accounts:     accounts,
		categories:   NewCategoryService(db),
		budgets:      budgets,
		transactions: NewTransactionService(db, accounts, budgets),
		user:         testutil.CreateTestUser(t, db),
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// triggerCount returns the recompute passes recorded under trigger.
func triggerCount(t *testing.T, f *fixture, trigger string) float64 {
	t.Helper()
	families, err := f.metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "finanzas_budget_recomputations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "trigger" && l.GetValue() == trigger {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

// counterValue sums every series of a counter family in the fixture's registry.
func counterValue(t *testing.T, f *fixture, name string) float64 {
	t.Helper()
	families, err := f.metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
