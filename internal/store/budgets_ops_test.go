package store

import (
	"context"
	"testing"
	"time"

	"github.com/peraapp/pera/internal/storage"
)

func TestBudgetLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	budget, err := s.CreateBudget(ctx, BudgetSpec{
		Name: "Eating out", CategoryID: "cat_4", Limit: 250, Period: PeriodMonthly,
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if budget.LimitAmount != 250 || budget.Period != PeriodMonthly {
		t.Errorf("created budget = %+v", budget)
	}
	if budget.StartDate == "" {
		t.Error("zero start date should default to now, got empty")
	}

	limit := 300.0
	period := PeriodYearly
	updated, err := s.UpdateBudget(ctx, budget.ID, BudgetUpdate{Limit: &limit, Period: &period})
	if err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if updated.LimitAmount != 300 || updated.Period != PeriodYearly {
		t.Errorf("updated budget = %+v", updated)
	}
	if updated.Name != "Eating out" {
		t.Errorf("partial update changed name to %q", updated.Name)
	}

	if err := s.DeleteBudget(ctx, budget.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if gone, err := s.Budget(ctx, budget.ID); err != nil || gone != nil {
		t.Errorf("Budget after delete = (%+v, %v), want (nil, nil)", gone, err)
	}
}

func TestUpdateMissingBudgetReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	limit := 100.0
	budget, err := s.UpdateBudget(ctx, "bud_missing", BudgetUpdate{Limit: &limit})
	if err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if budget != nil {
		t.Errorf("updating a missing budget returned %+v, want nil", budget)
	}
}

func TestCreateBudgetKeepsExplicitStartDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	budget, err := s.CreateBudget(ctx, BudgetSpec{
		Name: "Q2", CategoryID: "cat_4", Limit: 1200, Period: PeriodYearly, StartDate: start,
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if budget.StartDate != "2024-03-01T00:00:00.000Z" {
		t.Errorf("start date stored as %q", budget.StartDate)
	}
}
