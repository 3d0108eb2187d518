package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/peraapp/pera/internal/storage"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	src := mustCreateAccount(t, s, "Source")
	dst := mustCreateAccount(t, s, "Destination")

	txn, err := s.CreateTransaction(ctx, TransactionSpec{
		AccountID: src.ID, CategoryID: "cat_10", Type: TypeExpense,
		Amount: 75.25, Description: "move", Date: time.Now(), ToAccountID: dst.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	budget, err := s.CreateBudget(ctx, BudgetSpec{
		Name: "Groceries", CategoryID: "cat_4", Limit: 400, Period: PeriodMonthly,
	})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	exported, err := s.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var doc ExportData
	if err := json.Unmarshal(exported, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(doc.Accounts) != len(defaultAccounts)+2 {
		t.Errorf("export holds %d accounts, want %d", len(doc.Accounts), len(defaultAccounts)+2)
	}
	if len(doc.Transactions) != 1 || doc.Transactions[0].ToAccountID != dst.ID {
		t.Errorf("export transactions = %+v, want the transfer with its destination", doc.Transactions)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if err := s.ImportJSON(ctx, exported); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	restored, err := s.Transaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if restored == nil || restored.ToAccountID != dst.ID || restored.Amount != 75.25 {
		t.Errorf("restored transaction = %+v, want id, destination and amount preserved", restored)
	}

	restoredBudget, err := s.Budget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("Budget: %v", err)
	}
	if restoredBudget == nil || restoredBudget.LimitAmount != 400 {
		t.Errorf("restored budget = %+v, want limit 400 under the original id", restoredBudget)
	}

	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != len(defaultAccounts)+2 {
		t.Errorf("store holds %d accounts after import, want %d", len(accounts), len(defaultAccounts)+2)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	if err := s.ImportJSON(ctx, []byte("{not json")); err == nil {
		t.Fatal("ImportJSON accepted malformed input")
	}

	// Nothing was cleared.
	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != len(defaultAccounts) {
		t.Errorf("store holds %d accounts after failed import, want %d untouched", len(accounts), len(defaultAccounts))
	}
}

func TestImportTreatsMissingArraysAsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	if err := s.ImportJSON(ctx, []byte(`{"accounts": [{"id": "acc_x", "name": "Only", "type": "checking", "balance": 1, "currency": "USD"}]}`)); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acc_x" {
		t.Errorf("accounts after partial import = %+v, want only acc_x", accounts)
	}
	transactions, err := s.Transactions(ctx, Filter{})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("transactions after partial import = %d, want 0", len(transactions))
	}
}
