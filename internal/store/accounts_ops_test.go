package store

import (
	"context"
	"testing"
	"time"

	"github.com/peraapp/pera/internal/storage"
)

func TestDeleteAccountLeavesTransactionHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	account := mustCreateAccount(t, s, "Wallet")

	txn, err := s.CreateTransaction(ctx, TransactionSpec{
		AccountID: account.ID, CategoryID: "cat_4", Type: TypeExpense, Amount: 20, Date: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := s.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount with history: %v", err)
	}

	if gone, err := s.Account(ctx, account.ID); err != nil || gone != nil {
		t.Errorf("Account after delete = (%+v, %v), want (nil, nil)", gone, err)
	}

	// The transaction survives with its now-dangling account reference.
	remaining, err := s.Transactions(ctx, Filter{AccountID: account.ID})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != txn.ID {
		t.Errorf("transactions after account delete = %+v, want the original row kept", remaining)
	}

	// Enforcement is back on afterwards: bulk inserts still refuse unknown
	// references.
	specs := []TransactionSpec{
		{AccountID: "acc_missing", CategoryID: "cat_4", Type: TypeExpense, Amount: 5, Date: time.Now()},
	}
	if _, err := s.CreateTransactionsBulk(ctx, specs); err == nil {
		t.Error("bulk insert accepted an unknown account after DeleteAccount")
	}
}

func TestUpdateAccountPartialMerge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())
	account := mustCreateAccount(t, s, "Wallet")

	name := "Renamed"
	updated, err := s.UpdateAccount(ctx, account.ID, AccountUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("updated name = %q", updated.Name)
	}
	if updated.Currency != account.Currency || updated.Type != account.Type {
		t.Errorf("partial update changed untouched fields: %+v", updated)
	}
	if updated.UpdatedAt == "" {
		t.Error("update did not stamp updatedAt")
	}
}

func TestUpdateMissingAccountReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	name := "Ghost"
	account, err := s.UpdateAccount(ctx, "acc_missing", AccountUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if account != nil {
		t.Errorf("updating a missing account returned %+v, want nil", account)
	}
}
