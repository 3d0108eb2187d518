package migrate

import (
	"testing"
	"time"

	"github.com/peraapp/pera/internal/store"
)

func testMapper() *mapper {
	m := newMapper()
	m.accountIDs["asset-1"] = "acc_1"
	m.accountIDs["asset-2"] = "acc_2"
	m.accountNames["acc_1"] = "Cash"
	m.accountNames["acc_2"] = "Bank"
	m.categoryIDs["cat-food"] = "cat_1"
	m.categoryTypes["cat_1"] = store.TypeExpense
	m.categoryIDs["cat-salary"] = "cat_2"
	m.categoryTypes["cat_2"] = store.TypeIncome
	m.transferCategoryID = "cat_3"
	m.categoryTypes["cat_3"] = store.TypeExpense
	m.uncategorizedCategoryID = "cat_4"
	m.categoryTypes["cat_4"] = store.TypeExpense
	m.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return m
}

func TestAccountSpecForAsset(t *testing.T) {
	tests := []struct {
		name  string
		asset legacyAsset
		want  store.AccountSpec
	}{
		{
			name:  "checking account with known currency",
			asset: legacyAsset{UID: "a1", Name: "Cash", CurrencyUID: "USD", GroupUID: "1"},
			want:  store.AccountSpec{Name: "Cash", Type: store.AccountChecking, Currency: "USD"},
		},
		{
			name:  "credit card group",
			asset: legacyAsset{UID: "a2", Name: "Visa", CurrencyUID: "PHP", GroupUID: "2"},
			want:  store.AccountSpec{Name: "Visa", Type: store.AccountCreditCard, Currency: "PHP"},
		},
		{
			name:  "missing name and unknown currency fall back",
			asset: legacyAsset{UID: "a3", CurrencyUID: "???"},
			want:  store.AccountSpec{Name: "Unnamed Account", Type: store.AccountChecking, Currency: "PHP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accountSpecForAsset(tt.asset)
			if got != tt.want {
				t.Errorf("accountSpecForAsset(%+v) = %+v, want %+v", tt.asset, got, tt.want)
			}
		})
	}
}

func TestCategorySpecForLegacy(t *testing.T) {
	income := categorySpecForLegacy(legacyCategory{UID: "c1", Name: "Salary", Type: 0})
	if income.Type != store.TypeIncome || income.Color != "#10b981" {
		t.Errorf("income category mapped to %+v", income)
	}
	expense := categorySpecForLegacy(legacyCategory{UID: "c2", Name: "Food", Type: 1})
	if expense.Type != store.TypeExpense || expense.Color != "#ef4444" {
		t.Errorf("expense category mapped to %+v", expense)
	}
	unnamed := categorySpecForLegacy(legacyCategory{UID: "c3", Type: 1})
	if unnamed.Name != "Uncategorized" {
		t.Errorf("unnamed category got name %q", unnamed.Name)
	}
}

func TestParseLegacyDate(t *testing.T) {
	fallback := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "iso with milliseconds",
			in:   "2023-05-15T10:30:00.000Z",
			want: time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "space separated datetime",
			in:   "2023-05-15 10:30:00",
			want: time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "date only",
			in:   "2023-05-15",
			want: time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "epoch seconds",
			in:   "1700000000",
			want: time.Unix(1700000000, 0),
		},
		{
			name: "epoch milliseconds",
			in:   "1700000000000",
			want: time.UnixMilli(1700000000000),
		},
		{
			name: "garbage falls back",
			in:   "not a date",
			want: fallback,
		},
		{
			name: "empty falls back",
			in:   "",
			want: fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLegacyDate(tt.in, fallback)
			if !got.Equal(tt.want) {
				t.Errorf("parseLegacyDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLegacyAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150.50", 150.50},
		{"-75.25", 75.25},
		{"0", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseLegacyAmount(tt.in); got != tt.want {
			t.Errorf("parseLegacyAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTransactionType(t *testing.T) {
	m := testMapper()

	tests := []struct {
		name string
		row  legacyTransaction
		want string
	}{
		{"income code", legacyTransaction{DoType: "0"}, store.TypeIncome},
		{"expense code", legacyTransaction{DoType: "1"}, store.TypeExpense},
		{"transfer out", legacyTransaction{DoType: "3"}, store.TypeExpense},
		{"transfer in", legacyTransaction{DoType: "4"}, store.TypeIncome},
		{"unknown code defaults to expense", legacyTransaction{DoType: "9"}, store.TypeExpense},
		{"no code uses category type", legacyTransaction{}, store.TypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categoryID := "cat_2" // income category
			if got := m.transactionType(tt.row, categoryID); got != tt.want {
				t.Errorf("transactionType(%+v) = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestMapTransactionTransferPair(t *testing.T) {
	m := testMapper()

	pair, ok := m.mapTransaction(legacyTransaction{
		UID:        "t1",
		AssetUID:   "asset-1",
		ToAssetUID: "asset-2",
		Money:      "500",
		Date:       "2023-05-15T10:30:00.000Z",
		DoType:     "3",
		Content:    "rent share",
	})
	if !ok {
		t.Fatal("mapTransaction returned ok=false for a resolvable transfer")
	}

	main := pair.Main
	if main.AccountID != "acc_1" || main.ToAccountID != "acc_2" {
		t.Errorf("main leg accounts = %q -> %q", main.AccountID, main.ToAccountID)
	}
	if main.Type != store.TypeExpense {
		t.Errorf("main leg type = %q, want expense", main.Type)
	}
	if main.CategoryID != "cat_3" {
		t.Errorf("main leg category = %q, want the Transfer fallback", main.CategoryID)
	}
	if main.Description != "Transfer To Bank: rent share" {
		t.Errorf("main leg description = %q", main.Description)
	}

	if pair.Reverse == nil {
		t.Fatal("transfer produced no reverse leg")
	}
	rev := *pair.Reverse
	if rev.AccountID != "acc_2" || rev.ToAccountID != "acc_1" {
		t.Errorf("reverse leg accounts = %q -> %q", rev.AccountID, rev.ToAccountID)
	}
	if rev.Type != store.TypeIncome {
		t.Errorf("reverse leg type = %q, want income", rev.Type)
	}
	if rev.Amount != main.Amount || rev.CategoryID != main.CategoryID || !rev.Date.Equal(main.Date) {
		t.Error("reverse leg does not mirror the main leg amount, category and date")
	}
	if rev.Description != "Transfer From Cash: rent share" {
		t.Errorf("reverse leg description = %q", rev.Description)
	}

	if got := len(pair.specs()); got != 2 {
		t.Errorf("pair.specs() returned %d specs, want 2", got)
	}
}

func TestMapTransactionFallbackCategory(t *testing.T) {
	m := testMapper()

	plain, ok := m.mapTransaction(legacyTransaction{
		UID: "t1", AssetUID: "asset-1", Money: "10", DoType: "1",
	})
	if !ok {
		t.Fatal("expense without category should resolve via Uncategorized")
	}
	if plain.Main.CategoryID != "cat_4" {
		t.Errorf("category = %q, want Uncategorized fallback", plain.Main.CategoryID)
	}
	if plain.Reverse != nil {
		t.Error("plain expense produced a reverse leg")
	}
}

func TestMapTransactionUnresolvableAccount(t *testing.T) {
	m := testMapper()

	if _, ok := m.mapTransaction(legacyTransaction{UID: "t1", AssetUID: "ghost", Money: "10", DoType: "1"}); ok {
		t.Error("transaction on an unknown asset should be skipped")
	}
}

func TestIsMirrorLeg(t *testing.T) {
	m := testMapper()

	if !m.isMirrorLeg(legacyTransaction{DoType: "4", ToAssetUID: "asset-1"}) {
		t.Error("transfer-in with a mapped destination should be a mirror leg")
	}
	if m.isMirrorLeg(legacyTransaction{DoType: "4", ToAssetUID: "ghost"}) {
		t.Error("transfer-in with an unmapped destination is not a mirror leg")
	}
	if m.isMirrorLeg(legacyTransaction{DoType: "0", ToAssetUID: "asset-1"}) {
		t.Error("income row is never a mirror leg")
	}
}
