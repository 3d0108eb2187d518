package migrate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/peraapp/pera/internal/currency"
	"github.com/peraapp/pera/internal/store"
)

// Legacy enumeration values.
const (
	// creditCardGroupUID marks an asset as a credit card account.
	creditCardGroupUID = "2"

	// Legacy transaction type codes (DO_TYPE).
	doTypeIncome      = "0"
	doTypeExpense     = "1"
	doTypeTransferOut = "3"
	doTypeTransferIn  = "4"
)

// accountSpecForAsset translates a legacy asset into an account spec. The
// balance is always 0: balances are derived from transactions, never copied
// over from the legacy ledger.
func accountSpecForAsset(asset legacyAsset) store.AccountSpec {
	name := asset.Name
	if name == "" {
		name = "Unnamed Account"
	}
	accountType := store.AccountChecking
	if asset.GroupUID == creditCardGroupUID {
		accountType = store.AccountCreditCard
	}
	return store.AccountSpec{
		Name:     name,
		Type:     accountType,
		Balance:  0,
		Currency: currency.Lookup(asset.CurrencyUID).Code,
	}
}

// categorySpecForLegacy translates a legacy category: type code 0 is income,
// everything else expense, with a fixed icon and a type-dependent color.
func categorySpecForLegacy(cat legacyCategory) store.CategorySpec {
	name := cat.Name
	if name == "" {
		name = "Uncategorized"
	}
	categoryType := store.TypeExpense
	color := "#ef4444"
	if cat.Type == 0 {
		categoryType = store.TypeIncome
		color = "#10b981"
	}
	return store.CategorySpec{
		Name:  name,
		Type:  categoryType,
		Icon:  "📁",
		Color: color,
	}
}

// transferCategorySpec and uncategorizedCategorySpec are the two fallback
// categories synthesized during migration; legacy rows whose category cannot
// be resolved land in one of these.
func transferCategorySpec() store.CategorySpec {
	return store.CategorySpec{Name: "Transfer", Type: store.TypeExpense, Icon: "➡️", Color: "#3b82f6"}
}

func uncategorizedCategorySpec() store.CategorySpec {
	return store.CategorySpec{Name: "Uncategorized", Type: store.TypeExpense, Icon: "📝", Color: "#8b5cf6"}
}

// transactionPair is one mapped legacy transaction: the main leg, plus a
// synthesized reciprocal leg when the row is a transfer-out with a resolved
// destination.
type transactionPair struct {
	Main    store.TransactionSpec
	Reverse *store.TransactionSpec
}

// specs flattens the pair in insertion order.
func (p transactionPair) specs() []store.TransactionSpec {
	out := []store.TransactionSpec{p.Main}
	if p.Reverse != nil {
		out = append(out, *p.Reverse)
	}
	return out
}

// mapper resolves legacy rows against the id-mapping tables built while
// creating accounts and categories.
type mapper struct {
	accountIDs    map[string]string // legacy asset uid -> account id
	categoryIDs   map[string]string // legacy category uid -> category id
	accountNames  map[string]string // account id -> display name
	categoryTypes map[string]string // category id -> type

	transferCategoryID      string
	uncategorizedCategoryID string

	now func() time.Time
}

func newMapper() *mapper {
	return &mapper{
		accountIDs:    map[string]string{},
		categoryIDs:   map[string]string{},
		accountNames:  map[string]string{},
		categoryTypes: map[string]string{},
		now:           time.Now,
	}
}

// isMirrorLeg reports whether the row is a transfer-in whose counterpart
// transfer-out will synthesize it; such rows are dropped to avoid duplicating
// the pair.
func (m *mapper) isMirrorLeg(row legacyTransaction) bool {
	return row.DoType == doTypeTransferIn && row.ToAssetUID != "" && m.accountIDs[row.ToAssetUID] != ""
}

// mapTransaction resolves one legacy row into a transaction pair. It reports
// ok=false when neither the account nor a fallback category can be resolved;
// such rows are skipped and counted by the driver, never fatal.
func (m *mapper) mapTransaction(row legacyTransaction) (transactionPair, bool) {
	accountID := m.accountIDs[row.AssetUID]

	categoryID := m.categoryIDs[row.CategoryUID]

	toAccountID := ""
	if row.DoType == doTypeTransferOut && row.ToAssetUID != "" {
		toAccountID = m.accountIDs[row.ToAssetUID]
	}

	// Fallback category: transfers get the Transfer category, everything
	// else lands in Uncategorized.
	if categoryID == "" {
		if toAccountID != "" && m.transferCategoryID != "" {
			categoryID = m.transferCategoryID
		} else {
			categoryID = m.uncategorizedCategoryID
		}
	}

	if accountID == "" || categoryID == "" {
		return transactionPair{}, false
	}

	amount := parseLegacyAmount(row.Money)
	txnType := m.transactionType(row, categoryID)
	date := parseLegacyDate(row.Date, m.now())

	description := row.Content
	if toAccountID != "" {
		description = fmt.Sprintf("Transfer To %s: %s", m.accountName(toAccountID), row.Content)
	}

	pair := transactionPair{
		Main: store.TransactionSpec{
			AccountID:   accountID,
			CategoryID:  categoryID,
			Type:        txnType,
			Amount:      amount,
			Description: description,
			Date:        date,
			ToAccountID: toAccountID,
		},
	}
	if toAccountID != "" && txnType == store.TypeExpense {
		reverse := reverseLeg(pair.Main, m.accountName(accountID), row.Content)
		pair.Reverse = &reverse
	}
	return pair, true
}

// transactionType reduces the legacy DO_TYPE code; rows without a code fall
// back to the resolved category's type.
func (m *mapper) transactionType(row legacyTransaction, categoryID string) string {
	if row.DoType != "" {
		switch row.DoType {
		case doTypeIncome, doTypeTransferIn:
			return store.TypeIncome
		case doTypeExpense, doTypeTransferOut:
			return store.TypeExpense
		}
		return store.TypeExpense
	}
	if t := m.categoryTypes[categoryID]; t != "" {
		return t
	}
	return store.TypeExpense
}

func (m *mapper) accountName(accountID string) string {
	if name := m.accountNames[accountID]; name != "" {
		return name
	}
	return accountID
}

// parseLegacyAmount reads the legacy money field as a non-negative decimal;
// unparseable values become 0.
func parseLegacyAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		return -v
	}
	return v
}

// unixMillisThreshold separates epoch seconds from epoch milliseconds by
// magnitude (10_000_000_000 seconds is year 2286).
const unixMillisThreshold = 10_000_000_000

// parseLegacyDate reads the legacy date field: ISO-style strings first, then
// a bare Unix timestamp (seconds or milliseconds by magnitude), defaulting to
// fallback when nothing parses.
func parseLegacyDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ts < unixMillisThreshold {
			return time.Unix(ts, 0)
		}
		return time.UnixMilli(ts)
	}
	return fallback
}
