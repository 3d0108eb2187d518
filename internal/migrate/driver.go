package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peraapp/pera/internal/logger"
	"github.com/peraapp/pera/internal/store"
)

// batchSize is how many mapped legacy transactions go into a single bulk
// insert; a transfer contributes its synthesized reverse leg on top.
const batchSize = 100

// TargetStore is the subset of the finance store the migrator writes to.
type TargetStore interface {
	ClearAll(ctx context.Context) error
	ResetIDs()
	CreateAccount(ctx context.Context, spec store.AccountSpec) (*store.Account, error)
	CreateCategory(ctx context.Context, spec store.CategorySpec) (*store.Category, error)
	CreateTransactionsBulk(ctx context.Context, specs []store.TransactionSpec) (int, error)
	CreateBudget(ctx context.Context, spec store.BudgetSpec) (*store.Budget, error)
}

// Progress describes one step of an in-flight migration.
type Progress struct {
	Current int
	Total   int
	Status  string
}

// ProgressFunc receives progress updates; nil is fine.
type ProgressFunc func(Progress)

// Stats counts what a migration actually imported.
type Stats struct {
	Accounts            int
	Categories          int
	Transactions        int
	Budgets             int
	SkippedTransactions int
	SkippedBudgets      int
	FailedBatches       []int
}

// Result is the final outcome of a migration run.
type Result struct {
	Success   bool
	Cancelled bool
	Message   string
	Stats     Stats
}

// Migrator imports a legacy Money Manager database into the target store.
type Migrator struct {
	target TargetStore
	now    func() time.Time
}

func NewMigrator(target TargetStore) *Migrator {
	return &Migrator{target: target, now: time.Now}
}

// Migrate runs the full import: validate, read the legacy database, clear
// current data, then create accounts, categories, transactions and budgets.
// It never returns an error; failures are reported through the Result so the
// caller can show the message to the user as-is. Logging goes to the
// context's logger, tagged with a per-run id.
func (m *Migrator) Migrate(ctx context.Context, filename string, data []byte, onProgress ProgressFunc) Result {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Str("file", filename).Logger()
	report := func(current, total int, status string) {
		if onProgress != nil {
			onProgress(Progress{Current: current, Total: total, Status: status})
		}
	}

	// 1. Validate the uploaded file before touching anything.
	report(0, 1, "Validating file")
	if err := ValidateFile(filename, data); err != nil {
		log.Warn().Err(err).Msg("migration rejected")
		return Result{Message: err.Error()}
	}

	// 2. Open the legacy database from the raw bytes.
	legacy, err := openLegacy(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("opening legacy database")
		return Result{Message: "Could not read the database file. It may be corrupted or not a Money Manager backup."}
	}
	defer legacy.Close()

	// 3. Read everything out of the legacy tables up front, so a read error
	// is caught before the current data is cleared.
	assets, err := legacy.assets(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading legacy assets")
		return Result{Message: "Could not read accounts from the database file."}
	}
	categories, err := legacy.categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading legacy categories")
		return Result{Message: "Could not read categories from the database file."}
	}
	transactions, err := legacy.transactions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading legacy transactions")
		return Result{Message: "Could not read transactions from the database file."}
	}
	budgets, err := legacy.budgets(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading legacy budgets")
		return Result{Message: "Could not read budgets from the database file."}
	}

	log.Info().
		Int("assets", len(assets)).
		Int("categories", len(categories)).
		Int("transactions", len(transactions)).
		Int("budgets", len(budgets)).
		Msg("legacy database opened")

	if cancelled(ctx) {
		return cancelledResult()
	}

	// 4. Clear current data and restart id numbering so imported records get
	// a clean sequence.
	report(0, 1, "Clearing existing data")
	if err := m.target.ClearAll(ctx); err != nil {
		log.Error().Err(err).Msg("clearing existing data")
		return Result{Message: "Could not clear existing data before import."}
	}
	m.target.ResetIDs()

	stats := Stats{}
	mapping := newMapper()
	mapping.now = m.now

	// 5. Accounts.
	for i, asset := range assets {
		if cancelled(ctx) {
			return cancelledResult()
		}
		report(i+1, len(assets), "Importing accounts")
		account, err := m.target.CreateAccount(ctx, accountSpecForAsset(asset))
		if err != nil {
			log.Warn().Err(err).Str("uid", asset.UID).Msg("skipping account")
			continue
		}
		mapping.accountIDs[asset.UID] = account.ID
		mapping.accountNames[account.ID] = account.Name
		stats.Accounts++
	}

	// 6. Categories, plus the two synthesized fallbacks.
	for i, cat := range categories {
		if cancelled(ctx) {
			return cancelledResult()
		}
		report(i+1, len(categories), "Importing categories")
		created, err := m.target.CreateCategory(ctx, categorySpecForLegacy(cat))
		if err != nil {
			log.Warn().Err(err).Str("uid", cat.UID).Msg("skipping category")
			continue
		}
		mapping.categoryIDs[cat.UID] = created.ID
		mapping.categoryTypes[created.ID] = created.Type
		stats.Categories++
	}
	if transfer, err := m.target.CreateCategory(ctx, transferCategorySpec()); err == nil {
		mapping.transferCategoryID = transfer.ID
		mapping.categoryTypes[transfer.ID] = transfer.Type
		stats.Categories++
	} else {
		log.Warn().Err(err).Msg("creating Transfer category")
	}
	if uncat, err := m.target.CreateCategory(ctx, uncategorizedCategorySpec()); err == nil {
		mapping.uncategorizedCategoryID = uncat.ID
		mapping.categoryTypes[uncat.ID] = uncat.Type
		stats.Categories++
	} else {
		log.Warn().Err(err).Msg("creating Uncategorized category")
	}

	// 7. Transactions, mapped then bulk-inserted in batches of 100 pairs; a
	// transfer pair contributes both legs to its batch, so a pair is never
	// split across batches. A failed batch is logged and recorded but does
	// not abort the run.
	var pairs []transactionPair
	for _, row := range transactions {
		if mapping.isMirrorLeg(row) {
			continue
		}
		pair, ok := mapping.mapTransaction(row)
		if !ok {
			stats.SkippedTransactions++
			continue
		}
		pairs = append(pairs, pair)
	}
	for start := 0; start < len(pairs); start += batchSize {
		if cancelled(ctx) {
			return cancelledResult()
		}
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		var specs []store.TransactionSpec
		for _, pair := range pairs[start:end] {
			specs = append(specs, pair.specs()...)
		}
		report(end, len(pairs), "Importing transactions")
		batch := start / batchSize
		inserted, err := m.target.CreateTransactionsBulk(ctx, specs)
		if err != nil {
			log.Warn().Err(err).Int("batch", batch).Msg("transaction batch failed")
			stats.FailedBatches = append(stats.FailedBatches, batch)
			continue
		}
		stats.Transactions += inserted
	}

	// 8. Budgets.
	for i, b := range budgets {
		if cancelled(ctx) {
			return cancelledResult()
		}
		report(i+1, len(budgets), "Importing budgets")
		spec, ok := m.budgetSpec(b, mapping)
		if !ok {
			stats.SkippedBudgets++
			continue
		}
		if _, err := m.target.CreateBudget(ctx, spec); err != nil {
			log.Warn().Err(err).Str("uid", b.UID).Msg("skipping budget")
			stats.SkippedBudgets++
			continue
		}
		stats.Budgets++
	}

	log.Info().
		Int("accounts", stats.Accounts).
		Int("categories", stats.Categories).
		Int("transactions", stats.Transactions).
		Int("budgets", stats.Budgets).
		Int("skipped_transactions", stats.SkippedTransactions).
		Int("failed_batches", len(stats.FailedBatches)).
		Msg("migration finished")

	return Result{
		Success: true,
		Message: fmt.Sprintf("Imported %d accounts, %d categories, %d transactions and %d budgets.",
			stats.Accounts, stats.Categories, stats.Transactions, stats.Budgets),
		Stats: stats,
	}
}

// budgetSpec maps one legacy budget row; budgets whose target category was
// not imported are skipped. The legacy schema stores no limit amount per
// row, so imported budgets start with a flat placeholder the user adjusts.
func (m *Migrator) budgetSpec(b legacyBudget, mapping *mapper) (store.BudgetSpec, bool) {
	categoryID := mapping.categoryIDs[b.TargetUID]
	if categoryID == "" {
		return store.BudgetSpec{}, false
	}
	period := store.PeriodMonthly
	if b.PeriodType == 1 {
		period = store.PeriodYearly
	}
	now := m.now()
	return store.BudgetSpec{
		Name:       fmt.Sprintf("Budget %s", now.Format("2006-01-02")),
		CategoryID: categoryID,
		Limit:      1000,
		Period:     period,
		StartDate:  now,
	}, true
}

func cancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}

func cancelledResult() Result {
	return Result{Cancelled: true, Message: "Migration cancelled."}
}
