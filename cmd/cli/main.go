package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/peraapp/pera/internal/config"
	"github.com/peraapp/pera/internal/currency"
	"github.com/peraapp/pera/internal/ident"
	"github.com/peraapp/pera/internal/logger"
	"github.com/peraapp/pera/internal/migrate"
	"github.com/peraapp/pera/internal/storage"
	"github.com/peraapp/pera/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "accounts":
		runAccounts(cfg, log)
	case "categories":
		runCategories(cfg, log)
	case "transactions":
		runTransactions(cfg, log)
	case "budgets":
		runBudgets(cfg, log)
	case "migrate":
		runMigrate(cfg, log)
	case "export":
		runExport(cfg, log)
	case "import":
		runImport(cfg, log)
	case "clear":
		runClear(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pera Finance CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  pera <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  accounts      List accounts with current balances")
	fmt.Println("  categories    List categories")
	fmt.Println("  transactions  List transactions, optionally filtered")
	fmt.Println("  budgets       List budgets")
	fmt.Println("  migrate       Import a Money Manager backup file")
	fmt.Println("  export        Export all data as JSON")
	fmt.Println("  import        Import data from a JSON export")
	fmt.Println("  clear         Delete all data")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'pera <command> -h' for more information on a command.")
}

// openStore builds the store against file-backed durable storage in the
// configured data directory.
func openStore(cfg *config.Config, log zerolog.Logger) *store.Store {
	backend, err := storage.NewFile(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Opening data directory failed")
	}
	return store.New(backend, ident.New(), log)
}

func runAccounts(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	accounts, err := s.Accounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Listing accounts failed")
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts.")
		return
	}
	for _, a := range accounts {
		fmt.Printf("%-12s %-24s %-12s %s\n", a.ID, a.Name, a.Type, currency.Format(a.Balance, a.Currency))
	}
}

func runCategories(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	categoryType := fs.String("type", "", "Filter by type (income or expense)")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	var (
		categories []store.Category
		err        error
	)
	if *categoryType != "" {
		categories, err = s.CategoriesByType(ctx, *categoryType)
	} else {
		categories, err = s.Categories(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Listing categories failed")
	}

	for _, c := range categories {
		fmt.Printf("%-12s %s %-20s %s\n", c.ID, c.Icon, c.Name, c.Type)
	}
}

func runTransactions(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	accountID := fs.String("account", "", "Filter by account ID")
	categoryID := fs.String("category", "", "Filter by category ID")
	start := fs.String("start", "", "Start date (YYYY-MM-DD)")
	end := fs.String("end", "", "End date (YYYY-MM-DD), defaults to end of the current month")
	fs.Parse(os.Args[2:])

	filter := store.Filter{AccountID: *accountID, CategoryID: *categoryID}
	if *start != "" {
		t, err := time.Parse("2006-01-02", *start)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -start date")
		}
		filter.StartDate = &t
	}
	if *end != "" {
		t, err := time.Parse("2006-01-02", *end)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -end date")
		}
		filter.EndDate = &t
	}

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	transactions, err := s.Transactions(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Listing transactions failed")
	}

	if len(transactions) == 0 {
		fmt.Println("No transactions.")
		return
	}
	for _, txn := range transactions {
		sign := "-"
		if txn.Type == store.TypeIncome {
			sign = "+"
		}
		fmt.Printf("%-26s %s %10.2f  %-10s %-12s %s\n",
			txn.Date, sign, txn.Amount, txn.Type, txn.AccountID, txn.Description)
	}
}

func runBudgets(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("budgets", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	budgets, err := s.Budgets(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Listing budgets failed")
	}

	for _, b := range budgets {
		fmt.Printf("%-12s %-24s %-12s limit %.2f (%s)\n", b.ID, b.Name, b.CategoryID, b.LimitAmount, b.Period)
	}
}

func runMigrate(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	file := fs.String("file", "", "Path to a Money Manager .sqlite/.db backup")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Reading backup file failed")
	}

	// Ctrl-C cancels between batches; whatever was already imported stays.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	s := openStore(cfg, log)
	defer s.Close()

	migrator := migrate.NewMigrator(s)

	lastStatus := ""
	onProgress := func(p migrate.Progress) {
		if p.Status != lastStatus {
			lastStatus = p.Status
			fmt.Printf("%s...\n", p.Status)
		}
	}

	result := migrator.Migrate(ctx, filepath.Base(*file), data, onProgress)
	switch {
	case result.Cancelled:
		fmt.Println("Migration cancelled.")
		os.Exit(1)
	case !result.Success:
		fmt.Fprintf(os.Stderr, "Migration failed: %s\n", result.Message)
		os.Exit(1)
	}

	fmt.Println(result.Message)
	if n := len(result.Stats.FailedBatches); n > 0 {
		fmt.Printf("Warning: %d transaction batch(es) failed to import.\n", n)
	}
	if result.Stats.SkippedTransactions > 0 {
		fmt.Printf("Skipped %d transaction(s) with unresolvable references.\n", result.Stats.SkippedTransactions)
	}
}

func runExport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "Write to file instead of stdout")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	data, err := s.ExportJSON(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		log.Fatal().Err(err).Msg("Writing export file failed")
	}
	fmt.Printf("Exported to %s\n", *out)
}

func runImport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Path to a JSON export")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Reading import file failed")
	}

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	if err := s.ImportJSON(ctx, data); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}
	fmt.Println("Import completed successfully.")
}

func runClear(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	fs.Parse(os.Args[2:])

	if !*yes {
		fmt.Print("Delete ALL accounts, categories, transactions and budgets? Type 'yes' to confirm: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	ctx := context.Background()
	s := openStore(cfg, log)
	defer s.Close()

	if err := s.ClearAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("Clearing data failed")
	}
	fmt.Println("All data deleted.")
}
