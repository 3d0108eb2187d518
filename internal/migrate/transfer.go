package migrate

import (
	"fmt"

	"github.com/peraapp/pera/internal/store"
)

// reverseLeg synthesizes the income side of a transfer pair. The legacy
// ledger stores both legs explicitly; here the transfer-in mirror rows are
// dropped during mapping and rebuilt from the transfer-out leg so the two
// sides always agree on category, amount and date.
func reverseLeg(main store.TransactionSpec, sourceName, content string) store.TransactionSpec {
	return store.TransactionSpec{
		AccountID:   main.ToAccountID,
		CategoryID:  main.CategoryID,
		Type:        store.TypeIncome,
		Amount:      main.Amount,
		Description: fmt.Sprintf("Transfer From %s: %s", sourceName, content),
		Date:        main.Date,
		ToAccountID: main.AccountID,
	}
}
