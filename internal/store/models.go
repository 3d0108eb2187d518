package store

import "time"

// Account, Category, Transaction and Budget types. The type discriminators
// are plain strings in both the schema and the JSON export format.
const (
	TypeIncome     = "income"
	TypeExpense    = "expense"
	TypeTransfer   = "transfer"
	TypeSavings    = "savings"
	TypeCreditCard = "credit_card"

	AccountChecking   = "checking"
	AccountSavings    = "savings"
	AccountCreditCard = "credit_card"
	AccountInvestment = "investment"

	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Account is a money account. Balance is a cache: reads through Accounts
// overlay a value recomputed from transactions and never trust the stored
// column.
type Account struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// Category classifies transactions.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
}

// Transaction is a single money movement. A transfer between accounts is two
// rows: an expense leg on the source with ToAccountID set, and an income leg
// on the destination with ToAccountID pointing back at the source.
type Transaction struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"accountId"`
	CategoryID  string  `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	ToAccountID string  `json:"toAccountId,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Budget is a spending limit attached to a category.
type Budget struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CategoryID  string  `json:"categoryId"`
	LimitAmount float64 `json:"limitAmount"`
	Period      string  `json:"period"`
	StartDate   string  `json:"startDate"`
	CreatedAt   string  `json:"createdAt"`
}

// AccountSpec describes an account to create.
type AccountSpec struct {
	Name     string
	Type     string
	Balance  float64
	Currency string
}

// CategorySpec describes a category to create.
type CategorySpec struct {
	Name  string
	Type  string
	Icon  string
	Color string
}

// TransactionSpec describes a transaction to create.
type TransactionSpec struct {
	AccountID   string
	CategoryID  string
	Type        string
	Amount      float64
	Description string
	Date        time.Time
	ToAccountID string
}

// BudgetSpec describes a budget to create.
type BudgetSpec struct {
	Name       string
	CategoryID string
	Limit      float64
	Period     string
	StartDate  time.Time
}

// AccountUpdate carries partial account changes; nil fields are left as is.
type AccountUpdate struct {
	Name     *string
	Type     *string
	Balance  *float64
	Currency *string
}

// TransactionUpdate carries partial transaction changes; nil fields are left
// as is.
type TransactionUpdate struct {
	AccountID   *string
	CategoryID  *string
	Type        *string
	Amount      *float64
	Description *string
	Date        *time.Time
}

// BudgetUpdate carries partial budget changes; nil fields are left as is.
type BudgetUpdate struct {
	Name       *string
	CategoryID *string
	Limit      *float64
	Period     *string
	StartDate  *time.Time
}

// Filter narrows Transactions results. A nil EndDate defaults to the end of
// the current calendar month, so future-dated transactions are hidden unless
// explicitly requested.
type Filter struct {
	AccountID  string
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
}
