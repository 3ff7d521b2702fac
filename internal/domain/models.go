package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized row of the bank statement export.
// Statement order is preserved everywhere; it is the chronological order
// within the exported period.
type Transaction struct {
	Date         string          `json:"date"`
	MovementCode string          `json:"movement_code"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Balance      decimal.Decimal `json:"balance"`
}

type EventKind string

const (
	EventKindCollected EventKind = "collected"
	EventKindRejected  EventKind = "rejected"
)

// CheckEvent is a check-related statement movement. Number may be empty when
// no check number could be extracted; such events are kept and surfaced as
// unnumbered rather than dropped.
type CheckEvent struct {
	Date          string          `json:"date"`
	Number        string          `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	RoundedAmount decimal.Decimal `json:"rounded_amount"`
	Description   string          `json:"description"`
	Kind          EventKind       `json:"kind"`
	Row           int             `json:"row"`
}

type CheckSource string

const (
	CheckSourceVista    CheckSource = "vista"
	CheckSourceDeferred CheckSource = "deferred"
)

// CheckRecord is an issued check loaded from one of the two registries.
// Date is the emission date for vista records and the expected collection
// date for deferred records; nil when the registry value did not parse.
type CheckRecord struct {
	Number        string          `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	RoundedAmount decimal.Decimal `json:"rounded_amount"`
	Payee         string          `json:"payee"`
	Date          *time.Time      `json:"date"`
	Source        CheckSource     `json:"source"`
}

type CheckStatus string

const (
	CheckStatusPending   CheckStatus = "pending"
	CheckStatusCollected CheckStatus = "collected"
	CheckStatusRejected  CheckStatus = "rejected"
)

// ClassifiedAmount is one income or expense line. Aggregated income labels
// carry an empty date.
type ClassifiedAmount struct {
	Label  string          `json:"label"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ReconciliationResult is the aggregate output of one run. It is built once
// by the engine and never mutated afterwards.
type ReconciliationResult struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`

	Income      []ClassifiedAmount `json:"income"`
	TotalIncome decimal.Decimal    `json:"total_income"`

	Expenses         []ClassifiedAmount `json:"expenses"`
	TotalExpense     decimal.Decimal    `json:"total_expense"`
	TotalVistaIssued decimal.Decimal    `json:"total_vista_issued"`
	TotalDeferred    decimal.Decimal    `json:"total_deferred_issued"`

	OutstandingVista         []CheckRecord   `json:"outstanding_vista"`
	OutstandingVistaTotal    decimal.Decimal `json:"outstanding_vista_total"`
	OutstandingDeferred      []CheckRecord   `json:"outstanding_deferred"`
	OutstandingDeferredTotal decimal.Decimal `json:"outstanding_deferred_total"`
	Unregistered             []CheckEvent    `json:"unregistered"`

	ClosingBalance          decimal.Decimal `json:"closing_balance"`
	BankAdjustedBalance     decimal.Decimal `json:"bank_adjusted_balance"`
	StatementClosingBalance decimal.Decimal `json:"statement_closing_balance"`
	Difference              decimal.Decimal `json:"difference"`
}

// CheckListKind selects one of the result's sorted detail lists.
type CheckListKind string

const (
	CheckListVista        CheckListKind = "vista"
	CheckListDeferred     CheckListKind = "deferred"
	CheckListUnregistered CheckListKind = "unregistered"
)

// CheckDetail is the flattened detail-sheet view of a check, shared by the
// three lists.
type CheckDetail struct {
	Date        string          `json:"date"`
	Number      string          `json:"number"`
	Payee       string          `json:"payee,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run tracks the lifecycle of one reconciliation request.
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
