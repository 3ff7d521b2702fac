package recon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

// Inputs is one reconciliation tuple. Runs are independent: the engine
// shares no state across calls.
type Inputs struct {
	OpeningBalance decimal.Decimal
	Statement      []domain.Transaction
	Vista          []domain.CheckRecord
	Deferred       []domain.CheckRecord
}

type Engine struct {
	rules RuleSet
}

func NewEngine(rules RuleSet) *Engine {
	return &Engine{rules: rules}
}

// Reconcile computes the full reconciliation for one input tuple.
//
// The expense total sums the registries' face values, not the statement's
// check debits: a check counts as spent when issued, not when cashed, and
// the statement only ever shows the collected portion. Outstanding checks
// are then added back to reach the balance the bank should eventually show.
func (e *Engine) Reconcile(in Inputs) *domain.ReconciliationResult {
	events := ExtractCheckEvents(e.rules, in.Statement)

	history := make(map[string][]domain.CheckEvent)
	for _, ev := range events {
		if ev.Number != "" {
			history[ev.Number] = append(history[ev.Number], ev)
		}
	}

	outstandingVista, vistaOutstandingTotal := outstanding(in.Vista, history)
	outstandingDeferred, deferredOutstandingTotal := outstanding(in.Deferred, history)

	income, totalIncome := ClassifyIncome(e.rules, in.Statement)
	expenses, nonCheckExpense := ClassifyExpenses(e.rules, in.Statement)

	totalVista := sumRecords(in.Vista)
	totalDeferred := sumRecords(in.Deferred)
	totalExpense := nonCheckExpense.Add(totalVista).Add(totalDeferred)

	closing := in.OpeningBalance.Add(totalIncome).Sub(totalExpense)
	bankAdjusted := closing.Add(vistaOutstandingTotal).Add(deferredOutstandingTotal)

	statementClosing := decimal.Zero
	if n := len(in.Statement); n > 0 {
		statementClosing = in.Statement[n-1].Balance
	}

	result := &domain.ReconciliationResult{
		OpeningBalance:           in.OpeningBalance,
		Income:                   income,
		TotalIncome:              totalIncome,
		Expenses:                 expenses,
		TotalExpense:             totalExpense,
		TotalVistaIssued:         totalVista,
		TotalDeferred:            totalDeferred,
		OutstandingVista:         outstandingVista,
		OutstandingVistaTotal:    vistaOutstandingTotal,
		OutstandingDeferred:      outstandingDeferred,
		OutstandingDeferredTotal: deferredOutstandingTotal,
		Unregistered:             unregistered(events, in.Vista, in.Deferred),
		ClosingBalance:           closing,
		BankAdjustedBalance:      bankAdjusted,
		StatementClosingBalance:  statementClosing,
		Difference:               bankAdjusted.Sub(statementClosing),
	}
	return result
}

// outstanding keeps the registry checks whose last statement event did not
// confirm collection, sorted by check number as a string. Numbers are never
// numeric-coerced: leading zeros and alphanumeric identifiers survive.
func outstanding(records []domain.CheckRecord, history map[string][]domain.CheckEvent) ([]domain.CheckRecord, decimal.Decimal) {
	var kept []domain.CheckRecord
	total := decimal.Zero
	for _, rec := range records {
		if Outstanding(ResolveStatus(history[rec.Number])) {
			kept = append(kept, rec)
			total = total.Add(rec.Amount)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Number < kept[j].Number })
	return kept, total
}

// unregistered returns the statement check events whose number appears in
// neither registry, unnumbered events included, sorted by number.
func unregistered(events []domain.CheckEvent, vista, deferred []domain.CheckRecord) []domain.CheckEvent {
	known := make(map[string]bool, len(vista)+len(deferred))
	for _, rec := range vista {
		known[rec.Number] = true
	}
	for _, rec := range deferred {
		known[rec.Number] = true
	}

	var unknown []domain.CheckEvent
	for _, ev := range events {
		if !known[ev.Number] {
			unknown = append(unknown, ev)
		}
	}
	sort.SliceStable(unknown, func(i, j int) bool { return unknown[i].Number < unknown[j].Number })
	return unknown
}

func sumRecords(records []domain.CheckRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}
