package recon

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

// ClassifyIncome builds the income listing from the statement's non-check
// credit rows. Priority labels are aggregated into one dateless line each;
// every other credit is listed individually under its matched label, or its
// raw trimmed description when no rule matches. Returned or rejected check
// credits are excluded: they are check events, not income.
func ClassifyIncome(rules RuleSet, txs []domain.Transaction) ([]domain.ClassifiedAmount, decimal.Decimal) {
	prioritySums := make(map[string]decimal.Decimal)
	var individual []domain.ClassifiedAmount

	priority := make(map[string]bool, len(rules.PriorityIncomeLabels))
	for _, label := range rules.PriorityIncomeLabels {
		priority[label] = true
	}

	for _, tx := range txs {
		label, matched := matchPrefix(rules.IncomeRules, tx.Description)
		if !matched {
			label = strings.TrimSpace(tx.Description)
		}

		if priority[label] {
			prioritySums[label] = prioritySums[label].Add(tx.Credit)
			continue
		}
		if tx.Credit.Sign() <= 0 {
			continue
		}
		if rules.IsCheckMovement(tx.Description) ||
			containsAny(strings.ToUpper(tx.Description), rules.IncomeExclusionMarkers) {
			continue
		}

		individual = append(individual, domain.ClassifiedAmount{
			Label:  label,
			Date:   tx.Date,
			Amount: tx.Credit,
		})
	}

	var income []domain.ClassifiedAmount
	for _, label := range rules.PriorityIncomeLabels {
		if sum, ok := prioritySums[label]; ok {
			income = append(income, domain.ClassifiedAmount{Label: label, Amount: sum})
		}
	}
	income = append(income, individual...)

	total := decimal.Zero
	for _, line := range income {
		total = total.Add(line.Amount)
	}
	return income, total
}

// ClassifyExpenses builds the expense listing from the statement's
// non-check debit rows. The listing follows the configured priority order,
// rows in encounter order within each label, then the remaining labels
// alphabetically. The ordering is a reporting requirement only; the total
// is order-independent.
func ClassifyExpenses(rules RuleSet, txs []domain.Transaction) ([]domain.ClassifiedAmount, decimal.Decimal) {
	byLabel := make(map[string][]domain.ClassifiedAmount)
	total := decimal.Zero

	for _, tx := range txs {
		if tx.Debit.Sign() <= 0 || rules.IsCheckMovement(tx.Description) {
			continue
		}

		label, matched := matchPrefix(rules.ExpenseRules, tx.Description)
		if !matched {
			label = strings.ToUpper(strings.TrimSpace(tx.Description))
		}

		byLabel[label] = append(byLabel[label], domain.ClassifiedAmount{
			Label:  label,
			Date:   tx.Date,
			Amount: tx.Debit,
		})
		total = total.Add(tx.Debit)
	}

	inPriority := make(map[string]bool, len(rules.ExpensePriority))
	var expenses []domain.ClassifiedAmount
	for _, label := range rules.ExpensePriority {
		inPriority[label] = true
		expenses = append(expenses, byLabel[label]...)
	}

	var others []string
	for label := range byLabel {
		if !inPriority[label] {
			others = append(others, label)
		}
	}
	sort.Strings(others)
	for _, label := range others {
		expenses = append(expenses, byLabel[label]...)
	}

	return expenses, total
}
