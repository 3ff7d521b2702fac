package recon

import (
	"regexp"
	"strings"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

// Check numbers embedded in free-text descriptions are runs of at least
// five digits; shorter runs are dates, branch codes and the like.
var checkNumberPattern = regexp.MustCompile(`\d{5,}`)

// ExtractCheckEvents scans the statement for check-related movements and
// builds the check-event universe: one event per matched row, in statement
// order. Rows whose number cannot be extracted are kept with an empty
// number so they still surface in the output.
func ExtractCheckEvents(rules RuleSet, txs []domain.Transaction) []domain.CheckEvent {
	var events []domain.CheckEvent
	for i, tx := range txs {
		if !rules.IsCheckMovement(tx.Description) {
			continue
		}

		rejected := rules.IsRejection(tx.Description)

		ev := domain.CheckEvent{
			Date:        tx.Date,
			Number:      extractNumber(rules, tx, rejected),
			Description: tx.Description,
			Kind:        domain.EventKindCollected,
			Row:         i,
		}
		// Rejections and returns reverse a prior debit, so the movement
		// posts on the credit side.
		if rejected {
			ev.Kind = domain.EventKindRejected
			ev.Amount = tx.Credit
		} else {
			ev.Amount = tx.Debit
		}
		ev.RoundedAmount = ev.Amount.Round(-3)

		events = append(events, ev)
	}
	return events
}

// extractNumber pulls the check number out of a matched row. Rejection and
// return rows carry it as the second token of the movement code; everything
// else embeds it in the description.
func extractNumber(rules RuleSet, tx domain.Transaction, rejected bool) string {
	if rejected {
		tokens := strings.Fields(tx.MovementCode)
		if len(tokens) >= 2 && isDigits(tokens[1]) {
			return tokens[1]
		}
	}
	return checkNumberPattern.FindString(tx.Description)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
