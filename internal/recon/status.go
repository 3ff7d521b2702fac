package recon

import "github.com/jcabrerapy/concilia-be/internal/domain"

// ResolveStatus folds a check's event history, in statement order, into a
// final status. The last classified event wins: a check can be deposited,
// rejected and re-deposited within the period, and only the final outcome
// matters for reconciliation. Events with an unknown kind are skipped
// without affecting the result; an empty history means the check never hit
// the statement.
func ResolveStatus(history []domain.CheckEvent) domain.CheckStatus {
	status := domain.CheckStatusPending
	for _, ev := range history {
		switch ev.Kind {
		case domain.EventKindCollected:
			status = domain.CheckStatusCollected
		case domain.EventKindRejected:
			status = domain.CheckStatusRejected
		}
	}
	return status
}

// Outstanding reports whether a registry check with the given status has
// not been confirmed as collected: rejected folds into outstanding, since
// the money never left.
func Outstanding(status domain.CheckStatus) bool {
	return status == domain.CheckStatusPending || status == domain.CheckStatusRejected
}
