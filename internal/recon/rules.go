package recon

import "strings"

// PrefixRule maps a case-insensitive description prefix to a reporting
// label. Rules are evaluated in slice order.
type PrefixRule struct {
	Prefix string
	Label  string
}

// RuleSet is the immutable rule configuration one engine instance works
// with: check markers, classification prefixes and the expense report
// ordering. It is passed in, never ambient, so variant rule sets (other
// banks) can run side by side.
type RuleSet struct {
	// CollectionMarkers flag a check movement that debits the account.
	CollectionMarkers []string
	// RejectionMarkers flag a rejection or operational return; those
	// reverse a prior debit, so their amount posts on the credit side.
	RejectionMarkers []string

	IncomeRules []PrefixRule
	// PriorityIncomeLabels are aggregated into one dateless line per label.
	PriorityIncomeLabels []string
	// IncomeExclusionMarkers drop returned-check credits from the income
	// side; they are check events, not income.
	IncomeExclusionMarkers []string

	ExpenseRules []PrefixRule
	// ExpensePriority fixes the order of the expense listing; labels not
	// listed here are appended alphabetically.
	ExpensePriority []string
}

// DefaultRules carries the production rule set for the bank's statement
// vocabulary.
func DefaultRules() RuleSet {
	return RuleSet{
		CollectionMarkers: []string{
			"PAGO CHEQUE",
			"CHEQUE DEP",
			"CLEARING",
		},
		RejectionMarkers: []string{
			"CHEQUE RECHAZADO X CLEARING",
			"CHEQUE DEV.OPERATIVO",
			"CLEARING REC",
		},
		IncomeRules: []PrefixRule{
			{Prefix: "MOV.POS", Label: "Infonet"},
			{Prefix: "CR.COM.BEPSA", Label: "Bepsa"},
			{Prefix: "CRED. CABAL", Label: "Cabal"},
			{Prefix: "CRED. COMERCIO PANAL", Label: "Panal"},
			{Prefix: "DEPOSITO", Label: "Depositos"},
		},
		PriorityIncomeLabels: []string{
			"Depositos", "Infonet", "Bepsa", "Cabal", "Panal", "Bancard",
		},
		IncomeExclusionMarkers: []string{
			"CHEQUE DEVUELTO",
			"RECHAZADO",
		},
		ExpenseRules: []PrefixRule{
			{Prefix: "ATESORAMIENTO Y TRASLADO", Label: "Prosegur"},
			{Prefix: "DB X CUOTA", Label: "Prestamo"},
			{Prefix: "DEB.X TARJ", Label: "Tarjeta de Credito"},
			{Prefix: "DEV.INTRBN", Label: "Devolucion Sipap"},
			{Prefix: "MOV.POS.:BANCARD", Label: "Alquiler POS Bancard"},
			{Prefix: "DB.COM.BEPSA", Label: "Alquiler POS Bepsa"},
			{Prefix: "SET", Label: "SET"},
			{Prefix: "SEGUROS", Label: "Seguros Pagados"},
			{Prefix: "IPS", Label: "IPS"},
		},
		ExpensePriority: []string{
			"Cheques Emitidos",
			"Cheque Adelantado (Diferidos)",
			"Prestamo",
			"Tarjeta de Credito",
			"Alquiler POS Bepsa",
			"Alquiler POS Bancard",
			"SET",
			"Seguros Pagados",
			"IPS",
			"Prosegur",
		},
	}
}

// IsRejection reports whether the description signals a rejection or an
// operational return.
func (r RuleSet) IsRejection(description string) bool {
	return containsAny(strings.ToUpper(description), r.RejectionMarkers)
}

// IsCheckMovement reports whether the description matches any check-related
// marker.
func (r RuleSet) IsCheckMovement(description string) bool {
	desc := strings.ToUpper(description)
	return containsAny(desc, r.CollectionMarkers) || containsAny(desc, r.RejectionMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func matchPrefix(rules []PrefixRule, description string) (string, bool) {
	desc := strings.ToUpper(strings.TrimSpace(description))
	for _, rule := range rules {
		if strings.HasPrefix(desc, rule.Prefix) {
			return rule.Label, true
		}
	}
	return "", false
}
