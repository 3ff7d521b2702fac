package parse

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

// The deferred registry is a loosely-structured latin-1 text dump, not a
// table. A line is a record only when it carries the deferred-check marker
// and the lone-letter token the source system emits; field positions within
// the whitespace-split line are fixed. Lines that fail any step are skipped:
// the source format is not contractually stable, so the loader is
// deliberately permissive.
const (
	deferredMarker    = "che  dif"
	loneLetterToken   = " e "
	deferredMinTokens = 10
)

// DeferredRegistry reads the post-dated check registry line by line.
// It never fails on a bad line; only an I/O error aborts the load.
func DeferredRegistry(r io.Reader) ([]domain.CheckRecord, error) {
	scanner := bufio.NewScanner(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []domain.CheckRecord
	for scanner.Scan() {
		if rec, ok := parseDeferredLine(scanner.Text()); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseDeferredLine is the isolated fixed-position heuristic: it either
// yields a complete record or reports the line as not-a-record.
func parseDeferredLine(line string) (domain.CheckRecord, bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, deferredMarker) || !strings.Contains(lower, loneLetterToken) {
		return domain.CheckRecord{}, false
	}

	tokens := strings.Fields(line)
	if len(tokens) < deferredMinTokens {
		return domain.CheckRecord{}, false
	}

	amountToken := strings.Replace(strings.ReplaceAll(tokens[len(tokens)-1], ".", ""), ",", ".", 1)
	amount, err := decimal.NewFromString(amountToken)
	if err != nil || amount.Sign() <= 0 {
		return domain.CheckRecord{}, false
	}

	rec := domain.CheckRecord{
		Number:        strings.TrimSpace(tokens[5]),
		Amount:        amount,
		RoundedAmount: amount.Round(-3),
		Payee:         strings.Join(tokens[7:len(tokens)-1], " "),
		Date:          MonthFirstDate(tokens[4]),
		Source:        domain.CheckSourceDeferred,
	}
	return rec, true
}
