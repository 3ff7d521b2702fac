package parse

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

// Column names of the statement export. Header matching is case-insensitive
// after trimming.
const (
	colAccountingDay = "DIACONT"
	colMovementCode  = "MOVIMIENTO"
	colDescription   = "DESCRIP"
	colDebit         = "DEBE"
	colCredit        = "HABER"
	colBalance       = "SALDO"
)

var statementColumns = []string{
	colAccountingDay, colMovementCode, colDescription, colDebit, colCredit, colBalance,
}

// Statement reads the bank statement export (.xlsx, or .csv with the same
// header contract) into normalized transactions, preserving row order.
// A missing required column fails the whole run; a malformed amount cell
// only zeroes that cell.
func Statement(r io.Reader, filename string) ([]domain.Transaction, error) {
	rows, err := statementRows(r, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.MissingColumnError{Input: "statement", Column: colAccountingDay}
	}

	idx, err := headerIndex("statement", rows[0], statementColumns)
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		txs = append(txs, domain.Transaction{
			Date:         strings.TrimSpace(cell(row, idx[colAccountingDay])),
			MovementCode: strings.TrimSpace(cell(row, idx[colMovementCode])),
			Description:  strings.TrimSpace(cell(row, idx[colDescription])),
			Debit:        AmountOrZero(cell(row, idx[colDebit])),
			Credit:       AmountOrZero(cell(row, idx[colCredit])),
			Balance:      AmountOrZero(cell(row, idx[colBalance])),
		})
	}
	return txs, nil
}

func statementRows(r io.Reader, filename string) ([][]string, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		return cr.ReadAll()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

// headerIndex resolves required columns against a header row, trimmed and
// case-insensitive. The first absent column fails the load.
func headerIndex(input string, header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, &domain.MissingColumnError{Input: input, Column: name}
		}
	}
	return idx, nil
}

// cell tolerates short rows: spreadsheet libraries drop trailing empty
// cells.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
