package parse

import (
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

const (
	colVistaNumber = "NRO"
	colVistaTotal  = "TOTAL"
	colVistaDate   = "FECHA MOVIMIENTO"
	colVistaPayee  = "ORDEN"
)

// VistaRegistry reads the on-demand check registry: a semicolon-delimited
// latin-1 table. NRO and TOTAL are required; FECHA MOVIMIENTO and ORDEN are
// optional. Unparseable dates leave a nil date, unparseable totals become
// zero; neither fails the load.
func VistaRegistry(r io.Reader) ([]domain.CheckRecord, error) {
	cr := csv.NewReader(transform.NewReader(r, charmap.Windows1252.NewDecoder()))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.MissingColumnError{Input: "vista registry", Column: colVistaNumber}
	}

	idx, err := headerIndex("vista registry", rows[0], []string{colVistaNumber, colVistaTotal})
	if err != nil {
		return nil, err
	}

	dateIdx, hasDate := idx[colVistaDate]
	payeeIdx, hasPayee := idx[colVistaPayee]

	records := make([]domain.CheckRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := domain.CheckRecord{
			Number: strings.TrimSpace(cell(row, idx[colVistaNumber])),
			Amount: AmountOrZero(cell(row, idx[colVistaTotal])),
			Source: domain.CheckSourceVista,
		}
		if hasDate {
			rec.Date = DayFirstDate(cell(row, dateIdx))
		}
		if hasPayee {
			rec.Payee = strings.TrimSpace(cell(row, payeeIdx))
		}
		records = append(records, rec)
	}
	return records, nil
}
