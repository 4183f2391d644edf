package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/Nzyazin/paycapture/internal/core/models"
)

const (
	Delimiter     = ';'
	ByteOrderMark = "\uFEFF"
	DateLayout    = "02 Jan 2006, 15:04"
)

var Header = []string{
	"ID",
	"Currency",
	"Amount",
	"Description",
	"Name",
	"DocumentType",
	"DocumentNumber",
	"Date",
	"Status",
}

// WriteTransactionsCSV writes a BOM-prefixed, semicolon-separated report.
// Dates are rendered in loc; amounts are written without grouping.
func WriteTransactionsCSV(w io.Writer, transactions []models.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	if _, err := io.WriteString(w, ByteOrderMark); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range transactions {
		record := []string{
			tx.ID,
			string(tx.Currency),
			tx.Amount.String(),
			tx.Description,
			tx.Name,
			string(tx.DocumentType),
			tx.DocumentNumber,
			tx.CreatedAt.In(loc).Format(DateLayout),
			StatusLabel(tx.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", tx.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func StatusLabel(s models.TransactionStatus) string {
	switch s {
	case models.StatusCompleted:
		return "Completed"
	case models.StatusFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// FileName is the download name for a report generated at t.
func FileName(t time.Time) string {
	return "transactions_" + t.UTC().Format("2006-01-02-15-04-05") + ".csv"
}
