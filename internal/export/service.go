// Package export serializes the reconciled table. The same row sequence feeds
// both serializations: delimited text for spreadsheets and tooling, and an
// XLSX workbook with the invoice/delivery/anomaly column groups marked.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"docrecon/internal/entity"
	"docrecon/internal/reconcile"
)

// Column groups of the reconciled table: 1-6 invoice, 7-11 delivery note,
// 12 anomaly.
var headers = []string{
	"Invoice date",
	"Invoice ID",
	"Customer name",
	"Invoice amount (No VAT)",
	"VAT",
	"Total Amount",
	"Delivery note date",
	"Delivery note number",
	"Invoice number",
	"Invoice date",
	"Customer name",
	"Anomaly Type",
}

// Headers returns the fixed 12-column header row.
func Headers() []string {
	return append([]string(nil), headers...)
}

// Service derives the reconciled table from a job's extraction payload and
// writes it out. It holds no state between exports.
type Service struct {
	log     *slog.Logger
	matcher reconcile.AnomalyMatcher
}

type Option func(*Service)

// WithMatcher substitutes the anomaly attachment strategy used when building
// the table.
func WithMatcher(m reconcile.AnomalyMatcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

func NewService(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{log: logger, matcher: reconcile.AttachAll{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Table reconciles the payload's three row lists. Derived fresh on every call;
// nothing is cached.
func (s *Service) Table(data *entity.ExtractedCSVData) [][]string {
	if data == nil {
		return nil
	}
	rows := data.CSVData
	return reconcile.Reconcile(
		rows.InvoiceRows,
		rows.DeliveryNoteRows,
		rows.AnomalyRows,
		reconcile.WithMatcher(s.matcher),
	)
}

// WriteCSV writes the header and rows. Fields containing the delimiter, quote
// character or newline come out quoted with embedded quotes doubled.
func (s *Service) WriteCSV(w io.Writer, rows [][]string) error {
	start := time.Now()
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("csv write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("csv write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	s.log.Info("export.csv.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
