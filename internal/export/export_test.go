package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"docrecon/internal/entity"
)

func samplePayload() *entity.ExtractedCSVData {
	return &entity.ExtractedCSVData{CSVData: entity.CSVRows{
		InvoiceRows:      []string{"2025-01-15,INV-001,ABC Co,1000,200,1200"},
		DeliveryNoteRows: []string{"2025-01-16,DN-001,INV-001,2025-01-15,ABC Co"},
		AnomalyRows:      nil,
	}}
}

func TestTableDerivesFreshRows(t *testing.T) {
	s := NewService(nil)
	rows := s.Table(samplePayload())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][1] != "INV-001" || rows[0][7] != "DN-001" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
	if s.Table(nil) != nil {
		t.Fatal("nil payload must produce no table")
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	s := NewService(nil)
	rows := [][]string{{
		`say "hi"`, "a,b", "line\nbreak", "", "", "",
		"", "", "", "", "", "",
	}}
	var buf bytes.Buffer
	if err := s.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	lines := strings.SplitN(out, "\n", 2)
	if lines[0] != strings.Join(Headers(), ",") {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(out, `"say ""hi"""`) {
		t.Fatalf("embedded quotes must be doubled: %q", out)
	}
	if !strings.Contains(out, `"a,b"`) {
		t.Fatalf("delimiter-bearing field must be quoted: %q", out)
	}
	if !strings.Contains(out, "\"line\nbreak\"") {
		t.Fatalf("newline-bearing field must be quoted: %q", out)
	}
}

func TestBuildXLSXRoundTrip(t *testing.T) {
	s := NewService(nil)
	rows := s.Table(&entity.ExtractedCSVData{CSVData: entity.CSVRows{
		InvoiceRows:      []string{"2025-01-15,INV-001,ABC Co,1000,200,1200"},
		DeliveryNoteRows: []string{"2025-01-16,DN-001,INV-001,2025-01-15,ABC Co"},
		AnomalyRows:      []string{"Quantity mismatch for Item B"},
	}})

	data, err := s.BuildXLSX(rows)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue(sheetName, "B2")
	if err != nil || got != "INV-001" {
		t.Fatalf("B2 = %q, err %v", got, err)
	}
	got, err = f.GetCellValue(sheetName, "L2")
	if err != nil || got != "Quantity mismatch for Item B" {
		t.Fatalf("L2 = %q, err %v", got, err)
	}
	header, err := f.GetCellValue(sheetName, "L1")
	if err != nil || header != "Anomaly Type" {
		t.Fatalf("L1 = %q, err %v", header, err)
	}
}

func TestHeadersAreCopied(t *testing.T) {
	h := Headers()
	h[0] = "mutated"
	if Headers()[0] != "Invoice date" {
		t.Fatal("Headers must return a copy")
	}
}
