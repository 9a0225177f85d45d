package ingest

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName failed: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("SetCellValue failed: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.Bytes()
}

func TestParseMemberWorkbook_WithHeader(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Name", "Email"},
		{"Alice", "alice@x.com"},
		{"", "", ""},
		{"Bob", ""},
	})

	records, err := ParseMemberWorkbook(data)
	if err != nil {
		t.Fatalf("ParseMemberWorkbook failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "Alice" || records[0].Email != "alice@x.com" {
		t.Errorf("record 0 = %+v", records[0])
	}
	// Rows missing fields are kept; the reconciler decides their fate.
	if records[1].Name != "Bob" || records[1].Email != "" {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestParseMemberWorkbook_HeaderColumnsReordered(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Email", "Student Name"},
		{"carol@x.com", "Carol"},
	})

	records, err := ParseMemberWorkbook(data)
	if err != nil {
		t.Fatalf("ParseMemberWorkbook failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Carol" || records[0].Email != "carol@x.com" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestParseMemberWorkbook_NoHeader(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Dave", "dave@x.com"},
	})

	records, err := ParseMemberWorkbook(data)
	if err != nil {
		t.Fatalf("ParseMemberWorkbook failed: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Dave" {
		t.Fatalf("records = %+v", records)
	}
}

func TestParseMemberWorkbook_InvalidData(t *testing.T) {
	if _, err := ParseMemberWorkbook([]byte("not a workbook")); err == nil {
		t.Error("expected error for invalid workbook data")
	}
}
