// Package ingest turns uploaded files into the plain record sequences the
// reconciliation services consume. No business rules live here; empty or
// malformed rows are passed through for the reconciler to judge.
package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// ParseMemberWorkbook reads the first sheet of an xlsx workbook into member
// records. The first row is treated as a header when it contains a "name"
// or "email" column; otherwise column 0 is name and column 1 is email.
func ParseMemberWorkbook(data []byte) ([]models.MemberRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.MemberRecord{}, nil
	}

	nameCol, emailCol, hasHeader := detectColumns(rows[0])
	if hasHeader {
		rows = rows[1:]
	}

	records := make([]models.MemberRecord, 0, len(rows))
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, models.MemberRecord{
			Name:  cell(row, nameCol),
			Email: cell(row, emailCol),
		})
	}

	return records, nil
}

// detectColumns finds name/email columns from a header row. Returns default
// positions and false when the row does not look like a header.
func detectColumns(header []string) (nameCol, emailCol int, hasHeader bool) {
	nameCol, emailCol = 0, 1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "student name", "full name":
			nameCol = i
			hasHeader = true
		case "email", "e-mail", "email id":
			emailCol = i
			hasHeader = true
		}
	}
	return nameCol, emailCol, hasHeader
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
