package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Institutional student identifiers look like 2022A8B10333G: a four digit
// admission year, one letter, one digit, one to three letters for the
// discipline, a four or five digit sequence number and a campus letter.
var (
	studentIDPattern = regexp.MustCompile(`^(\d{4}[A-Z]\d[A-Z]{1,3}\d{4,5}[A-Z])`)
	idTailPattern    = regexp.MustCompile(`(\d{4})[A-Z]$`)
)

const studentEmailDomain = "goa.bits-pilani.ac.in"

// ExtractStudentID pulls the institutional identifier out of an archive
// member name. The name is uppercased and a trailing .pdf extension is
// stripped before matching. Returns "" when no identifier is present.
func ExtractStudentID(filename string) string {
	clean := strings.ToUpper(filename)
	clean = strings.TrimSuffix(clean, ".PDF")

	match := studentIDPattern.FindStringSubmatch(clean)
	if match == nil {
		return ""
	}
	return match[1]
}

// EmailFromStudentID maps an identifier to the institutional email address:
// the admission year plus the last four digits before the campus letter form
// the local part.
func EmailFromStudentID(studentID string) (string, error) {
	if !studentIDPattern.MatchString(studentID) {
		return "", fmt.Errorf("not a student identifier: %q", studentID)
	}
	year := studentID[:4]
	tail := idTailPattern.FindStringSubmatch(studentID)
	if tail == nil {
		return "", fmt.Errorf("no sequence number in identifier: %q", studentID)
	}
	return fmt.Sprintf("f%s%s@%s", year, tail[1], studentEmailDomain), nil
}
