package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Roster is the flattened view of a section's enrollments used by the
// export endpoints.
type Roster struct {
	SectionName string
	GradeLevel  string
	SchoolYear  string
	Rows        []RosterRow
}

// RosterRow is one enrolled student.
type RosterRow struct {
	LastName       string
	FirstName      string
	EnrollmentDate string
	Status         string
}

var rosterHeaders = []string{"Last Name", "First Name", "Enrollment Date", "Status"}

func (r RosterRow) values() []string {
	return []string{r.LastName, r.FirstName, r.EnrollmentDate, r.Status}
}

// RenderCSV encodes the roster as CSV bytes.
func RenderCSV(roster Roster) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(rosterHeaders); err != nil {
		return nil, fmt.Errorf("write roster headers: %w", err)
	}
	for _, row := range roster.Rows {
		if err := writer.Write(row.values()); err != nil {
			return nil, fmt.Errorf("write roster row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush roster csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF renders the roster as a one-table PDF document.
func RenderPDF(roster Roster) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	title := fmt.Sprintf("%s - Grade %s (%s)", roster.SectionName, roster.GradeLevel, roster.SchoolYear)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(rosterHeaders))
	for _, header := range rosterHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range roster.Rows {
		for _, value := range row.values() {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render roster pdf: %w", err)
	}
	return buf.Bytes(), nil
}
