package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/yigit/gradebook/internal/app/models"
)

// renderReport prints the term records followed by the term and cumulative totals
func renderReport(w io.Writer, report *models.GpaReport) {
	table := newTable(w, []string{"Subject", "Year", "Semester", "Credit", "Section", "Grade", "Score"})
	for _, r := range report.TermRecords {
		score := formatNumber(r.Score)
		if !r.Counted {
			score = "-"
		}
		table.Append([]string{r.Subject, r.Year, r.Semester, r.Credit, r.Section, string(r.Grade), score})
	}
	table.Render()

	fmt.Fprintf(w, "Term: %s\n", report.Term)
	fmt.Fprintf(w, "Total Credit: %d\n", report.TotalCredit)
	fmt.Fprintf(w, "Total Score: %s\n", formatNumber(report.TotalScore))
	fmt.Fprintf(w, "GPA: %.2f\n", report.GPA)
	fmt.Fprintf(w, "Collected Credit: %d\n", report.CumulativeCredit)
	fmt.Fprintf(w, "Collected Score: %s\n", formatNumber(report.CumulativeScore))
	fmt.Fprintf(w, "GPAX: %.2f\n", report.GPAX)
}

// renderRecords prints records with their number and ID so they can be addressed by edit
func renderRecords(w io.Writer, records []models.GradeRecord) {
	table := newTable(w, []string{"#", "ID", "Subject", "Year", "Semester", "Credit", "Section", "Grade"})
	for i, r := range records {
		table.Append([]string{strconv.Itoa(i + 1), r.ID.String(), r.Subject, r.Year, r.Semester, r.Credit, r.Section, string(r.Grade)})
	}
	table.Render()
}

// renderTerms prints one numbered line per term
func renderTerms(w io.Writer, terms []models.Term) {
	for i, t := range terms {
		fmt.Fprintf(w, "%d. %s\n", i+1, t)
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// formatNumber drops a trailing ".0" from whole values
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
