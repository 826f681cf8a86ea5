// Package export renders a processed kramank as an XLSX workbook for
// archive staff review.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vidhan-archive/kramank/internal/store"
)

var debateHeaders = []string{
	"Seq", "Topic", "Document Name", "Date", "Question Numbers",
	"Asked By", "Answered By", "Members", "Images", "Text",
}

var memberHeaders = []string{"Name", "Role", "Ministry"}

var resolutionHeaders = []string{"Resolution No", "Resolution No (EN)", "Text"}

// Workbook builds a three-sheet workbook: Debates, Members, Resolutions.
func Workbook(debates []store.Debate, members []store.Member, resolutions []store.Resolution) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Debates"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet("Members"); err != nil {
		return nil, fmt.Errorf("create members sheet: %w", err)
	}
	if _, err := f.NewSheet("Resolutions"); err != nil {
		return nil, fmt.Errorf("create resolutions sheet: %w", err)
	}

	if err := writeRow(f, "Debates", 1, toCells(debateHeaders)); err != nil {
		return nil, err
	}
	for i, d := range debates {
		row := []any{
			d.Seq, d.Topic, d.DocumentName, d.Date,
			strings.Join(d.QuestionNumbers, ", "),
			strings.Join(d.AskedBy, ", "),
			strings.Join(d.AnsweredBy, ", "),
			strings.Join(d.Members, ", "),
			strings.Join(d.ImageNames, ", "),
			d.Text,
		}
		if err := writeRow(f, "Debates", i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, "Members", 1, toCells(memberHeaders)); err != nil {
		return nil, err
	}
	for i, m := range members {
		if err := writeRow(f, "Members", i+2, []any{m.Name, m.Role, m.Ministry}); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, "Resolutions", 1, toCells(resolutionHeaders)); err != nil {
		return nil, err
	}
	for i, r := range resolutions {
		if err := writeRow(f, "Resolutions", i+2, []any{r.ResolutionNo, r.ResolutionNoEn, r.Text}); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}
