// Package report renders assessment results as Excel workbooks.
package report

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

var ErrDepartmentNotFound = errors.New("department not found")

const sheetName = "Assessments"

var fixedHeader = []string{"Staff", "Title", "National ID"}

// DepartmentWorkbook builds one sheet with a row per staff member of the
// department: the average score of every skill category in the month's
// assessment and the total. Staff without an assessment for the period get
// empty score cells.
func DepartmentWorkbook(ds *models.Dataset, hospitalID, departmentID, month string, year int) (*excelize.File, error) {
	d := ds.Department(hospitalID, departmentID)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrDepartmentNotFound, departmentID)
	}

	assessments := make(map[string]*models.Assessment, len(d.Staff))
	var categories []string
	seen := make(map[string]bool)
	for i := range d.Staff {
		a := periodAssessment(&d.Staff[i], month, year)
		if a == nil {
			continue
		}
		assessments[d.Staff[i].ID] = a
		for _, c := range a.SkillCategories {
			if !seen[c.Name] {
				seen[c.Name] = true
				categories = append(categories, c.Name)
			}
		}
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := append(append(append([]string{}, fixedHeader...), categories...), "Total")
	if err := writeHeader(f, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, member := range d.Staff {
		row := []any{member.Name, member.Title, member.NationalID}
		if a, ok := assessments[member.ID]; ok {
			averages := make(map[string]float64, len(a.SkillCategories))
			for _, c := range a.SkillCategories {
				averages[c.Name] = c.Average()
			}
			for _, name := range categories {
				if avg, ok := averages[name]; ok {
					row = append(row, avg)
				} else {
					row = append(row, nil)
				}
			}
			row = append(row, a.TotalScore())
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("%s %s %d", d.Name, month, year),
		Creator: "skill-tracker",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}
	return f, nil
}

func periodAssessment(member *models.StaffMember, month string, year int) *models.Assessment {
	for i := range member.Assessments {
		if member.Assessments[i].Month == month && member.Assessments[i].Year == year {
			return &member.Assessments[i]
		}
	}
	return nil
}

func writeHeader(f *excelize.File, header []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
