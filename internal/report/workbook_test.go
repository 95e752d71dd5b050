package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

func TestDepartmentWorkbook(t *testing.T) {
	ds := &models.Dataset{Hospitals: []models.Hospital{{
		ID: "h1",
		Departments: []models.Department{{
			ID:   "d1",
			Name: "ICU",
			Staff: []models.StaffMember{
				{ID: "s1", Name: "Ali", Title: "Nurse", NationalID: "300", Assessments: []models.Assessment{
					{Month: "مهر", Year: 1403, SkillCategories: []models.SkillCategory{
						{Name: "Hygiene", Items: []models.SkillItem{{Score: 2}, {Score: 4}}},
						{Name: "CPR", Items: []models.SkillItem{{Score: 1}}},
					}},
					{Month: "آبان", Year: 1403, SkillCategories: []models.SkillCategory{
						{Name: "Other", Items: []models.SkillItem{{Score: 4}}},
					}},
				}},
				{ID: "s2", Name: "Sara", Title: "Nurse", NationalID: "301"},
			},
		}},
	}}}

	f, err := DepartmentWorkbook(ds, "h1", "d1", "مهر", 1403)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{sheetName}, reopened.GetSheetList())
	rows, err := reopened.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Staff", "Title", "National ID", "Hygiene", "CPR", "Total"}, rows[0])
	assert.Equal(t, []string{"Ali", "Nurse", "300", "3", "1", "7"}, rows[1])
	assert.Equal(t, []string{"Sara", "Nurse", "301"}, rows[2])
}

func TestDepartmentWorkbook_UnknownDepartment(t *testing.T) {
	_, err := DepartmentWorkbook(models.NewDataset(), "h1", "d1", "مهر", 1403)
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}
