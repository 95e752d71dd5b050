package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

func ptr(f float64) *float64 { return &f }

func TestStruct_Requests(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&AssessmentRequest{Month: "مهر", Year: 1403}))

	err := v.Struct(&AssessmentRequest{Month: "October", Year: 1403})
	require.Error(t, err)
	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve, 1)
	assert.Equal(t, "persian_month", ve[0].Rule)
	assert.Equal(t, "must be a calendar month name", ve[0].Message)

	err = v.Struct(&StaffRequest{Name: "Ali", NationalID: "12 34"})
	assert.True(t, IsValidationError(err))

	assert.NoError(t, v.Struct(&ChecklistTemplateRequest{Name: "ICU", MinScore: 0, MaxScore: 4}))
	assert.Error(t, v.Struct(&ChecklistTemplateRequest{Name: "ICU", MinScore: 5, MaxScore: 4}))

	assert.Error(t, v.Struct(&ExamTemplateRequest{Name: "x", Questions: []ExamQuestionRequest{{Text: "q", Type: "essay"}}}))
}

func TestBusinessValidator_ValidateAssessment(t *testing.T) {
	bv := NewBusinessValidator()

	ok := &models.Assessment{Month: "فروردین", Year: 1403, SkillCategories: []models.SkillCategory{{Name: "A"}}}
	assert.Empty(t, bv.ValidateAssessment(ok))

	bad := &models.Assessment{Month: "x", Year: 2024, MinScore: ptr(1)}
	errs := bv.ValidateAssessment(bad)
	assert.Len(t, errs, 3)

	inverted := &models.Assessment{Month: "دی", Year: 1402, MinScore: ptr(5), MaxScore: ptr(1)}
	assert.Len(t, bv.ValidateAssessment(inverted), 1)
}

func TestBusinessValidator_ValidateExamTemplate(t *testing.T) {
	bv := NewBusinessValidator()

	tpl := &models.ExamTemplate{Name: "Safety", Questions: []models.ExamQuestion{
		{ID: "q1", Type: models.QuestionMultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{ID: "q2", Type: models.QuestionDescriptive},
	}}
	assert.Empty(t, bv.ValidateExamTemplate(tpl))

	tpl.Questions[0].CorrectAnswer = "c"
	errs := bv.ValidateExamTemplate(tpl)
	require.Len(t, errs, 1)
	assert.Equal(t, "questions[0].correctAnswer", errs[0].Field)
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Nil(t, ValidationErrors{}.AsError())
	assert.Equal(t, "validation failed: name is required", ValidationErrors{{Field: "name", Message: "is required"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors", ValidationErrors{{}, {}}.Error())
}
