package models

import "math"

// Months are the twelve Persian calendar month names used as assessment and
// work-log periods.
var Months = []string{
	"فروردین", "اردیبهشت", "خرداد",
	"تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر",
	"دی", "بهمن", "اسفند",
}

func IsValidMonth(month string) bool {
	for _, m := range Months {
		if m == month {
			return true
		}
	}
	return false
}

type Assessment struct {
	ID              string          `json:"id"`
	Month           string          `json:"month"`
	Year            int             `json:"year"`
	SkillCategories []SkillCategory `json:"skillCategories"`

	SupervisorMessage string `json:"supervisorMessage,omitempty"`
	ManagerMessage    string `json:"managerMessage,omitempty"`

	// Score bounds copied from the originating checklist template
	MinScore   *float64 `json:"minScore,omitempty"`
	MaxScore   *float64 `json:"maxScore,omitempty"`
	TemplateID string   `json:"templateId,omitempty"`

	ExamSubmissions []ExamSubmission `json:"examSubmissions,omitempty"`
}

type SkillCategory struct {
	Name  string      `json:"name"`
	Items []SkillItem `json:"items"`
}

type SkillItem struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type ChecklistTemplate struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	MinScore   float64         `json:"minScore"`
	MaxScore   float64         `json:"maxScore"`
	Categories []SkillCategory `json:"categories"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionDescriptive    QuestionType = "descriptive"
)

type ExamQuestion struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// AutoGradable reports whether the answer can be scored without a reviewer.
func (q ExamQuestion) AutoGradable() bool {
	return q.Type == QuestionMultipleChoice && q.CorrectAnswer != ""
}

type ExamTemplate struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Questions []ExamQuestion `json:"questions"`
}

type ExamAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// ExamSubmission keeps a frozen copy of the questions as they were when the
// exam was taken, so later template edits never rewrite history.
type ExamSubmission struct {
	ID                       string         `json:"id"`
	ExamID                   string         `json:"examId"`
	ExamName                 string         `json:"examName"`
	Answers                  []ExamAnswer   `json:"answers"`
	Score                    float64        `json:"score"`
	TotalAutoGradedQuestions int            `json:"totalAutoGradedQuestions"`
	SubmissionDate           string         `json:"submissionDate"`
	Questions                []ExamQuestion `json:"questions"`
}

// ScoreBounds returns the clamping range for the assessment, preferring the
// bounds stored on it over those of the template.
func (a *Assessment) ScoreBounds(tpl *ChecklistTemplate) (lo, hi float64, ok bool) {
	switch {
	case a.MinScore != nil && a.MaxScore != nil:
		return *a.MinScore, *a.MaxScore, true
	case tpl != nil:
		return tpl.MinScore, tpl.MaxScore, true
	}
	return 0, 0, false
}

// ClampScores forces every item score into [lo, hi].
func (a *Assessment) ClampScores(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := range a.SkillCategories {
		items := a.SkillCategories[i].Items
		for j := range items {
			items[j].Score = math.Max(lo, math.Min(hi, items[j].Score))
		}
	}
}

// TotalScore sums every item score.
func (a *Assessment) TotalScore() float64 {
	var total float64
	for _, c := range a.SkillCategories {
		for _, it := range c.Items {
			total += it.Score
		}
	}
	return total
}

// Average returns the mean item score of the category, 0 when it is empty.
func (c SkillCategory) Average() float64 {
	if len(c.Items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range c.Items {
		sum += it.Score
	}
	return sum / float64(len(c.Items))
}

// GradeExam scores answers against the questions. Only auto-gradable
// questions count; each correct answer is worth one point.
func GradeExam(questions []ExamQuestion, answers []ExamAnswer) (score float64, autoGraded int) {
	given := make(map[string]string, len(answers))
	for _, a := range answers {
		given[a.QuestionID] = a.Answer
	}
	for _, q := range questions {
		if !q.AutoGradable() {
			continue
		}
		autoGraded++
		if given[q.ID] == q.CorrectAnswer {
			score++
		}
	}
	return score, autoGraded
}
