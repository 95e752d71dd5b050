package validator

import "github.com/SAP-F-2025/skill-tracker/internal/models"

type LoginRequest struct {
	NationalID string `json:"nationalId" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,max=256"`
}

// HospitalRequest carries the scalar hospital fields. Child collections are
// managed by their own endpoints.
type HospitalRequest struct {
	ID                   string `json:"id"`
	Name                 string `json:"name" validate:"required,min=1,max=200"`
	Province             string `json:"province" validate:"max=100"`
	City                 string `json:"city" validate:"max=100"`
	SupervisorName       string `json:"supervisorName" validate:"max=200"`
	SupervisorNationalID string `json:"supervisorNationalId" validate:"omitempty,national_id"`
	SupervisorPassword   string `json:"supervisorPassword" validate:"max=256"`
}

func (r *HospitalRequest) ToModel() models.Hospital {
	return models.Hospital{
		ID:                   r.ID,
		Name:                 r.Name,
		Province:             r.Province,
		City:                 r.City,
		SupervisorName:       r.SupervisorName,
		SupervisorNationalID: r.SupervisorNationalID,
		SupervisorPassword:   r.SupervisorPassword,
	}
}

type DepartmentRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name" validate:"required,min=1,max=200"`
	ManagerName       string `json:"managerName" validate:"max=200"`
	ManagerNationalID string `json:"managerNationalId" validate:"omitempty,national_id"`
	ManagerPassword   string `json:"managerPassword" validate:"max=256"`
	StaffCount        int    `json:"staffCount" validate:"gte=0"`
	BedCount          int    `json:"bedCount" validate:"gte=0"`
}

func (r *DepartmentRequest) ToModel() models.Department {
	return models.Department{
		ID:                r.ID,
		Name:              r.Name,
		ManagerName:       r.ManagerName,
		ManagerNationalID: r.ManagerNationalID,
		ManagerPassword:   r.ManagerPassword,
		StaffCount:        r.StaffCount,
		BedCount:          r.BedCount,
	}
}

type StaffRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Title      string `json:"title" validate:"max=200"`
	NationalID string `json:"nationalId" validate:"required,national_id"`
	Password   string `json:"password" validate:"max=256"`
}

func (r *StaffRequest) ToModel() models.StaffMember {
	return models.StaffMember{
		ID:         r.ID,
		Name:       r.Name,
		Title:      r.Title,
		NationalID: r.NationalID,
		Password:   r.Password,
	}
}

type PatientRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required,min=1,max=200"`
	NationalID string `json:"nationalId" validate:"required,national_id"`
	Password   string `json:"password" validate:"max=256"`
}

func (r *PatientRequest) ToModel() models.Patient {
	return models.Patient{
		ID:         r.ID,
		Name:       r.Name,
		NationalID: r.NationalID,
		Password:   r.Password,
	}
}

type SkillItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Score       float64 `json:"score"`
}

type SkillCategoryRequest struct {
	Name  string             `json:"name" validate:"required,max=200"`
	Items []SkillItemRequest `json:"items" validate:"dive"`
}

type AssessmentRequest struct {
	ID              string                 `json:"id"`
	Month           string                 `json:"month" validate:"required,persian_month"`
	Year            int                    `json:"year" validate:"required,gte=1300,lte=1500"`
	TemplateID      string                 `json:"templateId"`
	MinScore        *float64               `json:"minScore"`
	MaxScore        *float64               `json:"maxScore"`
	SkillCategories []SkillCategoryRequest `json:"skillCategories" validate:"dive"`
}

func (r *AssessmentRequest) ToModel() models.Assessment {
	a := models.Assessment{
		ID:              r.ID,
		Month:           r.Month,
		Year:            r.Year,
		TemplateID:      r.TemplateID,
		MinScore:        r.MinScore,
		MaxScore:        r.MaxScore,
		SkillCategories: make([]models.SkillCategory, 0, len(r.SkillCategories)),
	}
	for _, c := range r.SkillCategories {
		cat := models.SkillCategory{Name: c.Name, Items: make([]models.SkillItem, 0, len(c.Items))}
		for _, it := range c.Items {
			cat.Items = append(cat.Items, models.SkillItem{Description: it.Description, Score: it.Score})
		}
		a.SkillCategories = append(a.SkillCategories, cat)
	}
	return a
}

type AssessmentMessageRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type ExamAnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer" validate:"max=5000"`
}

type ExamSubmissionRequest struct {
	ExamID  string              `json:"examId" validate:"required"`
	Answers []ExamAnswerRequest `json:"answers" validate:"dive"`
}

func (r *ExamSubmissionRequest) ToAnswers() []models.ExamAnswer {
	out := make([]models.ExamAnswer, 0, len(r.Answers))
	for _, a := range r.Answers {
		out = append(out, models.ExamAnswer{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	return out
}

type WorkLogRequest struct {
	Month               string  `json:"month" validate:"required,persian_month"`
	Year                int     `json:"year" validate:"required,gte=1300,lte=1500"`
	RequiredHours       float64 `json:"requiredHours" validate:"gte=0"`
	OvertimeHours       float64 `json:"overtimeHours" validate:"gte=0"`
	LeaveTakenHours     float64 `json:"leaveTakenHours" validate:"gte=0"`
	RemainingLeaveHours float64 `json:"remainingLeaveHours"`
	Tenure              string  `json:"tenure" validate:"max=100"`
}

func (r *WorkLogRequest) ToModel() models.WorkLog {
	return models.WorkLog{
		Month:               r.Month,
		Year:                r.Year,
		RequiredHours:       r.RequiredHours,
		OvertimeHours:       r.OvertimeHours,
		LeaveTakenHours:     r.LeaveTakenHours,
		RemainingLeaveHours: r.RemainingLeaveHours,
		Tenure:              r.Tenure,
	}
}

// FileRequest is an attachment given either as a stored path or an inline
// data URL.
type FileRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Type string `json:"type" validate:"max=255"`
	Data string `json:"data" validate:"required"`
}

type ChatMessageRequest struct {
	Text string       `json:"text" validate:"max=5000"`
	File *FileRequest `json:"file" validate:"omitempty"`
}

func (r *ChatMessageRequest) ToModel(sender models.ChatSender) models.ChatMessage {
	msg := models.ChatMessage{Sender: sender, Text: r.Text}
	if r.File != nil {
		msg.File = &models.FileRef{Name: r.File.Name, Type: r.File.Type, Path: r.File.Data}
	}
	return msg
}

type MaterialRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Type        string `json:"type" validate:"max=255"`
	Description string `json:"description" validate:"max=2000"`
	Data        string `json:"data" validate:"required"`
}

func (r *MaterialRequest) ToModel() models.Material {
	return models.Material{Name: r.Name, Type: r.Type, Description: r.Description, Data: r.Data}
}

type TrainingMaterialRequest struct {
	Month    string          `json:"month" validate:"required,persian_month"`
	Material MaterialRequest `json:"material"`
}

type NewsBannerRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Image       string `json:"image"`
}

func (r *NewsBannerRequest) ToModel() models.NewsBanner {
	return models.NewsBanner{Title: r.Title, Description: r.Description, ImagePath: r.Image}
}

type AdminMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type NeedsTopicRequest struct {
	ID          string `json:"id"`
	Month       string `json:"month" validate:"required,persian_month"`
	Year        int    `json:"year" validate:"required,gte=1300,lte=1500"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *NeedsTopicRequest) ToModel() models.NeedsAssessmentTopic {
	return models.NeedsAssessmentTopic{ID: r.ID, Title: r.Title, Description: r.Description}
}

type NeedsResponseRequest struct {
	Month    string `json:"month" validate:"required,persian_month"`
	Year     int    `json:"year" validate:"required,gte=1300,lte=1500"`
	Response string `json:"response" validate:"required,max=5000"`
}

type ChecklistTemplateRequest struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name" validate:"required,max=200"`
	MinScore   float64                `json:"minScore"`
	MaxScore   float64                `json:"maxScore" validate:"gtefield=MinScore"`
	Categories []SkillCategoryRequest `json:"categories" validate:"dive"`
}

func (r *ChecklistTemplateRequest) ToModel() models.ChecklistTemplate {
	tpl := models.ChecklistTemplate{
		ID:         r.ID,
		Name:       r.Name,
		MinScore:   r.MinScore,
		MaxScore:   r.MaxScore,
		Categories: make([]models.SkillCategory, 0, len(r.Categories)),
	}
	for _, c := range r.Categories {
		cat := models.SkillCategory{Name: c.Name, Items: make([]models.SkillItem, 0, len(c.Items))}
		for _, it := range c.Items {
			cat.Items = append(cat.Items, models.SkillItem{Description: it.Description, Score: it.Score})
		}
		tpl.Categories = append(tpl.Categories, cat)
	}
	return tpl
}

type ExamQuestionRequest struct {
	ID            string   `json:"id"`
	Text          string   `json:"text" validate:"required,max=2000"`
	Type          string   `json:"type" validate:"required,question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type ExamTemplateRequest struct {
	ID        string                `json:"id"`
	Name      string                `json:"name" validate:"required,max=200"`
	Questions []ExamQuestionRequest `json:"questions" validate:"dive"`
}

func (r *ExamTemplateRequest) ToModel() models.ExamTemplate {
	tpl := models.ExamTemplate{ID: r.ID, Name: r.Name, Questions: make([]models.ExamQuestion, 0, len(r.Questions))}
	for _, q := range r.Questions {
		tpl.Questions = append(tpl.Questions, models.ExamQuestion{
			ID:            q.ID,
			Text:          q.Text,
			Type:          models.QuestionType(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return tpl
}
