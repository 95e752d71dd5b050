package models

type Hospital struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
	City     string `json:"city"`

	SupervisorName       string `json:"supervisorName"`
	SupervisorNationalID string `json:"supervisorNationalId"`
	SupervisorPassword   string `json:"supervisorPassword"`

	Departments []Department `json:"departments"`

	AccreditationMaterials []Material               `json:"accreditationMaterials,omitempty"`
	NewsBanners            []NewsBanner             `json:"newsBanners,omitempty"`
	ChecklistTemplates     []ChecklistTemplate      `json:"checklistTemplates,omitempty"`
	ExamTemplates          []ExamTemplate           `json:"examTemplates,omitempty"`
	TrainingMaterials      []MonthlyTraining        `json:"trainingMaterials,omitempty"`
	NeedsAssessments       []MonthlyNeedsAssessment `json:"needsAssessments,omitempty"`
	AdminMessages          []AdminMessage           `json:"adminMessages,omitempty"`
}

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	ManagerName       string `json:"managerName"`
	ManagerNationalID string `json:"managerNationalId"`
	ManagerPassword   string `json:"managerPassword"`

	StaffCount int `json:"staffCount"`
	BedCount   int `json:"bedCount"`

	Staff                     []StaffMember     `json:"staff"`
	Patients                  []Patient         `json:"patients,omitempty"`
	TrainingMaterials         []MonthlyTraining `json:"trainingMaterials,omitempty"`
	PatientEducationMaterials []Material        `json:"patientEducationMaterials,omitempty"`
}

type StaffMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	NationalID string `json:"nationalId"`
	Password   string `json:"password"`

	Assessments []Assessment `json:"assessments"`
	WorkLogs    []WorkLog    `json:"workLogs,omitempty"`
}

type Patient struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	NationalID  string        `json:"nationalId"`
	Password    string        `json:"password"`
	ChatHistory []ChatMessage `json:"chatHistory,omitempty"`
}

type ChatSender string

const (
	SenderPatient ChatSender = "patient"
	SenderManager ChatSender = "manager"
)

type ChatMessage struct {
	ID        string     `json:"id"`
	Sender    ChatSender `json:"sender"`
	Text      string     `json:"text"`
	Timestamp string     `json:"timestamp"`
	File      *FileRef   `json:"file,omitempty"`
}

// FileRef points at an uploaded blob.
type FileRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Material is an uploaded document. Path is a stored blob path; Data is an
// inline data URL kept by older documents that predate blob storage.
type Material struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
	Data        string `json:"data,omitempty"`
}

type MonthlyTraining struct {
	Month     string     `json:"month"`
	Materials []Material `json:"materials"`
}

type NewsBanner struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImagePath   string `json:"imagePath,omitempty"`
}

type AdminMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type MonthlyNeedsAssessment struct {
	Month  string                 `json:"month"`
	Year   int                    `json:"year"`
	Topics []NeedsAssessmentTopic `json:"topics"`
}

type NeedsAssessmentTopic struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Responses   []TopicResponse `json:"responses,omitempty"`
}

type TopicResponse struct {
	StaffID     string `json:"staffId"`
	StaffName   string `json:"staffName"`
	Response    string `json:"response"`
	SubmittedAt string `json:"submittedAt"`
}

type WorkLog struct {
	ID                  string  `json:"id"`
	Month               string  `json:"month"`
	Year                int     `json:"year"`
	RequiredHours       float64 `json:"requiredHours"`
	OvertimeHours       float64 `json:"overtimeHours"`
	LeaveTakenHours     float64 `json:"leaveTakenHours"`
	RemainingLeaveHours float64 `json:"remainingLeaveHours"`
	Tenure              string  `json:"tenure,omitempty"`
}

// ===== LOOKUPS =====

func (h *Hospital) Department(departmentID string) *Department {
	for i := range h.Departments {
		if h.Departments[i].ID == departmentID {
			return &h.Departments[i]
		}
	}
	return nil
}

func (h *Hospital) ChecklistTemplate(templateID string) *ChecklistTemplate {
	for i := range h.ChecklistTemplates {
		if h.ChecklistTemplates[i].ID == templateID {
			return &h.ChecklistTemplates[i]
		}
	}
	return nil
}

func (h *Hospital) ExamTemplate(templateID string) *ExamTemplate {
	for i := range h.ExamTemplates {
		if h.ExamTemplates[i].ID == templateID {
			return &h.ExamTemplates[i]
		}
	}
	return nil
}

func (d *Department) StaffMember(staffID string) *StaffMember {
	for i := range d.Staff {
		if d.Staff[i].ID == staffID {
			return &d.Staff[i]
		}
	}
	return nil
}

func (d *Department) Patient(patientID string) *Patient {
	for i := range d.Patients {
		if d.Patients[i].ID == patientID {
			return &d.Patients[i]
		}
	}
	return nil
}

// ===== BLOB REFERENCES =====

func materialPaths(materials []Material) []string {
	var paths []string
	for _, m := range materials {
		if m.Path != "" {
			paths = append(paths, m.Path)
		}
	}
	return paths
}

func trainingPaths(groups []MonthlyTraining) []string {
	var paths []string
	for _, g := range groups {
		paths = append(paths, materialPaths(g.Materials)...)
	}
	return paths
}

// BlobPaths lists the stored blob paths owned by the hospital and everything
// beneath it.
func (h *Hospital) BlobPaths() []string {
	paths := materialPaths(h.AccreditationMaterials)
	paths = append(paths, trainingPaths(h.TrainingMaterials)...)
	for _, b := range h.NewsBanners {
		if b.ImagePath != "" {
			paths = append(paths, b.ImagePath)
		}
	}
	for i := range h.Departments {
		paths = append(paths, h.Departments[i].BlobPaths()...)
	}
	return paths
}

// BlobPaths lists the stored blob paths owned by the department, its
// patients' chat attachments included.
func (d *Department) BlobPaths() []string {
	paths := trainingPaths(d.TrainingMaterials)
	paths = append(paths, materialPaths(d.PatientEducationMaterials)...)
	for i := range d.Patients {
		paths = append(paths, d.Patients[i].BlobPaths()...)
	}
	return paths
}

func (p *Patient) BlobPaths() []string {
	var paths []string
	for _, msg := range p.ChatHistory {
		if msg.File != nil && msg.File.Path != "" {
			paths = append(paths, msg.File.Path)
		}
	}
	return paths
}
