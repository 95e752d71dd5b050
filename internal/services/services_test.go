package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/blob"
	"github.com/SAP-F-2025/skill-tracker/internal/cache"
	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/events"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/repositories/memory"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type harness struct {
	remote  *memory.DocumentStore
	local   cache.LocalStore
	cleaner *blob.Cleaner
	engine  *syncer.Engine
	root    string
	deps    Dependencies
}

func newHarness(t *testing.T, seed *models.Dataset) *harness {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	remote := memory.NewDocumentStore()
	if seed != nil {
		require.NoError(t, remote.Seed(seed))
	}

	local, err := cache.NewLevelDBStore(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	require.NoError(t, local.InitBlobs(ctx))

	root := t.TempDir()
	backend, err := blob.NewFSBackend(root, "")
	require.NoError(t, err)
	storage := blob.NewStorage(backend, local, "uploads", logger)

	transport, err := events.NewTransport(config.EventsConfig{Driver: "memory"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })
	cleaner := blob.NewCleaner(events.NewWatermillPublisher(transport.Publisher, logger), transport.Subscriber, storage, logger)
	require.NoError(t, cleaner.Start(ctx))
	t.Cleanup(func() { _ = cleaner.Close() })

	engine := syncer.NewEngine(remote, local, cleaner, logger)
	return &harness{
		remote:  remote,
		local:   local,
		cleaner: cleaner,
		engine:  engine,
		root:    root,
		deps: Dependencies{
			Engine:    engine,
			Blobs:     storage,
			Cleaner:   cleaner,
			Resolver:  auth.NewResolver(config.AuthConfig{AdminNationalID: "admin", AdminPassword: "admin"}),
			Validator: validator.New(),
			Logger:    logger,
		},
	}
}

func (h *harness) fetch(t *testing.T) *models.Dataset {
	t.Helper()
	return h.engine.FetchDataset(context.Background())
}

func (h *harness) blobExists(path string) bool {
	_, err := os.Stat(filepath.Join(h.root, filepath.FromSlash(path)))
	return err == nil
}

func (h *harness) waitCleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.cleaner.Wait(ctx))
}

func seedHospital() *models.Dataset {
	return &models.Dataset{Hospitals: []models.Hospital{{
		ID:                   "H1",
		Name:                 "Imam Reza",
		SupervisorNationalID: "100",
		SupervisorPassword:   "sup",
		Departments:          []models.Department{},
		ChecklistTemplates: []models.ChecklistTemplate{
			{ID: "tpl", Name: "ICU skills", MinScore: 0, MaxScore: 4},
		},
	}}}
}

func assessmentsFor(ds *models.Dataset, staffID string) []models.Assessment {
	_, _, s := ds.FindStaff(staffID)
	if s == nil {
		return nil
	}
	return s.Assessments
}

func TestScenario_DepartmentStaffAssessment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	departments := NewDepartmentService(h.deps)
	staff := NewStaffService(h.deps)

	require.NoError(t, departments.UpsertDepartment(ctx, "H1", &models.Department{ID: "D1", Name: "ICU"}))
	ds := h.fetch(t)
	require.Len(t, ds.Hospitals, 1)
	require.Len(t, ds.Hospitals[0].Departments, 1)
	assert.Equal(t, "D1", ds.Hospitals[0].Departments[0].ID)

	require.NoError(t, staff.UpsertStaff(ctx, "H1", "D1", &models.StaffMember{ID: "S1", Name: "Ali", NationalID: "300"}))

	a := &models.Assessment{
		Month:      "فروردین",
		Year:       1403,
		TemplateID: "tpl",
		SkillCategories: []models.SkillCategory{
			{Name: "A", Items: []models.SkillItem{{Description: "x", Score: 5}}},
		},
	}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", a))
	assert.NotEmpty(t, a.ID)

	got := assessmentsFor(h.fetch(t), "S1")
	require.Len(t, got, 1)
	assert.Equal(t, "فروردین", got[0].Month)
	assert.Equal(t, 1403, got[0].Year)
	assert.Equal(t, 4.0, got[0].SkillCategories[0].Items[0].Score)
	require.NotNil(t, got[0].MaxScore)
	assert.Equal(t, 4.0, *got[0].MaxScore)
}

func TestUpsertAssessment_Clamping(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Staff: []models.StaffMember{{ID: "S1"}}}}
	h := newHarness(t, seed)
	staff := NewStaffService(h.deps)

	a := &models.Assessment{
		Month:      "مهر",
		Year:       1402,
		TemplateID: "tpl",
		SkillCategories: []models.SkillCategory{
			{Name: "A", Items: []models.SkillItem{{Score: -1}, {Score: 7}, {Score: 2.5}}},
		},
	}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", a))

	items := assessmentsFor(h.fetch(t), "S1")[0].SkillCategories[0].Items
	assert.Equal(t, []float64{0, 4, 2.5}, []float64{items[0].Score, items[1].Score, items[2].Score})

	// bounds stored on the assessment win over the template
	lo, hi := 1.0, 3.0
	b := &models.Assessment{
		Month: "آبان", Year: 1402, TemplateID: "tpl", MinScore: &lo, MaxScore: &hi,
		SkillCategories: []models.SkillCategory{{Name: "B", Items: []models.SkillItem{{Score: 0}, {Score: 4}}}},
	}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", b))
	var stored models.Assessment
	for _, x := range assessmentsFor(h.fetch(t), "S1") {
		if x.Month == "آبان" {
			stored = x
		}
	}
	assert.Equal(t, 1.0, stored.SkillCategories[0].Items[0].Score)
	assert.Equal(t, 3.0, stored.SkillCategories[0].Items[1].Score)
}

func TestAtMostOnePerKey(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Staff: []models.StaffMember{{ID: "S1", Name: "Ali"}}}}
	seed.Hospitals[0].NeedsAssessments = []models.MonthlyNeedsAssessment{
		{Month: "دی", Year: 1403, Topics: []models.NeedsAssessmentTopic{{ID: "T1", Title: "CPR"}}},
	}
	h := newHarness(t, seed)
	staff := NewStaffService(h.deps)
	needs := NewNeedsService(h.deps)

	first := &models.Assessment{Month: "دی", Year: 1403, ManagerMessage: "good"}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", first))
	second := &models.Assessment{ID: "other", Month: "دی", Year: 1403}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", second))
	third := &models.Assessment{Month: "دی", Year: 1403}
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", third))
	require.NoError(t, staff.UpsertAssessment(ctx, "H1", "D1", "S1", &models.Assessment{Month: "دی", Year: 1402}))

	got := assessmentsFor(h.fetch(t), "S1")
	require.Len(t, got, 2)
	assert.Equal(t, "other", got[0].ID)
	assert.Equal(t, "good", got[0].ManagerMessage, "notes survive a resubmitted form")
	assert.Equal(t, 1402, got[1].Year)

	for _, hours := range []float64{160, 170} {
		require.NoError(t, staff.UpsertWorkLog(ctx, "H1", "D1", "S1", &models.WorkLog{Month: "دی", Year: 1403, RequiredHours: hours}))
	}
	_, _, member := h.fetch(t).FindStaff("S1")
	require.Len(t, member.WorkLogs, 1)
	assert.Equal(t, 170.0, member.WorkLogs[0].RequiredHours)

	for _, text := range []string{"more drills", "more CPR drills"} {
		require.NoError(t, needs.SubmitNeedsResponse(ctx, "H1", "دی", 1403, "T1", models.TopicResponse{StaffID: "S1", StaffName: "Ali", Response: text}))
	}
	topic := h.fetch(t).Hospitals[0].NeedsAssessments[0].Topics[0]
	require.Len(t, topic.Responses, 1)
	assert.Equal(t, "more CPR drills", topic.Responses[0].Response)
}

func TestDeleteDepartment_CascadesBlobCleanup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	departments := NewDepartmentService(h.deps)
	patients := NewPatientService(h.deps)

	require.NoError(t, departments.UpsertDepartment(ctx, "H1", &models.Department{ID: "D1", Name: "ICU"}))
	require.NoError(t, departments.UpsertDepartment(ctx, "H1", &models.Department{ID: "D2", Name: "ER"}))

	training := &models.Material{Name: "hygiene.pdf", Type: "application/pdf", Data: blob.EncodeDataURL("application/pdf", []byte("pdf"))}
	require.NoError(t, departments.AddDepartmentTrainingMaterial(ctx, "H1", "D1", "مهر", training))
	education := &models.Material{Name: "diet.pdf", Data: blob.EncodeDataURL("application/pdf", []byte("diet"))}
	require.NoError(t, departments.AddPatientEducationMaterial(ctx, "H1", "D1", education))
	kept := &models.Material{Name: "er-guide.pdf", Data: blob.EncodeDataURL("application/pdf", []byte("er"))}
	require.NoError(t, departments.AddPatientEducationMaterial(ctx, "H1", "D2", kept))

	require.NoError(t, patients.UpsertPatient(ctx, "H1", "D1", &models.Patient{ID: "P1", Name: "Mina", NationalID: "400"}))
	msg := &models.ChatMessage{
		Sender: models.SenderPatient,
		Text:   "my scan",
		File:   &models.FileRef{Name: "scan.png", Type: "image/png", Path: blob.EncodeDataURL("image/png", []byte{0x89, 'P', 'N', 'G'})},
	}
	require.NoError(t, patients.AppendChatMessage(ctx, "H1", "D1", "P1", msg))

	ds := h.fetch(t)
	paths := ds.Department("H1", "D1").BlobPaths()
	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.True(t, h.blobExists(p), p)
		assert.False(t, blob.IsDataURL(p))
	}
	assert.Empty(t, ds.Department("H1", "D1").PatientEducationMaterials[0].Data, "inline content moved to blob storage")

	require.NoError(t, departments.DeleteDepartment(ctx, "H1", "D1"))
	h.waitCleanup(t)

	for _, p := range paths {
		assert.False(t, h.blobExists(p), p)
		_, ok, err := h.local.GetBlob(ctx, p)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, h.blobExists(kept.Path), "other departments keep their files")
	assert.Nil(t, h.fetch(t).Department("H1", "D1"))
}

func TestDeleteHospital_Verification(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	hospitals := NewHospitalService(h.deps)

	banner := &models.NewsBanner{Title: "Open day", ImagePath: blob.EncodeDataURL("image/png", []byte("img"))}
	require.NoError(t, hospitals.AddNewsBanner(ctx, "H1", banner))
	require.True(t, h.blobExists(banner.ImagePath))

	h.remote.SetSilentReject(true)
	err := hospitals.DeleteHospital(ctx, "H1")
	require.Error(t, err)
	assert.True(t, syncer.IsPolicyRejection(err))
	kind, _ := syncer.KindOf(err)
	assert.Equal(t, syncer.KindVerification, kind)
	assert.NotNil(t, h.local.ReadDataset(ctx).Hospital("H1"))

	h.waitCleanup(t)
	assert.True(t, h.blobExists(banner.ImagePath), "blobs stay while the hospital still exists")

	h.remote.SetSilentReject(false)
	require.NoError(t, hospitals.DeleteHospital(ctx, "H1"))
	assert.Nil(t, h.fetch(t).Hospital("H1"))
	h.waitCleanup(t)
	assert.False(t, h.blobExists(banner.ImagePath))

	err = hospitals.DeleteHospital(ctx, "H1")
	assert.ErrorIs(t, err, ErrHospitalNotFound)
	assert.True(t, IsNotFound(err))
}

func TestUpsert_KeepsChildren(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Name: "ICU", Staff: []models.StaffMember{{ID: "S1"}}}}
	h := newHarness(t, seed)

	require.NoError(t, NewHospitalService(h.deps).UpsertHospital(ctx, &models.Hospital{ID: "H1", Name: "Renamed"}))
	require.NoError(t, NewDepartmentService(h.deps).UpsertDepartment(ctx, "H1", &models.Department{ID: "D1", Name: "Intensive care"}))

	got := h.fetch(t).Hospital("H1")
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.ChecklistTemplates, 1)
	require.Len(t, got.Departments, 1)
	assert.Equal(t, "Intensive care", got.Departments[0].Name)
	assert.Len(t, got.Departments[0].Staff, 1)

	newHospital := &models.Hospital{Name: "Sina"}
	require.NoError(t, NewHospitalService(h.deps).UpsertHospital(ctx, newHospital))
	assert.NotEmpty(t, newHospital.ID)
	assert.Len(t, h.fetch(t).Hospitals, 2)

	err := NewStaffService(h.deps).UpsertStaff(ctx, "H1", "missing", &models.StaffMember{Name: "x"})
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
	kind, _ := syncer.KindOf(err)
	assert.Equal(t, syncer.KindValidation, kind)
}

func TestUpsert_KeepsCredentialsWhenBlank(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{
		ID: "D1", Name: "ICU", ManagerNationalID: "200", ManagerPassword: "man",
		Staff:    []models.StaffMember{{ID: "S1", Name: "Ali", NationalID: "300", Password: "st"}},
		Patients: []models.Patient{{ID: "P1", Name: "Mina", NationalID: "400", Password: "pt"}},
	}}
	h := newHarness(t, seed)
	login := NewAuthService(h.deps)

	require.NoError(t, NewHospitalService(h.deps).UpsertHospital(ctx, &models.Hospital{ID: "H1", Name: "Renamed"}))
	require.NoError(t, NewDepartmentService(h.deps).UpsertDepartment(ctx, "H1", &models.Department{ID: "D1", Name: "Ward"}))
	require.NoError(t, NewStaffService(h.deps).UpsertStaff(ctx, "H1", "D1", &models.StaffMember{ID: "S1", Name: "Ali R."}))
	require.NoError(t, NewPatientService(h.deps).UpsertPatient(ctx, "H1", "D1", &models.Patient{ID: "P1", Name: "Mina K."}))

	for _, tc := range []struct {
		nationalID, password string
		role                 models.UserRole
	}{
		{"100", "sup", models.RoleSupervisor},
		{"200", "man", models.RoleManager},
		{"300", "st", models.RoleStaff},
		{"400", "pt", models.RolePatient},
	} {
		p, err := login.Login(ctx, tc.nationalID, tc.password)
		require.NoError(t, err, tc.nationalID)
		assert.Equal(t, tc.role, p.Role)
	}

	// a supplied credential still replaces the stored one
	require.NoError(t, NewDepartmentService(h.deps).UpsertDepartment(ctx, "H1", &models.Department{ID: "D1", Name: "Ward", ManagerPassword: "new"}))
	_, err := login.Login(ctx, "200", "man")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	p, err := login.Login(ctx, "200", "new")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, p.Role)
}

func TestAppendChatMessage_KeepsUploadWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Patients: []models.Patient{{ID: "P1", Name: "Mina"}}}}
	h := newHarness(t, seed)
	patients := NewPatientService(h.deps)

	h.remote.SetReplaceError(errors.New("connection refused"))
	msg := &models.ChatMessage{
		Sender: models.SenderPatient,
		Text:   "my scan",
		File:   &models.FileRef{Name: "scan.png", Type: "image/png", Path: blob.EncodeDataURL("image/png", []byte{0x89, 'P', 'N', 'G'})},
	}
	err := patients.AppendChatMessage(ctx, "H1", "D1", "P1", msg)
	require.Error(t, err)
	kind, _ := syncer.KindOf(err)
	assert.Equal(t, syncer.KindRemote, kind)
	h.waitCleanup(t)

	// offline: the local cache holds the message and its file
	h.remote.SetFetchError(errors.New("connection refused"))
	dept := h.fetch(t).Department("H1", "D1")
	require.NotNil(t, dept)
	require.Len(t, dept.Patients, 1)
	patient := dept.Patients[0]
	require.Len(t, patient.ChatHistory, 1)
	file := patient.ChatHistory[0].File
	require.NotNil(t, file)
	assert.False(t, blob.IsDataURL(file.Path))
	assert.True(t, h.blobExists(file.Path), "upload referenced by the local cache is kept")
}

func TestAppendChatMessage_DiscardsUploadWhenRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	patients := NewPatientService(h.deps)

	msg := &models.ChatMessage{
		Sender: models.SenderManager,
		File:   &models.FileRef{Name: "note.pdf", Type: "application/pdf", Path: blob.EncodeDataURL("application/pdf", []byte("pdf"))},
	}
	err := patients.AppendChatMessage(ctx, "H1", "missing", "P1", msg)
	require.Error(t, err)
	kind, _ := syncer.KindOf(err)
	assert.Equal(t, syncer.KindValidation, kind)
	require.False(t, blob.IsDataURL(msg.File.Path))

	h.waitCleanup(t)
	assert.False(t, h.blobExists(msg.File.Path), "nothing references the upload")
}

func TestSubmitExam(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].ExamTemplates = []models.ExamTemplate{{
		ID:   "E1",
		Name: "Safety",
		Questions: []models.ExamQuestion{
			{ID: "q1", Type: models.QuestionMultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{ID: "q2", Type: models.QuestionMultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: "b"},
			{ID: "q3", Type: models.QuestionDescriptive},
		},
	}}
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Staff: []models.StaffMember{{
		ID:          "S1",
		Assessments: []models.Assessment{{ID: "A1", Month: "مهر", Year: 1403}},
	}}}}
	h := newHarness(t, seed)
	staff := NewStaffService(h.deps)
	hospitals := NewHospitalService(h.deps)

	sub, err := staff.SubmitExam(ctx, "H1", "D1", "S1", "A1", "E1", []models.ExamAnswer{
		{QuestionID: "q1", Answer: "a"}, {QuestionID: "q2", Answer: "a"}, {QuestionID: "q3", Answer: "text"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, sub.Score)
	assert.Equal(t, 2, sub.TotalAutoGradedQuestions)
	assert.Equal(t, "Safety", sub.ExamName)

	// editing the template later leaves the stored copy alone
	edited := seed.Hospitals[0].ExamTemplates[0]
	edited.Questions = []models.ExamQuestion{{ID: "q9", Type: models.QuestionDescriptive, Text: "new"}}
	require.NoError(t, hospitals.UpsertExamTemplate(ctx, "H1", &edited))

	_, err = staff.SubmitExam(ctx, "H1", "D1", "S1", "A1", "E1", nil)
	require.NoError(t, err)

	subs := assessmentsFor(h.fetch(t), "S1")[0].ExamSubmissions
	require.Len(t, subs, 1, "resubmission replaces the earlier one")
	assert.Equal(t, 0, subs[0].TotalAutoGradedQuestions)
	assert.Equal(t, "q9", subs[0].Questions[0].ID)

	_, err = staff.SubmitExam(ctx, "H1", "D1", "S1", "A1", "missing", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestBackup_ExportImport(t *testing.T) {
	ctx := context.Background()
	seed := seedHospital()
	seed.Hospitals[0].Departments = []models.Department{{ID: "D1", Name: "ICU"}}
	seed.Hospitals = append(seed.Hospitals, models.Hospital{ID: "H2", Name: "Sina"})
	h := newHarness(t, seed)
	backups := NewBackupService(h.deps)

	supervisor := &models.Principal{Role: models.RoleSupervisor, HospitalID: "H1"}
	manager := &models.Principal{Role: models.RoleManager, HospitalID: "H1", DepartmentID: "D1"}

	b, err := backups.Export(ctx, supervisor)
	require.NoError(t, err)
	assert.Equal(t, BackupHospital, b.Type)
	assert.Equal(t, "H1", b.ID)

	raw := []byte(`{"type":"hospital-backup","id":"H1","exportedAt":"2024-01-01T00:00:00Z","data":{"id":"H1","name":"Restored","departments":[]}}`)

	writes := h.remote.Writes()
	err = backups.Import(ctx, manager, raw)
	var mismatch *BackupMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "type", mismatch.Field)
	assert.ErrorIs(t, err, ErrInvalidBackup)
	assert.Equal(t, writes, h.remote.Writes(), "rejected files never reach the store")

	err = backups.Import(ctx, &models.Principal{Role: models.RoleSupervisor, HospitalID: "H2"}, raw)
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "id", mismatch.Field)

	assert.ErrorIs(t, backups.Import(ctx, supervisor, []byte("not json")), ErrInvalidBackup)

	require.NoError(t, backups.Import(ctx, supervisor, raw))
	ds := h.fetch(t)
	assert.Equal(t, "Restored", ds.Hospital("H1").Name)
	assert.Empty(t, ds.Hospital("H1").Departments)
	assert.Equal(t, "Sina", ds.Hospital("H2").Name)

	_, err = backups.Export(ctx, &models.Principal{Role: models.RoleStaff})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestBackup_FullRoundTripAndReset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	backups := NewBackupService(h.deps)
	hospitals := NewHospitalService(h.deps)
	admin := &models.Principal{Role: models.RoleAdmin}

	doc := &models.Material{Name: "cert.pdf", Data: blob.EncodeDataURL("application/pdf", []byte("cert"))}
	require.NoError(t, hospitals.AddAccreditationMaterial(ctx, "H1", doc))

	b, err := backups.Export(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, BackupFull, b.Type)

	require.NoError(t, backups.ResetDataset(ctx))
	assert.True(t, h.fetch(t).IsEmpty())
	h.waitCleanup(t)
	assert.False(t, h.blobExists(doc.Path))

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	require.NoError(t, backups.Import(ctx, admin, raw))
	ds := h.fetch(t)
	require.NotNil(t, ds.Hospital("H1"))
	assert.Len(t, ds.Hospital("H1").AccreditationMaterials, 1)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	svc := NewAuthService(h.deps)

	p, err := svc.Login(ctx, "100", "sup")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, p.Role)
	assert.Equal(t, "H1", p.HospitalID)

	_, err = svc.Login(ctx, "100", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// remote down: credentials still resolve from the local cache
	h.remote.SetFetchError(errors.New("network unreachable"))
	p, err = svc.Login(ctx, "100", "sup")
	require.NoError(t, err)
	assert.Equal(t, "H1", p.HospitalID)

	view := svc.View(ctx, p)
	require.Len(t, view.Hospitals, 1)
}

func TestServiceManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, seedHospital())
	sm := NewServiceManager(h.deps, h.remote, DefaultServiceManagerConfig())

	assert.Error(t, sm.HealthCheck(ctx))
	assert.Panics(t, func() { sm.Hospital() })

	require.NoError(t, sm.Initialize(ctx))
	require.NoError(t, sm.Initialize(ctx))
	assert.NoError(t, sm.HealthCheck(ctx))
	assert.NotNil(t, sm.Hospital())
	assert.NotNil(t, sm.Backup())
	assert.Equal(t, "Imam Reza", h.engine.Snapshot().Hospital("H1").Name)

	require.NoError(t, sm.Shutdown(ctx))
	assert.Error(t, sm.HealthCheck(ctx))
}
