package service

import (
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"
)

// In-memory repository fakes shared by the service tests. They implement the
// same idempotency contracts as the real GORM repositories: keyed upserts and
// client-key deduplication.

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	return err == nil, nil
}

func (m *mockUserRepository) UsernameExists(username string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) ListByIDs(ids []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) Update(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

type mockProfileRepository struct {
	profiles map[string]*domain.UserProfile // keyed by user ID
	upserts  int
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[string]*domain.UserProfile)}
}

func (m *mockProfileRepository) Upsert(profile *domain.UserProfile) error {
	m.upserts++
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *mockProfileRepository) FindByUserID(userID string) (*domain.UserProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

type progressKey struct{ userID, id string }

type mockProgressRepository struct {
	modules map[progressKey]*domain.ModuleProgress
	lessons map[progressKey]*domain.LessonProgress
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{
		modules: make(map[progressKey]*domain.ModuleProgress),
		lessons: make(map[progressKey]*domain.LessonProgress),
	}
}

func (m *mockProgressRepository) UpsertModuleProgress(p *domain.ModuleProgress) error {
	cp := *p
	m.modules[progressKey{p.UserID, p.ModuleID}] = &cp
	return nil
}

func (m *mockProgressRepository) UpsertLessonProgress(p *domain.LessonProgress) error {
	cp := *p
	m.lessons[progressKey{p.UserID, p.LessonID}] = &cp
	return nil
}

func (m *mockProgressRepository) FindModuleProgress(userID, moduleID string) (*domain.ModuleProgress, error) {
	if p, ok := m.modules[progressKey{userID, moduleID}]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockProgressRepository) ListModuleProgress(userID string) ([]*domain.ModuleProgress, error) {
	var out []*domain.ModuleProgress
	for k, p := range m.modules {
		if k.userID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProgressRepository) ListAllModuleProgress() ([]*domain.ModuleProgress, error) {
	var out []*domain.ModuleProgress
	for _, p := range m.modules {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProgressRepository) ListLessonProgress(userID, moduleID string) ([]*domain.LessonProgress, error) {
	var out []*domain.LessonProgress
	for k, p := range m.lessons {
		if k.userID == userID && p.ModuleID == moduleID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockModuleRepository struct {
	modules map[string]*domain.LearningModule
}

func newMockModuleRepository() *mockModuleRepository {
	return &mockModuleRepository{modules: make(map[string]*domain.LearningModule)}
}

func (m *mockModuleRepository) Create(module *domain.LearningModule) error {
	m.modules[module.ID] = module
	return nil
}

func (m *mockModuleRepository) FindByID(id string) (*domain.LearningModule, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockModuleRepository) List(filter domain.ModuleListFilter) ([]*domain.LearningModule, int64, error) {
	var out []*domain.LearningModule
	for _, mod := range m.modules {
		out = append(out, mod)
	}
	return out, int64(len(out)), nil
}

func (m *mockModuleRepository) Update(module *domain.LearningModule) error {
	m.modules[module.ID] = module
	return nil
}

func (m *mockModuleRepository) Delete(id string) error {
	if _, ok := m.modules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.modules, id)
	return nil
}

func (m *mockModuleRepository) CountPublished() (int64, error) {
	return int64(len(m.modules)), nil
}

type mockLessonRepository struct {
	lessons map[string]*domain.Lesson
}

func newMockLessonRepository() *mockLessonRepository {
	return &mockLessonRepository{lessons: make(map[string]*domain.Lesson)}
}

func (m *mockLessonRepository) Create(lesson *domain.Lesson) error {
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *mockLessonRepository) FindByID(id string) (*domain.Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockLessonRepository) ListByModule(moduleID string) ([]*domain.Lesson, error) {
	var out []*domain.Lesson
	for _, l := range m.lessons {
		if l.ModuleID == moduleID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLessonRepository) CountByModule(moduleID string) (int64, error) {
	lessons, _ := m.ListByModule(moduleID)
	return int64(len(lessons)), nil
}

type mockQuizRepository struct {
	quizzes map[string]*domain.Quiz
}

func newMockQuizRepository() *mockQuizRepository {
	return &mockQuizRepository{quizzes: make(map[string]*domain.Quiz)}
}

func (m *mockQuizRepository) Create(quiz *domain.Quiz) error {
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *mockQuizRepository) FindByID(id string) (*domain.Quiz, error) {
	if q, ok := m.quizzes[id]; ok {
		return q, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockQuizRepository) ListByLesson(lessonID string) ([]*domain.Quiz, error) {
	var out []*domain.Quiz
	for _, q := range m.quizzes {
		if q.LessonID == lessonID {
			out = append(out, q)
		}
	}
	return out, nil
}

type mockDrillRepository struct {
	drills map[string]*domain.Drill
}

func newMockDrillRepository() *mockDrillRepository {
	return &mockDrillRepository{drills: make(map[string]*domain.Drill)}
}

func (m *mockDrillRepository) Create(drill *domain.Drill) error {
	m.drills[drill.ID] = drill
	return nil
}

func (m *mockDrillRepository) FindByID(id string) (*domain.Drill, error) {
	if d, ok := m.drills[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockDrillRepository) List(category domain.HazardCategory) ([]*domain.Drill, error) {
	var out []*domain.Drill
	for _, d := range m.drills {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDrillRepository) Update(drill *domain.Drill) error {
	m.drills[drill.ID] = drill
	return nil
}

func (m *mockDrillRepository) Delete(id string) error {
	if _, ok := m.drills[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.drills, id)
	return nil
}

type mockResultRepository struct {
	drillResults map[string]*domain.DrillResult // keyed by client key
	quizResults  map[string]*domain.QuizResult
}

func newMockResultRepository() *mockResultRepository {
	return &mockResultRepository{
		drillResults: make(map[string]*domain.DrillResult),
		quizResults:  make(map[string]*domain.QuizResult),
	}
}

func (m *mockResultRepository) CreateDrillResult(result *domain.DrillResult) (bool, error) {
	if _, ok := m.drillResults[result.ClientKey]; ok {
		return false, nil
	}
	m.drillResults[result.ClientKey] = result
	return true, nil
}

func (m *mockResultRepository) CreateQuizResult(result *domain.QuizResult) (bool, error) {
	if _, ok := m.quizResults[result.ClientKey]; ok {
		return false, nil
	}
	m.quizResults[result.ClientKey] = result
	return true, nil
}

func (m *mockResultRepository) ListDrillResults(userID string) ([]*domain.DrillResult, error) {
	var out []*domain.DrillResult
	for _, r := range m.drillResults {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResultRepository) ListAllDrillResults() ([]*domain.DrillResult, error) {
	var out []*domain.DrillResult
	for _, r := range m.drillResults {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockResultRepository) ListDrillResultsByDrill(userID, drillID string) ([]*domain.DrillResult, error) {
	var out []*domain.DrillResult
	for _, r := range m.drillResults {
		if r.UserID == userID && r.DrillID == drillID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResultRepository) ListQuizResults(userID string) ([]*domain.QuizResult, error) {
	var out []*domain.QuizResult
	for _, r := range m.quizResults {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockAlertRepository struct {
	alerts map[string]*domain.Alert
	views  map[progressKey]*domain.AlertView
}

func newMockAlertRepository() *mockAlertRepository {
	return &mockAlertRepository{
		alerts: make(map[string]*domain.Alert),
		views:  make(map[progressKey]*domain.AlertView),
	}
}

func (m *mockAlertRepository) Create(alert *domain.Alert) error {
	m.alerts[alert.ID] = alert
	return nil
}

func (m *mockAlertRepository) ListActive(region string) ([]*domain.Alert, error) {
	var out []*domain.Alert
	for _, a := range m.alerts {
		if a.ExpiresAt.After(time.Now()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAlertRepository) DeleteExpired(now time.Time) (int64, error) {
	var purged int64
	for id, a := range m.alerts {
		if !a.ExpiresAt.After(now) {
			delete(m.alerts, id)
			purged++
		}
	}
	return purged, nil
}

func (m *mockAlertRepository) UpsertView(view *domain.AlertView) error {
	m.views[progressKey{view.UserID, view.AlertID}] = view
	return nil
}

func (m *mockAlertRepository) ListViews(userID string) ([]*domain.AlertView, error) {
	var out []*domain.AlertView
	for k, v := range m.views {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

type mockContactRepository struct {
	contacts map[string]*domain.EmergencyContact
}

func newMockContactRepository() *mockContactRepository {
	return &mockContactRepository{contacts: make(map[string]*domain.EmergencyContact)}
}

func (m *mockContactRepository) Create(contact *domain.EmergencyContact) error {
	m.contacts[contact.ID] = contact
	return nil
}

func (m *mockContactRepository) FindByID(id string) (*domain.EmergencyContact, error) {
	if c, ok := m.contacts[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockContactRepository) List(userID string) ([]*domain.EmergencyContact, error) {
	var out []*domain.EmergencyContact
	for _, c := range m.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContactRepository) Update(contact *domain.EmergencyContact) error {
	m.contacts[contact.ID] = contact
	return nil
}

func (m *mockContactRepository) Delete(id string) error {
	if _, ok := m.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *mockContactRepository) TouchAccess(id string, favorite bool, accessedAt time.Time) error {
	c, ok := m.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsFavorite = favorite
	c.LastAccessedAt = &accessedAt
	return nil
}

type mockDeviceRepository struct {
	devices map[string]*domain.Device
}

func newMockDeviceRepository() *mockDeviceRepository {
	return &mockDeviceRepository{devices: make(map[string]*domain.Device)}
}

func (m *mockDeviceRepository) Create(device *domain.Device) error {
	m.devices[device.ID] = device
	return nil
}

func (m *mockDeviceRepository) List(userID string) ([]*domain.Device, error) {
	var out []*domain.Device
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDeviceRepository) FindByID(deviceID string) (*domain.Device, error) {
	if d, ok := m.devices[deviceID]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockDeviceRepository) Revoke(deviceID string) error {
	d, ok := m.devices[deviceID]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsRevoked = true
	return nil
}

func (m *mockDeviceRepository) UpdateLastActive(deviceID string) error {
	if d, ok := m.devices[deviceID]; ok {
		d.LastActive = time.Now()
	}
	return nil
}

func (m *mockDeviceRepository) UpdateLastSync(deviceID string, at time.Time) error {
	d, ok := m.devices[deviceID]
	if !ok {
		return repository.ErrNotFound
	}
	d.LastSyncAt = &at
	d.LastActive = at
	return nil
}
