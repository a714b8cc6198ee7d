package service_test

import (
	"sync"

	"github.com/cleanforms/cleanforms-backend/internal/model"
	"github.com/cleanforms/cleanforms-backend/internal/repository"
)

// --- Mock repositories ---

type MockFormRepo struct {
	Form            *model.Form
	SubmissionCount int
}

func (m *MockFormRepo) GetByID(id int) (*model.Form, error)       { return m.Form, nil }
func (m *MockFormRepo) GetBySlug(slug string) (*model.Form, error) { return m.Form, nil }
func (m *MockFormRepo) Create(f *model.Form) error                 { return nil }
func (m *MockFormRepo) CountSubmissions(formID int) (int, error) {
	return m.SubmissionCount, nil
}

type MockSubmissionRepo struct {
	Submissions []*model.Submission
}

func (m *MockSubmissionRepo) Create(s *model.Submission) error {
	s.ID = len(m.Submissions) + 1
	m.Submissions = append(m.Submissions, s)
	return nil
}

func (m *MockSubmissionRepo) GetByID(id int) (*model.Submission, error) {
	for _, s := range m.Submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *MockSubmissionRepo) ListByForm(formID, offset, limit int, spam *bool) ([]model.Submission, int, error) {
	out := []model.Submission{}
	for _, s := range m.Submissions {
		if s.FormID == formID {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

type MockDeliveryLogRepo struct {
	mu        sync.Mutex
	Entries   map[int]*model.DeliveryLogEntry
	nextID    int
	CreateErr error
}

func NewMockDeliveryLogRepo() *MockDeliveryLogRepo {
	return &MockDeliveryLogRepo{Entries: map[int]*model.DeliveryLogEntry{}}
}

func (m *MockDeliveryLogRepo) Create(e *model.DeliveryLogEntry) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	copied := *e
	m.Entries[e.ID] = &copied
	return nil
}

func (m *MockDeliveryLogRepo) UpdateStatus(id int, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Entries[id]; ok {
		e.Status = status
		e.ErrorMessage = errorMessage
	}
	return nil
}

func (m *MockDeliveryLogRepo) GetByID(id int) (*model.DeliveryLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Entries[id], nil
}

func (m *MockDeliveryLogRepo) List(filter repository.DeliveryLogFilter, offset, limit int) ([]model.DeliveryLogEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.DeliveryLogEntry{}
	for _, e := range m.Entries {
		out = append(out, *e)
	}
	return out, len(out), nil
}

var _ repository.FormRepositoryInterface = (*MockFormRepo)(nil)
var _ repository.SubmissionRepositoryInterface = (*MockSubmissionRepo)(nil)
var _ repository.DeliveryLogRepositoryInterface = (*MockDeliveryLogRepo)(nil)
