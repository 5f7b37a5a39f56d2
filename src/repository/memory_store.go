package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"FormCraft-Backend/src/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs the tests and is
// the fallback when no database is reachable.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]*models.User
	forms       map[string]*models.Form
	submissions map[string]*models.Submission
	files       map[string]*models.FileUpload

	// insertion order, oldest first
	formOrder []string
	subOrder  []string
	fileOrder []string

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		forms:       make(map[string]*models.Form),
		submissions: make(map[string]*models.Submission),
		files:       make(map[string]*models.FileUpload),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyForm(f *models.Form) *models.Form {
	c := *f
	c.Schema = cloneSchema(f.Schema)
	if f.PublishedURL != nil {
		url := *f.PublishedURL
		c.PublishedURL = &url
	}
	return &c
}

func copySubmission(s *models.Submission) *models.Submission {
	c := *s
	c.Data = make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		c.Data[k] = v
	}
	return &c
}

func copyFile(f *models.FileUpload) *models.FileUpload {
	c := *f
	if f.Metadata != nil {
		c.Metadata = make(map[string]any, len(f.Metadata))
		for k, v := range f.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// ---- users ----

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return nil, ErrDuplicate
		}
	}
	c := copyUser(user)
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.users[c.ID] = c
	return copyUser(c), nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	sortUsers(out)
	return out, nil
}

func (s *MemoryStore) CountSuperAdmins(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.Role == models.RoleSuperAdmin {
			n++
		}
	}
	return n, nil
}

// ---- forms ----

func (s *MemoryStore) CreateForm(_ context.Context, form *models.Form) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyForm(form)
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	c.Revision = 1
	if c.Status == "" {
		c.Status = models.FormDraft
	}
	c.PublishedURL = nil
	if c.Status == models.FormPublished {
		url := models.PublishedURLFor(c.ID)
		c.PublishedURL = &url
	}
	s.forms[c.ID] = c
	s.formOrder = append(s.formOrder, c.ID)
	return copyForm(c), nil
}

func (s *MemoryStore) GetForm(_ context.Context, id string) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.forms[id]; ok {
		return copyForm(f), nil
	}
	return nil, nil
}

func (s *MemoryStore) UpdateForm(_ context.Context, id string, update models.FormUpdate) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, nil
	}
	if update.ExpectedRevision != 0 && update.ExpectedRevision != f.Revision {
		return nil, ErrRevisionConflict
	}
	next := copyForm(f)
	applyUpdate(next, update)
	next.Revision++
	next.UpdatedAt = s.now()
	s.forms[id] = next
	return copyForm(next), nil
}

// PublishForm leaves an already published form untouched.
func (s *MemoryStore) PublishForm(_ context.Context, id string) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, nil
	}
	if f.Status == models.FormPublished && f.PublishedURL != nil {
		return copyForm(f), nil
	}
	status := models.FormPublished
	next := copyForm(f)
	applyUpdate(next, models.FormUpdate{Status: &status})
	next.Revision++
	next.UpdatedAt = s.now()
	s.forms[id] = next
	return copyForm(next), nil
}

func (s *MemoryStore) DeleteForm(_ context.Context, id string) ([]*models.FileUpload, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return nil, false, nil
	}
	var removed []*models.FileUpload
	for _, subID := range s.subOrder {
		if sub, ok := s.submissions[subID]; ok && sub.FormID == id {
			removed = append(removed, s.dropSubmissionLocked(subID)...)
		}
	}
	delete(s.forms, id)
	s.formOrder = without(s.formOrder, id)
	return removed, true, nil
}

func (s *MemoryStore) ListFormsByOwner(_ context.Context, userID string) ([]*models.Form, error) {
	return s.collectForms(func(f *models.Form) bool { return f.UserID == userID }), nil
}

func (s *MemoryStore) ListAllForms(_ context.Context) ([]*models.Form, error) {
	return s.collectForms(func(*models.Form) bool { return true }), nil
}

func (s *MemoryStore) SearchForms(_ context.Context, query, ownerID string) ([]*models.Form, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.collectForms(func(f *models.Form) bool {
		return (ownerID == "" || f.UserID == ownerID) && matchesQuery(f, q)
	}), nil
}

// collectForms returns matching forms, newest first.
func (s *MemoryStore) collectForms(keep func(*models.Form) bool) []*models.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Form{}
	for i := len(s.formOrder) - 1; i >= 0; i-- {
		f := s.forms[s.formOrder[i]]
		if f != nil && keep(f) {
			out = append(out, copyForm(f))
		}
	}
	return out
}

// ---- submissions ----

func (s *MemoryStore) CreateSubmission(_ context.Context, sub *models.Submission) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copySubmission(sub)
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.submissions[c.ID] = c
	s.subOrder = append(s.subOrder, c.ID)
	return copySubmission(c), nil
}

func (s *MemoryStore) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.submissions[id]; ok {
		return copySubmission(sub), nil
	}
	return nil, nil
}

func (s *MemoryStore) ListSubmissionsByForm(_ context.Context, formID string) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Submission{}
	for i := len(s.subOrder) - 1; i >= 0; i-- {
		sub := s.submissions[s.subOrder[i]]
		if sub != nil && sub.FormID == formID {
			out = append(out, copySubmission(sub))
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteSubmission(_ context.Context, id string) ([]*models.FileUpload, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[id]; !ok {
		return nil, false, nil
	}
	return s.dropSubmissionLocked(id), true, nil
}

func (s *MemoryStore) dropSubmissionLocked(id string) []*models.FileUpload {
	var removed []*models.FileUpload
	for _, fileID := range s.fileOrder {
		if f, ok := s.files[fileID]; ok && f.SubmissionID == id {
			removed = append(removed, copyFile(f))
			delete(s.files, fileID)
			s.fileOrder = without(s.fileOrder, fileID)
		}
	}
	delete(s.submissions, id)
	s.subOrder = without(s.subOrder, id)
	return removed
}

// ---- files ----

func (s *MemoryStore) CreateFileUpload(_ context.Context, file *models.FileUpload) (*models.FileUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyFile(file)
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.files[c.ID] = c
	s.fileOrder = append(s.fileOrder, c.ID)
	return copyFile(c), nil
}

func (s *MemoryStore) ListFileUploadsBySubmission(_ context.Context, submissionID string) ([]*models.FileUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.FileUpload{}
	for _, id := range s.fileOrder {
		if f := s.files[id]; f != nil && f.SubmissionID == submissionID {
			out = append(out, copyFile(f))
		}
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
