// Package repository is the persistence gateway. Every backend implements
// Store; lookups return (nil, nil) for records that do not exist and only
// report infrastructure failures as errors.
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"FormCraft-Backend/src/models"
)

var (
	// ErrRevisionConflict is returned by UpdateForm when the caller edited a
	// stale copy of the form.
	ErrRevisionConflict = errors.New("form was modified by someone else")
	// ErrDuplicate is returned when a unique username or email is taken.
	ErrDuplicate = errors.New("duplicate key")
)

type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountSuperAdmins(ctx context.Context) (int64, error)

	CreateForm(ctx context.Context, form *models.Form) (*models.Form, error)
	GetForm(ctx context.Context, id string) (*models.Form, error)
	UpdateForm(ctx context.Context, id string, update models.FormUpdate) (*models.Form, error)
	DeleteForm(ctx context.Context, id string) ([]*models.FileUpload, bool, error)
	ListFormsByOwner(ctx context.Context, userID string) ([]*models.Form, error)
	ListAllForms(ctx context.Context) ([]*models.Form, error)
	// SearchForms matches name or description case-insensitively. An empty
	// ownerID searches every form.
	SearchForms(ctx context.Context, query, ownerID string) ([]*models.Form, error)
	PublishForm(ctx context.Context, id string) (*models.Form, error)

	CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListSubmissionsByForm(ctx context.Context, formID string) ([]*models.Submission, error)
	DeleteSubmission(ctx context.Context, id string) ([]*models.FileUpload, bool, error)

	CreateFileUpload(ctx context.Context, file *models.FileUpload) (*models.FileUpload, error)
	ListFileUploadsBySubmission(ctx context.Context, submissionID string) ([]*models.FileUpload, error)

	Close(ctx context.Context) error
}

// publishAttempts bounds how often publish rereads a form after losing the
// revision compare-and-set to a concurrent save.
const publishAttempts = 3

// publish sets a form live through UpdateForm. A form that is already
// published, possibly by the save that won the race, is returned unchanged.
func publish(ctx context.Context, s Store, id string) (*models.Form, error) {
	status := models.FormPublished
	for attempt := 1; ; attempt++ {
		f, err := s.GetForm(ctx, id)
		if err != nil || f == nil {
			return nil, err
		}
		if f.Status == models.FormPublished && f.PublishedURL != nil {
			return f, nil
		}
		updated, err := s.UpdateForm(ctx, id, models.FormUpdate{Status: &status})
		if errors.Is(err, ErrRevisionConflict) && attempt < publishAttempts {
			continue
		}
		return updated, err
	}
}

// applyUpdate copies the non-nil members of u onto f.
func applyUpdate(f *models.Form, u models.FormUpdate) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
	if u.Schema != nil {
		f.Schema = cloneSchema(*u.Schema)
	}
	if u.Status != nil {
		f.Status = *u.Status
		if f.Status == models.FormPublished {
			url := models.PublishedURLFor(f.ID)
			f.PublishedURL = &url
		}
	}
}

func cloneSchema(s models.FormSchema) models.FormSchema {
	fields := make([]models.FieldDescriptor, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Clone()
	}
	return models.FormSchema{Fields: fields}
}

func matchesQuery(f *models.Form, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Name), q) ||
		strings.Contains(strings.ToLower(f.Description), q)
}

// sortUsers orders users by creation time, oldest first.
func sortUsers(users []*models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
