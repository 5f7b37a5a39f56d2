package forms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/utils"
)

const storeTimeout = 5 * time.Second

// FilePurger disposes of the files behind deleted upload records.
type FilePurger interface {
	PurgeFiles(ctx context.Context, files []*models.FileUpload)
}

type Service struct {
	store  repository.Store
	purger FilePurger
}

func NewService(store repository.Store, purger FilePurger) *Service {
	return &Service{store: store, purger: purger}
}

var (
	errFormNotFound = utils.NewError(utils.ErrNotFound, "Form not found")
	errNoAccess     = utils.NewError(utils.ErrForbidden, "You don't have permission to access this form")
	errStale        = utils.NewError(utils.ErrConflict, "Form was modified by someone else, reload and try again")
)

// ValidateSchema checks the structural rules of a schema: every field has a
// unique non-empty id and there is at most one banner.
func ValidateSchema(schema models.FormSchema) error {
	fields := map[string]string{}
	seen := make(map[string]struct{}, len(schema.Fields))
	for i, f := range schema.Fields {
		key := fmt.Sprintf("schema.fields[%d].id", i)
		if strings.TrimSpace(f.ID) == "" {
			fields[key] = "required"
			continue
		}
		if _, dup := seen[f.ID]; dup {
			fields[key] = "duplicate"
		}
		seen[f.ID] = struct{}{}
	}
	if schema.BannerCount() > 1 {
		fields["schema.fields"] = "only one bannerUpload field is allowed"
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Invalid form schema", fields)
	}
	return nil
}

func emptyIfNil(forms []*models.Form) []*models.Form {
	if forms == nil {
		return []*models.Form{}
	}
	return forms
}

// List returns every form to a super admin and only their own to an admin.
func (s *Service) List(ctx context.Context, actor *models.User) ([]*models.Form, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var (
		forms []*models.Form
		err   error
	)
	if actor.IsSuperAdmin() {
		forms, err = s.store.ListAllForms(ctx)
	} else {
		forms, err = s.store.ListFormsByOwner(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	return emptyIfNil(forms), nil
}

// Search matches name or description within the forms actor can see.
func (s *Service) Search(ctx context.Context, actor *models.User, query string) ([]*models.Form, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	ownerID := actor.ID
	if actor.IsSuperAdmin() {
		ownerID = ""
	}
	forms, err := s.store.SearchForms(ctx, strings.TrimSpace(query), ownerID)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(forms), nil
}

func (s *Service) Create(ctx context.Context, actor *models.User, dto models.FormDto) (*models.Form, error) {
	if dto.Name == nil || strings.TrimSpace(*dto.Name) == "" {
		return nil, utils.NewValidationError("Validation error", map[string]string{"name": "required"})
	}
	form := &models.Form{
		Name:   strings.TrimSpace(*dto.Name),
		UserID: actor.ID,
		Status: models.FormDraft,
	}
	if dto.Description != nil {
		form.Description = *dto.Description
	}
	if dto.Schema != nil {
		if err := ValidateSchema(*dto.Schema); err != nil {
			return nil, err
		}
		form.Schema = *dto.Schema
	}
	if form.Schema.Fields == nil {
		form.Schema.Fields = []models.FieldDescriptor{}
	}
	if dto.Status != nil {
		form.Status = *dto.Status
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	created, err := s.store.CreateForm(ctx, form)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Form %s created by %s", created.ID, actor.Username)
	return created, nil
}

// load fetches a form and checks that actor may manage it.
func (s *Service) load(ctx context.Context, actor *models.User, id string) (*models.Form, error) {
	form, err := s.store.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errFormNotFound
	}
	if !actor.CanManage(form.UserID) {
		return nil, errNoAccess
	}
	return form, nil
}

// Get returns a form for the builder. Without an actor it behaves like
// GetPublic.
func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*models.Form, error) {
	if actor == nil {
		return s.GetPublic(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.load(ctx, actor, id)
}

// GetPublic returns a published form. Drafts look exactly like missing forms.
func (s *Service) GetPublic(ctx context.Context, id string) (*models.Form, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	form, err := s.store.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil || form.Status != models.FormPublished {
		return nil, errFormNotFound
	}
	return form, nil
}

// Update saves the given members. A non-zero dto.Revision must match the
// stored revision.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, dto models.FormDto) (*models.Form, error) {
	update := models.FormUpdate{
		Description:      dto.Description,
		Status:           dto.Status,
		ExpectedRevision: dto.Revision,
	}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, utils.NewValidationError("Validation error", map[string]string{"name": "required"})
		}
		update.Name = &name
	}
	if dto.Schema != nil {
		if err := ValidateSchema(*dto.Schema); err != nil {
			return nil, err
		}
		update.Schema = dto.Schema
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateForm(ctx, id, update)
	if errors.Is(err, repository.ErrRevisionConflict) {
		return nil, errStale
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errFormNotFound
	}
	return updated, nil
}

// Delete removes a form with its submissions and uploads.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	files, deleted, err := s.store.DeleteForm(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errFormNotFound
	}
	log.Printf("🗑️ Form %s deleted with %d file(s)", id, len(files))
	if s.purger != nil {
		s.purger.PurgeFiles(context.WithoutCancel(ctx), files)
	}
	return nil
}

// Publish marks a form as published. Publishing twice is harmless.
func (s *Service) Publish(ctx context.Context, actor *models.User, id string) (*models.Form, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	form, err := s.store.PublishForm(ctx, id)
	if errors.Is(err, repository.ErrRevisionConflict) {
		return nil, errStale
	}
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errFormNotFound
	}
	return form, nil
}
