package submission

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/renderer"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/services/uploads"
	"FormCraft-Backend/src/utils"
)

const storeTimeout = 5 * time.Second

// FileStore checks and stores uploaded files.
type FileStore interface {
	Check(header *multipart.FileHeader, limits uploads.Limits) (string, error)
	Save(key string, header *multipart.FileHeader, limits uploads.Limits) (*models.FileUpload, error)
	Remove(paths ...string) error
}

// FilePurger disposes of the files behind deleted upload records.
type FilePurger interface {
	PurgeFiles(ctx context.Context, files []*models.FileUpload)
}

type Service struct {
	store    repository.Store
	files    FileStore
	purger   FilePurger
	registry *renderer.Registry
}

func NewService(store repository.Store, files FileStore, purger FilePurger) *Service {
	return &Service{store: store, files: files, purger: purger, registry: renderer.Default()}
}

// SubmitInput is one end user's answers. Files and FileMeta are keyed by
// field id and only come with multipart requests.
type SubmitInput struct {
	Data     map[string]any
	Files    map[string][]*multipart.FileHeader
	FileMeta map[string]map[string]any
}

var (
	errFormNotFound       = utils.NewError(utils.ErrNotFound, "Form not found")
	errSubmissionNotFound = utils.NewError(utils.ErrNotFound, "Submission not found")
	errNoAccess           = utils.NewError(utils.ErrForbidden, "You don't have permission to view these submissions")
)

type pendingFile struct {
	fieldID string
	header  *multipart.FileHeader
	limits  uploads.Limits
}

func reason(err error) string {
	var fe *renderer.FieldError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return err.Error()
}

// Submit validates the answers against the published schema and stores
// them with their files. Keys that are not fields of the form are dropped.
func (s *Service) Submit(ctx context.Context, formID string, in SubmitInput) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil || form.Status != models.FormPublished {
		return nil, errFormNotFound
	}

	data := make(map[string]any, len(form.Schema.Fields))
	fieldErrs := map[string]string{}
	var pending []pendingFile

	for _, field := range form.Schema.Fields {
		w := s.registry.Render(field, renderer.ModeFill, func(id string, v any) {
			if v != nil {
				data[id] = v
			}
		})
		cons := w.Constraints()
		if cons.Disabled {
			continue
		}

		if headers := in.Files[field.ID]; field.Type.IsUpload() && len(headers) > 0 {
			limits := uploads.Limits{Accept: cons.Accept, MaxBytes: cons.MaxBytes}
			values := make([]renderer.UploadValue, 0, len(headers))
			for _, h := range headers {
				fileType, err := s.files.Check(h, limits)
				if err != nil {
					fieldErrs[field.ID] = err.Error()
					break
				}
				values = append(values, renderer.UploadValue{FileName: h.Filename, FileType: fileType, Size: h.Size})
				pending = append(pending, pendingFile{fieldID: field.ID, header: h, limits: limits})
			}
			if len(values) == 1 {
				data[field.ID] = values[0]
			} else if len(values) > 1 {
				data[field.ID] = values
			}
			continue
		}

		raw, ok := in.Data[field.ID]
		if ok {
			if err := w.Input(raw); err != nil {
				fieldErrs[field.ID] = reason(err)
				continue
			}
		}
		if err := w.Validate(data[field.ID]); err != nil {
			fieldErrs[field.ID] = reason(err)
			continue
		}
		// inline files skip Check, so the global allowlist is applied here
		if v, ok := data[field.ID].(renderer.UploadValue); ok && v.DataURL != "" && !uploads.Allowed(v.FileType) {
			fieldErrs[field.ID] = uploads.ErrTypeUnsupported.Error()
		}
	}
	if len(fieldErrs) > 0 {
		return nil, utils.NewValidationError("Validation error", fieldErrs)
	}

	var saved []*models.FileUpload
	cleanup := func() {
		paths := make([]string, 0, len(saved))
		for _, f := range saved {
			paths = append(paths, f.FilePath)
		}
		if err := s.files.Remove(paths...); err != nil {
			log.Println("⚠️ Failed to clean up uploads:", err)
		}
	}
	for _, p := range pending {
		f, err := s.files.Save(p.fieldID, p.header, p.limits)
		if err != nil {
			cleanup()
			return nil, err
		}
		f.FieldID = p.fieldID
		f.Metadata = in.FileMeta[p.fieldID]
		saved = append(saved, f)
	}

	sub, err := s.store.CreateSubmission(ctx, &models.Submission{FormID: form.ID, Data: data})
	if err != nil {
		cleanup()
		return nil, err
	}
	for _, f := range saved {
		f.SubmissionID = sub.ID
		if _, err := s.store.CreateFileUpload(ctx, f); err != nil {
			if _, _, derr := s.store.DeleteSubmission(ctx, sub.ID); derr != nil {
				log.Println("❌ Failed to roll back submission:", derr)
			}
			cleanup()
			return nil, err
		}
	}
	log.Printf("📥 Submission %s for form %s (%d file(s))", sub.ID, form.ID, len(saved))
	return sub, nil
}

// authorize loads the form behind formID and checks actor may read its answers.
func (s *Service) authorize(ctx context.Context, actor *models.User, formID string) (*models.Form, error) {
	form, err := s.store.GetForm(ctx, formID)
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

// List returns every submission of a form, newest first.
func (s *Service) List(ctx context.Context, actor *models.User, formID string) ([]*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.authorize(ctx, actor, formID); err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissionsByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	return subs, nil
}

// ListPage is List cut to one page. Order "asc" returns oldest first.
func (s *Service) ListPage(ctx context.Context, actor *models.User, formID string, params models.PaginationParams) (*models.PaginatedResponse, error) {
	subs, err := s.List(ctx, actor, formID)
	if err != nil {
		return nil, err
	}
	params = params.Normalize()
	if params.Order == "asc" {
		for i, j := 0, len(subs)-1; i < j; i, j = i+1, j-1 {
			subs[i], subs[j] = subs[j], subs[i]
		}
	}
	start, end := params.Window(len(subs))
	return models.NewPaginatedResponse(subs[start:end], int64(len(subs)), params), nil
}

// Get returns a submission with its files.
func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*models.SubmissionDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errSubmissionNotFound
	}
	if _, err := s.authorize(ctx, actor, sub.FormID); err != nil {
		return nil, err
	}
	files, err := s.store.ListFileUploadsBySubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*models.FileUpload{}
	}
	return &models.SubmissionDetail{Submission: sub, Files: files}, nil
}

// Delete removes a submission and its uploads.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return errSubmissionNotFound
	}
	if _, err := s.authorize(ctx, actor, sub.FormID); err != nil {
		return err
	}
	files, deleted, err := s.store.DeleteSubmission(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errSubmissionNotFound
	}
	if s.purger != nil {
		s.purger.PurgeFiles(context.WithoutCancel(ctx), files)
	}
	return nil
}
