package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/renderer"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/utils"

	"github.com/gabriel-vasile/mimetype"
)

// allowedTypes is the global allowlist; field limits can only narrow it.
var allowedTypes = []string{
	"image/png", "image/jpeg", "image/jpg", "image/gif",
	"application/pdf", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"audio/mpeg", "audio/mp3", "audio/wav", "audio/x-wav",
	"video/mp4", "video/quicktime", "video/x-msvideo",
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var (
	ErrNoFile          = utils.NewError(utils.ErrBadRequest, "No file uploaded")
	ErrTypeUnsupported = utils.NewError(utils.ErrBadRequest, "File type not supported")
	ErrTooLarge        = utils.NewError(utils.ErrBadRequest, "File is too large")
)

// Allowed reports whether fileType is on the global allowlist.
func Allowed(fileType string) bool {
	return slices.Contains(allowedTypes, fileType)
}

// Limits narrows what a single field accepts.
type Limits struct {
	Accept   []string
	MaxBytes int64
}

// Service writes uploaded files under one directory.
type Service struct {
	store    repository.Store
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewService(store repository.Store, dir string, maxBytes int64) (*Service, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Service{store: store, dir: abs, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *Service) Dir() string {
	return s.dir
}

// DetectType returns the media type of an upload sniffed from its content.
// The declared Content-Type only refines generic containers such as zip.
func DetectType(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return renderer.ContentType(mt, header.Header.Get("Content-Type")), nil
}

// Check applies the global and field rules to an upload without storing it.
func (s *Service) Check(header *multipart.FileHeader, limits Limits) (string, error) {
	if header == nil {
		return "", ErrNoFile
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	if limits.MaxBytes > 0 && header.Size > limits.MaxBytes {
		return "", ErrTooLarge
	}
	fileType, err := DetectType(header)
	if err != nil {
		return "", err
	}
	if !Allowed(fileType) {
		return "", ErrTypeUnsupported
	}
	if !renderer.Accepts(limits.Accept, fileType, header.Filename) {
		return "", ErrTypeUnsupported
	}
	return fileType, nil
}

// Save checks and stores one file. key is the multipart field name and
// becomes the prefix of the stored name. The returned record has no id or
// submission yet.
func (s *Service) Save(key string, header *multipart.FileHeader, limits Limits) (*models.FileUpload, error) {
	fileType, err := s.Check(header, limits)
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	path := filepath.Join(s.dir, s.storedName(key, header.Filename))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &models.FileUpload{
		FileName: header.Filename,
		FileType: fileType,
		FilePath: path,
		FileSize: written,
	}, nil
}

func (s *Service) storedName(key, original string) string {
	prefix := strings.Trim(unsafeName.ReplaceAllString(key, "_"), "_")
	if prefix == "" {
		prefix = "file"
	}
	ext := strings.ToLower(filepath.Ext(original))
	if unsafeName.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	return fmt.Sprintf("%s-%d-%s%s", prefix, s.now().UnixNano(), utils.GenerateRandomString(8), ext)
}

// Remove deletes stored files. Missing files are ignored and paths outside
// the upload directory are refused.
func (s *Service) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rel, err := filepath.Rel(s.dir, abs); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			errs = append(errs, fmt.Errorf("refusing to remove %s outside %s", p, s.dir))
			continue
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Upload attaches a single file to an existing submission. Only the owner of
// the form (or a super admin) may do so.
func (s *Service) Upload(ctx context.Context, actor *models.User, submissionID, fieldID string, header *multipart.FileHeader) (*models.FileUpload, error) {
	missing := map[string]string{}
	if submissionID == "" {
		missing["submissionId"] = "required"
	}
	if fieldID == "" {
		missing["fieldId"] = "required"
	}
	if len(missing) > 0 {
		return nil, utils.NewValidationError("Validation error", missing)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, utils.NewError(utils.ErrNotFound, "Submission not found")
	}
	form, err := s.store.GetForm(ctx, sub.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, utils.NewError(utils.ErrNotFound, "Form not found")
	}
	if !actor.CanManage(form.UserID) {
		return nil, utils.NewError(utils.ErrForbidden, "You don't have permission to modify this submission")
	}

	var limits Limits
	if field, ok := form.Schema.Field(fieldID); ok {
		if !field.Type.IsUpload() {
			return nil, utils.NewError(utils.ErrBadRequest, "Field does not accept files")
		}
		cons := renderer.Default().Render(field, renderer.ModeFill, nil).Constraints()
		limits = Limits{Accept: cons.Accept, MaxBytes: cons.MaxBytes}
	}

	stored, err := s.Save("file", header, limits)
	if err != nil {
		return nil, err
	}
	stored.SubmissionID = sub.ID
	stored.FieldID = fieldID

	created, err := s.store.CreateFileUpload(ctx, stored)
	if err != nil {
		if rmErr := s.Remove(stored.FilePath); rmErr != nil {
			log.Println("⚠️ Failed to remove orphaned upload:", rmErr)
		}
		return nil, err
	}
	log.Printf("📎 Stored %s (%d bytes) for submission %s", created.FileName, created.FileSize, sub.ID)
	return created, nil
}
