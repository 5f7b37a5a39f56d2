package uploads

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileHeader(t *testing.T, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newService(t *testing.T, maxBytes int64) (*Service, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc, err := NewService(store, t.TempDir(), maxBytes)
	require.NoError(t, err)
	return svc, store
}

func TestSave(t *testing.T) {
	svc, _ := newService(t, 10<<20)
	body := []byte("%PDF-1.4 fake")

	f, err := svc.Save("files[cv]", fileHeader(t, "Resume.PDF", "application/pdf", body), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "Resume.PDF", f.FileName)
	assert.Equal(t, "application/pdf", f.FileType)
	assert.Equal(t, int64(len(body)), f.FileSize)
	assert.Equal(t, svc.Dir(), filepath.Dir(f.FilePath))
	assert.Regexp(t, `^files_cv-\d+-[0-9a-f]{8}\.pdf$`, filepath.Base(f.FilePath))

	stored, err := os.ReadFile(f.FilePath)
	require.NoError(t, err)
	assert.Equal(t, body, stored)
}

func TestCheck(t *testing.T) {
	svc, _ := newService(t, 64)

	fileType, err := svc.Check(fileHeader(t, "pic", "", pngBytes), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", fileType, "missing content type is sniffed")

	fileType, err = svc.Check(fileHeader(t, "pic.bin", "application/octet-stream", pngBytes), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", fileType)

	_, err = svc.Check(fileHeader(t, "notes.txt", "text/plain", []byte("hi")), Limits{})
	assert.ErrorIs(t, err, ErrTypeUnsupported)
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	_, err = svc.Check(fileHeader(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 100)), Limits{})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = svc.Check(fileHeader(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4")), Limits{Accept: []string{"image/*"}})
	assert.ErrorIs(t, err, ErrTypeUnsupported)

	_, err = svc.Check(fileHeader(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4")), Limits{MaxBytes: 4})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = svc.Check(nil, Limits{})
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestCheck_TypeComesFromContent(t *testing.T) {
	svc, _ := newService(t, 1<<20)

	exe := []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")
	_, err := svc.Check(fileHeader(t, "cat.png", "image/png", exe), Limits{})
	assert.ErrorIs(t, err, ErrTypeUnsupported, "an executable labelled image/png")
	_, err = svc.Check(fileHeader(t, "cat.png", "image/png", exe), Limits{Accept: []string{"image/*"}})
	assert.ErrorIs(t, err, ErrTypeUnsupported)

	_, err = svc.Check(fileHeader(t, "cat.png", "image/png", []byte("just some text")), Limits{})
	assert.ErrorIs(t, err, ErrTypeUnsupported, "plain text labelled image/png")

	fileType, err := svc.Check(fileHeader(t, "scan.pdf", "application/pdf", pngBytes), Limits{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", fileType, "the declared type is not trusted")
	_, err = svc.Check(fileHeader(t, "scan.pdf", "application/pdf", pngBytes), Limits{Accept: []string{"application/pdf"}})
	assert.ErrorIs(t, err, ErrTypeUnsupported)

	var zipped bytes.Buffer
	zw := zip.NewWriter(&zipped)
	entry, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Check(fileHeader(t, "archive.zip", "application/zip", zipped.Bytes()), Limits{})
	assert.ErrorIs(t, err, ErrTypeUnsupported)

	docx := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	fileType, err = svc.Check(fileHeader(t, "cv.docx", docx, zipped.Bytes()), Limits{})
	require.NoError(t, err)
	assert.Equal(t, docx, fileType, "a declared docx names a zip container")
}

func TestRemove(t *testing.T) {
	svc, _ := newService(t, 0)
	f, err := svc.Save("file", fileHeader(t, "a.png", "image/png", pngBytes), Limits{})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(f.FilePath, filepath.Join(svc.Dir(), "never-existed.png"), ""))
	_, err = os.Stat(f.FilePath)
	assert.True(t, os.IsNotExist(err))

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	assert.Error(t, svc.Remove(outside))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, 10<<20)
	owner := &models.User{ID: "owner", Role: models.RoleAdmin}
	stranger := &models.User{ID: "stranger", Role: models.RoleAdmin}

	form, err := store.CreateForm(ctx, &models.Form{
		Name:   "Jobs",
		UserID: owner.ID,
		Schema: models.FormSchema{Fields: []models.FieldDescriptor{
			{ID: "photo", Type: models.FieldFileUpload, Props: &models.FileUploadProps{AllowedTypes: "image/*", MaxFileSize: 1}},
			{ID: "name", Type: models.FieldTextInput, Props: &models.TextInputProps{}},
		}},
	})
	require.NoError(t, err)
	sub, err := store.CreateSubmission(ctx, &models.Submission{FormID: form.ID, Data: map[string]any{}})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, owner, "", "", fileHeader(t, "a.png", "image/png", pngBytes))
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	_, err = svc.Upload(ctx, owner, "missing", "photo", fileHeader(t, "a.png", "image/png", pngBytes))
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = svc.Upload(ctx, stranger, sub.ID, "photo", fileHeader(t, "a.png", "image/png", pngBytes))
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = svc.Upload(ctx, owner, sub.ID, "photo", fileHeader(t, "a.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.ErrorIs(t, err, ErrTypeUnsupported)

	_, err = svc.Upload(ctx, owner, sub.ID, "name", fileHeader(t, "a.png", "image/png", pngBytes))
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	created, err := svc.Upload(ctx, owner, sub.ID, "photo", fileHeader(t, "a.png", "image/png", pngBytes))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, sub.ID, created.SubmissionID)
	assert.Equal(t, "photo", created.FieldID)

	files, err := store.ListFileUploadsBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
