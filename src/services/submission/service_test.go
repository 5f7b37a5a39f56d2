package submission

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/renderer"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/services/uploads"
	"FormCraft-Backend/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileHeader(t *testing.T, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
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

type recordingPurger struct {
	files []*models.FileUpload
}

func (p *recordingPurger) PurgeFiles(_ context.Context, files []*models.FileUpload) {
	p.files = append(p.files, files...)
}

var (
	owner    = &models.User{ID: "owner", Role: models.RoleAdmin}
	stranger = &models.User{ID: "stranger", Role: models.RoleAdmin}
)

func ptr[T any](v T) *T { return &v }

func contactSchema() models.FormSchema {
	return models.FormSchema{Fields: []models.FieldDescriptor{
		{ID: "name", Type: models.FieldTextInput, Required: true, Props: &models.TextInputProps{MaxLength: ptr(10)}},
		{ID: "email", Type: models.FieldEmail, Props: &models.EmailProps{}},
		{ID: "agree", Type: models.FieldCheckbox, Required: true, Props: &models.CheckboxProps{}},
		{ID: "color", Type: models.FieldSelect, Props: &models.SelectProps{Options: []models.Option{
			{Label: "Red", Value: "red"}, {Label: "Blue", Value: "blue"},
		}}},
		{ID: "photo", Type: models.FieldFileUpload, Props: &models.FileUploadProps{AllowedTypes: "image/*", MaxFileSize: 1}},
		{ID: "banner", Type: models.FieldBannerUpload, Props: &models.BannerUploadProps{CanUpload: false}},
	}}
}

type fixture struct {
	svc    *Service
	store  *repository.MemoryStore
	files  *uploads.Service
	purger *recordingPurger
	form   *models.Form
}

func setup(t *testing.T, status models.FormStatus) fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	files, err := uploads.NewService(store, t.TempDir(), 10<<20)
	require.NoError(t, err)
	purger := &recordingPurger{}

	form, err := store.CreateForm(ctx, &models.Form{Name: "Contact", UserID: owner.ID, Schema: contactSchema(), Status: status})
	require.NoError(t, err)
	return fixture{svc: NewService(store, files, purger), store: store, files: files, purger: purger, form: form}
}

func TestSubmit_DraftIsNotFound(t *testing.T) {
	fx := setup(t, models.FormDraft)
	_, err := fx.svc.Submit(context.Background(), fx.form.ID, SubmitInput{Data: map[string]any{"name": "x", "agree": true}})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = fx.svc.Submit(context.Background(), "missing", SubmitInput{})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestSubmit_NormalizesAndDropsUnknownKeys(t *testing.T) {
	fx := setup(t, models.FormPublished)

	sub, err := fx.svc.Submit(context.Background(), fx.form.ID, SubmitInput{Data: map[string]any{
		"name":    "Ann",
		"email":   "  ann@example.com ",
		"agree":   "on",
		"color":   "blue",
		"banner":  "ignored",
		"hacker":  "dropped",
		"unused?": 1,
	}})
	require.NoError(t, err)
	assert.Equal(t, fx.form.ID, sub.FormID)
	assert.Equal(t, map[string]any{
		"name":  "Ann",
		"email": "ann@example.com",
		"agree": true,
		"color": "blue",
	}, sub.Data)
}

func TestSubmit_FieldErrors(t *testing.T) {
	fx := setup(t, models.FormPublished)

	_, err := fx.svc.Submit(context.Background(), fx.form.ID, SubmitInput{Data: map[string]any{
		"name":  "far too long a name",
		"email": "not-an-email",
		"color": "green",
	}})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at most 10 characters", verr.Fields["name"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "required", verr.Fields["agree"])
	assert.Contains(t, verr.Fields["color"], "not one of the options")
	assert.NotContains(t, verr.Fields, "photo")

	subs, err := fx.store.ListSubmissionsByForm(context.Background(), fx.form.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubmit_WithFiles(t *testing.T) {
	ctx := context.Background()
	fx := setup(t, models.FormPublished)

	sub, err := fx.svc.Submit(ctx, fx.form.ID, SubmitInput{
		Data:     map[string]any{"name": "Ann", "agree": true},
		Files:    map[string][]*multipart.FileHeader{"photo": {fileHeader(t, "me.png", "image/png", pngBytes)}},
		FileMeta: map[string]map[string]any{"photo": {"caption": "me"}},
	})
	require.NoError(t, err)
	assert.Equal(t, renderer.UploadValue{FileName: "me.png", FileType: "image/png", Size: int64(len(pngBytes))}, sub.Data["photo"])

	files, err := fx.store.ListFileUploadsBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "photo", files[0].FieldID)
	assert.Equal(t, map[string]any{"caption": "me"}, files[0].Metadata)
	_, err = os.Stat(files[0].FilePath)
	assert.NoError(t, err)

	_, err = fx.svc.Submit(ctx, fx.form.ID, SubmitInput{
		Data:  map[string]any{"name": "Ann", "agree": true},
		Files: map[string][]*multipart.FileHeader{"photo": {fileHeader(t, "cv.pdf", "application/pdf", []byte("%PDF-1.4"))}},
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "File type not supported", verr.Fields["photo"])
}

func dataURL(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

func TestSubmit_InlineFilesAreMeasuredFromTheirContent(t *testing.T) {
	ctx := context.Background()
	fx := setup(t, models.FormPublished)
	submit := func(photo map[string]any) error {
		_, err := fx.svc.Submit(ctx, fx.form.ID, SubmitInput{Data: map[string]any{"name": "Ann", "agree": true, "photo": photo}})
		return err
	}

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<20)...)
	err := submit(map[string]any{"fileName": "big.png", "fileType": "image/png", "size": 1, "dataUrl": dataURL("image/png", big)})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file exceeds 1 MB", verr.Fields["photo"])

	exe := []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")
	err = submit(map[string]any{"fileName": "cat.png", "fileType": "image/png", "dataUrl": dataURL("application/x-msdownload", exe)})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["photo"], "is not allowed")

	err = submit(map[string]any{"fileName": "cat.png", "fileType": "image/png", "dataUrl": dataURL("image/png", exe)})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["photo"], "is not allowed", "the data url label is not trusted either")

	subs, err := fx.store.ListSubmissionsByForm(ctx, fx.form.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	sub, err := fx.svc.Submit(ctx, fx.form.ID, SubmitInput{Data: map[string]any{"name": "Ann", "agree": true, "photo": map[string]any{
		"fileName": "me.png", "fileType": "application/pdf", "size": 99, "dataUrl": dataURL("image/png", pngBytes),
	}}})
	require.NoError(t, err)
	photo := sub.Data["photo"].(renderer.UploadValue)
	assert.Equal(t, "image/png", photo.FileType)
	assert.Equal(t, int64(len(pngBytes)), photo.Size)
}

func TestSubmit_InlineFilesUseTheGlobalAllowlist(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	files, err := uploads.NewService(store, t.TempDir(), 10<<20)
	require.NoError(t, err)
	form, err := store.CreateForm(ctx, &models.Form{
		Name: "Anything", UserID: owner.ID, Status: models.FormPublished,
		Schema: models.FormSchema{Fields: []models.FieldDescriptor{
			{ID: "doc", Type: models.FieldFileUpload, Props: &models.FileUploadProps{}},
		}},
	})
	require.NoError(t, err)
	svc := NewService(store, files, &recordingPurger{})

	_, err = svc.Submit(ctx, form.ID, SubmitInput{Data: map[string]any{"doc": map[string]any{
		"fileName": "notes.txt", "dataUrl": dataURL("text/plain", []byte("hello")),
	}}})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "File type not supported", verr.Fields["doc"])

	_, err = svc.Submit(ctx, form.ID, SubmitInput{Data: map[string]any{"doc": map[string]any{
		"fileName": "cv.pdf", "dataUrl": dataURL("application/pdf", []byte("%PDF-1.4")),
	}}})
	assert.NoError(t, err)
}

type mockFiles struct {
	mock.Mock
}

func (m *mockFiles) Check(h *multipart.FileHeader, limits uploads.Limits) (string, error) {
	args := m.Called(h.Filename)
	return args.String(0), args.Error(1)
}

func (m *mockFiles) Save(key string, h *multipart.FileHeader, limits uploads.Limits) (*models.FileUpload, error) {
	args := m.Called(h.Filename)
	f, _ := args.Get(0).(*models.FileUpload)
	return f, args.Error(1)
}

func (m *mockFiles) Remove(paths ...string) error {
	return m.Called(paths).Error(0)
}

func TestSubmit_CleansUpWhenSavingFails(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	form, err := store.CreateForm(ctx, &models.Form{
		Name: "Gallery", UserID: owner.ID, Status: models.FormPublished,
		Schema: models.FormSchema{Fields: []models.FieldDescriptor{
			{ID: "pics", Type: models.FieldMediaUpload, Props: &models.MediaUploadProps{}},
		}},
	})
	require.NoError(t, err)

	files := &mockFiles{}
	files.On("Check", mock.Anything).Return("image/png", nil)
	files.On("Save", "a.png").Return(&models.FileUpload{FilePath: "/uploads/a.png"}, nil)
	files.On("Save", "b.png").Return(nil, errors.New("disk full"))
	files.On("Remove", []string{"/uploads/a.png"}).Return(nil).Once()

	svc := NewService(store, files, nil)
	_, err = svc.Submit(ctx, form.ID, SubmitInput{Files: map[string][]*multipart.FileHeader{
		"pics": {fileHeader(t, "a.png", "image/png", pngBytes), fileHeader(t, "b.png", "image/png", pngBytes)},
	}})
	assert.EqualError(t, err, "disk full")
	files.AssertExpectations(t)

	subs, err := store.ListSubmissionsByForm(ctx, form.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestListGetDelete(t *testing.T) {
	ctx := context.Background()
	fx := setup(t, models.FormPublished)

	var ids []string
	for _, name := range []string{"one", "two", "three"} {
		sub, err := fx.svc.Submit(ctx, fx.form.ID, SubmitInput{
			Data:  map[string]any{"name": name, "agree": true},
			Files: map[string][]*multipart.FileHeader{"photo": {fileHeader(t, name+".png", "image/png", pngBytes)}},
		})
		require.NoError(t, err)
		ids = append(ids, sub.ID)
	}

	_, err := fx.svc.List(ctx, stranger, fx.form.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	subs, err := fx.svc.List(ctx, owner, fx.form.ID)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, ids[2], subs[0].ID, "newest first")

	page, err := fx.svc.ListPage(ctx, owner, fx.form.ID, models.PaginationParams{Page: 2, Limit: 2, Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)
	pageSubs := page.Data.([]*models.Submission)
	require.Len(t, pageSubs, 1)
	assert.Equal(t, ids[2], pageSubs[0].ID)

	detail, err := fx.svc.Get(ctx, owner, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], detail.Submission.ID)
	require.Len(t, detail.Files, 1)

	_, err = fx.svc.Get(ctx, stranger, ids[0])
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = fx.svc.Get(ctx, owner, "missing")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.ErrorIs(t, fx.svc.Delete(ctx, stranger, ids[0]), utils.ErrForbidden)
	require.NoError(t, fx.svc.Delete(ctx, owner, ids[0]))
	require.Len(t, fx.purger.files, 1)
	assert.Equal(t, detail.Files[0].FilePath, fx.purger.files[0].FilePath)
	assert.ErrorIs(t, fx.svc.Delete(ctx, owner, ids[0]), utils.ErrNotFound)
}
