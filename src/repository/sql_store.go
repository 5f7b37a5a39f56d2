package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"FormCraft-Backend/src/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// jsonColumn picks a JSON capable column type for each dialect.
type jsonColumn struct {
	datatypes.JSON
}

func (j jsonColumn) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return "null", nil
	}
	return j.JSON.Value()
}

func (j *jsonColumn) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

func (jsonColumn) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}

func toJSONColumn(v any) (jsonColumn, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return jsonColumn{}, err
	}
	return jsonColumn{JSON: datatypes.JSON(raw)}, nil
}

type userRecord struct {
	ID           string      `gorm:"primaryKey;size:36"`
	Username     string      `gorm:"uniqueIndex;size:50;not null"`
	Email        string      `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string      `gorm:"size:100;not null"`
	Role         models.Role `gorm:"size:20;not null;index"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type formRecord struct {
	ID           string            `gorm:"primaryKey;size:36"`
	Name         string            `gorm:"size:200;not null"`
	Description  string            `gorm:"size:2000"`
	Schema       jsonColumn        `gorm:"not null"`
	UserID       string            `gorm:"size:36;not null;index"`
	Status       models.FormStatus `gorm:"size:20;not null;default:draft"`
	PublishedURL *string           `gorm:"size:255"`
	Revision     int64             `gorm:"not null;default:1"`
	CreatedAt    time.Time         `gorm:"index"`
	UpdatedAt    time.Time
}

func (formRecord) TableName() string { return "forms" }

type submissionRecord struct {
	ID        string     `gorm:"primaryKey;size:36"`
	FormID    string     `gorm:"size:36;not null;index"`
	Data      jsonColumn `gorm:"not null"`
	CreatedAt time.Time  `gorm:"index"`
}

func (submissionRecord) TableName() string { return "submissions" }

type fileUploadRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	SubmissionID string `gorm:"size:36;not null;index"`
	FieldID      string `gorm:"size:100;not null"`
	FileName     string `gorm:"size:255;not null"`
	FileType     string `gorm:"size:255"`
	FilePath     string `gorm:"size:500;not null"`
	FileSize     int64
	Metadata     jsonColumn
	CreatedAt    time.Time
}

func (fileUploadRecord) TableName() string { return "file_uploads" }

// SQLStore persists through GORM, on any dialect it was opened with.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the schema and wraps db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&userRecord{}, &formRecord{}, &submissionRecord{}, &fileUploadRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

// first loads one row; a missing row is (false, nil).
func first(db *gorm.DB, dest any, query string, args ...any) (bool, error) {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// ---- users ----

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *SQLStore) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var rec userRecord
	ok, err := first(s.quiet(ctx), &rec, query, arg)
	if !ok {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	rec := userRecord{
		ID:           uuid.NewString(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userRecord{})
	return res.RowsAffected > 0, res.Error
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var recs []userRecord
	if err := s.db.WithContext(ctx).Order("created_at asc").Order("username asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

func (s *SQLStore) CountSuperAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&userRecord{}).Where("role = ?", models.RoleSuperAdmin).Count(&n).Error
	return n, err
}

// ---- forms ----

func (r *formRecord) toModel() (*models.Form, error) {
	f := &models.Form{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		UserID:       r.UserID,
		Status:       r.Status,
		PublishedURL: r.PublishedURL,
		Revision:     r.Revision,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if len(r.Schema.JSON) > 0 {
		if err := json.Unmarshal(r.Schema.JSON, &f.Schema); err != nil {
			return nil, fmt.Errorf("form %s: decode schema: %w", r.ID, err)
		}
	}
	if f.Schema.Fields == nil {
		f.Schema.Fields = []models.FieldDescriptor{}
	}
	return f, nil
}

func formsFromRecords(recs []formRecord) ([]*models.Form, error) {
	out := make([]*models.Form, 0, len(recs))
	for i := range recs {
		f, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *SQLStore) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	schemaCol, err := toJSONColumn(form.Schema)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := formRecord{
		ID:          uuid.NewString(),
		Name:        form.Name,
		Description: form.Description,
		Schema:      schemaCol,
		UserID:      form.UserID,
		Status:      form.Status,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.Status == "" {
		rec.Status = models.FormDraft
	}
	if rec.Status == models.FormPublished {
		url := models.PublishedURLFor(rec.ID)
		rec.PublishedURL = &url
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return rec.toModel()
}

func (s *SQLStore) GetForm(ctx context.Context, id string) (*models.Form, error) {
	var rec formRecord
	ok, err := first(s.quiet(ctx), &rec, "id = ?", id)
	if !ok {
		return nil, err
	}
	return rec.toModel()
}

// UpdateForm applies the update inside a transaction and bumps the revision
// with a compare-and-set on the old value.
func (s *SQLStore) UpdateForm(ctx context.Context, id string, update models.FormUpdate) (*models.Form, error) {
	var out *models.Form
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec formRecord
		ok, err := first(tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}), &rec, "id = ?", id)
		if err != nil || !ok {
			return err
		}
		if update.ExpectedRevision != 0 && update.ExpectedRevision != rec.Revision {
			return ErrRevisionConflict
		}

		current, err := rec.toModel()
		if err != nil {
			return err
		}
		applyUpdate(current, update)
		schemaCol, err := toJSONColumn(current.Schema)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		result := tx.Model(&formRecord{}).
			Where("id = ? AND revision = ?", id, rec.Revision).
			Updates(map[string]any{
				"name":          current.Name,
				"description":   current.Description,
				"schema":        schemaCol,
				"status":        current.Status,
				"published_url": current.PublishedURL,
				"revision":      rec.Revision + 1,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRevisionConflict
		}
		current.Revision = rec.Revision + 1
		current.UpdatedAt = now
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) PublishForm(ctx context.Context, id string) (*models.Form, error) {
	return publish(ctx, s, id)
}

func (s *SQLStore) DeleteForm(ctx context.Context, id string) ([]*models.FileUpload, bool, error) {
	var removed []*models.FileUpload
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&formRecord{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		if !found {
			return nil
		}

		var subIDs []string
		if err := tx.Model(&submissionRecord{}).Where("form_id = ?", id).Pluck("id", &subIDs).Error; err != nil {
			return err
		}
		if len(subIDs) == 0 {
			return nil
		}
		var files []fileUploadRecord
		if err := tx.Where("submission_id IN ?", subIDs).Find(&files).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id IN ?", subIDs).Delete(&fileUploadRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", subIDs).Delete(&submissionRecord{}).Error; err != nil {
			return err
		}
		removed = filesFromRecords(files)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return removed, found, nil
}

func (s *SQLStore) listForms(ctx context.Context, query string, args ...any) ([]*models.Form, error) {
	var recs []formRecord
	db := s.db.WithContext(ctx)
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return formsFromRecords(recs)
}

func (s *SQLStore) ListFormsByOwner(ctx context.Context, userID string) ([]*models.Form, error) {
	return s.listForms(ctx, "user_id = ?", userID)
}

func (s *SQLStore) ListAllForms(ctx context.Context) ([]*models.Form, error) {
	return s.listForms(ctx, "")
}

func (s *SQLStore) SearchForms(ctx context.Context, query, ownerID string) ([]*models.Form, error) {
	like := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	cond := "(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')"
	if ownerID == "" {
		return s.listForms(ctx, cond, like, like)
	}
	return s.listForms(ctx, cond+" AND user_id = ?", like, like, ownerID)
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// ---- submissions ----

func (r *submissionRecord) toModel() (*models.Submission, error) {
	sub := &models.Submission{ID: r.ID, FormID: r.FormID, CreatedAt: r.CreatedAt}
	if len(r.Data.JSON) > 0 {
		if err := json.Unmarshal(r.Data.JSON, &sub.Data); err != nil {
			return nil, fmt.Errorf("submission %s: decode data: %w", r.ID, err)
		}
	}
	if sub.Data == nil {
		sub.Data = map[string]any{}
	}
	return sub, nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	data, err := toJSONColumn(sub.Data)
	if err != nil {
		return nil, err
	}
	rec := submissionRecord{
		ID:        uuid.NewString(),
		FormID:    sub.FormID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return rec.toModel()
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var rec submissionRecord
	ok, err := first(s.quiet(ctx), &rec, "id = ?", id)
	if !ok {
		return nil, err
	}
	return rec.toModel()
}

func (s *SQLStore) ListSubmissionsByForm(ctx context.Context, formID string) ([]*models.Submission, error) {
	var recs []submissionRecord
	if err := s.db.WithContext(ctx).Where("form_id = ?", formID).Order("created_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0, len(recs))
	for i := range recs {
		sub, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SQLStore) DeleteSubmission(ctx context.Context, id string) ([]*models.FileUpload, bool, error) {
	var removed []*models.FileUpload
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var files []fileUploadRecord
		if err := tx.Where("submission_id = ?", id).Find(&files).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&submissionRecord{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		if !found {
			return nil
		}
		if err := tx.Where("submission_id = ?", id).Delete(&fileUploadRecord{}).Error; err != nil {
			return err
		}
		removed = filesFromRecords(files)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return removed, found, nil
}

// ---- files ----

func (r *fileUploadRecord) toModel() *models.FileUpload {
	f := &models.FileUpload{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		FieldID:      r.FieldID,
		FileName:     r.FileName,
		FileType:     r.FileType,
		FilePath:     r.FilePath,
		FileSize:     r.FileSize,
		CreatedAt:    r.CreatedAt,
	}
	if len(r.Metadata.JSON) > 0 {
		// metadata is informational; a bad blob is dropped
		_ = json.Unmarshal(r.Metadata.JSON, &f.Metadata)
	}
	return f
}

func filesFromRecords(recs []fileUploadRecord) []*models.FileUpload {
	out := make([]*models.FileUpload, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out
}

func (s *SQLStore) CreateFileUpload(ctx context.Context, file *models.FileUpload) (*models.FileUpload, error) {
	meta, err := toJSONColumn(file.Metadata)
	if err != nil {
		return nil, err
	}
	rec := fileUploadRecord{
		ID:           uuid.NewString(),
		SubmissionID: file.SubmissionID,
		FieldID:      file.FieldID,
		FileName:     file.FileName,
		FileType:     file.FileType,
		FilePath:     file.FilePath,
		FileSize:     file.FileSize,
		Metadata:     meta,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *SQLStore) ListFileUploadsBySubmission(ctx context.Context, submissionID string) ([]*models.FileUpload, error) {
	var recs []fileUploadRecord
	if err := s.db.WithContext(ctx).Where("submission_id = ?", submissionID).Order("created_at asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return filesFromRecords(recs), nil
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
