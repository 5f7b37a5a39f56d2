package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"FormCraft-Backend/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      models.Role        `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type mongoForm struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Schema       bson.Raw           `bson:"schema"`
	UserID       primitive.ObjectID `bson:"userId"`
	Status       models.FormStatus  `bson:"status"`
	PublishedURL *string            `bson:"publishedUrl"`
	Revision     int64              `bson:"revision"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type mongoSubmission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FormID    primitive.ObjectID `bson:"formId"`
	Data      bson.Raw           `bson:"data"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type mongoFileUpload struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SubmissionID primitive.ObjectID `bson:"submissionId"`
	FieldID      string             `bson:"fieldId"`
	FileName     string             `bson:"fileName"`
	FileType     string             `bson:"fileType"`
	FilePath     string             `bson:"filePath"`
	FileSize     int64              `bson:"fileSize"`
	Metadata     bson.Raw           `bson:"metadata,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// MongoStore keeps users, forms, submissions and file uploads in their own
// collections. Ids are ObjectIDs on disk and hex strings everywhere else.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	forms       *mongo.Collection
	submissions *mongo.Collection
	files       *mongo.Collection
}

// NewMongoStore binds the collections of db and makes sure the indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		client:      db.Client(),
		users:       db.Collection("users"),
		forms:       db.Collection("forms"),
		submissions: db.Collection("submissions"),
		files:       db.Collection("file_uploads"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{s.forms, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.submissions, mongo.IndexModel{Keys: bson.D{{Key: "formId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.files, mongo.IndexModel{Keys: bson.D{{Key: "submissionId", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// objectID parses a hex id; anything else can never match a document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// toRaw stores a JSON shaped value as a BSON document so that field
// descriptors and answers keep their JSON key names and numeric types.
func toRaw(v any) (bson.Raw, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(js) == "null" {
		js = []byte("{}")
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(js, false, &doc); err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

func fromRaw(raw bson.Raw, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	js, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(js, dst)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ---- users ----

func (d *mongoUser) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	doc, err := findOne[mongoUser](ctx, s.users, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

// GetUserByEmail expects emails to be stored lower case.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	doc := mongoUser{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Email:     strings.ToLower(user.Email),
		Password:  user.PasswordHash,
		Role:      user.Role,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "username", Value: 1}})
	docs, err := findAll[mongoUser](ctx, s.users, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *MongoStore) CountSuperAdmins(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{"role": models.RoleSuperAdmin})
}

// ---- forms ----

func (d *mongoForm) toModel() (*models.Form, error) {
	f := &models.Form{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Description:  d.Description,
		UserID:       d.UserID.Hex(),
		Status:       d.Status,
		PublishedURL: d.PublishedURL,
		Revision:     d.Revision,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if err := fromRaw(d.Schema, &f.Schema); err != nil {
		return nil, fmt.Errorf("form %s: decode schema: %w", f.ID, err)
	}
	if f.Schema.Fields == nil {
		f.Schema.Fields = []models.FieldDescriptor{}
	}
	return f, nil
}

func (s *MongoStore) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	owner, ok := objectID(form.UserID)
	if !ok {
		return nil, fmt.Errorf("invalid owner id %q", form.UserID)
	}
	schema, err := toRaw(form.Schema)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := mongoForm{
		ID:          primitive.NewObjectID(),
		Name:        form.Name,
		Description: form.Description,
		Schema:      schema,
		UserID:      owner,
		Status:      form.Status,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Status == "" {
		doc.Status = models.FormDraft
	}
	if doc.Status == models.FormPublished {
		url := models.PublishedURLFor(doc.ID.Hex())
		doc.PublishedURL = &url
	}
	if _, err := s.forms.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (s *MongoStore) GetForm(ctx context.Context, id string) (*models.Form, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[mongoForm](ctx, s.forms, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toModel()
}

// UpdateForm does a compare-and-set on the revision it read.
func (s *MongoStore) UpdateForm(ctx context.Context, id string, update models.FormUpdate) (*models.Form, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[mongoForm](ctx, s.forms, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	if update.ExpectedRevision != 0 && update.ExpectedRevision != doc.Revision {
		return nil, ErrRevisionConflict
	}

	current, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	applyUpdate(current, update)
	schema, err := toRaw(current.Schema)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.forms.UpdateOne(ctx,
		bson.M{"_id": oid, "revision": doc.Revision},
		bson.M{"$set": bson.M{
			"name":         current.Name,
			"description":  current.Description,
			"schema":       schema,
			"status":       current.Status,
			"publishedUrl": current.PublishedURL,
			"revision":     doc.Revision + 1,
			"updatedAt":    now,
		}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrRevisionConflict
	}
	current.Revision = doc.Revision + 1
	current.UpdatedAt = now
	return current, nil
}

func (s *MongoStore) PublishForm(ctx context.Context, id string) (*models.Form, error) {
	return publish(ctx, s, id)
}

// DeleteForm removes the form and then its submissions and uploads. There is
// no transaction; a failure after the first delete leaves orphaned answers.
func (s *MongoStore) DeleteForm(ctx context.Context, id string) ([]*models.FileUpload, bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false, nil
	}
	res, err := s.forms.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	if res.DeletedCount == 0 {
		return nil, false, nil
	}

	subs, err := findAll[mongoSubmission](ctx, s.submissions, bson.M{"formId": oid},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, true, err
	}
	if len(subs) == 0 {
		return nil, true, nil
	}
	subIDs := make([]primitive.ObjectID, len(subs))
	for i, sub := range subs {
		subIDs[i] = sub.ID
	}
	removed, err := s.dropFiles(ctx, bson.M{"submissionId": bson.M{"$in": subIDs}})
	if err != nil {
		return nil, true, err
	}
	if _, err := s.submissions.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": subIDs}}); err != nil {
		return removed, true, err
	}
	return removed, true, nil
}

func (s *MongoStore) dropFiles(ctx context.Context, filter bson.M) ([]*models.FileUpload, error) {
	docs, err := findAll[mongoFileUpload](ctx, s.files, filter)
	if err != nil {
		return nil, err
	}
	if _, err := s.files.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	out := make([]*models.FileUpload, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *MongoStore) listForms(ctx context.Context, filter bson.M) ([]*models.Form, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	docs, err := findAll[mongoForm](ctx, s.forms, filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Form, 0, len(docs))
	for i := range docs {
		f, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *MongoStore) ListFormsByOwner(ctx context.Context, userID string) ([]*models.Form, error) {
	oid, ok := objectID(userID)
	if !ok {
		return []*models.Form{}, nil
	}
	return s.listForms(ctx, bson.M{"userId": oid})
}

func (s *MongoStore) ListAllForms(ctx context.Context) ([]*models.Form, error) {
	return s.listForms(ctx, bson.M{})
}

func (s *MongoStore) SearchForms(ctx context.Context, query, ownerID string) ([]*models.Form, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(query)), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}
	if ownerID != "" {
		oid, ok := objectID(ownerID)
		if !ok {
			return []*models.Form{}, nil
		}
		filter["userId"] = oid
	}
	return s.listForms(ctx, filter)
}

// ---- submissions ----

func (d *mongoSubmission) toModel() (*models.Submission, error) {
	sub := &models.Submission{ID: d.ID.Hex(), FormID: d.FormID.Hex(), CreatedAt: d.CreatedAt}
	if err := fromRaw(d.Data, &sub.Data); err != nil {
		return nil, fmt.Errorf("submission %s: decode data: %w", sub.ID, err)
	}
	if sub.Data == nil {
		sub.Data = map[string]any{}
	}
	return sub, nil
}

func (s *MongoStore) CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	formID, ok := objectID(sub.FormID)
	if !ok {
		return nil, fmt.Errorf("invalid form id %q", sub.FormID)
	}
	data, err := toRaw(sub.Data)
	if err != nil {
		return nil, err
	}
	doc := mongoSubmission{
		ID:        primitive.NewObjectID(),
		FormID:    formID,
		Data:      data,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.submissions.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (s *MongoStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[mongoSubmission](ctx, s.submissions, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toModel()
}

func (s *MongoStore) ListSubmissionsByForm(ctx context.Context, formID string) ([]*models.Submission, error) {
	oid, ok := objectID(formID)
	if !ok {
		return []*models.Submission{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	docs, err := findAll[mongoSubmission](ctx, s.submissions, bson.M{"formId": oid}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0, len(docs))
	for i := range docs {
		sub, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *MongoStore) DeleteSubmission(ctx context.Context, id string) ([]*models.FileUpload, bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false, nil
	}
	res, err := s.submissions.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	if res.DeletedCount == 0 {
		return nil, false, nil
	}
	removed, err := s.dropFiles(ctx, bson.M{"submissionId": oid})
	return removed, true, err
}

// ---- files ----

func (d *mongoFileUpload) toModel() *models.FileUpload {
	f := &models.FileUpload{
		ID:           d.ID.Hex(),
		SubmissionID: d.SubmissionID.Hex(),
		FieldID:      d.FieldID,
		FileName:     d.FileName,
		FileType:     d.FileType,
		FilePath:     d.FilePath,
		FileSize:     d.FileSize,
		CreatedAt:    d.CreatedAt,
	}
	// metadata is informational; a bad document is dropped
	_ = fromRaw(d.Metadata, &f.Metadata)
	return f
}

func (s *MongoStore) CreateFileUpload(ctx context.Context, file *models.FileUpload) (*models.FileUpload, error) {
	subID, ok := objectID(file.SubmissionID)
	if !ok {
		return nil, fmt.Errorf("invalid submission id %q", file.SubmissionID)
	}
	doc := mongoFileUpload{
		ID:           primitive.NewObjectID(),
		SubmissionID: subID,
		FieldID:      file.FieldID,
		FileName:     file.FileName,
		FileType:     file.FileType,
		FilePath:     file.FilePath,
		FileSize:     file.FileSize,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if len(file.Metadata) > 0 {
		meta, err := toRaw(file.Metadata)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
	}
	if _, err := s.files.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) ListFileUploadsBySubmission(ctx context.Context, submissionID string) ([]*models.FileUpload, error) {
	oid, ok := objectID(submissionID)
	if !ok {
		return []*models.FileUpload{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findAll[mongoFileUpload](ctx, s.files, bson.M{"submissionId": oid}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*models.FileUpload, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
