package models

import "time"

// FormStatus is the lifecycle state of a form.
type FormStatus string

const (
	FormDraft     FormStatus = "draft"
	FormPublished FormStatus = "published"
)

// FormSchema is the JSON blob persisted with every form.
type FormSchema struct {
	Fields []FieldDescriptor `json:"fields"`
}

// BannerCount counts bannerUpload fields; a valid schema has at most one.
func (s FormSchema) BannerCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Type == FieldBannerUpload {
			n++
		}
	}
	return n
}

// Field looks a field up by id.
func (s FormSchema) Field(id string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Form is a persisted form definition.
type Form struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Schema       FormSchema `json:"schema"`
	UserID       string     `json:"userId"`
	Status       FormStatus `json:"status"`
	PublishedURL *string    `json:"publishedUrl"`
	Revision     int64      `json:"revision"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PublishedURLFor derives the public path of a form from its id.
func PublishedURLFor(id string) string {
	return "/public-form/" + id
}

// FormUpdate carries the mutable parts of a form; nil members are left alone.
// ExpectedRevision, when non-zero, must match the stored revision.
type FormUpdate struct {
	Name             *string
	Description      *string
	Schema           *FormSchema
	Status           *FormStatus
	ExpectedRevision int64
}

// FormDto is the create/update request body.
type FormDto struct {
	Name        *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=2000"`
	Schema      *FormSchema `json:"schema"`
	Status      *FormStatus `json:"status" validate:"omitempty,oneof=draft published"`
	Revision    int64       `json:"revision" validate:"gte=0"`
}
