package builder

import "FormCraft-Backend/src/models"

// Draft is the form under construction on the canvas. Every operation returns
// a new Draft and leaves the receiver untouched; invalid input (unknown ids,
// out of range indexes) is a no-op, never an error.
type Draft struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Fields        []models.FieldDescriptor `json:"fields"`
	ActiveFieldID *string                  `json:"activeFieldId"`
	Status        models.FormStatus        `json:"status"`
	PublishedURL  *string                  `json:"publishedUrl"`
	Revision      int64                    `json:"revision"`
}

// NewDraft returns an empty, unsaved draft.
func NewDraft() Draft {
	return Draft{
		Fields: []models.FieldDescriptor{},
		Status: models.FormDraft,
	}
}

// FromForm loads a persisted form into the builder.
func FromForm(f models.Form) Draft {
	d := NewDraft()
	d.ID = f.ID
	d.Name = f.Name
	d.Description = f.Description
	d.Status = f.Status
	d.Revision = f.Revision
	if f.PublishedURL != nil {
		url := *f.PublishedURL
		d.PublishedURL = &url
	}
	for _, field := range f.Schema.Fields {
		d.Fields = append(d.Fields, field.Clone())
	}
	return d
}

// ToForm serializes the draft for the persistence layer.
func (d Draft) ToForm() models.Form {
	return models.Form{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Schema:       d.Schema(),
		Status:       d.Status,
		PublishedURL: d.PublishedURL,
		Revision:     d.Revision,
	}
}

// Schema returns a copy of the field list wrapped as a form schema.
func (d Draft) Schema() models.FormSchema {
	fields := make([]models.FieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = f.Clone()
	}
	return models.FormSchema{Fields: fields}
}

func (d Draft) copyFields() []models.FieldDescriptor {
	out := make([]models.FieldDescriptor, len(d.Fields))
	copy(out, d.Fields)
	return out
}

// HasBannerField is true when the draft already holds a bannerUpload field.
func (d Draft) HasBannerField() bool {
	for _, f := range d.Fields {
		if f.Type == models.FieldBannerUpload {
			return true
		}
	}
	return false
}

// AddField appends a new field of type t and makes it active. A second banner
// or an unknown type leaves the draft unchanged.
func (d Draft) AddField(t models.FieldType) Draft {
	if t == models.FieldBannerUpload && d.HasBannerField() {
		return d
	}
	field, ok := Instantiate(t)
	if !ok {
		return d
	}
	next := d
	next.Fields = append(d.copyFields(), field)
	id := field.ID
	next.ActiveFieldID = &id
	return next
}

// SetActiveField points the selection at id, or clears it with nil. The id
// is not checked against the field list; ActiveField copes with dangling ids.
func (d Draft) SetActiveField(id *string) Draft {
	next := d
	if id == nil {
		next.ActiveFieldID = nil
		return next
	}
	v := *id
	next.ActiveFieldID = &v
	return next
}

// ActiveField returns the selected field, if it still exists.
func (d Draft) ActiveField() (models.FieldDescriptor, bool) {
	if d.ActiveFieldID == nil {
		return models.FieldDescriptor{}, false
	}
	for _, f := range d.Fields {
		if f.ID == *d.ActiveFieldID {
			return f, true
		}
	}
	return models.FieldDescriptor{}, false
}

// UpdateFieldProperties merges patch into the field with the given id.
// A patch the field cannot absorb (wrong value types) is ignored.
func (d Draft) UpdateFieldProperties(id string, patch map[string]any) Draft {
	for i, f := range d.Fields {
		if f.ID != id {
			continue
		}
		merged, err := f.Merge(patch)
		if err != nil {
			return d
		}
		next := d
		next.Fields = d.copyFields()
		next.Fields[i] = merged
		return next
	}
	return d
}

// MoveFieldUp swaps the field at index with the one above it.
func (d Draft) MoveFieldUp(index int) Draft {
	if index <= 0 || index >= len(d.Fields) {
		return d
	}
	return d.swap(index, index-1)
}

// MoveFieldDown swaps the field at index with the one below it.
func (d Draft) MoveFieldDown(index int) Draft {
	if index < 0 || index >= len(d.Fields)-1 {
		return d
	}
	return d.swap(index, index+1)
}

func (d Draft) swap(i, j int) Draft {
	next := d
	next.Fields = d.copyFields()
	next.Fields[i], next.Fields[j] = next.Fields[j], next.Fields[i]
	return next
}

// DeleteField removes the field with the given id and clears the selection
// if it pointed there.
func (d Draft) DeleteField(id string) Draft {
	idx := -1
	for i, f := range d.Fields {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d
	}
	next := d
	next.Fields = make([]models.FieldDescriptor, 0, len(d.Fields)-1)
	next.Fields = append(next.Fields, d.Fields[:idx]...)
	next.Fields = append(next.Fields, d.Fields[idx+1:]...)
	if d.ActiveFieldID != nil && *d.ActiveFieldID == id {
		next.ActiveFieldID = nil
	}
	return next
}

// Reset discards everything and starts over.
func (d Draft) Reset() Draft {
	return NewDraft()
}
