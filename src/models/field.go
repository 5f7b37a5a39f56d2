package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType is the closed set of components an admin can drop on the canvas.
type FieldType string

const (
	FieldTextInput    FieldType = "textInput"
	FieldTextArea     FieldType = "textArea"
	FieldCheckbox     FieldType = "checkbox"
	FieldSelect       FieldType = "select"
	FieldRadio        FieldType = "radio"
	FieldDate         FieldType = "date"
	FieldToggle       FieldType = "toggle"
	FieldFileUpload   FieldType = "fileUpload"
	FieldNumber       FieldType = "number"
	FieldEmail        FieldType = "email"
	FieldMediaUpload  FieldType = "mediaUpload"
	FieldBannerUpload FieldType = "bannerUpload"
)

// FieldTypes lists every known type in palette order.
var FieldTypes = []FieldType{
	FieldTextInput,
	FieldTextArea,
	FieldCheckbox,
	FieldSelect,
	FieldRadio,
	FieldDate,
	FieldToggle,
	FieldFileUpload,
	FieldNumber,
	FieldEmail,
	FieldMediaUpload,
	FieldBannerUpload,
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	return newProps(t) != nil
}

// IsUpload is true for types whose value is a file.
func (t FieldType) IsUpload() bool {
	return t == FieldFileUpload || t == FieldMediaUpload || t == FieldBannerUpload
}

// GridColumn is the layout hint of a field on the canvas.
type GridColumn string

const (
	GridFull GridColumn = "full"
	GridHalf GridColumn = "half"
)

// FieldDescriptor is one configurable element of a form. Common properties live
// on the struct; type specific ones live in Props, whose concrete type always
// matches Type.
type FieldDescriptor struct {
	ID          string     `json:"id"`
	Type        FieldType  `json:"type"`
	Label       string     `json:"label"`
	HelperText  string     `json:"helperText"`
	Placeholder string     `json:"placeholder"`
	Required    bool       `json:"required"`
	GridColumn  GridColumn `json:"gridColumn"`
	Props       FieldProps `json:"-"`
}

// fieldBase mirrors the common part of FieldDescriptor without its custom codec.
type fieldBase struct {
	ID          string     `json:"id"`
	Type        FieldType  `json:"type"`
	Label       string     `json:"label"`
	HelperText  string     `json:"helperText"`
	Placeholder string     `json:"placeholder"`
	Required    bool       `json:"required"`
	GridColumn  GridColumn `json:"gridColumn"`
}

var baseKeys = map[string]struct{}{
	"id": {}, "type": {}, "label": {}, "helperText": {},
	"placeholder": {}, "required": {}, "gridColumn": {},
}

// MarshalJSON flattens the common properties and the variant payload into one object.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	base := fieldBase{
		ID:          f.ID,
		Type:        f.Type,
		Label:       f.Label,
		HelperText:  f.HelperText,
		Placeholder: f.Placeholder,
		Required:    f.Required,
		GridColumn:  f.GridColumn,
	}
	if base.GridColumn == "" {
		base.GridColumn = GridFull
	}

	merged := map[string]json.RawMessage{}
	if f.Props != nil {
		raw, err := json.Marshal(f.Props)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &merged); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var common map[string]json.RawMessage
	if err := json.Unmarshal(raw, &common); err != nil {
		return nil, err
	}
	// common keys win over anything a variant might carry
	for k, v := range common {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads the flat object and picks the variant from "type".
// Unknown types keep their extra keys in UnknownProps.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var base fieldBase
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	*f = FieldDescriptor{
		ID:          base.ID,
		Type:        base.Type,
		Label:       base.Label,
		HelperText:  base.HelperText,
		Placeholder: base.Placeholder,
		Required:    base.Required,
		GridColumn:  base.GridColumn,
	}
	if f.GridColumn == "" {
		f.GridColumn = GridFull
	}

	props := newProps(base.Type)
	if props == nil {
		var all map[string]json.RawMessage
		if err := json.Unmarshal(data, &all); err != nil {
			return err
		}
		extra := UnknownProps{}
		for k, v := range all {
			if _, ok := baseKeys[k]; !ok {
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			f.Props = extra
		}
		return nil
	}

	if err := json.Unmarshal(data, props); err != nil {
		return fmt.Errorf("field %s (%s): %w", base.ID, base.Type, err)
	}
	f.Props = props
	return nil
}

// Clone returns a deep copy, so slices inside the variant are not shared.
func (f FieldDescriptor) Clone() FieldDescriptor {
	raw, err := json.Marshal(f)
	if err != nil {
		return f
	}
	var out FieldDescriptor
	if err := json.Unmarshal(raw, &out); err != nil {
		return f
	}
	return out
}

// Merge applies a partial property object and returns the resulting field.
// The id and type are never changed by a patch; keys the variant does not
// know are dropped.
func (f FieldDescriptor) Merge(patch map[string]any) (FieldDescriptor, error) {
	if len(patch) == 0 {
		return f.Clone(), nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return f, err
	}
	var current map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&current); err != nil {
		return f, err
	}
	for k, v := range patch {
		if k == "id" || k == "type" {
			continue
		}
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return f, err
	}
	var out FieldDescriptor
	if err := json.Unmarshal(merged, &out); err != nil {
		return f, err
	}
	return out, nil
}

// Options returns the choice list for select and radio fields.
func (f FieldDescriptor) Options() []Option {
	switch p := f.Props.(type) {
	case *SelectProps:
		return p.Options
	case *RadioProps:
		return p.Options
	}
	return nil
}
