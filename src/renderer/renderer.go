// Package renderer turns field descriptors into widgets. The admin preview uses
// them in edit mode; the public form and the submission endpoint use them in
// fill mode to normalize and check what the end user typed.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"FormCraft-Backend/src/models"
)

// Mode selects between the disabled canvas preview and the live form.
type Mode int

const (
	ModeEdit Mode = iota
	ModeFill
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "fill"
}

// ChangeFunc receives the normalized value of a field after user input.
type ChangeFunc func(fieldID string, value any)

// Constraints are the input limits a widget enforces, derived from its field.
type Constraints struct {
	Required  bool
	Disabled  bool
	MinLength *int
	MaxLength *int
	Min       *float64
	Max       *float64
	Step      float64
	MinDate   *string
	MaxDate   *string
	Pattern   string
	Options   []string
	Accept    []string
	MaxBytes  int64
}

// Widget is the rendered form of one field.
type Widget interface {
	Field() models.FieldDescriptor
	Mode() Mode
	Constraints() Constraints
	// Normalize converts a raw UI or wire value into the semantic value of
	// the field. nil always normalizes to nil.
	Normalize(raw any) (any, error)
	// Input normalizes raw and hands it to the change callback. Edit mode
	// widgets accept and drop the input.
	Input(raw any) error
	// Validate checks a normalized value against the constraints.
	Validate(value any) error
}

// Factory builds the widget of one field type.
type Factory func(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget

var (
	ErrInvalidValue = errors.New("invalid value")
	ErrReadOnly     = errors.New("field is read only")
)

// FieldError reports why a value was rejected for a field.
type FieldError struct {
	FieldID string
	Reason  string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.FieldID, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func invalid(fieldID, format string, args ...any) *FieldError {
	return &FieldError{FieldID: fieldID, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}

// Registry maps field types to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[models.FieldType]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[models.FieldType]Factory)}
}

// Register installs or replaces the factory of t.
func (r *Registry) Register(t models.FieldType, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
}

// Has reports whether t has a factory.
func (r *Registry) Has(t models.FieldType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[t]
	return ok
}

// Render builds the widget of field. Types without a factory get a fallback
// widget that shows a placeholder and passes values through untouched.
func (r *Registry) Render(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	r.mu.RLock()
	f, ok := r.factories[field.Type]
	r.mu.RUnlock()
	if !ok {
		return newFallback(field, mode, onChange)
	}
	return f(field, mode, onChange)
}

// RenderAll renders every field of a schema in order.
func (r *Registry) RenderAll(schema models.FormSchema, mode Mode, onChange ChangeFunc) []Widget {
	out := make([]Widget, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		out = append(out, r.Render(f, mode, onChange))
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared registry with a widget for each catalog type.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		defaultReg.Register(models.FieldTextInput, newText)
		defaultReg.Register(models.FieldTextArea, newText)
		defaultReg.Register(models.FieldEmail, newEmail)
		defaultReg.Register(models.FieldCheckbox, newBool)
		defaultReg.Register(models.FieldToggle, newBool)
		defaultReg.Register(models.FieldSelect, newChoice)
		defaultReg.Register(models.FieldRadio, newChoice)
		defaultReg.Register(models.FieldDate, newDate)
		defaultReg.Register(models.FieldNumber, newNumber)
		defaultReg.Register(models.FieldFileUpload, newUpload)
		defaultReg.Register(models.FieldMediaUpload, newUpload)
		defaultReg.Register(models.FieldBannerUpload, newUpload)
	})
	return defaultReg
}
