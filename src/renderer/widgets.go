package renderer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"FormCraft-Backend/src/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const dateLayout = "2006-01-02"

// dateTimeLayouts are the datetime forms whose date part a date field keeps.
var dateTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339, time.RFC3339Nano}

// widget is the one concrete Widget; each factory plugs in its own
// normalize and check steps.
type widget struct {
	field     models.FieldDescriptor
	mode      Mode
	onChange  ChangeFunc
	cons      Constraints
	normalize func(raw any) (any, error)
	check     func(value any) error
}

func newWidget(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) *widget {
	return &widget{
		field:    field,
		mode:     mode,
		onChange: onChange,
		cons: Constraints{
			Required: field.Required,
			Disabled: mode == ModeEdit,
		},
	}
}

func (w *widget) Field() models.FieldDescriptor { return w.field }
func (w *widget) Mode() Mode                    { return w.mode }
func (w *widget) Constraints() Constraints      { return w.cons }

func (w *widget) Normalize(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if w.normalize == nil {
		return raw, nil
	}
	return w.normalize(raw)
}

func (w *widget) Input(raw any) error {
	if w.mode == ModeEdit {
		return nil
	}
	if w.cons.Disabled {
		return &FieldError{FieldID: w.field.ID, Reason: "field is read only", Err: ErrReadOnly}
	}
	v, err := w.Normalize(raw)
	if err != nil {
		return err
	}
	if w.onChange != nil {
		w.onChange(w.field.ID, v)
	}
	return nil
}

func (w *widget) Validate(value any) error {
	if isEmpty(value) {
		if w.cons.Required {
			return &FieldError{FieldID: w.field.ID, Reason: "required", Err: ErrInvalidValue}
		}
		return nil
	}
	if w.check == nil {
		return nil
	}
	return w.check(value)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		// an unchecked box does not satisfy "required"
		return !t
	case UploadValue:
		return t.FileName == "" && t.DataURL == ""
	case *UploadValue:
		return t == nil || (t.FileName == "" && t.DataURL == "")
	}
	return false
}

func asString(fieldID string, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []string:
		if len(v) == 0 {
			return "", nil
		}
		return v[0], nil
	case json.Number:
		return v.String(), nil
	case float64, int, int64, bool:
		return fmt.Sprint(v), nil
	}
	return "", invalid(fieldID, "expected text, got %T", raw)
}

// text covers textInput and textArea.
func newText(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	switch p := field.Props.(type) {
	case *models.TextInputProps:
		w.cons.MinLength, w.cons.MaxLength = p.MinLength, p.MaxLength
	case *models.TextAreaProps:
		w.cons.MinLength, w.cons.MaxLength = p.MinLength, p.MaxLength
	}
	w.normalize = func(raw any) (any, error) { return asString(field.ID, raw) }
	w.check = func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid(field.ID, "expected text")
		}
		return checkLength(field.ID, s, w.cons)
	}
	return w
}

func checkLength(fieldID, s string, c Constraints) error {
	n := utf8.RuneCountInString(s)
	if c.MinLength != nil && n < *c.MinLength {
		return invalid(fieldID, "must be at least %d characters", *c.MinLength)
	}
	if c.MaxLength != nil && n > *c.MaxLength {
		return invalid(fieldID, "must be at most %d characters", *c.MaxLength)
	}
	return nil
}

func newEmail(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	var pattern *regexp.Regexp
	if p, ok := field.Props.(*models.EmailProps); ok && p.Pattern != "" {
		w.cons.Pattern = p.Pattern
		// a broken admin pattern falls back to the plain email check
		pattern, _ = regexp.Compile(p.Pattern)
	}
	w.normalize = func(raw any) (any, error) {
		s, err := asString(field.ID, raw)
		return strings.TrimSpace(s), err
	}
	w.check = func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid(field.ID, "expected text")
		}
		if err := validate.Var(s, "email"); err != nil {
			return invalid(field.ID, "must be a valid email address")
		}
		if pattern != nil && !pattern.MatchString(s) {
			return invalid(field.ID, "does not match the expected format")
		}
		return nil
	}
	return w
}

// bool covers checkbox and toggle.
func newBool(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	w.normalize = func(raw any) (any, error) {
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string, []string:
			s, _ := asString(field.ID, v)
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" || s == "off" {
				return false, nil
			}
			if s == "on" {
				return true, nil
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, invalid(field.ID, "expected true or false")
			}
			return b, nil
		}
		return nil, invalid(field.ID, "expected true or false, got %T", raw)
	}
	return w
}

// choice covers select and radio; the value is an option value.
func newChoice(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	for _, o := range field.Options() {
		w.cons.Options = append(w.cons.Options, o.Value)
	}
	w.normalize = func(raw any) (any, error) { return asString(field.ID, raw) }
	w.check = func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid(field.ID, "expected an option value")
		}
		for _, o := range w.cons.Options {
			if o == s {
				return nil
			}
		}
		return invalid(field.ID, "%q is not one of the options", s)
	}
	return w
}

// date values are YYYY-MM-DD; a datetime-local value keeps its date part.
func newDate(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	if p, ok := field.Props.(*models.DateProps); ok {
		w.cons.MinDate, w.cons.MaxDate = p.MinDate, p.MaxDate
	}
	w.normalize = func(raw any) (any, error) {
		s, err := asString(field.ID, raw)
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", nil
		}
		if _, err := time.Parse(dateLayout, s); err == nil {
			return s, nil
		}
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateLayout), nil
			}
		}
		return nil, invalid(field.ID, "expected a date as YYYY-MM-DD")
	}
	w.check = func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid(field.ID, "expected a date")
		}
		// YYYY-MM-DD compares correctly as a string
		if w.cons.MinDate != nil && *w.cons.MinDate != "" && s < *w.cons.MinDate {
			return invalid(field.ID, "must be on or after %s", *w.cons.MinDate)
		}
		if w.cons.MaxDate != nil && *w.cons.MaxDate != "" && s > *w.cons.MaxDate {
			return invalid(field.ID, "must be on or before %s", *w.cons.MaxDate)
		}
		return nil
	}
	return w
}

func newNumber(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) Widget {
	w := newWidget(field, mode, onChange)
	if p, ok := field.Props.(*models.NumberProps); ok {
		w.cons.Min, w.cons.Max, w.cons.Step = p.Min, p.Max, p.Step
	}
	w.normalize = func(raw any) (any, error) {
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, invalid(field.ID, "expected a number")
			}
			return f, nil
		case string, []string:
			s, _ := asString(field.ID, v)
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, invalid(field.ID, "expected a number")
			}
			return f, nil
		}
		return nil, invalid(field.ID, "expected a number, got %T", raw)
	}
	w.check = func(value any) error {
		f, ok := value.(float64)
		if !ok {
			return invalid(field.ID, "expected a number")
		}
		if w.cons.Min != nil && f < *w.cons.Min {
			return invalid(field.ID, "must be at least %v", *w.cons.Min)
		}
		if w.cons.Max != nil && f > *w.cons.Max {
			return invalid(field.ID, "must be at most %v", *w.cons.Max)
		}
		return nil
	}
	return w
}

// fallback stands in for field types this build has no widget for.
type fallback struct {
	*widget
}

func newFallback(field models.FieldDescriptor, mode Mode, onChange ChangeFunc) *fallback {
	w := newWidget(field, mode, onChange)
	w.cons.Required = false
	return &fallback{widget: w}
}

// Placeholder is the text shown in place of the unknown widget.
func (f *fallback) Placeholder() string {
	return "unknown field type"
}

// Placeholderer is implemented by widgets that render as a placeholder only.
type Placeholderer interface {
	Placeholder() string
}
