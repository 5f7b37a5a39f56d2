package models

import "encoding/json"

// FieldProps is the type specific payload of a FieldDescriptor. The interface
// is sealed: only the variants below implement it.
type FieldProps interface {
	FieldType() FieldType
	isFieldProps()
}

// Option is one choice of a select or radio field.
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

type TextInputProps struct {
	MinLength *int `json:"minLength"`
	MaxLength *int `json:"maxLength"`
}

type TextAreaProps struct {
	Rows      int  `json:"rows"`
	MinLength *int `json:"minLength"`
	MaxLength *int `json:"maxLength"`
}

type CheckboxProps struct {
	CheckboxLabel string `json:"checkboxLabel"`
	CheckboxText  string `json:"checkboxText"`
}

type SelectProps struct {
	Options []Option `json:"options"`
}

type RadioProps struct {
	Options []Option `json:"options"`
}

// DateProps bounds are YYYY-MM-DD strings.
type DateProps struct {
	MinDate *string `json:"minDate"`
	MaxDate *string `json:"maxDate"`
}

type ToggleProps struct {
	ToggleLabel    string `json:"toggleLabel"`
	DefaultChecked bool   `json:"defaultChecked"`
}

// FileUploadProps: AllowedTypes is an HTML accept list, MaxFileSize is in MB.
type FileUploadProps struct {
	AllowedTypes string `json:"allowedTypes"`
	FileTypeText string `json:"fileTypeText"`
	MaxFileSize  int    `json:"maxFileSize"`
}

type NumberProps struct {
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Step float64  `json:"step"`
}

type EmailProps struct {
	Pattern string `json:"pattern"`
}

type MediaUploadProps struct {
	AllowedTypes  string `json:"allowedTypes"`
	MediaTypeText string `json:"mediaTypeText"`
	MaxFileSize   int    `json:"maxFileSize"`
}

// BannerPosition places the banner image relative to the form body.
type BannerPosition string

const (
	BannerTop   BannerPosition = "top"
	BannerLeft  BannerPosition = "left"
	BannerRight BannerPosition = "right"
)

type BannerUploadProps struct {
	AllowedTypes string         `json:"allowedTypes"`
	FileTypeText string         `json:"fileTypeText"`
	MaxFileSize  int            `json:"maxFileSize"`
	Position     BannerPosition `json:"position"`
	CanUpload    bool           `json:"canUpload"`
	CanDownload  bool           `json:"canDownload"`
	BannerURL    string         `json:"bannerUrl"`
}

// UnknownProps keeps the extra keys of a field whose type this build does not
// know, so stored schemas survive a round trip untouched.
type UnknownProps map[string]json.RawMessage

func (*TextInputProps) FieldType() FieldType    { return FieldTextInput }
func (*TextAreaProps) FieldType() FieldType     { return FieldTextArea }
func (*CheckboxProps) FieldType() FieldType     { return FieldCheckbox }
func (*SelectProps) FieldType() FieldType       { return FieldSelect }
func (*RadioProps) FieldType() FieldType        { return FieldRadio }
func (*DateProps) FieldType() FieldType         { return FieldDate }
func (*ToggleProps) FieldType() FieldType       { return FieldToggle }
func (*FileUploadProps) FieldType() FieldType   { return FieldFileUpload }
func (*NumberProps) FieldType() FieldType       { return FieldNumber }
func (*EmailProps) FieldType() FieldType        { return FieldEmail }
func (*MediaUploadProps) FieldType() FieldType  { return FieldMediaUpload }
func (*BannerUploadProps) FieldType() FieldType { return FieldBannerUpload }
func (UnknownProps) FieldType() FieldType       { return "" }

func (*TextInputProps) isFieldProps()    {}
func (*TextAreaProps) isFieldProps()     {}
func (*CheckboxProps) isFieldProps()     {}
func (*SelectProps) isFieldProps()       {}
func (*RadioProps) isFieldProps()        {}
func (*DateProps) isFieldProps()         {}
func (*ToggleProps) isFieldProps()       {}
func (*FileUploadProps) isFieldProps()   {}
func (*NumberProps) isFieldProps()       {}
func (*EmailProps) isFieldProps()        {}
func (*MediaUploadProps) isFieldProps()  {}
func (*BannerUploadProps) isFieldProps() {}
func (UnknownProps) isFieldProps()       {}

func newProps(t FieldType) FieldProps {
	switch t {
	case FieldTextInput:
		return &TextInputProps{}
	case FieldTextArea:
		return &TextAreaProps{}
	case FieldCheckbox:
		return &CheckboxProps{}
	case FieldSelect:
		return &SelectProps{}
	case FieldRadio:
		return &RadioProps{}
	case FieldDate:
		return &DateProps{}
	case FieldToggle:
		return &ToggleProps{}
	case FieldFileUpload:
		return &FileUploadProps{}
	case FieldNumber:
		return &NumberProps{}
	case FieldEmail:
		return &EmailProps{}
	case FieldMediaUpload:
		return &MediaUploadProps{}
	case FieldBannerUpload:
		return &BannerUploadProps{}
	}
	return nil
}

// UploadLimits returns the accept list and the size cap in MB of an upload field.
func (f FieldDescriptor) UploadLimits() (allowed string, maxMB int, ok bool) {
	switch p := f.Props.(type) {
	case *FileUploadProps:
		return p.AllowedTypes, p.MaxFileSize, true
	case *MediaUploadProps:
		return p.AllowedTypes, p.MaxFileSize, true
	case *BannerUploadProps:
		return p.AllowedTypes, p.MaxFileSize, true
	}
	return "", 0, false
}
