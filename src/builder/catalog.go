// Package builder holds the field catalog and the form draft state machine
// that the admin canvas drives.
package builder

import (
	"FormCraft-Backend/src/models"

	"github.com/google/uuid"
)

const (
	docTypes   = "image/*,application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mediaTypes = "audio/*,video/*"
	emailRegex = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

func defaultOptions() []models.Option {
	return []models.Option{
		{Label: "Option 1", Value: "option1"},
		{Label: "Option 2", Value: "option2"},
		{Label: "Option 3", Value: "option3"},
	}
}

// templates build the default descriptor of each type, without an id.
var templates = map[models.FieldType]func() models.FieldDescriptor{
	models.FieldTextInput: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:       "Text Input",
			HelperText:  "Enter text here",
			Placeholder: "Type here...",
			Props:       &models.TextInputProps{},
		}
	},
	models.FieldTextArea: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:       "Text Area",
			HelperText:  "Enter longer text here",
			Placeholder: "Type here...",
			Props:       &models.TextAreaProps{Rows: 3},
		}
	},
	models.FieldCheckbox: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Checkbox",
			HelperText: "Select options",
			Props: &models.CheckboxProps{
				CheckboxLabel: "I agree",
				CheckboxText:  "By checking this box, you agree to our terms and conditions.",
			},
		}
	},
	models.FieldSelect: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:       "Select List",
			HelperText:  "Choose from options",
			Placeholder: "Please select an option",
			Props:       &models.SelectProps{Options: defaultOptions()},
		}
	},
	models.FieldRadio: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Radio Button",
			HelperText: "Select one option",
			Props:      &models.RadioProps{Options: defaultOptions()},
		}
	},
	models.FieldDate: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Date/Time Picker",
			HelperText: "Select a date",
			Props:      &models.DateProps{},
		}
	},
	models.FieldToggle: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Toggle Switch",
			HelperText: "Toggle this option",
			Props:      &models.ToggleProps{ToggleLabel: "Enable"},
		}
	},
	models.FieldFileUpload: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "File Upload",
			HelperText: "Upload your documents",
			Props: &models.FileUploadProps{
				AllowedTypes: docTypes,
				FileTypeText: "PNG, JPG, PDF, DOC up to 10MB",
				MaxFileSize:  10,
			},
		}
	},
	models.FieldNumber: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:       "Number Input",
			HelperText:  "Enter a number",
			Placeholder: "0",
			Props:       &models.NumberProps{Step: 1},
		}
	},
	models.FieldEmail: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:       "Email Input",
			HelperText:  "Enter your email address",
			Placeholder: "email@example.com",
			Props:       &models.EmailProps{Pattern: emailRegex},
		}
	},
	models.FieldMediaUpload: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Audio/Video Upload",
			HelperText: "Upload audio or video files",
			Props: &models.MediaUploadProps{
				AllowedTypes:  mediaTypes,
				MediaTypeText: "MP3, WAV, MP4, MOV up to 10MB",
				MaxFileSize:   10,
			},
		}
	},
	models.FieldBannerUpload: func() models.FieldDescriptor {
		return models.FieldDescriptor{
			Label:      "Banner Upload",
			HelperText: "Upload a banner image for your form",
			Props: &models.BannerUploadProps{
				AllowedTypes: "image/*",
				FileTypeText: "PNG, JPG, GIF up to 10MB",
				MaxFileSize:  10,
				Position:     models.BannerTop,
				CanUpload:    true,
				CanDownload:  false,
			},
		}
	},
}

// Types returns the catalog in palette order.
func Types() []models.FieldType {
	out := make([]models.FieldType, len(models.FieldTypes))
	copy(out, models.FieldTypes)
	return out
}

// Template returns the default descriptor of t with an empty id.
func Template(t models.FieldType) (models.FieldDescriptor, bool) {
	build, ok := templates[t]
	if !ok {
		return models.FieldDescriptor{}, false
	}
	f := build()
	f.Type = t
	f.GridColumn = models.GridFull
	return f, true
}

// Instantiate returns a fresh descriptor of type t with a new id.
// ok is false when t is not in the catalog.
func Instantiate(t models.FieldType) (models.FieldDescriptor, bool) {
	f, ok := Template(t)
	if !ok {
		return models.FieldDescriptor{}, false
	}
	f.ID = uuid.NewString()
	return f, true
}
