package seeder

import (
	"context"
	"log"

	"FormCraft-Backend/src/builder"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"
)

// sampleField is one step of a sample form: add a field of a type, then
// patch its properties.
type sampleField struct {
	Type  models.FieldType
	Patch map[string]any
}

type sampleForm struct {
	Name        string
	Description string
	Publish     bool
	Fields      []sampleField
}

var sampleForms = []sampleForm{
	{
		Name:        "Contact Us",
		Description: "Send us a message and we will get back to you",
		Publish:     true,
		Fields: []sampleField{
			{models.FieldBannerUpload, map[string]any{"label": "Banner", "position": "top"}},
			{models.FieldTextInput, map[string]any{"label": "Full name", "required": true, "gridColumn": "half"}},
			{models.FieldEmail, map[string]any{"label": "Email", "required": true, "gridColumn": "half"}},
			{models.FieldSelect, map[string]any{"label": "Topic", "options": []map[string]any{
				{"label": "Support", "value": "support"},
				{"label": "Sales", "value": "sales"},
				{"label": "Other", "value": "other"},
			}}},
			{models.FieldTextArea, map[string]any{"label": "Message", "required": true, "rows": 5}},
			{models.FieldFileUpload, map[string]any{"label": "Attachment"}},
			{models.FieldCheckbox, map[string]any{"label": "Consent", "checkboxText": "You may contact me by email", "required": true}},
		},
	},
	{
		Name:        "Tech Conference Registration",
		Description: "Register for the annual technology conference",
		Fields: []sampleField{
			{models.FieldTextInput, map[string]any{"label": "Full name", "required": true}},
			{models.FieldEmail, map[string]any{"label": "Email address", "required": true}},
			{models.FieldRadio, map[string]any{"label": "Ticket", "options": []map[string]any{
				{"label": "Standard", "value": "standard"},
				{"label": "VIP", "value": "vip"},
			}}},
			{models.FieldDate, map[string]any{"label": "Arrival date"}},
			{models.FieldNumber, map[string]any{"label": "Guests", "min": 0, "max": 3}},
			{models.FieldToggle, map[string]any{"label": "Vegetarian meal"}},
			{models.FieldMediaUpload, map[string]any{"label": "Profile photo"}},
		},
	},
}

// buildDraft assembles a sample form through the builder, the same way the
// canvas does.
func buildDraft(sample sampleForm) builder.Draft {
	d := builder.NewDraft()
	d.Name = sample.Name
	d.Description = sample.Description
	for _, f := range sample.Fields {
		d = d.AddField(f.Type)
		if active, ok := d.ActiveField(); ok {
			d = d.UpdateFieldProperties(active.ID, f.Patch)
		}
	}
	return d.SetActiveField(nil)
}

// SeedSampleForms creates the sample forms for owner unless they already own
// some. It returns the number of forms created.
func SeedSampleForms(ctx context.Context, store repository.Store, owner *models.User) (int, error) {
	existing, err := store.ListFormsByOwner(ctx, owner.ID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Printf("ℹ️ %s already owns %d form(s), skipping samples", owner.Username, len(existing))
		return 0, nil
	}

	created := 0
	for _, sample := range sampleForms {
		form := buildDraft(sample).ToForm()
		form.UserID = owner.ID
		if sample.Publish {
			form.Status = models.FormPublished
		}
		saved, err := store.CreateForm(ctx, &form)
		if err != nil {
			log.Println("❌ Failed to seed form:", sample.Name, err)
			return created, err
		}
		log.Printf("✅ Seeded form %q (%s)", saved.Name, saved.ID)
		created++
	}
	return created, nil
}
