package builder

import (
	"encoding/json"
	"testing"

	"FormCraft-Backend/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(d Draft) []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.ID
	}
	return out
}

func threeFields(t *testing.T) (Draft, []string) {
	t.Helper()
	d := NewDraft().
		AddField(models.FieldTextInput).
		AddField(models.FieldNumber).
		AddField(models.FieldEmail)
	require.Len(t, d.Fields, 3)
	return d, ids(d)
}

func TestAddField_AppendsAndSelects(t *testing.T) {
	d := NewDraft().AddField(models.FieldSelect)

	require.Len(t, d.Fields, 1)
	f := d.Fields[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, models.FieldSelect, f.Type)
	assert.Equal(t, models.GridFull, f.GridColumn)
	assert.Len(t, f.Options(), 3)

	require.NotNil(t, d.ActiveFieldID)
	assert.Equal(t, f.ID, *d.ActiveFieldID)
}

func TestAddField_UnknownTypeIsNoop(t *testing.T) {
	d := NewDraft().AddField(models.FieldTextInput)
	next := d.AddField(models.FieldType("signature"))
	assert.Equal(t, ids(d), ids(next))
	assert.Equal(t, d.ActiveFieldID, next.ActiveFieldID)
}

func TestAddField_BannerIsSingleton(t *testing.T) {
	d := NewDraft()
	for i := 0; i < 5; i++ {
		d = d.AddField(models.FieldBannerUpload)
	}
	assert.Equal(t, 1, d.Schema().BannerCount())

	d = NewDraft().
		AddField(models.FieldTextInput).
		AddField(models.FieldSelect).
		AddField(models.FieldBannerUpload)
	bannerID := *d.ActiveFieldID

	d = d.AddField(models.FieldBannerUpload)
	assert.Len(t, d.Fields, 3)
	assert.Equal(t, bannerID, *d.ActiveFieldID)
}

func TestAddField_LeavesReceiverUntouched(t *testing.T) {
	d := NewDraft().AddField(models.FieldTextInput)
	_ = d.AddField(models.FieldEmail)
	assert.Len(t, d.Fields, 1)
}

func TestMoveField(t *testing.T) {
	d, orig := threeFields(t)
	a, b, c := orig[0], orig[1], orig[2]

	assert.Equal(t, []string{b, a, c}, ids(d.MoveFieldDown(0)))
	assert.Equal(t, []string{a, b, c}, ids(d.MoveFieldUp(0)))
	assert.Equal(t, []string{a, c, b}, ids(d.MoveFieldUp(2)))
	assert.Equal(t, []string{a, b, c}, ids(d.MoveFieldDown(2)))
	assert.Equal(t, []string{a, b, c}, ids(d.MoveFieldDown(-1)))
	assert.Equal(t, []string{a, b, c}, ids(d.MoveFieldUp(7)))
}

func TestMoveField_PreservesMultiset(t *testing.T) {
	d, orig := threeFields(t)
	for i := -1; i <= 3; i++ {
		assert.ElementsMatch(t, orig, ids(d.MoveFieldUp(i)))
		assert.ElementsMatch(t, orig, ids(d.MoveFieldDown(i)))
	}
}

func TestDeleteField_ClearsActive(t *testing.T) {
	d, orig := threeFields(t)
	a, b, c := orig[0], orig[1], orig[2]

	d = d.SetActiveField(&b)
	d = d.DeleteField(b)

	assert.Equal(t, []string{a, c}, ids(d))
	assert.Nil(t, d.ActiveFieldID)
	_, ok := d.ActiveField()
	assert.False(t, ok)
}

func TestDeleteField_KeepsOtherSelection(t *testing.T) {
	d, orig := threeFields(t)
	d = d.SetActiveField(&orig[0]).DeleteField(orig[2])
	require.NotNil(t, d.ActiveFieldID)
	assert.Equal(t, orig[0], *d.ActiveFieldID)
}

func TestDeleteField_UnknownIsNoop(t *testing.T) {
	d, orig := threeFields(t)
	assert.Equal(t, orig, ids(d.DeleteField("missing")))
}

func TestSetActiveField_Dangling(t *testing.T) {
	d, _ := threeFields(t)
	ghost := "ghost"
	d = d.SetActiveField(&ghost)

	require.NotNil(t, d.ActiveFieldID)
	_, ok := d.ActiveField()
	assert.False(t, ok)

	d = d.SetActiveField(nil)
	assert.Nil(t, d.ActiveFieldID)
}

func TestUpdateFieldProperties(t *testing.T) {
	d, orig := threeFields(t)
	patch := map[string]any{"label": "Age", "min": 18, "required": true}

	once := d.UpdateFieldProperties(orig[1], patch)
	twice := once.UpdateFieldProperties(orig[1], patch)
	assert.Equal(t, once.Fields, twice.Fields)

	f := once.Fields[1]
	assert.Equal(t, "Age", f.Label)
	assert.True(t, f.Required)
	props, ok := f.Props.(*models.NumberProps)
	require.True(t, ok)
	require.NotNil(t, props.Min)
	assert.Equal(t, 18.0, *props.Min)

	assert.Equal(t, "Text Input", d.Fields[0].Label)
	assert.Equal(t, "Number Input", d.Fields[1].Label)
}

func TestUpdateFieldProperties_CannotChangeIdentity(t *testing.T) {
	d, orig := threeFields(t)
	d = d.UpdateFieldProperties(orig[0], map[string]any{"id": "x", "type": "email"})
	assert.Equal(t, orig[0], d.Fields[0].ID)
	assert.Equal(t, models.FieldTextInput, d.Fields[0].Type)
}

func TestUpdateFieldProperties_BadPatchIsNoop(t *testing.T) {
	d, orig := threeFields(t)
	next := d.UpdateFieldProperties(orig[0], map[string]any{"required": "sure"})
	assert.Equal(t, d.Fields, next.Fields)

	next = d.UpdateFieldProperties("missing", map[string]any{"label": "x"})
	assert.Equal(t, d.Fields, next.Fields)
}

func TestReset(t *testing.T) {
	d, _ := threeFields(t)
	d.Name = "Survey"
	d = d.Reset()
	assert.Empty(t, d.Fields)
	assert.Nil(t, d.ActiveFieldID)
	assert.Empty(t, d.Name)
	assert.Equal(t, models.FormDraft, d.Status)
}

func TestDraft_FormRoundTrip(t *testing.T) {
	d := NewDraft()
	for _, typ := range Types() {
		d = d.AddField(typ)
	}
	d.Name = "Everything"
	d.Description = "all field types"

	raw, err := json.Marshal(d.ToForm())
	require.NoError(t, err)

	var back models.Form
	require.NoError(t, json.Unmarshal(raw, &back))

	loaded := FromForm(back)
	assert.Equal(t, d.Fields, loaded.Fields)
	assert.Equal(t, d.Name, loaded.Name)
	assert.Nil(t, loaded.ActiveFieldID)
}
