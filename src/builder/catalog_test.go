package builder

import (
	"testing"

	"FormCraft-Backend/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CoversEveryType(t *testing.T) {
	types := Types()
	assert.Len(t, types, 12)
	for _, typ := range types {
		f, ok := Template(typ)
		require.True(t, ok, "missing template for %s", typ)
		assert.Empty(t, f.ID)
		require.NotNil(t, f.Props, typ)
		assert.Equal(t, typ, f.Props.FieldType())
		assert.NotEmpty(t, f.Label)
	}
}

func TestCatalog_FreshIDs(t *testing.T) {
	a, ok := Instantiate(models.FieldToggle)
	require.True(t, ok)
	b, _ := Instantiate(models.FieldToggle)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCatalog_TemplatesAreIndependent(t *testing.T) {
	a, _ := Template(models.FieldRadio)
	a.Props.(*models.RadioProps).Options[0].Label = "changed"

	b, _ := Template(models.FieldRadio)
	assert.Equal(t, "Option 1", b.Options()[0].Label)
}

func TestCatalog_UploadDefaults(t *testing.T) {
	f, _ := Template(models.FieldBannerUpload)
	allowed, maxMB, ok := f.UploadLimits()
	require.True(t, ok)
	assert.Equal(t, "image/*", allowed)
	assert.Equal(t, 10, maxMB)

	props := f.Props.(*models.BannerUploadProps)
	assert.Equal(t, models.BannerTop, props.Position)
	assert.True(t, props.CanUpload)

	_, ok = Template(models.FieldType("nope"))
	assert.False(t, ok)
}
