package seeder

import (
	"context"
	"testing"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDraft_AppliesPatches(t *testing.T) {
	d := buildDraft(sampleForms[0])
	require.Len(t, d.Fields, len(sampleForms[0].Fields))
	assert.Nil(t, d.ActiveFieldID)
	assert.Equal(t, 1, d.Schema().BannerCount())

	name := d.Fields[1]
	assert.Equal(t, models.FieldTextInput, name.Type)
	assert.Equal(t, "Full name", name.Label)
	assert.True(t, name.Required)
	assert.Equal(t, models.GridHalf, name.GridColumn)

	topic := d.Fields[3]
	require.Len(t, topic.Options(), 3)
	assert.Equal(t, "sales", topic.Options()[1].Value)
}

func TestSeedSampleForms(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	owner, err := store.CreateUser(ctx, &models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	n, err := SeedSampleForms(ctx, store, owner)
	require.NoError(t, err)
	assert.Equal(t, len(sampleForms), n)

	forms, err := store.ListFormsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, forms, len(sampleForms))

	published := 0
	for _, f := range forms {
		if f.Status == models.FormPublished {
			published++
			require.NotNil(t, f.PublishedURL)
		}
	}
	assert.Equal(t, 1, published)

	n, err = SeedSampleForms(ctx, store, owner)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding twice adds nothing")
}
