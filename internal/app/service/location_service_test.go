package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewLocationService(env.locationRepo)

	locations, err := svc.List()
	require.NoError(t, err)
	require.Len(t, locations, 3)

	t.Run("Add trims the name", func(t *testing.T) {
		location, err := svc.AddLocation("  Seattle Depot ")
		require.NoError(t, err)
		assert.Equal(t, "Seattle Depot", location.Name)
		assert.NotEmpty(t, location.ID)
	})

	t.Run("Blank name rejected", func(t *testing.T) {
		_, err := svc.AddLocation("   ")
		assert.ErrorIs(t, err, ErrLocationNameRequired)
	})

	t.Run("Case-insensitive duplicate rejected", func(t *testing.T) {
		_, err := svc.AddLocation("chicago main")
		assert.ErrorIs(t, err, ErrLocationExists)
	})

	t.Run("Remove known and unknown ids", func(t *testing.T) {
		require.NoError(t, svc.RemoveLocation("1"))
		require.NoError(t, svc.RemoveLocation("1"))

		locations, err := svc.List()
		require.NoError(t, err)
		assert.Len(t, locations, 3)
		for _, l := range locations {
			assert.NotEqual(t, "Chicago Main", l.Name)
		}
	})
}
