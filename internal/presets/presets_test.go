package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	require.Len(t, all, 5)

	expected := map[string]int{
		"champions": 16,
		"worldcup":  16,
		"conmebol":  16,
		"premier":   10,
		"laliga":    10,
	}
	for _, p := range all {
		count, ok := expected[p.ID]
		require.True(t, ok, "unexpected preset %s", p.ID)
		assert.Len(t, p.Teams, count, p.ID)
		for _, team := range p.Teams {
			assert.NotEmpty(t, team.Name)
			assert.NotEmpty(t, team.StarPlayer)
			assert.GreaterOrEqual(t, team.Rating, 1)
			assert.LessOrEqual(t, team.Rating, 5)
		}
	}
}

func TestAllReturnsCopies(t *testing.T) {
	first, err := All()
	require.NoError(t, err)
	first[0].Teams[0].Name = "Changed"

	second, err := All()
	require.NoError(t, err)
	assert.Equal(t, "Real Madrid", second[0].Teams[0].Name)
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name        string
		key         string
		expectedID  string
		expectedErr error
	}{
		{name: "By id", key: "premier", expectedID: "premier"},
		{name: "By display name", key: "Copa Mundial", expectedID: "worldcup"},
		{name: "Unknown", key: "serie-a", expectedErr: ErrUnknownPreset},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Get(tc.key)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedID, p.ID)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("Duplicate team ids", func(t *testing.T) {
		_, err := Parse([]byte(`
presets:
  - id: x
    name: X
    teams:
      - {id: a, name: A, rating: 3}
      - {id: a, name: B, rating: 2}
`))
		assert.Error(t, err)
	})

	t.Run("Missing name", func(t *testing.T) {
		_, err := Parse([]byte("presets:\n  - id: x\n"))
		assert.Error(t, err)
	})

	t.Run("Invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("presets: ["))
		assert.Error(t, err)
	})
}
