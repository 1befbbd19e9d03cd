package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationProducesChampion(t *testing.T) {
	testCases := []struct {
		name    string
		players int
		groups  bool
	}{
		{name: "Two players", players: 2},
		{name: "Odd knockout", players: 5},
		{name: "Full knockout", players: 8},
		{name: "Group stage", players: 8, groups: true},
		{name: "Uneven groups", players: 6, groups: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state, err := simulation{Preset: "champions", Players: tc.players, Groups: tc.groups, Seed: 9}.run()
			require.NoError(t, err)
			require.NotNil(t, state.Champion())
			require.NoError(t, state.Validate())
			assert.Equal(t, bracket.StageBracket, state.Stage)
			assert.Len(t, state.Stats(), tc.players)
		})
	}
}

func TestSimulationIsReproducible(t *testing.T) {
	sim := simulation{Preset: "worldcup", Players: 7, Seed: 1234}

	first, err := sim.run()
	require.NoError(t, err)
	second, err := sim.run()
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed gave different tournaments (-first +second):\n%s", diff)
	}
}

func TestRandomNamesAreDistinct(t *testing.T) {
	names := randomNames(3, 40)
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate name %q", n)
		seen[n] = true
	}
	assert.Len(t, names, 40)
}

func TestPrintReport(t *testing.T) {
	state, err := simulation{Preset: "champions", Names: []string{"Ana", "Ben", "Cris", "Dani"}, Seed: 5}.run()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, state))
	out := buf.String()
	assert.Contains(t, out, "Champion:")
	assert.Contains(t, out, "Third:")
	assert.Contains(t, out, "Top scorer:")
	for _, name := range []string{"Ana", "Ben", "Cris", "Dani"} {
		assert.Contains(t, out, name)
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "roster.xlsx")
	text := filepath.Join(dir, "roster.txt")
	require.NoError(t, os.WriteFile(text, []byte("Name\nAna\nben\nBen\n\nCris\n"), 0o600))

	testCases := []struct {
		name     string
		args     []string
		contains []string
	}{
		{name: "Simulate", args: []string{"simulate", "--players", "4", "--seed", "2"}, contains: []string{"Champion:", "PLAYER"}},
		{name: "Template", args: []string{"template", template}, contains: []string{"Wrote roster template"}},
		{name: "Import template", args: []string{"import", template}, contains: []string{"Player 1", "Player 3"}},
		{name: "Import text", args: []string{"import", text}, contains: []string{"Ana", "ben", "Cris"}},
		{name: "Presets", args: []string{"presets"}, contains: []string{"champions", "worldcup"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := newApp()
			app.Writer = &buf
			require.NoError(t, app.Run(append([]string{"bracketctl"}, tc.args...)))
			for _, s := range tc.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
