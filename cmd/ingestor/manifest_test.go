package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadManifest_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "data/gyms.csv", "gym_name,x,y,attractiveness\ncentral,0,0,10\n")
	write(t, dir, "data/pop.csv", "x,y,population_count\n0,10,100\n")
	write(t, dir, "data/comp.csv", "x,y,attractiveness\n2,0,5\n")
	path := write(t, dir, "manifest.json", `{
		"source": "survey-2024",
		"studies": [{
			"id": "downtown",
			"name": "Downtown",
			"facilities": "data/gyms.csv",
			"populations": "data/pop.csv",
			"competitors": "data/comp.csv"
		}]
	}`)

	m, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Studies, 1)
	e := m.Studies[0]
	assert.Equal(t, filepath.Join(dir, "data", "gyms.csv"), e.Facilities)
	assert.Equal(t, "downtown", e.key())

	study, err := e.Study()
	require.NoError(t, err)
	assert.Equal(t, "downtown", study.ID)
	assert.Equal(t, "Downtown", study.Name)
	require.Len(t, study.Facilities, 1)
	require.Len(t, study.Populations, 1)
	require.Len(t, study.Competitors, 1)
	assert.Equal(t, 5.0, study.Competitors[0].Attractiveness)
}

func TestLoadManifest_RequiresTables(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "manifest.json", `{"studies": [{"name": "x", "facilities": "gyms.csv"}]}`)

	_, err := loadManifest(path)
	assert.ErrorContains(t, err, "facilities and populations are required")
}

func TestLoadManifest_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "manifest.json", `{"studies": [`)

	_, err := loadManifest(path)
	assert.ErrorContains(t, err, "parse manifest")
}

func TestStudyEntry_KeyFallsBackToName(t *testing.T) {
	assert.Equal(t, "Uptown", StudyEntry{Name: "Uptown"}.key())
}
