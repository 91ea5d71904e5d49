package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectsCSV(t *testing.T) {
	t.Run("should read projects after the header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.csv")
		require.NoError(t, os.WriteFile(path, []byte("code;name\n1;Alpha\n 2; Beta \n"), 0o644))

		projects, err := ParseProjectsCSV(path)
		require.NoError(t, err)
		assert.Equal(t, []models.Project{{Code: 1, Name: "Alpha"}, {Code: 2, Name: "Beta"}}, projects)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := ParseProjectsCSV(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("should fail on an empty file", func(t *testing.T) {
		_, err := readProjects(strings.NewReader(""), "empty.csv")
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("should report the line of a bad code", func(t *testing.T) {
		_, err := readProjects(strings.NewReader("code;name\n1;Alpha\nx;Beta\n"), "p.csv")
		assert.ErrorContains(t, err, "p.csv line 3: invalid project code")
	})

	t.Run("should reject names that do not fit", func(t *testing.T) {
		_, err := readProjects(strings.NewReader("code;name\n1;"+strings.Repeat("a", 101)+"\n"), "p.csv")
		assert.ErrorContains(t, err, "project name")

		_, err = readProjects(strings.NewReader("code;name\n1;\n"), "p.csv")
		assert.ErrorContains(t, err, "project name")
	})

	t.Run("should reject a wrong number of fields", func(t *testing.T) {
		_, err := readProjects(strings.NewReader("code;name\n1;Alpha;extra\n"), "p.csv")
		assert.Error(t, err)
	})
}
