// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, UnpaywallEmail, "  oa@example.org  \n")
				writeFile(t, dir, PubMedAPIKey, "ncbi123")
				return dir
			},
			want: Set{UnpaywallEmail: "oa@example.org", PubMedAPIKey: "ncbi123"},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			want: Set{},
		},
		{
			name: "skips empty, hidden and directory entries",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PubMedEmail, "me@example.org")
				writeFile(t, dir, "blank", "  \n\t")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Set{PubMedEmail: "me@example.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetFill(t *testing.T) {
	s := Set{UnpaywallEmail: "oa@example.org"}

	empty := ""
	assert.True(t, s.Fill(&empty, UnpaywallEmail))
	assert.Equal(t, "oa@example.org", empty)

	preset := "config@example.org"
	assert.False(t, s.Fill(&preset, UnpaywallEmail))
	assert.Equal(t, "config@example.org", preset)

	missing := ""
	assert.False(t, s.Fill(&missing, PubMedEmail))
	assert.Empty(t, missing)
}

func TestSetKeysSorted(t *testing.T) {
	s := Set{PubMedEmail: "a", CrossrefMailto: "b", UnpaywallEmail: "c"}
	assert.Equal(t, []string{CrossrefMailto, PubMedEmail, UnpaywallEmail}, s.Keys())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
