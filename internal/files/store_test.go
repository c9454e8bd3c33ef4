package files

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"png", "scan.png", true},
		{"uppercase extension", "NOTES.PDF", true},
		{"docx", "handover.docx", true},
		{"executable", "malware.exe", false},
		{"no extension", "README", false},
		{"double extension keeps last", "report.pdf.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allowed(tt.filename))
		})
	}
}

func TestStore_Save(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	saved, err := store.Save("notes.pdf", strings.NewReader("pdf bytes"), 9)
	require.NoError(t, err)

	assert.NotEqual(t, "notes.pdf", saved.Filename, "stored name must be randomized")
	assert.True(t, strings.HasSuffix(saved.Filename, ".pdf"))
	assert.Equal(t, int64(9), saved.SizeBytes)
	assert.Len(t, saved.ContentHash, 64, "sha-256 hex digest")

	// identical content hashes identically, for dedup
	again, err := store.Save("copy.pdf", strings.NewReader("pdf bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, saved.ContentHash, again.ContentHash)

	f, err := store.Open(saved.Filename)
	require.NoError(t, err)
	f.Close()
}

func TestStore_SaveRejections(t *testing.T) {
	store, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	_, err = store.Save("virus.exe", strings.NewReader("x"), 1)
	assert.Error(t, err)

	_, err = store.Save("big.pdf", strings.NewReader("this is more than ten bytes"), 27)
	assert.Error(t, err)
}

func TestStore_OpenRejectsPaths(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = store.Open("../../etc/passwd")
	assert.Error(t, err)
}
