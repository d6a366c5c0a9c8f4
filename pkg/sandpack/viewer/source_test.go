package viewer

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, id), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id, "files.json"), []byte(body), 0o644))
}

func TestDirSourceFetch(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "code1_2", sampleManifest)

	m, err := (&DirSource{Dir: dir}).Fetch(context.Background(), "code1_2")
	require.NoError(t, err)
	assert.Contains(t, m, "/App.js")
	assert.True(t, m["/index.html"].Hidden)
}

func TestDirSourceMissing(t *testing.T) {
	_, err := (&DirSource{Dir: t.TempDir()}).Fetch(context.Background(), "ghost")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, http.StatusNotFound, statusFor(err))
}

func TestDirSourceRejectsBadManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "broken", "{not json")
	writeManifest(t, dir, "null", "null")
	src := &DirSource{Dir: dir}

	_, err := src.Fetch(context.Background(), "broken")
	assert.ErrorContains(t, err, "invalid manifest")
	assert.Equal(t, http.StatusBadGateway, statusFor(err))

	_, err = src.Fetch(context.Background(), "null")
	assert.EqualError(t, err, "manifest is empty")
}

func TestDirSourceRejectsInvalidID(t *testing.T) {
	src := &DirSource{Dir: t.TempDir()}

	for _, id := range []string{"..", "a/b", `a\b`, ""} {
		_, err := src.Fetch(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidProjectID, id)
	}
}
