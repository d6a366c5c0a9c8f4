package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFormat(t *testing.T) {
	m := Manifest{
		"/b.js":   {Code: "<b>&</b>", Hidden: true},
		"/App.js": {Code: "x", Hidden: false},
	}

	data, err := Encode(m)
	require.NoError(t, err)

	want := `{
  "/App.js": {
    "code": "x",
    "hidden": false
  },
  "/b.js": {
    "code": "<b>&</b>",
    "hidden": true
  }
}
`
	assert.Equal(t, want, string(data))
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestEncodeIsDeterministic(t *testing.T) {
	m := Manifest{}
	for _, k := range []string{"/z.js", "/a.js", "/m/n.js", "/index.html", "/package.json"} {
		m[k] = Entry{Code: k, Hidden: true}
	}

	first, err := Encode(m)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Encode(m)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.json")
	m := Manifest{"/App.js": {Code: "export default 1\n"}}

	n, written, err := Write(path, m)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Positive(t, n)

	got, err := Read(path)
	require.NoError(t, err)
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteUnchangedSkipsRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.json")
	m := Manifest{"/App.js": {Code: "a"}}

	_, written, err := Write(path, m)
	require.NoError(t, err)
	require.True(t, written)

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	_, written, err = Write(path, m)
	require.NoError(t, err)
	assert.False(t, written)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged manifest must not be touched")

	m["/App.js"] = Entry{Code: "b"}
	_, written, err = Write(path, m)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestWriteMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "files.json")
	_, _, err := Write(path, Manifest{})
	assert.Error(t, err)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Read(bad)
	assert.Error(t, err)
}
