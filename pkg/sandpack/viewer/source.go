package viewer

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
)

// Source loads the manifest of a project.
type Source interface {
	Fetch(ctx context.Context, id string) (manifest.Manifest, error)
}

// DirSource reads manifests from {Dir}/{id}/{FileName} on disk. A missing
// manifest is reported as an HTTP 404 so pages render the same way as for
// a remote source.
type DirSource struct {
	Dir string

	// FileName is the manifest file name. Defaults to files.json.
	FileName string
}

// Fetch reads and decodes the manifest of project id.
func (d *DirSource) Fetch(ctx context.Context, id string) (manifest.Manifest, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := d.FileName
	if name == "" {
		name = manifest.DefaultFileName
	}

	f, err := os.Open(filepath.Join(d.Dir, id, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &HTTPError{StatusCode: http.StatusNotFound}
		}
		return nil, err
	}
	defer f.Close()

	return decode(f)
}
