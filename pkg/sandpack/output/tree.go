package output

import (
	"path"

	"github.com/disiqueira/gotree/v3"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
)

// ManifestTree renders the entries of m as a directory tree under label.
// Hidden entries are marked.
func ManifestTree(label string, m manifest.Manifest) string {
	root := gotree.New(label)
	dirs := map[string]gotree.Tree{"/": root}

	var dirFor func(dir string) gotree.Tree
	dirFor = func(dir string) gotree.Tree {
		if t, ok := dirs[dir]; ok {
			return t
		}
		t := dirFor(path.Dir(dir)).Add(path.Base(dir) + "/")
		dirs[dir] = t
		return t
	}

	for _, key := range m.Entries() {
		name := path.Base(key)
		if m[key].Hidden {
			name += " " + mutedStyle.Render("(hidden)")
		}
		dirFor(path.Dir(key)).Add(name)
	}

	return root.Print()
}
