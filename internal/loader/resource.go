package loader

import (
	"fmt"
	"io/fs"
	stdpath "path"
	"strings"
)

// Resource is an addressable, readable unit of source text.
type Resource struct {
	Path string // slash-separated path within FS
	FS   fs.FS
}

// NewResource creates a resource for path within fsys.
func NewResource(fsys fs.FS, path string) Resource {
	return Resource{Path: path, FS: fsys}
}

// Name returns the file name of the resource.
func (r Resource) Name() string {
	return stdpath.Base(r.Path)
}

// Read returns the resource contents.
func (r Resource) Read() ([]byte, error) {
	if r.FS == nil {
		return nil, fmt.Errorf("resource %s has no filesystem", r.Path)
	}
	return fs.ReadFile(r.FS, r.Path)
}

func (r Resource) String() string {
	return r.Path
}

// Discover returns every .go resource under root in lexical order.
// Test files, testdata directories and directories starting with "." or "_"
// are skipped.
func Discover(fsys fs.FS, root string) ([]Resource, error) {
	var resources []Resource
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		resources = append(resources, NewResource(fsys, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover resources in %s: %w", root, err)
	}
	return resources, nil
}

func skipDir(name string) bool {
	return name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
