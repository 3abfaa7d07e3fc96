package template

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source fetches raw template bytes by template id.
//
// Implementations must be safe for concurrent use. Any byte-addressable
// backing works: the embedded defaults, a directory of YAML files, or a
// remote config store.
type Source interface {
	FetchTemplateBytes(ctx context.Context, templateID string) ([]byte, error)
}

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// BuiltinSource returns the embedded template definitions for the built-in
// pathways. The engine runs with zero external files on top of this source.
func BuiltinSource() Source {
	return fsSource{fsys: builtinTemplates, prefix: "templates"}
}

type fsSource struct {
	fsys   fs.FS
	prefix string
}

func (s fsSource) FetchTemplateBytes(_ context.Context, templateID string) ([]byte, error) {
	if !validTemplateID(templateID) {
		return nil, fmt.Errorf("invalid template id %q: %w", templateID, ErrNotFound)
	}
	data, err := fs.ReadFile(s.fsys, s.prefix+"/"+templateID+".yaml")
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
	}
	return data, nil
}

// FileSource reads templates from a directory of <template-id>.yaml files.
type FileSource struct {
	dir string
}

// NewFileSource creates a source backed by the given directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// FetchTemplateBytes implements [Source].
func (s *FileSource) FetchTemplateBytes(_ context.Context, templateID string) ([]byte, error) {
	if !validTemplateID(templateID) {
		return nil, fmt.Errorf("invalid template id %q: %w", templateID, ErrNotFound)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, templateID+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read template %q: %w", templateID, err)
	}
	return data, nil
}

// StaticSource serves templates from an in-memory map. Useful for tests and
// for embedding template data programmatically.
type StaticSource map[string][]byte

// FetchTemplateBytes implements [Source].
func (s StaticSource) FetchTemplateBytes(_ context.Context, templateID string) ([]byte, error) {
	data, ok := s[templateID]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
	}
	return data, nil
}

// validTemplateID rejects ids that could escape the source root.
func validTemplateID(id string) bool {
	return id != "" &&
		!strings.Contains(id, "/") &&
		!strings.Contains(id, "\\") &&
		!strings.Contains(id, "..")
}
