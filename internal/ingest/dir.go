package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
)

// DirSource is a Source that yields every HTML file under a directory.
// Link IDs are derived from the file URL so re-ingesting a directory
// updates the existing documents.
type DirSource struct {
	paths []string
	cur   *RawDocument
	err   error
}

// NewDirSource lists the .html and .htm files below root.
func NewDirSource(root string) (*DirSource, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, index.NewFailure(fmt.Sprintf("resolve %s", root), err)
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, index.NewFailure(fmt.Sprintf("walk %s", root), err)
	}
	return &DirSource{paths: paths}, nil
}

// Len returns the number of files still to be read.
func (s *DirSource) Len() int { return len(s.paths) }

// Next implements Source.
func (s *DirSource) Next() bool {
	if s.err != nil || len(s.paths) == 0 {
		return false
	}
	path := s.paths[0]
	s.paths = s.paths[1:]

	content, err := os.ReadFile(path)
	if err != nil {
		s.err = index.NewFailure(fmt.Sprintf("read %s", path), err)
		return false
	}
	url := "file://" + filepath.ToSlash(path)
	s.cur = &RawDocument{
		LinkID:  uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)),
		URL:     url,
		Content: content,
	}
	return true
}

// Document implements Source.
func (s *DirSource) Document() *RawDocument { return s.cur }

// Error implements Source.
func (s *DirSource) Error() error { return s.err }
