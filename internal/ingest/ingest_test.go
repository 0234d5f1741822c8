package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"github.com/joshvoll/textindexer/internal/textindexer/store/memory"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(IngestTestSuite))

type IngestTestSuite struct {
	idx *memory.InMemoryBleveIndexer
}

func Test(t *testing.T) {
	gc.TestingT(t)
}

func (s *IngestTestSuite) SetUpTest(c *gc.C) {
	idx, err := memory.NewInMemoryBleveIndexer()
	c.Assert(err, gc.IsNil)
	s.idx = idx
}

func (s *IngestTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.idx.Close(), gc.IsNil)
}

func (s *IngestTestSuite) TestIngestExtractsAndIndexes(c *gc.C) {
	docs := []*RawDocument{
		{LinkID: uuid.New(), URL: "http://example.com/a", Content: []byte(`<html><head><title>Hello &amp; World</title></head><body><p>Some    text</p></body></html>`)},
		{LinkID: uuid.New(), URL: "http://example.com/b", Content: []byte(`<html><body><div>untitled <b>page</b></div></body></html>`)},
	}
	in, err := New(Config{Indexer: s.idx, ExtractWorkers: 2})
	c.Assert(err, gc.IsNil)

	count, err := in.Ingest(context.TODO(), &sliceSource{docs: docs})
	c.Assert(err, gc.IsNil)
	c.Assert(count, gc.Equals, 2)

	got, err := s.idx.FindByID(docs[0].LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Title, gc.Equals, "Hello & World")
	c.Assert(got.URL, gc.Equals, "http://example.com/a")
	c.Assert(strings.Contains(got.Content, "Some text"), gc.Equals, true, gc.Commentf("content: %q", got.Content))

	got, err = s.idx.FindByID(docs[1].LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Title, gc.Equals, "")
	c.Assert(got.Content, gc.Equals, "untitled page")
}

func (s *IngestTestSuite) TestIndexerFailureNamesDocument(c *gc.C) {
	docs := []*RawDocument{
		{URL: "http://example.com/no-id", Content: []byte(`<p>orphan</p>`)},
	}
	in, err := New(Config{Indexer: s.idx})
	c.Assert(err, gc.IsNil)

	count, err := in.Ingest(context.TODO(), &sliceSource{docs: docs})
	c.Assert(count, gc.Equals, 0)
	c.Assert(xerrors.Is(err, index.ErrMissingLinkID), gc.Equals, true)

	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(f.Message(), gc.Equals, "index http://example.com/no-id")
}

func (s *IngestTestSuite) TestCancelledIngest(c *gc.C) {
	var docs []*RawDocument
	for i := 0; i < 50; i++ {
		docs = append(docs, &RawDocument{LinkID: uuid.New(), URL: "http://example.com/", Content: []byte(`<p>cancelled</p>`)})
	}
	ctx, cancelFn := context.WithCancel(context.TODO())
	cancelFn()

	in, err := New(Config{Indexer: s.idx, ExtractWorkers: 2})
	c.Assert(err, gc.IsNil)
	count, err := in.Ingest(ctx, &sliceSource{docs: docs})
	c.Assert(count < len(docs), gc.Equals, true, gc.Commentf("indexed %d documents", count))
	c.Assert(xerrors.Is(err, context.Canceled), gc.Equals, true, gc.Commentf("got %v", err))

	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(f.Message(), gc.Equals, "ingest")
	c.Assert(f.Cause(), gc.Equals, context.Canceled)
}

func (s *IngestTestSuite) TestMissingIndexer(c *gc.C) {
	_, err := New(Config{})
	c.Assert(err, gc.ErrorMatches, "ingest: an indexer must be provided")
}

func (s *IngestTestSuite) TestDirSource(c *gc.C) {
	dir := c.MkDir()
	c.Assert(os.MkdirAll(filepath.Join(dir, "nested"), 0o755), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "a.html"), []byte(`<title>A</title>alpha`), 0o644), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "nested", "b.HTM"), []byte(`<title>B</title>beta`), 0o644), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`skipped`), 0o644), gc.IsNil)

	src, err := NewDirSource(dir)
	c.Assert(err, gc.IsNil)
	c.Assert(src.Len(), gc.Equals, 2)

	in, err := New(Config{Indexer: s.idx})
	c.Assert(err, gc.IsNil)
	count, err := in.Ingest(context.TODO(), src)
	c.Assert(err, gc.IsNil)
	c.Assert(count, gc.Equals, 2)

	url := "file://" + filepath.ToSlash(filepath.Join(dir, "a.html"))
	got, err := s.idx.FindByID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)))
	c.Assert(err, gc.IsNil)
	c.Assert(got.Title, gc.Equals, "A")
}

func (s *IngestTestSuite) TestDirSourceReadFailure(c *gc.C) {
	path := filepath.Join(c.MkDir(), "gone.html")
	src := &DirSource{paths: []string{path}}

	c.Assert(src.Next(), gc.Equals, false)
	err := src.Error()
	c.Assert(xerrors.Is(err, fs.ErrNotExist), gc.Equals, true)

	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(f.Message(), gc.Equals, "read "+path)

	in, err := New(Config{Indexer: s.idx})
	c.Assert(err, gc.IsNil)
	_, err = in.Ingest(context.TODO(), &DirSource{paths: []string{path}})
	c.Assert(xerrors.Is(err, fs.ErrNotExist), gc.Equals, true)
}

type sliceSource struct {
	docs []*RawDocument
	cur  *RawDocument
}

func (s *sliceSource) Next() bool {
	if len(s.docs) == 0 {
		return false
	}
	s.cur, s.docs = s.docs[0], s.docs[1:]
	return true
}
func (s *sliceSource) Document() *RawDocument { return s.cur }
func (s *sliceSource) Error() error           { return nil }
