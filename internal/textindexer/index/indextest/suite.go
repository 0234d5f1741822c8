package indextest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of index-related tests that can
// be executed against any type of index.Indexer.
type SuiteBase struct {
	idx index.Indexer
}

// SetIndexer configures the test-suite to run all tests against idx.
func (s *SuiteBase) SetIndexer(idx index.Indexer) {
	s.idx = idx
}

// TestIndexDocument verifies the indexing logic for new and existing documents.
func (s *SuiteBase) TestIndexDocument(c *gc.C) {
	doc := &index.Document{
		LinkID:    uuid.New(),
		URL:       "https://www.sandals.com/",
		Title:     "luxury included island",
		Content:   "lorem ipsum",
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}
	err := s.idx.Index(doc)
	c.Assert(err, gc.IsNil)

	updatedDoc := &index.Document{
		LinkID:    doc.LinkID,
		URL:       "https://www.sandals.com/",
		Title:     "another one",
		Content:   "nothing about beaches for now",
		IndexedAt: time.Now().UTC(),
	}
	err = s.idx.Index(updatedDoc)
	c.Assert(err, gc.IsNil)

	got, err := s.idx.FindByID(doc.LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Title, gc.Equals, "another one")
}

// TestIndexMissingLinkID verifies that a document without a link ID is
// rejected with a failure whose cause is ErrMissingLinkID.
func (s *SuiteBase) TestIndexMissingLinkID(c *gc.C) {
	incompleteDoc := &index.Document{
		URL: "http://www.sanservices.hn",
	}
	err := s.idx.Index(incompleteDoc)
	c.Assert(xerrors.Is(err, index.ErrMissingLinkID), gc.Equals, true)

	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true, gc.Commentf("expected an index failure, got %T", err))
	c.Assert(f.Message(), gc.Equals, "index")
	c.Assert(f.Cause(), gc.Equals, index.ErrMissingLinkID)
}

// TestFindByID verifies the document look up.
func (s *SuiteBase) TestFindByID(c *gc.C) {
	doc := &index.Document{
		LinkID:    uuid.New(),
		URL:       "https://obe.sandals.com",
		Title:     "booking going in",
		Content:   "just another booking",
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}
	submittedAt := doc.IndexedAt
	err := s.idx.Index(doc)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.IndexedAt, gc.Equals, submittedAt, gc.Commentf("Index must not modify the caller's document"))

	got, err := s.idx.FindByID(doc.LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.LinkID, gc.Equals, doc.LinkID)
	c.Assert(got.URL, gc.Equals, doc.URL)
	c.Assert(got.Title, gc.Equals, doc.Title)
	c.Assert(got.Content, gc.Equals, doc.Content)
	c.Assert(got.PageRank, gc.Equals, 0.0)
	c.Assert(got.IndexedAt.After(submittedAt), gc.Equals, true, gc.Commentf("IndexedAt should be stamped at indexing time, got %v", got.IndexedAt))
}

// TestFindByIDNotFound verifies that looking up an unknown link yields a
// failure wrapping ErrNotFound.
func (s *SuiteBase) TestFindByIDNotFound(c *gc.C) {
	_, err := s.idx.FindByID(uuid.New())
	c.Assert(xerrors.Is(err, index.ErrNotFound), gc.Equals, true)

	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(f.Message(), gc.Equals, "find by id")
}

// TestPhraseSearch verifies that phrase queries only return exact matches.
func (s *SuiteBase) TestPhraseSearch(c *gc.C) {
	var (
		numDocs = 20
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		doc := &index.Document{
			LinkID:  id,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "lorem ipsum dolor",
		}
		if i%5 == 0 {
			doc.Content = "lorem dolor ipsum"
			expIDs = append(expIDs, id)
		}
		err := s.idx.Index(doc)
		c.Assert(err, gc.IsNil)

		err = s.idx.UpdateScore(id, float64(numDocs-i))
		c.Assert(err, gc.IsNil)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "lorem dolor ipsum",
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)
}

// TestMatchSearch verifies that match queries return every document
// containing the terms, ordered by PageRank, across result batches.
func (s *SuiteBase) TestMatchSearch(c *gc.C) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		doc := &index.Document{
			LinkID:  id,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Ovid wrote Metamorphoses",
		}
		err := s.idx.Index(doc)
		c.Assert(err, gc.IsNil)

		err = s.idx.UpdateScore(id, float64(numDocs-i))
		c.Assert(err, gc.IsNil)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "metamorphoses",
	})
	c.Assert(err, gc.IsNil)
	c.Assert(it.TotalCount(), gc.Equals, uint64(numDocs))
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)
}

// TestMatchSearchWithOffset verifies that the query offset skips results.
func (s *SuiteBase) TestMatchSearchWithOffset(c *gc.C) {
	var (
		numDocs = 25
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		err := s.idx.Index(&index.Document{
			LinkID:  id,
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Ovid wrote Metamorphoses",
		})
		c.Assert(err, gc.IsNil)

		err = s.idx.UpdateScore(id, float64(numDocs-i))
		c.Assert(err, gc.IsNil)
	}

	for offset := 0; offset < numDocs; offset += 10 {
		it, err := s.idx.Search(index.Query{
			Type:       index.QueryTypeMatch,
			Expression: "metamorphoses",
			Offset:     uint64(offset),
		})
		c.Assert(err, gc.IsNil)
		c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs[offset:], gc.Commentf("offset %d", offset))
	}
}

// TestUpdateScore checks that score updates work for both existing and
// unknown link IDs.
func (s *SuiteBase) TestUpdateScore(c *gc.C) {
	doc := &index.Document{
		LinkID:  uuid.New(),
		URL:     "http://example.com",
		Title:   "scored",
		Content: "page rank test",
	}
	err := s.idx.Index(doc)
	c.Assert(err, gc.IsNil)

	err = s.idx.UpdateScore(doc.LinkID, 0.75)
	c.Assert(err, gc.IsNil)
	got, err := s.idx.FindByID(doc.LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.PageRank, gc.Equals, 0.75)

	// Re-indexing keeps the previously assigned score.
	err = s.idx.Index(doc)
	c.Assert(err, gc.IsNil)
	got, err = s.idx.FindByID(doc.LinkID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.PageRank, gc.Equals, 0.75)

	// Scoring an unknown link creates a placeholder.
	unknownID := uuid.New()
	err = s.idx.UpdateScore(unknownID, 0.5)
	c.Assert(err, gc.IsNil)
	got, err = s.idx.FindByID(unknownID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.LinkID, gc.Equals, unknownID)
	c.Assert(got.PageRank, gc.Equals, 0.5)
}

func iterateDocs(c *gc.C, it index.Iterator) []uuid.UUID {
	var seen []uuid.UUID
	for it.Next() {
		seen = append(seen, it.Document().LinkID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	return seen
}
