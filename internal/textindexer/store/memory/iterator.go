package memory

import (
	"github.com/blevesearch/bleve"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
)

// bleveIterator implements index.Iterator.
type bleveIterator struct {
	idx       *InMemoryBleveIndexer
	searchReq *bleve.SearchRequest

	cumIdx uint64
	rsIdx  int
	rs     *bleve.SearchResult

	latchedDoc *index.Document
	lastErr    error
}

// Close implements index.Iterator.
func (it *bleveIterator) Close() error {
	it.idx = nil
	it.searchReq = nil
	if it.rs != nil {
		it.cumIdx = it.rs.Total
	}
	return nil
}

// Error implements index.Iterator.
func (it *bleveIterator) Error() error {
	return it.lastErr
}

// Next loads the next document matching the search query.
// It returns false if no more documents are available.
func (it *bleveIterator) Next() bool {
	if it.lastErr != nil || it.rs == nil || it.cumIdx >= it.rs.Total {
		return false
	}

	// Do we need to fetch the next batch?
	if it.rsIdx >= it.rs.Hits.Len() {
		it.searchReq.From += it.searchReq.Size
		rs, err := it.idx.idx.Search(it.searchReq)
		if err != nil {
			it.lastErr = index.NewFailure("fetch next batch", err)
			return false
		}
		if rs.Hits.Len() == 0 {
			return false
		}
		it.rs = rs
		it.rsIdx = 0
	}

	nextID := it.rs.Hits[it.rsIdx].ID
	if it.latchedDoc, it.lastErr = it.idx.findByID(nextID); it.lastErr != nil {
		return false
	}
	it.cumIdx++
	it.rsIdx++
	return true
}

// Document implements index.Iterator.
func (it *bleveIterator) Document() *index.Document {
	return it.latchedDoc
}

// TotalCount implements index.Iterator.
func (it *bleveIterator) TotalCount() uint64 {
	if it.rs == nil {
		return 0
	}
	return it.rs.Total
}
