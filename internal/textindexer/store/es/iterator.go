package es

import (
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
)

// esIterator implements index.Iterator.
type esIterator struct {
	es        *elasticsearch.Client
	searchReq map[string]interface{}

	cumIdx uint64
	rsIdx  int
	rs     *esSearchRes

	latchedDoc *index.Document
	lastErr    error
}

// Close implements index.Iterator.
func (it *esIterator) Close() error {
	it.es = nil
	it.searchReq = nil
	if it.rs != nil {
		it.cumIdx = it.rs.Hits.Total.Count
	}
	return nil
}

// Next loads the next document matching the search query.
// It returns false if no more documents are available.
func (it *esIterator) Next() bool {
	if it.lastErr != nil || it.rs == nil || it.cumIdx >= it.rs.Hits.Total.Count {
		return false
	}

	// Do we need to fetch the next batch?
	if it.rsIdx >= len(it.rs.Hits.HitList) {
		it.searchReq["from"] = it.searchReq["from"].(uint64) + batchSize
		rs, err := runSearch(it.es, it.searchReq)
		if err != nil {
			it.lastErr = index.NewFailure("fetch next batch", err)
			return false
		}
		if len(rs.Hits.HitList) == 0 {
			return false
		}
		it.rs = rs
		it.rsIdx = 0
	}

	doc, err := mapEsDoc(&it.rs.Hits.HitList[it.rsIdx].DocSource)
	if err != nil {
		it.lastErr = index.NewFailure("decode search hit", err)
		return false
	}
	it.latchedDoc = doc
	it.cumIdx++
	it.rsIdx++
	return true
}

// Error implements index.Iterator.
func (it *esIterator) Error() error {
	return it.lastErr
}

// Document implements index.Iterator.
func (it *esIterator) Document() *index.Document {
	return it.latchedDoc
}

// TotalCount implements index.Iterator.
func (it *esIterator) TotalCount() uint64 {
	if it.rs == nil {
		return 0
	}
	return it.rs.Hits.Total.Count
}
