package memory

import (
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"
	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
)

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Compile-time check for ensuring InMemoryBleveIndexer implements Indexer.
var _ index.Indexer = (*InMemoryBleveIndexer)(nil)

// bleveDoc is the subset of a document that bleve indexes.
type bleveDoc struct {
	Title    string
	Content  string
	PageRank float64
}

// InMemoryBleveIndexer is an Indexer implementation that uses an in-memory
// bleve instance to catalogue and search documents.
type InMemoryBleveIndexer struct {
	mu   sync.RWMutex
	docs map[string]*index.Document

	idx bleve.Index
}

// NewInMemoryBleveIndexer creates a text indexer that uses an in-memory
// bleve instance for indexing documents.
func NewInMemoryBleveIndexer() (*InMemoryBleveIndexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, index.NewFailure("create bleve index", err)
	}
	return &InMemoryBleveIndexer{
		idx:  idx,
		docs: make(map[string]*index.Document),
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *InMemoryBleveIndexer) Close() error {
	if err := i.idx.Close(); err != nil {
		return index.NewFailure("close", err)
	}
	return nil
}

// Index inserts a new document to the index or updates an existing one.
func (i *InMemoryBleveIndexer) Index(doc *index.Document) error {
	if doc.LinkID == uuid.Nil {
		return index.NewFailure("index", index.ErrMissingLinkID)
	}
	dcopy := copyDoc(doc)
	dcopy.IndexedAt = time.Now().UTC()
	key := dcopy.LinkID.String()

	i.mu.Lock()
	defer i.mu.Unlock()
	// The PageRank score is only ever set through UpdateScore.
	if orig, exists := i.docs[key]; exists {
		dcopy.PageRank = orig.PageRank
	}
	if err := i.idx.Index(key, makeBleveDoc(dcopy)); err != nil {
		return index.NewFailure("index", err)
	}
	i.docs[key] = dcopy
	return nil
}

// FindByID looks up a document by its link ID.
func (i *InMemoryBleveIndexer) FindByID(linkID uuid.UUID) (*index.Document, error) {
	return i.findByID(linkID.String())
}

// findByID looks up a document by its link ID expressed as a string.
func (i *InMemoryBleveIndexer) findByID(linkID string) (*index.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if d, found := i.docs[linkID]; found {
		return copyDoc(d), nil
	}
	return nil, index.NewFailure("find by id", index.ErrNotFound)
}

// Search the index for a particular query and return a result iterator.
func (i *InMemoryBleveIndexer) Search(q index.Query) (index.Iterator, error) {
	var bq query.Query
	switch q.Type {
	case index.QueryTypePhrase:
		bq = bleve.NewMatchPhraseQuery(q.Expression)
	default:
		bq = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bq)
	searchReq.SortBy([]string{"-PageRank", "-_score"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)
	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return nil, index.NewFailure("search", err)
	}
	return &bleveIterator{
		idx:       i,
		searchReq: searchReq,
		rs:        rs,
		cumIdx:    q.Offset,
	}, nil
}

// UpdateScore updates the PageRank score for a document with the
// specified link ID. If no such document exists, a placeholder
// document with the provided score is created.
func (i *InMemoryBleveIndexer) UpdateScore(linkID uuid.UUID, score float64) error {
	key := linkID.String()

	i.mu.Lock()
	defer i.mu.Unlock()
	// The stored document is only replaced once bleve accepts the write.
	scored := &index.Document{LinkID: linkID}
	if orig, found := i.docs[key]; found {
		scored = copyDoc(orig)
	}
	scored.PageRank = score
	if err := i.idx.Index(key, makeBleveDoc(scored)); err != nil {
		return index.NewFailure("update score", err)
	}
	i.docs[key] = scored
	return nil
}

func copyDoc(d *index.Document) *index.Document {
	dcopy := new(index.Document)
	*dcopy = *d
	return dcopy
}

func makeBleveDoc(d *index.Document) bleveDoc {
	return bleveDoc{
		Title:    d.Title,
		Content:  d.Content,
		PageRank: d.PageRank,
	}
}
