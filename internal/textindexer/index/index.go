package index

import "github.com/google/uuid"

// Indexer is implemented by objects that can index and search documents.
// Errors returned by an Indexer are *Failure values; their cause chain
// still matches ErrNotFound and ErrMissingLinkID.
type Indexer interface {
	// Index inserts a new document to the index or updates an existing one.
	Index(doc *Document) error

	// FindByID looks up a document by its link ID.
	FindByID(linkID uuid.UUID) (*Document, error)

	// Search the index for a particular query and return a result Iterator.
	Search(query Query) (Iterator, error)

	// UpdateScore updates the PageRank score for the document with the given link ID.
	// If no such document exists, a placeholder document with the provided score is created.
	UpdateScore(linkID uuid.UUID, score float64) error
}

// Iterator is implemented by objects that can paginate search results.
type Iterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next loads the next document matching the query.
	// It returns false if there are no more documents or an error occurred.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Document returns the current document from the result set.
	Document() *Document

	// TotalCount returns the approximate number of matching documents.
	TotalCount() uint64
}

const (
	// QueryTypeMatch requests a match of any of the expression terms.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase searches for an exact phrase match.
	QueryTypePhrase
)

// QueryType describes the types of query that the indexer supports.
type QueryType uint8

// Query encapsulates a set of parameters to use when searching indexed documents.
type Query struct {
	// The way the indexer should interpret the search expression.
	Type QueryType

	// The search expression.
	Expression string

	// The number of search results to skip.
	Offset uint64
}
