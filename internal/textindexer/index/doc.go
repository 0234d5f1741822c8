package index

import (
	"time"

	"github.com/google/uuid"
)

// Document describes a web-page whose content has been indexed.
type Document struct {
	// The ID of the link that points to this document.
	LinkID uuid.UUID
	// the url where the document was obtained.
	URL string
	// the document title (optional)
	Title string
	// the document body
	Content string
	// the last time this document was indexed.
	IndexedAt time.Time
	// the PageRank score assigned to the document.
	PageRank float64
}
