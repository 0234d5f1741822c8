package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/joshvoll/textindexer/internal/pipeline"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
)

type textIndexer struct {
	indexer Indexer
}

func newTextIndexer(indexer Indexer) *textIndexer {
	return &textIndexer{indexer: indexer}
}

// Process indexes the extracted text. Indexer errors are reported as
// failures naming the document so the operator can tell which page broke.
func (i *textIndexer) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*ingestPayload)
	doc := &index.Document{
		LinkID:    payload.LinkID,
		URL:       payload.URL,
		Title:     payload.Title,
		Content:   payload.TextContent,
		IndexedAt: time.Now(),
	}
	if err := i.indexer.Index(doc); err != nil {
		return nil, index.NewFailure(fmt.Sprintf("index %s", payload.URL), err)
	}
	return p, nil
}
