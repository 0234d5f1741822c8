package ingest

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/pipeline"
)

var (
	_ pipeline.Payload = (*ingestPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} { return new(ingestPayload) },
	}
)

type ingestPayload struct {
	LinkID     uuid.UUID
	URL        string
	RawContent bytes.Buffer

	Title       string
	TextContent string
}

// MarkAsProcessed implements pipeline.Payload.
func (p *ingestPayload) MarkAsProcessed() {
	p.URL = p.URL[:0]
	p.RawContent.Reset()
	p.Title = p.Title[:0]
	p.TextContent = p.TextContent[:0]
	payloadPool.Put(p)
}
