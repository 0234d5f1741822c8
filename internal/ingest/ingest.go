package ingest

import (
	"context"

	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/pipeline"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"golang.org/x/xerrors"
)

// Indexer is implemented by objects that can index the text extracted
// from ingested pages.
type Indexer interface {
	// Index inserts a new document to the index or updates the index
	// entry for an existing document.
	Index(doc *index.Document) error
}

// RawDocument is an HTML page waiting to be indexed.
type RawDocument struct {
	LinkID  uuid.UUID
	URL     string
	Content []byte
}

// Source is implemented by objects that yield raw documents to ingest.
type Source interface {
	// Next advances to the next document. It returns false when the
	// source is exhausted or an error occurred.
	Next() bool

	// Document returns the current document.
	Document() *RawDocument

	// Error returns the last error encountered by the source.
	Error() error
}

// Config encapsulates the configuration options for creating a new Ingester.
type Config struct {
	// The Indexer that receives the extracted documents.
	Indexer Indexer

	// The number of concurrent workers used for extracting text.
	ExtractWorkers int
}

func (cfg *Config) validate() error {
	if cfg.Indexer == nil {
		return xerrors.New("ingest: an indexer must be provided")
	}
	if cfg.ExtractWorkers <= 0 {
		cfg.ExtractWorkers = 1
	}
	return nil
}

// Ingester implements a document ingestion pipeline consisting of the
// following stages:
//
// - Extract the page title and text content from the raw HTML.
// - Index the title and text content.
type Ingester struct {
	p *pipeline.Pipeline
}

// New returns a new Ingester instance.
func New(cfg Config) (*Ingester, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Ingester{
		p: pipeline.New(
			pipeline.FixedWorkerPool(newTextExtractor(), cfg.ExtractWorkers),
			pipeline.FIFO(newTextIndexer(cfg.Indexer)),
		),
	}, nil
}

// Ingest sends each document yielded by src through the ingestion pipeline
// and returns the number of documents that were indexed. Calls to Ingest
// block until src is exhausted, an error occurs or ctx is cancelled. A
// cancelled run is reported as an "ingest" failure wrapping ctx.Err().
func (in *Ingester) Ingest(ctx context.Context, src Source) (int, error) {
	sink := new(countingSink)
	err := in.p.Process(ctx, &docSource{src: src}, sink)
	if err != nil && err == ctx.Err() {
		err = index.NewFailure("ingest", err)
	}
	return sink.getCount(), err
}

// docSource adapts a Source to pipeline.Source.
type docSource struct {
	src Source
}

func (s *docSource) Error() error              { return s.src.Error() }
func (s *docSource) Next(context.Context) bool { return s.src.Next() }

func (s *docSource) Payload() pipeline.Payload {
	doc := s.src.Document()
	p := payloadPool.Get().(*ingestPayload)
	p.LinkID = doc.LinkID
	p.URL = doc.URL
	_, _ = p.RawContent.Write(doc.Content)
	return p
}

type countingSink struct {
	count int
}

func (s *countingSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.count++
	return nil
}

func (s *countingSink) getCount() int {
	return s.count
}
