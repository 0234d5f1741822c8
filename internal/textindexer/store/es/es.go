package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/google/uuid"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"golang.org/x/xerrors"
)

// The name of the elasticsearch index to use.
const indexName = "textindexer"

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

var esMappings = `
{
  "mappings" : {
    "properties": {
      "LinkID": {"type": "keyword"},
      "URL": {"type": "keyword"},
      "Content": {"type": "text"},
      "Title": {"type": "text"},
      "IndexedAt": {"type": "date"},
      "PageRank": {"type": "double"}
    }
  }
}`

// Compile-time check for ensuring ElasticSearchIndexer implements Indexer.
var _ index.Indexer = (*ElasticSearchIndexer)(nil)

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	LinkID    string    `json:"LinkID"`
	URL       string    `json:"URL"`
	Title     string    `json:"Title"`
	Content   string    `json:"Content"`
	IndexedAt time.Time `json:"IndexedAt"`
	PageRank  float64   `json:"PageRank,omitempty"`
}

type esUpdateRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

// esError is an error reported by the elasticsearch server.
type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Error implements error.
func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// ElasticSearchIndexer is an Indexer implementation that uses an
// elasticsearch instance to catalogue and search documents.
type ElasticSearchIndexer struct {
	es         *elasticsearch.Client
	refreshOpt func(*esapi.UpdateRequest)
}

// NewElasticSearchIndexer creates a text indexer that uses an elasticsearch
// cluster for indexing documents. When syncUpdates is true, every update
// waits for the index to be refreshed.
func NewElasticSearchIndexer(esNodes []string, syncUpdates bool) (*ElasticSearchIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: esNodes,
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, index.NewFailure("create elasticsearch client", err)
	}
	if err = ensureIndex(es); err != nil {
		return nil, index.NewFailure("ensure index", err)
	}

	refreshOpt := es.Update.WithRefresh("false")
	if syncUpdates {
		refreshOpt = es.Update.WithRefresh("true")
	}
	return &ElasticSearchIndexer{
		es:         es,
		refreshOpt: refreshOpt,
	}, nil
}

// Index inserts a new document to the index or updates an existing one.
func (i *ElasticSearchIndexer) Index(doc *index.Document) error {
	if doc.LinkID == uuid.Nil {
		return index.NewFailure("index", index.ErrMissingLinkID)
	}
	var (
		buf   bytes.Buffer
		esDoc = makeEsDoc(doc)
	)
	esDoc.IndexedAt = time.Now().UTC()
	update := map[string]interface{}{
		"doc":           esDoc,
		"doc_as_upsert": true,
	}
	if err := json.NewEncoder(&buf).Encode(update); err != nil {
		return index.NewFailure("index", err)
	}

	res, err := i.es.Update(indexName, esDoc.LinkID, &buf, i.refreshOpt)
	if err != nil {
		return index.NewFailure("index", err)
	}
	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return index.NewFailure("index", err)
	}
	return nil
}

// FindByID looks up a document by its link ID.
func (i *ElasticSearchIndexer) FindByID(linkID uuid.UUID) (*index.Document, error) {
	if linkID == uuid.Nil {
		return nil, index.NewFailure("find by id", index.ErrMissingLinkID)
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"LinkID": linkID.String(),
			},
		},
		"from": 0,
		"size": 1,
	}
	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, index.NewFailure("find by id", err)
	}
	if len(searchRes.Hits.HitList) != 1 {
		return nil, index.NewFailure("find by id", index.ErrNotFound)
	}
	doc, err := mapEsDoc(&searchRes.Hits.HitList[0].DocSource)
	if err != nil {
		return nil, index.NewFailure("find by id", err)
	}
	return doc, nil
}

// Search the index for a particular query and return a result iterator.
func (i *ElasticSearchIndexer) Search(q index.Query) (index.Iterator, error) {
	var qtype string
	switch q.Type {
	case index.QueryTypePhrase:
		qtype = "phrase"
	default:
		qtype = "best_fields"
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"type":   qtype,
						"query":  q.Expression,
						"fields": []string{"Title", "Content"},
					},
				},
				"script_score": map[string]interface{}{
					"script": map[string]interface{}{
						"source": "doc['PageRank'].size() == 0 ? _score : _score + doc['PageRank'].value",
					},
				},
				"boost_mode": "replace",
			},
		},
		"from": q.Offset,
		"size": batchSize,
	}

	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, index.NewFailure("search", err)
	}
	return &esIterator{
		es:        i.es,
		searchReq: query,
		rs:        searchRes,
		cumIdx:    q.Offset,
	}, nil
}

// UpdateScore updates the PageRank score for a document with the
// specified link ID. If no such document exists, a placeholder
// document with the provided score is created.
func (i *ElasticSearchIndexer) UpdateScore(linkID uuid.UUID, score float64) error {
	var buf bytes.Buffer
	update := map[string]interface{}{
		"doc": map[string]interface{}{
			"LinkID":   linkID.String(),
			"PageRank": score,
		},
		"doc_as_upsert": true,
	}
	if err := json.NewEncoder(&buf).Encode(update); err != nil {
		return index.NewFailure("update score", err)
	}

	res, err := i.es.Update(indexName, linkID.String(), &buf, i.refreshOpt)
	if err != nil {
		return index.NewFailure("update score", err)
	}
	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return index.NewFailure("update score", err)
	}
	return nil
}

// mapEsDoc rejects stored documents whose LinkID is not a valid UUID.
func mapEsDoc(d *esDoc) (*index.Document, error) {
	linkID, err := uuid.Parse(d.LinkID)
	if err != nil {
		return nil, xerrors.Errorf("stored document LinkID %q: %w", d.LinkID, err)
	}
	return &index.Document{
		LinkID:    linkID,
		URL:       d.URL,
		Title:     d.Title,
		Content:   d.Content,
		IndexedAt: d.IndexedAt.UTC(),
		PageRank:  d.PageRank,
	}, nil
}

// makeEsDoc leaves PageRank unset so that re-indexing a document does not
// overwrite the score assigned by UpdateScore. IndexedAt is stamped by Index.
func makeEsDoc(d *index.Document) esDoc {
	return esDoc{
		LinkID:  d.LinkID.String(),
		URL:     d.URL,
		Title:   d.Title,
		Content: d.Content,
	}
}

func runSearch(es *elasticsearch.Client, searchQuery map[string]interface{}) (*esSearchRes, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, xerrors.Errorf("encode search query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(indexName),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}
	return &esRes, nil
}

func ensureIndex(es *elasticsearch.Client) error {
	mappingsReader := strings.NewReader(esMappings)
	res, err := es.Indices.Create(indexName, es.Indices.Create.WithBody(mappingsReader))
	if err != nil {
		return xerrors.Errorf("cannot create ES index: %w", err)
	} else if res.IsError() {
		err := unmarshalError(res)
		if esErr, valid := err.(esError); valid && esErr.Type == "resource_already_exists_exception" {
			return nil
		}
		return xerrors.Errorf("cannot create ES index: %w", err)
	}
	_ = res.Body.Close()
	return nil
}

func unmarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, to interface{}) error {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}
		return errRes.Error
	}
	return json.NewDecoder(res.Body).Decode(to)
}
