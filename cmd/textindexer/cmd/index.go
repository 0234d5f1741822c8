package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joshvoll/textindexer/internal/ingest"
	"github.com/joshvoll/textindexer/internal/textindexer/index"
	"github.com/joshvoll/textindexer/internal/textindexer/store/es"
	"github.com/joshvoll/textindexer/internal/textindexer/store/memory"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

type indexOptions struct {
	backend string
	esNodes string
	workers int
	query   string
	phrase  bool
	limit   int
}

func newIndexCmd(root *rootOptions) *cobra.Command {
	opts := &indexOptions{esNodes: os.Getenv("ES_NODES")}

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Index the HTML files of a directory",
		Long: `Index every .html and .htm file below a directory.

Backends:
  memory   in-process bleve index, discarded on exit (default)
  es       elasticsearch cluster listed by --es-nodes or ES_NODES

Use --query to search the index once ingestion completes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			idx, closeFn, err := openIndexer(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			src, err := ingest.NewDirSource(dir)
			if err != nil {
				return err
			}
			root.logger.Info().Str("dir", dir).Int("files", src.Len()).Str("backend", opts.backend).Msg("ingesting")

			in, err := ingest.New(ingest.Config{Indexer: idx, ExtractWorkers: opts.workers})
			if err != nil {
				return err
			}
			count, err := in.Ingest(ctx, src)
			if err != nil {
				return err
			}
			root.logger.Info().Int("indexed", count).Msg("ingestion complete")

			if opts.query == "" {
				return nil
			}
			return runQuery(cmd.OutOrStdout(), idx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "memory", "Index backend: memory or es")
	cmd.Flags().StringVar(&opts.esNodes, "es-nodes", opts.esNodes, "Comma-separated elasticsearch nodes (defaults to ES_NODES)")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Number of text extraction workers")
	cmd.Flags().StringVar(&opts.query, "query", "", "Search the index after ingestion")
	cmd.Flags().BoolVar(&opts.phrase, "phrase", false, "Treat --query as an exact phrase")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Maximum number of search results to print")
	return cmd
}

func openIndexer(opts *indexOptions) (index.Indexer, func(), error) {
	switch opts.backend {
	case "memory":
		idx, err := memory.NewInMemoryBleveIndexer()
		if err != nil {
			return nil, nil, err
		}
		return idx, func() { _ = idx.Close() }, nil
	case "es":
		if opts.esNodes == "" {
			return nil, nil, index.NewFailureMessage("no elasticsearch nodes configured; set --es-nodes or ES_NODES")
		}
		idx, err := es.NewElasticSearchIndexer(strings.Split(opts.esNodes, ","), true)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() {}, nil
	default:
		return nil, nil, xerrors.Errorf("unknown backend %q", opts.backend)
	}
}

func runQuery(w io.Writer, idx index.Indexer, opts *indexOptions) error {
	q := index.Query{Type: index.QueryTypeMatch, Expression: opts.query}
	if opts.phrase {
		q.Type = index.QueryTypePhrase
	}
	it, err := idx.Search(q)
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()

	fmt.Fprintf(w, "%d result(s) for %q\n", it.TotalCount(), opts.query)
	for n := 0; n < opts.limit && it.Next(); n++ {
		doc := it.Document()
		fmt.Fprintf(w, "%s\t%s\n", doc.URL, doc.Title)
	}
	return it.Error()
}
