// Command search prints the stored blocks most similar to a query.
//
//	search [options] "<query>" [count]
//
// count overrides QDRANT_SEARCH_LIMIT for this run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/internal/cli"
	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/embedcache"
	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
	"github.com/Aleph-Alpha/blocksearch/v1/qdrant"
	"github.com/Aleph-Alpha/blocksearch/v1/search"
	"github.com/Aleph-Alpha/blocksearch/v1/tracer"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: search [options] \"<query>\" [count]\n\n")
	fmt.Fprintf(os.Stderr, "count is the number of results; it overrides QDRANT_SEARCH_LIMIT (default 10).\n")
	fmt.Fprintf(os.Stderr, "Repeating -filter with the same key matches any of the values.\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  search \"the hero learns a new spell\"\n")
	fmt.Fprintf(os.Stderr, "  search -filter block_id=64f1 \"a choice in a dangerous moment\" 3\n")
	fmt.Fprintf(os.Stderr, "  search -min-words 20 -max-words 200 \"a storm at sea\"\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

type deps struct {
	fx.In

	Searcher     *search.Searcher
	SearchCfg    search.Config
	QdrantCfg    qdrant.Config
	EmbeddingCfg embedding.Config
}

func main() {
	var filters cli.Filters
	collectionFlag := flag.String("collection", "", "collection to search (default $COLLECTION_NAME or "+cli.DefaultCollection+")")
	minScore := flag.Float64("min-score", 0, "drop results scoring below this value")
	after := flag.String("created-after", "", "only blocks created at or after this RFC3339 time")
	before := flag.String("created-before", "", "only blocks created at or before this RFC3339 time")
	minWords := flag.Int("min-words", 0, "only blocks with at least this many words")
	maxWords := flag.Int("max-words", 0, "only blocks with at most this many words")
	flag.Var(&filters, "filter", "metadata filter key=value (repeatable)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		usage()
		os.Exit(1)
	}

	q := search.Query{Text: args[0]}
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "count must be a positive integer, got %q\n\n", args[1])
			usage()
			os.Exit(1)
		}
		q.Limit = n
	}
	if *minScore > 0 {
		s := float32(*minScore)
		q.ScoreThreshold = &s
	}
	for _, f := range filters {
		k, v, err := search.ParseFilter(f)
		if err != nil {
			cli.Fail(os.Stderr, "%v", err)
		}
		if q.Filters == nil {
			q.Filters = map[string][]string{}
		}
		q.Filters[k] = append(q.Filters[k], v)
	}
	if *minWords < 0 || *maxWords < 0 || (*maxWords > 0 && *minWords > *maxWords) {
		cli.Fail(os.Stderr, "-min-words %d and -max-words %d do not form a valid range", *minWords, *maxWords)
	}
	q.MinWords, q.MaxWords = *minWords, *maxWords
	var err error
	if q.CreatedAfter, err = parseTime(*after); err != nil {
		cli.Fail(os.Stderr, "-created-after: %v", err)
	}
	if q.CreatedBefore, err = parseTime(*before); err != nil {
		cli.Fail(os.Stderr, "-created-before: %v", err)
	}

	if err := cli.LoadEnv(); err != nil {
		cli.Fail(os.Stderr, "%v", err)
	}
	q.Collection = cli.Collection(*collectionFlag)

	ctx, stop := cli.SignalContext()
	defer stop()

	var (
		d     deps
		found int
	)
	err = cli.Run(ctx, func(ctx context.Context) error {
		limit := q.Limit
		if limit <= 0 {
			limit = d.SearchCfg.Limit
		}
		fmt.Println("Search settings:")
		fmt.Printf("  Qdrant URL:      %s\n", d.QdrantCfg.URL)
		fmt.Printf("  collection:      %s\n", q.Collection)
		fmt.Printf("  embedding model: %s\n", d.EmbeddingCfg.Model)
		fmt.Printf("  limit:           %d\n", limit)
		fmt.Printf("  query:           %q\n\n", blocks.Preview(q.Text, 50))

		results, err := d.Searcher.Search(ctx, q)
		if err != nil {
			return err
		}
		found = len(results)
		return search.Format(os.Stdout, results)
	},
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		embedcache.FXModule,
		search.FXModule,
		fx.Populate(&d),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Hints:")
		fmt.Fprintln(os.Stderr, "  1. make sure blocks were stored: store")
		fmt.Fprintln(os.Stderr, "  2. make sure Qdrant is running: docker ps")
		fmt.Fprintln(os.Stderr, "  3. check the settings in .env")
		cli.Fail(os.Stderr, "%v", err)
	}

	if found == 0 {
		fmt.Println("Make sure the blocks were stored first: store")
		return
	}
	fmt.Println()
	fmt.Println("Next step:")
	fmt.Println("  use these blocks as LLM context to write the next block.")
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
