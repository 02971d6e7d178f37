// Package search embeds a free-text query and returns the most similar
// stored blocks.
//
//	results, err := searcher.Search(ctx, search.Query{
//	    Text:       "the keeper climbs the lighthouse",
//	    Collection: "novel_blocks",
//	    Limit:      5,
//	    Filters:    map[string][]string{"block_id": {"64f1", "64f2"}},
//	    MinWords:   20,
//	})
//	_ = search.Format(os.Stdout, results)
//
// A Limit of zero falls back to QDRANT_SEARCH_LIMIT (default 10).
package search
