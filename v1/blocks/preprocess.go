package blocks

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// contentNamespace derives stable block ids for records that carry none.
var contentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blocksearch/content"))

// Preprocess reads a source document and extracts one Record per item that
// carries non-blank text in opts.Field. Items without it are counted in
// Stats.Skipped.
func Preprocess(r io.Reader, opts Options) ([]Record, Stats, error) {
	if opts.Field == "" {
		opts.Field = DefaultField
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, Stats{}, fmt.Errorf("blocks: parse source: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, Stats{}, fmt.Errorf("blocks: parse source: %w", err)
	}

	items, err := extractItems(doc)
	if err != nil {
		return nil, Stats{}, err
	}

	runTime := opts.Now().UTC().Format(time.RFC3339)
	stats := Stats{Total: len(items)}
	records := make([]Record, 0, len(items))

	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			stats.Skipped++
			continue
		}
		text, ok := item[opts.Field].(string)
		content := strings.TrimSpace(text)
		if !ok || content == "" {
			stats.Skipped++
			continue
		}

		records = append(records, Record{
			Content: content,
			Metadata: Metadata{
				BlockID:   blockID(item, content),
				WordCount: wordCount(item, content),
				CreatedAt: createdAt(item, runTime),
			},
		})
	}

	stats.Kept = len(records)
	return records, stats, nil
}

func extractItems(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if outer, ok := v["data"].(map[string]any); ok {
			if items, ok := outer["data"].([]any); ok {
				return items, nil
			}
		}
	}
	return nil, ErrUnsupportedShape
}

// blockID takes _id, then id, then a content-derived UUID.
func blockID(item map[string]any, content string) string {
	for _, key := range []string{"_id", "id"} {
		if id := scalarString(item[key]); id != "" {
			return id
		}
	}
	return uuid.NewSHA1(contentNamespace, []byte(content)).String()
}

// wordCount takes metadata.wordCount when numeric, else counts
// whitespace-separated words.
func wordCount(item map[string]any, content string) int {
	if meta, ok := item["metadata"].(map[string]any); ok {
		if n, ok := meta["wordCount"].(json.Number); ok {
			if i, err := n.Int64(); err == nil && i >= 0 {
				return int(i)
			}
			if f, err := n.Float64(); err == nil && f >= 0 {
				return int(f)
			}
		}
	}
	return len(strings.Fields(content))
}

// createdAt takes createdAt as given; epoch milliseconds are converted to RFC 3339.
func createdAt(item map[string]any, fallback string) string {
	switch v := unwrapExtended(item["createdAt"], "$date").(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v
		}
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms).UTC().Format(time.RFC3339)
		}
	}
	return fallback
}

// scalarString renders ids that may arrive as strings, numbers or {"$oid": "..."}.
func scalarString(v any) string {
	switch s := unwrapExtended(v, "$oid").(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// unwrapExtended unwraps MongoDB extended JSON such as {"$oid": "..."}.
func unwrapExtended(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m[key]; ok {
			return inner
		}
	}
	return v
}
