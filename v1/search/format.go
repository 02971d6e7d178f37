package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
)

// PreviewRunes is the length of the content preview printed per result.
const PreviewRunes = 200

// Format prints ranked results for a terminal.
func Format(w io.Writer, results []Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No matching blocks found.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d related blocks:\n", len(results))
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\n")

	for i, r := range results {
		fmt.Fprintf(&b, "\nBlock #%d (score: %.4f)\n", i+1, r.Score)
		fmt.Fprintf(&b, "ID: %s\n", metaValue(r.Metadata, "block_id"))
		fmt.Fprintf(&b, "Words: %s\n", metaValue(r.Metadata, "word_count"))
		fmt.Fprintf(&b, "Created: %s\n", metaValue(r.Metadata, "created_at"))
		b.WriteString("Content:\n")
		fmt.Fprintf(&b, "  %s\n", blocks.Preview(r.Content, PreviewRunes))
		if i < len(results)-1 {
			b.WriteString(strings.Repeat("-", 40))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func metaValue(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return "N/A"
	}
	if s, ok := v.(string); ok && s == "" {
		return "N/A"
	}
	return fmt.Sprint(v)
}
