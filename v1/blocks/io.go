package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned when a document holds more than one JSON value.
var ErrTrailingData = errors.New("extra data after the JSON document")

// WriteRecords writes records as an indented JSON array. Non-ASCII text is
// written as is and an empty input yields [].
func WriteRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("blocks: write records: %w", err)
	}
	return nil
}

// ReadRecords parses a preprocessed array.
func ReadRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("blocks: parse preprocessed records: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, fmt.Errorf("blocks: parse preprocessed records: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Preview shortens s to at most n runes, appending "..." when cut.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// expectEOF fails unless dec has nothing left but whitespace.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %v", ErrTrailingData, err)
	default:
		return ErrTrailingData
	}
}
