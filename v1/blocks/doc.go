// Package blocks turns raw block exports into the preprocessed record file
// consumed by the store command.
//
// A source document is either a bare JSON array or the API envelope
// {"data":{"data":[...]}}. Each item with non-blank text in the configured
// field (LLMOutput by default) becomes
//
//	{
//	  "content": "<trimmed text>",
//	  "metadata": {"block_id": "...", "word_count": 42, "created_at": "2024-05-01T10:00:00Z"}
//	}
//
// Missing ids fall back to a UUID derived from the content, missing word
// counts are computed from the text and missing timestamps use the run time.
package blocks
