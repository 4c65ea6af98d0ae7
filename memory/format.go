package memory

import (
	"fmt"
	"strings"
)

// Formatting defaults for retrieved context blocks.
const (
	DefaultMaxItems     = 10
	DefaultMaxItemChars = 1500
)

// genericHeader labels items that carry no location metadata.
const genericHeader = "[memory]"

// FormatOption overrides formatting limits.
type FormatOption func(*formatOptions)

type formatOptions struct {
	maxItems     int
	maxItemChars int
}

// WithMaxItems caps the number of items rendered.
func WithMaxItems(n int) FormatOption {
	return func(o *formatOptions) {
		if n > 0 {
			o.maxItems = n
		}
	}
}

// WithMaxItemChars caps the rendered length of each item's content.
func WithMaxItemChars(n int) FormatOption {
	return func(o *formatOptions) {
		if n > 0 {
			o.maxItemChars = n
		}
	}
}

// FormatSearchResults renders a raw search response into a bounded,
// human-readable context block.
//
// The response shape is a best-effort contract and is never trusted:
// nil and empty inputs yield ""; mappings are probed for the hit sequence
// under "results", "memories" then "data"; item content is probed under
// "memory", "text", "content" then "data", descending one level into
// nested structures before falling back to string coercion. Location
// metadata (filename, page, source, score) is read from the item's nested
// metadata first, then its top level. Items with no extractable text are
// silently skipped; non-mapping items render as bare strings under the
// generic header. Output order matches input order.
func FormatSearchResults(raw any, opts ...FormatOption) string {
	options := formatOptions{
		maxItems:     DefaultMaxItems,
		maxItemChars: DefaultMaxItemChars,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if raw == nil {
		return ""
	}

	items, ok := extractItems(raw)
	if !ok {
		// Unknown non-sequence payload: coerce rather than fail.
		return strings.TrimSpace(fmt.Sprintf("%v", raw))
	}

	lines := make([]string, 0, min(len(items), options.maxItems))
	for _, item := range items {
		if len(lines) >= options.maxItems {
			break
		}

		entry, ok := item.(map[string]any)
		if !ok {
			// Non-mapping item: render as a bare truncated string.
			text := strings.TrimSpace(fmt.Sprintf("%v", item))
			if item == nil || text == "" {
				continue
			}
			lines = append(lines, genericHeader+" "+truncate(text, options.maxItemChars))
			continue
		}

		text := extractText(entry)
		if text == "" {
			continue
		}

		lines = append(lines, buildHeader(entry)+" "+truncate(text, options.maxItemChars))
	}

	return strings.Join(lines, "\n\n")
}

// extractItems pulls the hit sequence out of whatever shape the store
// returned. Returns ok=false when the payload is neither a sequence nor a
// mapping holding one.
func extractItems(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case map[string]any:
		// Probe wrapper keys in priority order.
		for _, key := range []string{"results", "memories", "data"} {
			if inner, present := v[key]; present && inner != nil {
				if items, ok := extractItems(inner); ok {
					return items, true
				}
			}
		}
		// Mapping with no recognized hit sequence: treat as empty.
		return nil, true
	default:
		return nil, false
	}
}

// extractText probes the alternative content fields of an item.
func extractText(entry map[string]any) string {
	for _, key := range []string{"memory", "text", "content", "data"} {
		value, present := entry[key]
		if !present || value == nil {
			continue
		}

		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			// Content is sometimes nested one level down.
			for _, inner := range []string{"content", "text"} {
				if s, ok := v[inner].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		default:
			if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// buildHeader renders the bracketed location header from whichever
// metadata fields are present. Nested metadata wins over top-level fields.
func buildHeader(entry map[string]any) string {
	meta, _ := entry["metadata"].(map[string]any)

	lookup := func(key string) any {
		if meta != nil {
			if v, present := meta[key]; present && v != nil {
				return v
			}
		}
		if v, present := entry[key]; present && v != nil {
			return v
		}
		return nil
	}

	var bits []string
	if filename := lookup("filename"); filename != nil {
		if s := fmt.Sprintf("%v", filename); s != "" {
			bits = append(bits, s)
		}
	}
	if page := lookup("page"); page != nil && fmt.Sprintf("%v", page) != "" {
		bits = append(bits, fmt.Sprintf("page %v", page))
	}
	if source := lookup("source"); source != nil {
		if s := fmt.Sprintf("%v", source); s != "" && s != "document" {
			bits = append(bits, "source: "+s)
		}
	}
	if score, ok := asFloat(lookup("score")); ok {
		bits = append(bits, fmt.Sprintf("score: %.2f", score))
	}

	if len(bits) == 0 {
		return genericHeader
	}
	return "[" + strings.Join(bits, " | ") + "]"
}

// asFloat converts the numeric types a JSON-ish payload may carry.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// truncate caps text at limit characters, appending an ellipsis marker.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), " \t\n") + "…"
}
