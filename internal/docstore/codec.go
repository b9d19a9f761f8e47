package docstore

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// ToDocument converts a JSON-tagged struct into a plain document. Times become
// ISO-8601 strings through their JSON encoding.
func ToDocument(v any) (service.Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc service.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}

// FromDocument decodes a plain document into the JSON-tagged value pointed to by out.
func FromDocument(doc service.Document, out any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// cloneDocument deep-copies a document so callers never share nested maps with the store.
func cloneDocument(doc service.Document) service.Document {
	if doc == nil {
		return nil
	}
	out := make(service.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case service.Document:
		return cloneDocument(val)
	case map[string]any:
		return map[string]any(cloneDocument(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// mergeDocument merges src into dst. Nested maps merge recursively; every
// other value in src replaces the one in dst.
func mergeDocument(dst, src service.Document) service.Document {
	if dst == nil {
		return cloneDocument(src)
	}
	out := maps.Clone(dst)
	for k, v := range src {
		srcMap, srcIsMap := asMap(v)
		dstMap, dstIsMap := asMap(out[k])
		if srcIsMap && dstIsMap {
			out[k] = map[string]any(mergeDocument(dstMap, srcMap))
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (service.Document, bool) {
	switch val := v.(type) {
	case service.Document:
		return val, true
	case map[string]any:
		return val, true
	default:
		return nil, false
	}
}
