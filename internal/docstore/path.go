// Package docstore implements the remote document store contract on top of
// memory, a shared SQLite file, and the Cloud Firestore REST API.
package docstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// ErrInvalidPath is returned for paths that do not address a document or collection.
var ErrInvalidPath = errors.New("invalid document path")

// Join builds a slash-separated path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}

// checkDocumentPath verifies path has an even number of segments and returns
// its parent collection and document ID.
func checkDocumentPath(path string) (collection, id string, err error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", "", err
	}
	if len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q is a collection path", ErrInvalidPath, path)
	}
	return Join(segments[:len(segments)-1]...), segments[len(segments)-1], nil
}

// checkCollectionPath verifies path has an odd number of segments.
func checkCollectionPath(path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segments)%2 != 1 {
		return fmt.Errorf("%w: %q is a document path", ErrInvalidPath, path)
	}
	return nil
}

// withID sets the "id" field from the path when the document lacks one.
func withID(doc service.Document, id string) service.Document {
	if doc == nil {
		return nil
	}
	if v, ok := doc["id"]; !ok || v == nil || v == "" {
		doc["id"] = id
	}
	return doc
}
