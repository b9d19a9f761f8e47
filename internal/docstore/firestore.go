package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// FirestoreConfig configures the Firestore adapter.
type FirestoreConfig struct {
	ProjectID string
	// DatabaseID defaults to "(default)".
	DatabaseID string
	// CredentialsFile is a service account key. When empty, application
	// default credentials are used.
	CredentialsFile string
	// Endpoint overrides the API endpoint, e.g. an emulator. Requests to a
	// custom endpoint are sent without authentication.
	Endpoint      string
	RetryAttempts int
	RetryDelay    time.Duration
	PageSize      int64
}

// Firestore is a DocumentStore backed by the Cloud Firestore REST API.
type Firestore struct {
	docs   *firestore.ProjectsDatabasesDocumentsService
	logger *slog.Logger
	root   string
	config FirestoreConfig
}

// NewFirestore creates a Firestore adapter.
func NewFirestore(ctx context.Context, config FirestoreConfig, logger *slog.Logger, extra ...option.ClientOption) (*Firestore, error) {
	if config.ProjectID == "" {
		return nil, fmt.Errorf("%w: firestore project id", common.ErrMissingConfig)
	}
	if config.DatabaseID == "" {
		config.DatabaseID = "(default)"
	}
	if config.PageSize <= 0 {
		config.PageSize = 300
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := clientOptions(ctx, config)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}

	return &Firestore{
		docs:   svc.Projects.Databases.Documents,
		logger: logger,
		root:   fmt.Sprintf("projects/%s/databases/%s/documents", config.ProjectID, config.DatabaseID),
		config: config,
	}, nil
}

func clientOptions(ctx context.Context, config FirestoreConfig) ([]option.ClientOption, error) {
	if config.Endpoint != "" {
		return []option.ClientOption{
			option.WithEndpoint(config.Endpoint),
			option.WithoutAuthentication(),
		}, nil
	}

	if config.CredentialsFile != "" {
		jsonKey, err := os.ReadFile(config.CredentialsFile) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, jsonKey, firestore.DatastoreScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, firestore.DatastoreScope)
	if err != nil {
		return nil, fmt.Errorf("unable to find default credentials: %w", err)
	}
	return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
}

func (f *Firestore) name(path string) string {
	return f.root + "/" + path
}

func (f *Firestore) retry(ctx context.Context, op, path string, call func() error) error {
	err := common.WithRetry(ctx, func() error {
		return classify(call())
	}, common.RetryOptions{
		MaxAttempts:  f.config.RetryAttempts,
		InitialDelay: f.config.RetryDelay,
	})
	if err != nil {
		return common.NewRemoteError(op, path, err)
	}
	return nil
}

// classify marks throttling and unavailability responses as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
		case http.StatusServiceUnavailable:
			return &common.RetryableError{Err: err, Retryable: true}
		}
	}
	return err
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// Get implements service.DocumentStore.
func (f *Firestore) Get(ctx context.Context, path string) (service.Document, error) {
	_, id, err := checkDocumentPath(path)
	if err != nil {
		return nil, err
	}

	var out service.Document
	err = f.retry(ctx, "get", path, func() error {
		doc, err := f.docs.Get(f.name(path)).Context(ctx).Do()
		if isNotFound(err) {
			out = nil
			return nil
		}
		if err != nil {
			return err
		}
		out, err = decodeFields(doc.Fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("firestore get", "path", path, "found", out != nil)
	return withID(out, id), nil
}

// Set implements service.DocumentStore. A merge write only updates the fields
// named in doc; a plain write replaces the document.
func (f *Firestore) Set(ctx context.Context, path string, doc service.Document, opts ...service.SetOption) error {
	if _, _, err := checkDocumentPath(path); err != nil {
		return err
	}
	o := service.ApplySetOptions(opts...)

	fields, err := encodeFields(doc)
	if err != nil {
		return err
	}

	return f.retry(ctx, "set", path, func() error {
		call := f.docs.Patch(f.name(path), &firestore.Document{Fields: fields})
		if o.Merge {
			call = call.UpdateMaskFieldPaths(fieldPaths(doc)...)
		}
		_, err := call.Context(ctx).Do()
		return err
	})
}

// Delete implements service.DocumentStore.
func (f *Firestore) Delete(ctx context.Context, path string) error {
	if _, _, err := checkDocumentPath(path); err != nil {
		return err
	}

	return f.retry(ctx, "delete", path, func() error {
		_, err := f.docs.Delete(f.name(path)).Context(ctx).Do()
		if isNotFound(err) {
			return nil
		}
		return err
	})
}

// List implements service.DocumentStore, following page tokens until exhausted.
func (f *Firestore) List(ctx context.Context, collectionPath string) ([]service.Document, error) {
	if err := checkCollectionPath(collectionPath); err != nil {
		return nil, err
	}

	parent := f.root
	collectionID := collectionPath
	if i := strings.LastIndex(collectionPath, "/"); i >= 0 {
		parent = f.name(collectionPath[:i])
		collectionID = collectionPath[i+1:]
	}

	docs := []service.Document{}
	pageToken := ""
	for {
		var resp *firestore.ListDocumentsResponse
		err := f.retry(ctx, "list", collectionPath, func() error {
			call := f.docs.List(parent, collectionID).PageSize(f.config.PageSize)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			resp, err = call.Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, d := range resp.Documents {
			doc, err := decodeFields(d.Fields)
			if err != nil {
				return nil, common.NewRemoteError("list", collectionPath, err)
			}
			docs = append(docs, withID(doc, d.Name[strings.LastIndex(d.Name, "/")+1:]))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	f.logger.Debug("firestore list", "collection", collectionPath, "count", len(docs))
	return docs, nil
}

var simpleFieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func fieldPaths(doc service.Document) []string {
	paths := make([]string, 0, len(doc))
	for k := range doc {
		if simpleFieldName.MatchString(k) {
			paths = append(paths, k)
			continue
		}
		paths = append(paths, "`"+strings.ReplaceAll(k, "`", "\\`")+"`")
	}
	sort.Strings(paths)
	return paths
}

func encodeFields(doc service.Document) (map[string]firestore.Value, error) {
	fields := make(map[string]firestore.Value, len(doc))
	for k, v := range doc {
		fv, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = *fv
	}
	return fields, nil
}

// encodeValue converts a decoded JSON value into a Firestore value. Zero
// scalars are force-sent so that false, 0 and "" keep their type on the wire.
func encodeValue(v any) (*firestore.Value, error) {
	switch val := v.(type) {
	case nil:
		return &firestore.Value{NullValue: "NULL_VALUE"}, nil
	case string:
		return &firestore.Value{StringValue: val, ForceSendFields: []string{"StringValue"}}, nil
	case bool:
		return &firestore.Value{BooleanValue: val, ForceSendFields: []string{"BooleanValue"}}, nil
	case float64:
		return &firestore.Value{DoubleValue: val, ForceSendFields: []string{"DoubleValue"}}, nil
	case float32:
		return &firestore.Value{DoubleValue: float64(val), ForceSendFields: []string{"DoubleValue"}}, nil
	case int:
		return &firestore.Value{IntegerValue: int64(val), ForceSendFields: []string{"IntegerValue"}}, nil
	case int64:
		return &firestore.Value{IntegerValue: val, ForceSendFields: []string{"IntegerValue"}}, nil
	case time.Time:
		return &firestore.Value{StringValue: val.UTC().Format(time.RFC3339Nano), ForceSendFields: []string{"StringValue"}}, nil
	case service.Document:
		return encodeMap(val)
	case map[string]any:
		return encodeMap(val)
	case []any:
		arr := &firestore.ArrayValue{Values: make([]*firestore.Value, 0, len(val))}
		for i, item := range val {
			fv, err := encodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.Values = append(arr.Values, fv)
		}
		return &firestore.Value{ArrayValue: arr}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func encodeMap(m map[string]any) (*firestore.Value, error) {
	out := &firestore.MapValue{Fields: make(map[string]firestore.Value, len(m))}
	for k, item := range m {
		fv, err := encodeValue(item)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out.Fields[k] = *fv
	}
	return &firestore.Value{MapValue: out}, nil
}

func decodeFields(fields map[string]firestore.Value) (service.Document, error) {
	doc := make(service.Document, len(fields))
	for k, fv := range fields {
		doc[k] = decodeValue(&fv)
	}
	return doc, nil
}

// decodeValue maps a Firestore value back onto JSON-shaped Go values.
// Zero scalars decode as nil, which unmarshals to the zero value of the
// target field.
func decodeValue(fv *firestore.Value) any {
	switch {
	case fv == nil:
		return nil
	case fv.MapValue != nil:
		m := make(map[string]any, len(fv.MapValue.Fields))
		for k, item := range fv.MapValue.Fields {
			m[k] = decodeValue(&item)
		}
		return m
	case fv.ArrayValue != nil:
		out := make([]any, 0, len(fv.ArrayValue.Values))
		for _, item := range fv.ArrayValue.Values {
			out = append(out, decodeValue(item))
		}
		return out
	case fv.NullValue != "":
		return nil
	case fv.TimestampValue != "":
		return fv.TimestampValue
	case fv.ReferenceValue != "":
		return fv.ReferenceValue
	case fv.StringValue != "":
		return fv.StringValue
	case fv.IntegerValue != 0:
		return float64(fv.IntegerValue)
	case fv.DoubleValue != 0:
		return fv.DoubleValue
	case fv.BooleanValue:
		return true
	default:
		return nil
	}
}
