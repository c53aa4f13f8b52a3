// internal/metadata/metadata.go
// Package metadata manages the single JSON document that stores per-video
// display-name overrides. The document lives in the same bucket as the
// videos and is read lazily on every catalog build.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/familyvhs/familyvhs-gallery-go/internal/model"
	"github.com/familyvhs/familyvhs-gallery-go/internal/store"
)

// documentSchema describes the expected shape of the metadata document:
// an object mapping video keys to string-valued override entries. A
// document that fails this check is discarded rather than partially
// applied, so one corrupt write cannot poison every catalog build.
const documentSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"displayName": {"type": "string"},
			"dateRange": {"type": "string"}
		}
	}
}`

// Store reads and writes the metadata document.
type Store struct {
	objects store.ObjectStore
	key     string
	schema  *gojsonschema.Schema
}

// New creates a metadata store persisting its document at the given object key.
func New(objects store.ObjectStore, key string) (*Store, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile metadata document schema: %w", err)
	}
	return &Store{objects: objects, key: key, schema: schema}, nil
}

// Load fetches the metadata document. A missing or malformed document is
// tolerated as an empty map, matching the lazy-read contract.
func (s *Store) Load(ctx context.Context) (model.MetadataDocument, error) {
	body, err := s.objects.Get(ctx, s.key)
	if err != nil {
		if err != store.ErrNotFound {
			slog.Warn("metadata document fetch failed, proceeding without overrides", "key", s.key, "error", err)
		}
		return model.MetadataDocument{}, nil
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !result.Valid() {
		slog.Warn("metadata document is malformed, proceeding without overrides", "key", s.key, "error", err, "issues", validationIssues(result))
		return model.MetadataDocument{}, nil
	}

	var doc model.MetadataDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		slog.Warn("metadata document failed to decode, proceeding without overrides", "key", s.key, "error", err)
		return model.MetadataDocument{}, nil
	}
	return doc, nil
}

// Save writes the whole metadata document back to the store.
func (s *Store) Save(ctx context.Context, doc model.MetadataDocument) error {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata document: %w", err)
	}
	if err := s.objects.Put(ctx, s.key, body, "application/json"); err != nil {
		return fmt.Errorf("failed to write metadata document: %w", err)
	}
	return nil
}

// SetDisplayName upserts the display name for one video key, preserving
// any other fields already stored for that key (notably dateRange).
//
// This is an unsynchronized read-modify-write of the whole document:
// concurrent renames of the same key can lose an update (last writer
// wins). The store offers no conditional write at this interface, and the
// single small user group makes the conflict rare and low-stakes.
func (s *Store) SetDisplayName(ctx context.Context, videoKey, displayName string) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	entry := doc[videoKey]
	entry.DisplayName = displayName
	doc[videoKey] = entry
	return s.Save(ctx, doc)
}

// validationIssues flattens schema validation errors into one string for logging.
func validationIssues(result *gojsonschema.Result) string {
	if result == nil {
		return ""
	}
	var issues []string
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return strings.Join(issues, "; ")
}
