// internal/catalog/catalog.go
// Package catalog builds the enriched, sorted list of playable videos
// served to the gallery client. Building a catalog lists the raw video
// objects, merges in display-name overrides from the metadata document,
// and resolves sibling thumbnail/preview objects into signed URLs.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/familyvhs/familyvhs-gallery-go/internal/metadata"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metrics"
	"github.com/familyvhs/familyvhs-gallery-go/internal/model"
	"github.com/familyvhs/familyvhs-gallery-go/internal/store"
)

const (
	// Sibling objects are located purely by naming convention.
	thumbnailPrefix = "thumbnails/"
	previewPrefix   = "previews/"

	// SignedURLTTL is the expiry for every authorized URL the gallery
	// hands out: playback, thumbnails and previews alike.
	SignedURLTTL = 4 * time.Hour

	// probeTimeout caps one sibling probe so a hung store call cannot
	// stall the whole catalog response.
	probeTimeout = 10 * time.Second
)

// Builder assembles catalogs from the object store and metadata document.
type Builder struct {
	objects    store.ObjectStore
	meta       *metadata.Store
	metrics    *metrics.Metrics
	probeLimit int
}

// New creates a catalog builder. probeLimit bounds the number of sibling
// probes in flight during one build.
func New(objects store.ObjectStore, meta *metadata.Store, m *metrics.Metrics, probeLimit int) *Builder {
	if probeLimit < 1 {
		probeLimit = 1
	}
	return &Builder{objects: objects, meta: meta, metrics: m, probeLimit: probeLimit}
}

// Build returns the sorted, enriched catalog.
//
// A failure of the primary listing fails the whole build; everything
// after that point degrades instead: a missing or malformed metadata
// document just means no overrides, and a failed thumbnail/preview probe
// or presign just leaves that field empty on the record.
//
// Two keys that reduce to the same base name alias onto the same sibling
// objects; which record ends up with the URLs is undefined.
func (b *Builder) Build(ctx context.Context) ([]model.VideoRecord, error) {
	ctx, span := otel.Tracer("gallery").Start(ctx, "catalog.Build")
	defer span.End()
	start := time.Now()

	listing, err := b.objects.List(ctx, model.VideoPrefix)
	if err != nil {
		span.SetStatus(codes.Error, "listing failed")
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	doc, err := b.meta.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	records := make([]model.VideoRecord, 0, len(listing))
	for _, obj := range listing {
		if !model.IsVideoKey(obj.Key) {
			continue
		}
		records = append(records, model.VideoRecord{
			Key:          obj.Key,
			Name:         model.BaseName(obj.Key),
			DisplayName:  doc[obj.Key].DisplayName,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	c := collate.New(language.Und)
	sort.SliceStable(records, func(i, j int) bool {
		return c.CompareString(records[i].Name, records[j].Name) < 0
	})

	b.enrich(ctx, records)

	span.SetAttributes(attribute.Int("catalog.size", len(records)))
	if b.metrics != nil {
		b.metrics.CatalogBuildDuration.Observe(time.Since(start).Seconds())
		b.metrics.CatalogSize.Set(float64(len(records)))
	}
	return records, nil
}

// enrich resolves sibling thumbnails and previews for every record with
// a bounded pool. Probes are independent per record and per kind; no
// completion order is guaranteed.
func (b *Builder) enrich(ctx context.Context, records []model.VideoRecord) {
	g := new(errgroup.Group)
	g.SetLimit(b.probeLimit)

	for i := range records {
		rec := &records[i]
		thumbKey := thumbnailPrefix + rec.Name + ".jpg"
		previewKey := previewPrefix + rec.Name + ".mp4"

		g.Go(func() error {
			rec.ThumbnailURL = b.resolveSibling(ctx, thumbKey, "thumbnail")
			return nil
		})
		g.Go(func() error {
			rec.PreviewURL = b.resolveSibling(ctx, previewKey, "preview")
			return nil
		})
	}
	_ = g.Wait()
}

// resolveSibling probes for one sibling object and signs a URL for it.
// Any failure degrades to an empty URL; the catalog itself never fails
// over enrichment.
func (b *Builder) resolveSibling(ctx context.Context, key, kind string) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	exists, err := b.objects.Exists(ctx, key)
	if err != nil {
		slog.Warn("sibling probe failed", "kind", kind, "key", key, "error", err)
		b.countProbe(kind, "error")
		return ""
	}
	if !exists {
		b.countProbe(kind, "miss")
		return ""
	}

	url, err := b.objects.PresignGet(ctx, key, SignedURLTTL)
	if err != nil {
		slog.Warn("sibling presign failed", "kind", kind, "key", key, "error", err)
		b.countProbe(kind, "error")
		return ""
	}
	b.countProbe(kind, "hit")
	return url
}

func (b *Builder) countProbe(kind, status string) {
	if b.metrics != nil {
		b.metrics.ProbeTotal.WithLabelValues(kind, status).Inc()
	}
}
