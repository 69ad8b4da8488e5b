package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Result is a successfully fetched asset: raw bytes plus the MIME type
// derived from the store's format tag.
type Result struct {
	Bytes       []byte
	ContentType string
}

// Fetcher resolves asset IDs against a Store: capability check, lookup,
// byte retrieval, MIME derivation. Single attempt, no retry at any step.
type Fetcher struct {
	store  Store
	logger *slog.Logger
}

// NewFetcher creates a fetcher backed by the given store.
func NewFetcher(store Store, logger *slog.Logger) *Fetcher {
	return &Fetcher{store: store, logger: logger}
}

// Fetch resolves one asset ID. If the store's capability does not authorize
// access, the result is ErrAccessDenied and no lookup is attempted. An
// unresolvable ID yields ErrNotFound; any retrieval failure yields
// ErrLoadFailure.
func (f *Fetcher) Fetch(ctx context.Context, id string) (*Result, error) {
	if capability := f.store.Authorization(ctx); !capability.Authorized() {
		f.logger.Warn("Asset fetch refused",
			slog.String("asset_id", id),
			slog.String("capability", capability.String()),
		)
		return nil, fmt.Errorf("capability %s: %w", capability, ErrAccessDenied)
	}

	handle, err := f.store.Lookup(ctx, id)
	if err != nil {
		f.logger.Warn("Asset lookup failed",
			slog.String("asset_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}

	start := time.Now()
	data, formatTag, err := f.store.Retrieve(ctx, handle, RetrieveOptions{
		PreferCurrent: true,
		AllowNetwork:  true,
	})
	if err != nil {
		f.logger.Error("Asset retrieval failed",
			slog.String("asset_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("retrieve %q: %w", id, ErrLoadFailure)
	}

	contentType := ContentTypeForFormat(formatTag)
	f.logger.Debug("Asset fetched",
		slog.String("asset_id", id),
		slog.Int("size", len(data)),
		slog.String("format_tag", formatTag),
		slog.String("content_type", contentType),
		slog.Duration("duration", time.Since(start)),
	)

	return &Result{Bytes: data, ContentType: contentType}, nil
}

// ContentTypeForFormat maps an opaque format tag to an image MIME type by
// substring inspection, in priority order png > heic > gif, defaulting to
// image/jpeg. Clients depend on this exact policy; do not reorder.
func ContentTypeForFormat(tag string) string {
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "png"):
		return "image/png"
	case strings.Contains(lower, "heic"):
		return "image/heic"
	case strings.Contains(lower, "gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
