package sources

import (
	"context"
	"errors"

	"github.com/amaumene/mewatch/internal/models"
)

// ErrUpstreamUnavailable indicates the upstream site could not be reached or
// the expected page structure was absent
var ErrUpstreamUnavailable = errors.New("upstream source unavailable")

// ParsedSource is the transient scrape result prior to persistence as a Link.
// Fields are filled in progressively as parsing proceeds.
type ParsedSource struct {
	Name      string
	SourceURL string
	Type      models.PictureType
	Season    int
	Episode   int
}

// Parser scrapes one upstream site into ParsedSource records. Implementations
// hold no per-request state and are safe for concurrent use.
type Parser interface {
	// Name identifies the upstream site, for logging and metrics
	Name() string
	// FetchSources resolves a free-text title into zero or more sources.
	// An empty result with a nil error means the title was not found upstream.
	FetchSources(ctx context.Context, title string) ([]ParsedSource, error)
}
