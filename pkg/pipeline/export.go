package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/relink/pkg/cache"
	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/document"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/observability"
	"github.com/matzehuels/relink/pkg/render/nodelink"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// ParseFormats splits a comma-separated format list and validates it.
// An empty string selects SVG.
func ParseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{FormatSVG}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := relerrors.ValidateFormat(f, Formats...); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Export renders m in one format.
func Export(ctx context.Context, m *diagram.Model, format string, opts nodelink.Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return document.Marshal(m)
	case FormatDOT:
		return []byte(nodelink.ToDOT(m, opts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(m, opts))
	default:
		return nil, relerrors.ValidateFormat(format, Formats...)
	}
}

// Export renders m in every requested format, reusing cached artifacts. The
// bool reports whether all of them came from the cache.
func (r *Runner) Export(ctx context.Context, m *diagram.Model, formats []string, opts nodelink.Options) (map[string][]byte, bool, error) {
	for _, f := range formats {
		if err := relerrors.ValidateFormat(f, Formats...); err != nil {
			return nil, false, err
		}
	}
	doc, err := document.Marshal(m)
	if err != nil {
		return nil, false, fmt.Errorf("hash document: %w", err)
	}
	docHash := cache.Hash(doc)

	artifacts := make(map[string][]byte, len(formats))
	allCached := true
	for _, f := range formats {
		key := r.Keyer.ArtifactKey(docHash, cache.ArtifactKeyOpts{Format: f, Detailed: opts.Detailed})
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[f] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allCached = false

		data, err := Export(ctx, m, f, opts)
		if err != nil {
			return nil, false, fmt.Errorf("export %s: %w", f, err)
		}
		artifacts[f] = data
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	r.Logger.Debug("exported diagram", "formats", formats, "cached", allCached)
	return artifacts, allCached, nil
}
