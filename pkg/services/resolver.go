package services

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/models"
)

// Resolver decides which folder, if any, owns an image
type Resolver interface {
	// Resolve returns the owning folder id, or false when the image is unassociated
	Resolve(ref string, folders []models.Folder) (int, bool)
}

// NewResolver returns the resolver for the named strategy
func NewResolver(strategy string) (Resolver, error) {
	switch strategy {
	case config.StrategyPath, "":
		return PathSegmentResolver{}, nil
	case config.StrategySubstring:
		return SubstringResolver{}, nil
	}
	return nil, fmt.Errorf("%w: %s", config.ErrUnknownStrategy, strategy)
}

// PathSegmentResolver matches the nearest ancestor path segment against folder names
type PathSegmentResolver struct{}

// Resolve walks the segments preceding the file name from nearest to root
func (PathSegmentResolver) Resolve(ref string, folders []models.Folder) (int, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		log.Printf("Error parsing folder from URL %q: %v", ref, err)
		return 0, false
	}

	var segments []string
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	for i := len(segments) - 2; i >= 0; i-- {
		segment, err := url.PathUnescape(segments[i])
		if err != nil {
			log.Printf("Error decoding path segment %q of %q: %v", segments[i], ref, err)
			return 0, false
		}
		segment = strings.ToLower(segment)
		for _, f := range folders {
			if strings.ToLower(f.Name) == segment {
				return f.ID, true
			}
		}
	}
	return 0, false
}

// SubstringResolver returns the first folder, in enumeration order, whose
// name occurs anywhere in the reference. A shorter name can shadow a more
// specific one; existing folder assignments depend on this order.
type SubstringResolver struct{}

// Resolve scans folders in order and returns the first substring match
func (SubstringResolver) Resolve(ref string, folders []models.Folder) (int, bool) {
	lower := strings.ToLower(ref)
	for _, f := range folders {
		if f.Name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(f.Name)) {
			return f.ID, true
		}
	}
	return 0, false
}
