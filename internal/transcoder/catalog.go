package transcoder

import (
	"slices"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/greatbody/charlock/internal/service"
)

// legacyEncodings are always reported as supported, ahead of whatever the
// detection service enumerates.
var legacyEncodings = []string{
	"windows-1250",
	"windows-1252",
	"windows-1253",
	"windows-1254",
	"windows-1255",
}

// Catalog caches the encoding names a detector can recognize and the
// canonical local name for each detector charset name.
type Catalog struct {
	detection service.Detection
	resolver  service.NameResolver

	mu    sync.Mutex
	built bool
	names []string

	canonical *cache.Cache
}

type canonicalEntry struct {
	name string
	ok   bool
}

// NewCatalog returns an empty catalog. The name list is built on first use.
func NewCatalog(detection service.Detection, resolver service.NameResolver) *Catalog {
	return &Catalog{
		detection: detection,
		resolver:  resolver,
		canonical: cache.New(cache.NoExpiration, 0),
	}
}

// Supported returns the legacy names followed by every name the detection
// service enumerates, in enumeration order and including duplicates. The
// list is built once; a failed build is retried on the next call.
func (c *Catalog) Supported() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.built {
		charsets, err := c.detection.DetectableCharsets()
		if err != nil {
			return nil, &DetectionError{Op: "list charsets", Err: err}
		}
		names := make([]string, 0, len(legacyEncodings)+len(charsets))
		names = append(names, legacyEncodings...)
		for _, name := range charsets {
			if name != "" {
				names = append(names, name)
			}
		}
		c.names = names
		c.built = true
	}

	return slices.Clone(c.names), nil
}

// CanonicalName resolves a detector charset name to its local equivalent.
// Results, including misses, are memoized.
func (c *Catalog) CanonicalName(name string) (string, bool) {
	if v, found := c.canonical.Get(name); found {
		e := v.(canonicalEntry)
		return e.name, e.ok
	}

	var e canonicalEntry
	if c.resolver != nil && name != "" {
		e.name, e.ok = c.resolver.CanonicalName(name)
	}
	c.canonical.Set(name, e, cache.NoExpiration)

	return e.name, e.ok
}
