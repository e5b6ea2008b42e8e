// Package catalog is a read-only, in-memory view over the source catalog
// JSON file: feed descriptors tagged with categories and locations that the
// dispatcher's StartTask matches tasks against before assigning each
// matched source.
package catalog

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/types"
)

// Catalog is safe for concurrent use. Reload swaps the in-memory snapshot
// atomically; readers never observe a partially-updated catalog.
type Catalog struct {
	path string
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	sources    []types.Source
	categories []string
	locations  []string
}

// New loads path and returns a ready Catalog. A malformed or missing file
// is never fatal: it logs and yields an empty catalog, per the component's
// "no errors are fatal" rule.
func New(path string) *Catalog {
	c := &Catalog{path: path}
	c.Reload()
	return c
}

// Reload re-reads the backing file and replaces the snapshot atomically.
func (c *Catalog) Reload() {
	snap := loadSnapshot(c.path)
	c.snap.Store(snap)
}

func loadSnapshot(path string) *snapshot {
	logger := log.WithComponent("catalog")

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read source catalog")
		return &snapshot{}
	}

	var sources []types.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		logger.Warn().Err(err).Msg("malformed source catalog")
		return &snapshot{}
	}

	catSet := map[string]struct{}{}
	locSet := map[string]struct{}{}
	for _, s := range sources {
		for _, tag := range types.NormalizeTags(s.Categories) {
			catSet[tag] = struct{}{}
		}
		for _, tag := range types.NormalizeTags(s.Locations) {
			locSet[tag] = struct{}{}
		}
	}

	return &snapshot{
		sources:    sources,
		categories: sortedKeys(catSet),
		locations:  sortedKeys(locSet),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ListCategories returns the sorted, de-duplicated union of every source's
// category tags.
func (c *Catalog) ListCategories() []string {
	return append([]string(nil), c.snap.Load().categories...)
}

// ListLocations returns the sorted, de-duplicated union of every source's
// location tags.
func (c *Catalog) ListLocations() []string {
	return append([]string(nil), c.snap.Load().locations...)
}

// Match returns every source whose normalized category set intersects
// categories and whose location set intersects locations.
func (c *Catalog) Match(categories, locations []string) []types.Source {
	wantCats := toSet(types.NormalizeTags(categories))
	wantLocs := toSet(types.NormalizeTags(locations))

	var out []types.Source
	for _, s := range c.snap.Load().sources {
		if !intersects(toSet(types.NormalizeTags(s.Categories)), wantCats) {
			continue
		}
		if !intersects(toSet(types.NormalizeTags(s.Locations)), wantLocs) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
