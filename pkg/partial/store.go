package partial

import (
	"container/list"
	"context"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
	"golang.org/x/sync/singleflight"

	"github.com/beetlebugorg/partialrender/pkg/logger"
)

// Store is an in-memory LRU cache of rendered partials.
//
// The store is bounded by tile count. When a Put pushes it over capacity the
// least-recently-used partials are evicted and dropped; they are re-rendered
// if requested again. Cached envelopes are also kept in an R-tree so that
// Invalidate(region) only visits tiles near the region.
//
// A single mutex guards the map, the recency list and the R-tree, so a
// concurrent reader never observes a half-evicted entry.
//
// Example:
//
//	store, err := partial.NewStore(256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store.Put(key, p)
//	if p, ok := store.Get(key); ok {
//	    draw(p.Image())
//	}
type Store struct {
	capacity int
	entries  map[TileKey]*storeEntry
	lru      *list.List // Most recent at front
	rtree    *rtreego.Rtree
	log      logger.Logger

	generation    uint64
	hits          uint64
	misses        uint64
	evictions     uint64
	invalidations uint64

	// One render per key in flight, across every intersector sharing the store
	flights singleflight.Group

	mu sync.Mutex
}

// storeEntry tracks one cached partial and its positions in the LRU list and R-tree.
type storeEntry struct {
	key     TileKey
	partial *RenderedPartial
	element *list.Element
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *storeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for eviction and invalidation events.
func WithStoreLogger(l logger.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a store holding at most capacity partials.
//
// Returns an error matching ErrInvalidConfiguration unless capacity is positive.
func NewStore(capacity int, opts ...StoreOption) (*Store, error) {
	if capacity <= 0 {
		return nil, &ConfigError{Field: "cache capacity", Reason: "must be a positive integer"}
	}
	s := &Store{
		capacity: capacity,
		entries:  make(map[TileKey]*storeEntry),
		lru:      list.New(),
		rtree:    rtreego.NewTree(2, 25, 50),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the cached partial for key and marks it most recently used.
func (s *Store) Get(key TileKey) (*RenderedPartial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		cacheMisses.Inc()
		return nil, false
	}
	s.hits++
	cacheHits.Inc()
	s.lru.MoveToFront(entry.element)
	return entry.partial, true
}

// Peek returns the cached partial for key without touching recency or counters.
func (s *Store) Peek(key TileKey) (*RenderedPartial, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return entry.partial, true
}

// Put inserts or replaces the partial for key, evicting least-recently-used
// partials until the store is within capacity.
func (s *Store) Put(key TileKey, p *RenderedPartial) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, p)
}

// PutIfGeneration stores the partial only if no invalidation happened since
// gen was read from Generation. It reports whether the partial was stored.
//
// Renders started before an invalidation use this to avoid caching content
// that is already stale.
func (s *Store) PutIfGeneration(gen uint64, key TileKey, p *RenderedPartial) bool {
	if p == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.put(key, p)
	return true
}

// flight is the outcome of one shared load.
type flight struct {
	partial    *RenderedPartial
	generation uint64 // Store generation when the load started
}

// load returns the partial for key, calling render at most once at a time per
// key no matter how many callers ask. The result is stored with
// PutIfGeneration. It also reports whether this caller joined a load started
// by another caller.
//
// A caller that joins a load started before an invalidation it has already
// observed waits for that load to finish and then starts a new one, so it
// never receives content older than its own call. ctx bounds only the wait.
func (s *Store) load(ctx context.Context, key TileKey, render func() (*RenderedPartial, error)) (*RenderedPartial, bool, error) {
	for {
		gen := s.Generation()

		var led bool
		ch := s.flights.DoChan(key.String(), func() (any, error) {
			led = true
			start := s.Generation()
			if p, ok := s.Peek(key); ok {
				return flight{partial: p, generation: start}, nil
			}
			p, err := render()
			if err != nil {
				return nil, err
			}
			if !s.PutIfGeneration(start, key, p) {
				s.log.Debug("discarded partial rendered before invalidation", "key", key.String())
			}
			return flight{partial: p, generation: start}, nil
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, !led, res.Err
			}
			f := res.Val.(flight)
			if f.generation < gen {
				continue
			}
			return f.partial, !led, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// put must be called with s.mu locked.
func (s *Store) put(key TileKey, p *RenderedPartial) {
	if entry, ok := s.entries[key]; ok {
		s.rtree.Delete(entry)
		entry.partial = p
		entry.rect = envelopeRect(p.Envelope())
		s.rtree.Insert(entry)
		s.lru.MoveToFront(entry.element)
		return
	}

	entry := &storeEntry{
		key:     key,
		partial: p,
		rect:    envelopeRect(p.Envelope()),
	}
	entry.element = s.lru.PushFront(entry)
	s.entries[key] = entry
	s.rtree.Insert(entry)

	for s.lru.Len() > s.capacity {
		s.evictLRU()
	}
}

// evictLRU removes the least recently used partial.
// Must be called with s.mu locked.
func (s *Store) evictLRU() {
	elem := s.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*storeEntry)
	s.remove(entry)
	s.evictions++
	cacheEvictions.Inc()
	s.log.Debug("evicted partial", "key", entry.key.String())
}

// remove must be called with s.mu locked.
func (s *Store) remove(entry *storeEntry) {
	s.lru.Remove(entry.element)
	s.rtree.Delete(entry)
	delete(s.entries, entry.key)
}

// Invalidate drops every cached partial whose envelope overlaps region and
// returns how many were dropped.
//
// A region with area matches tiles sharing some area with it. A degenerate
// region (a point or a line) matches every tile it touches, edges included.
// Regions in another CRS match nothing. The generation is advanced even when
// nothing was dropped, so in-flight renders are never cached afterwards.
func (s *Store) Invalidate(region Envelope) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if !region.IsFinite() {
		return 0
	}

	match := region.Overlaps
	if region.IsDegenerate() {
		match = region.Intersects
	}

	var victims []*storeEntry
	query, err := searchRect(region)
	if err == nil {
		for _, spatial := range s.rtree.SearchIntersect(query) {
			entry := spatial.(*storeEntry)
			if match(entry.partial.Envelope()) {
				victims = append(victims, entry)
			}
		}
	} else {
		// Fallback to linear scan
		for _, entry := range s.entries {
			if match(entry.partial.Envelope()) {
				victims = append(victims, entry)
			}
		}
	}

	for _, entry := range victims {
		s.remove(entry)
	}
	s.invalidations += uint64(len(victims))
	cacheInvalidations.Add(float64(len(victims)))
	if len(victims) > 0 {
		s.log.Debug("invalidated partials", "region", region.String(), "count", len(victims))
	}
	return len(victims)
}

// InvalidateAll drops every cached partial and returns how many were dropped.
func (s *Store) InvalidateAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.generation++
	s.entries = make(map[TileKey]*storeEntry)
	s.lru.Init()
	s.rtree = rtreego.NewTree(2, 25, 50)
	s.invalidations += uint64(n)
	cacheInvalidations.Add(float64(n))
	s.log.Debug("invalidated all partials", "count", n)
	return n
}

// Generation returns a counter that advances on every invalidation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Keys returns the cached keys from most to least recently used.
func (s *Store) Keys() []TileKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]TileKey, 0, s.lru.Len())
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*storeEntry).key)
	}
	return keys
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StoreStats{
		Tiles:         len(s.entries),
		Capacity:      s.capacity,
		Hits:          s.hits,
		Misses:        s.misses,
		Evictions:     s.evictions,
		Invalidations: s.invalidations,
	}
}

// StoreStats holds store counters.
type StoreStats struct {
	Tiles         int    `json:"tiles"`         // Partials currently cached
	Capacity      int    `json:"capacity"`      // Maximum partials
	Hits          uint64 `json:"hits"`          // Get calls that found a partial
	Misses        uint64 `json:"misses"`        // Get calls that found nothing
	Evictions     uint64 `json:"evictions"`     // Partials dropped for capacity
	Invalidations uint64 `json:"invalidations"` // Partials dropped by Invalidate/InvalidateAll
}

// HitRate returns the ratio of hits to lookups (0.0 to 1.0).
func (s StoreStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// envelopeRect converts a tile envelope to an R-tree rectangle.
// Tile envelopes always have positive size.
func envelopeRect(e Envelope) rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{e.MinX, e.MinY},
		[]float64{e.Width(), e.Height()},
	)
	return rect
}

// searchRect returns a query rectangle slightly larger than region so that
// degenerate regions and shared edges are found; callers filter exactly.
func searchRect(region Envelope) (rtreego.Rect, error) {
	scale := math.Max(math.Max(math.Abs(region.MinX), math.Abs(region.MaxX)),
		math.Max(math.Abs(region.MinY), math.Abs(region.MaxY)))
	margin := 1e-9 * (1 + scale)
	padded := region.Expand(margin)
	return rtreego.NewRect(
		rtreego.Point{padded.MinX, padded.MinY},
		[]float64{padded.Width(), padded.Height()},
	)
}
