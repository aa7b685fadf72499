package melodium

/*
   Copyright 2018 Bruno Moura <brunotm@gmail.com>

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// TrackID is a monotonic, World-lifetime-unique track identifier; tracks
// are never recycled.
type TrackID uint64

func (t TrackID) String() string { return strconv.FormatUint(uint64(t), 10) }

// TrackEntry is one model's bookkeeping for a single open track: its
// per-output-port bounded side channels and the Context snapshots a source
// attached when it opened this track. Side channels are created lazily, one
// per output port actually published to, rather than eagerly for every
// possible port.
type TrackEntry struct {
	ID       TrackID
	Model    ModelID
	Contexts map[string]Context

	sidesMu sync.Mutex
	sides   map[string]*BoundedChannel
}

// Side returns the bounded side channel for the given output port,
// allocating it on first use.
func (e *TrackEntry) Side(port string) *BoundedChannel {
	e.sidesMu.Lock()
	defer e.sidesMu.Unlock()
	if e.sides == nil {
		e.sides = make(map[string]*BoundedChannel)
	}
	side, ok := e.sides[port]
	if !ok {
		side = NewBoundedChannel()
		e.sides[port] = side
	}
	return side
}

// closeSides closes every side channel this track ever allocated.
func (e *TrackEntry) closeSides() {
	e.sidesMu.Lock()
	sides := e.sides
	e.sidesMu.Unlock()
	for _, s := range sides {
		s.Close()
	}
}

// TrackRegistry allocates track ids and records active tracks per model. A
// model's tracks live under their own sub-map keyed by model id; one mutex
// guards every model's sub-map, so registry operations on different models
// serialize on it.
type TrackRegistry struct {
	counter uint64

	mu     sync.Mutex
	tracks map[ModelID]map[TrackID]*TrackEntry

	limitersMu sync.Mutex
	limiters   map[ModelID]*rate.Limiter
}

// NewTrackRegistry constructs an empty registry.
func NewTrackRegistry() *TrackRegistry {
	return &TrackRegistry{
		tracks:   make(map[ModelID]map[TrackID]*TrackEntry),
		limiters: make(map[ModelID]*rate.Limiter),
	}
}

// evictionAllowed reports whether model's eviction rate budget currently
// permits evicting another of its slow-consumer tracks, so a pathologic
// producer flooding many non-reading tracks under one model does not itself
// become a hot loop. Each model gets its own budget: one noisy model's
// churn never throttles another's.
func (r *TrackRegistry) evictionAllowed(model ModelID) bool {
	r.limitersMu.Lock()
	lim, ok := r.limiters[model]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(50), 50)
		r.limiters[model] = lim
	}
	r.limitersMu.Unlock()
	return lim.Allow()
}

// Open allocates a fresh track id for model, stores the entry, and returns
// it. Side channels are allocated lazily via TrackEntry.Side.
func (r *TrackRegistry) Open(model ModelID, contexts map[string]Context) *TrackEntry {
	id := TrackID(atomic.AddUint64(&r.counter, 1))
	entry := &TrackEntry{ID: id, Model: model, Contexts: contexts}

	r.mu.Lock()
	m, ok := r.tracks[model]
	if !ok {
		m = make(map[TrackID]*TrackEntry)
		r.tracks[model] = m
	}
	m[id] = entry
	r.mu.Unlock()

	return entry
}

// Lookup returns the entry for (model, track), if still registered.
func (r *TrackRegistry) Lookup(model ModelID, track TrackID) (*TrackEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.tracks[model]
	if !ok {
		return nil, false
	}
	e, ok := m[track]
	return e, ok
}

// Evict drops the entry for (model, track); its side channel is closed,
// and the broadcast to every other track continues unaffected.
func (r *TrackRegistry) Evict(model ModelID, track TrackID) {
	r.mu.Lock()
	m, ok := r.tracks[model]
	var entry *TrackEntry
	if ok {
		entry = m[track]
		delete(m, track)
	}
	r.mu.Unlock()

	if entry != nil {
		entry.closeSides()
	}
}

// Active returns the set of track ids currently registered for model, used
// by /tracks introspection.
func (r *TrackRegistry) Active(model ModelID) []TrackID {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.tracks[model]
	ids := make([]TrackID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
