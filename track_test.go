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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackRegistryOpenAssignsUniqueIDs(t *testing.T) {
	r := NewTrackRegistry()
	a := r.Open(1, nil)
	b := r.Open(1, nil)
	c := r.Open(2, nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestTrackRegistryLookup(t *testing.T) {
	r := NewTrackRegistry()
	entry := r.Open(1, map[string]Context{"x": {Name: "x"}})

	got, ok := r.Lookup(1, entry.ID)
	assert.True(t, ok)
	assert.Same(t, entry, got)

	_, ok = r.Lookup(1, TrackID(999999))
	assert.False(t, ok)
}

func TestTrackRegistryEvictRemovesAndClosesSide(t *testing.T) {
	r := NewTrackRegistry()
	entry := r.Open(1, nil)
	side := entry.Side("out")

	r.Evict(1, entry.ID)

	_, ok := r.Lookup(1, entry.ID)
	assert.False(t, ok)

	// side channel closed: any further send must report closed, not ok.
	sendOK, closed := side.TrySend(I32(1))
	assert.False(t, sendOK)
	assert.True(t, closed)
}

func TestTrackRegistryActive(t *testing.T) {
	r := NewTrackRegistry()
	a := r.Open(1, nil)
	b := r.Open(1, nil)
	r.Open(2, nil)

	active := r.Active(1)
	assert.ElementsMatch(t, []TrackID{a.ID, b.ID}, active)
	assert.Empty(t, r.Active(3))
}
