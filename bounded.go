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
	"sync/atomic"
)

// BoundedCapacity is the reference-design capacity for a per-track side
// channel.
const BoundedCapacity = 500

// BoundedChannel is the per-track side channel used by the track registry:
// a fixed-capacity buffer plus a "reading-mark" that distinguishes an
// actively-consuming receiver (worth awaiting space for) from one that has
// never read (worth evicting instead, so a broadcast never stalls on a
// track nobody drains). Per the documented open-question decision, the
// mark is never unset once set.
type BoundedChannel struct {
	ch      chan Value
	reading int32
	closed  int32
}

// NewBoundedChannel allocates a side channel at BoundedCapacity.
func NewBoundedChannel() *BoundedChannel {
	return &BoundedChannel{ch: make(chan Value, BoundedCapacity)}
}

// MarkReading records that a consumer has called Recv at least once.
func (b *BoundedChannel) MarkReading() {
	atomic.StoreInt32(&b.reading, 1)
}

// IsReading reports whether a consumer has ever read from this channel.
func (b *BoundedChannel) IsReading() bool {
	return atomic.LoadInt32(&b.reading) == 1
}

// TrySend attempts a non-blocking send. ok is true once v is buffered.
// closed is true once this channel has been closed (evicted); the caller
// must not retry. Otherwise (ok=false, closed=false) the buffer is simply
// full and the caller decides, from IsReading, whether to await space or
// evict the track.
func (b *BoundedChannel) TrySend(v Value) (ok bool, closed bool) {
	if atomic.LoadInt32(&b.closed) == 1 {
		return false, true
	}
	select {
	case b.ch <- v:
		return true, false
	default:
	}
	return false, false
}

// SendBlocking awaits space (or closure) on the channel, for the
// await-rather-than-evict branch of TrySend's protocol. ok is false once
// the channel closes out from under a concurrent send.
func (b *BoundedChannel) SendBlocking(v Value) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	b.ch <- v
	return true
}

// Recv reads the next value, marking the channel as reading on first call.
func (b *BoundedChannel) Recv() (Value, bool) {
	b.MarkReading()
	v, ok := <-b.ch
	return v, ok
}

// Close closes the side channel; safe to call more than once.
func (b *BoundedChannel) Close() {
	if atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		close(b.ch)
	}
}
