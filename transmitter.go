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

import "sync"

// Input is the single-consumer side of a channel edge. A single Input may
// be fed by several Outputs (fan-in); the underlying Go channel closes only
// once every linked Output has called Close.
type Input struct {
	ch        chan Value
	mu        sync.Mutex
	producers int
}

// NewInput constructs an unlinked Input with the given channel capacity (0
// for an unbuffered, synchronous edge).
func NewInput(capacity int) *Input {
	return &Input{ch: make(chan Value, capacity)}
}

// RecvOne yields the next value, or ErrClosed once every producer has
// closed and the buffer has drained.
func (in *Input) RecvOne() (Value, error) {
	v, ok := <-in.ch
	if !ok {
		return Value{}, ErrClosed
	}
	return v, nil
}

// RecvMany drains whatever is immediately available (at least one value),
// or returns ErrClosed. It never blocks waiting for more once the first
// value, or closure, is observed.
func (in *Input) RecvMany() ([]Value, error) {
	v, ok := <-in.ch
	if !ok {
		return nil, ErrClosed
	}
	batch := []Value{v}
	for {
		select {
		case v, ok := <-in.ch:
			if !ok {
				return batch, nil
			}
			batch = append(batch, v)
		default:
			return batch, nil
		}
	}
}

func (in *Input) attach() {
	in.mu.Lock()
	in.producers++
	in.mu.Unlock()
}

func (in *Input) detach() {
	in.mu.Lock()
	in.producers--
	closeNow := in.producers <= 0
	in.mu.Unlock()
	if closeNow {
		close(in.ch)
	}
}

// sink is the common delivery target an Output fans values out to: either
// an Input's channel directly, or another Output (used to compose a single
// logical sender out of several already-linked senders, as returned by a
// dynamic build's feeding-inputs map).
type sink interface {
	send(v Value) bool
	detach()
}

type inputSink struct{ in *Input }

func (s inputSink) send(v Value) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	s.in.ch <- v
	return true
}

func (s inputSink) detach() { s.in.detach() }

type outputSink struct{ out *Output }

func (s outputSink) send(v Value) bool { return s.out.SendOne(v) == nil }
func (s outputSink) detach()           { s.out.Close() }

// boundedSink routes a track's broadcast value through its per-port bounded
// side channel rather than straight onto the downstream fan-out: a track
// that has never read and is backpressure-full gets evicted (subject to its
// model's eviction rate budget) instead of stalling the broadcast forever,
// while an actively-reading track that is merely momentarily full is
// awaited.
type boundedSink struct {
	registry *TrackRegistry
	model    ModelID
	track    TrackID
	side     *BoundedChannel
}

func (s boundedSink) send(v Value) bool {
	if ok, closed := s.side.TrySend(v); ok || closed {
		return ok
	}
	if !s.side.IsReading() && s.registry.evictionAllowed(s.model) {
		s.registry.Evict(s.model, s.track)
		return false
	}
	return s.side.SendBlocking(v)
}

func (s boundedSink) detach() { s.side.Close() }

// Output is a fan-out handle: SendOne/SendMany deliver to every sink linked
// via Link/LinkOutput. An unlinked Output reports ErrNoReceiver; once every
// linked sink has detached itself it reports ErrClosed. Specialized
// per-primitive helpers (SendI32, ...) are fast-path convenience wrappers
// with semantics identical to SendOne(Value).
type Output struct {
	mu     sync.Mutex
	sinks  []sink
	closed bool
}

// NewOutput constructs an unlinked Output.
func NewOutput() *Output { return &Output{} }

// Link attaches in as a receiver of this Output's values. Link must be
// called before the first SendOne/SendMany/Close, during build wiring.
func (o *Output) Link(in *Input) {
	o.mu.Lock()
	o.sinks = append(o.sinks, inputSink{in})
	o.mu.Unlock()
	in.attach()
}

// linkSink attaches an arbitrary sink implementation as a delivery target,
// for composing delivery strategies (e.g. boundedSink) an Output does not
// otherwise expose a constructor for.
func (o *Output) linkSink(s sink) {
	o.mu.Lock()
	o.sinks = append(o.sinks, s)
	o.mu.Unlock()
}

// LinkOutput composes another already-linked Output as a delivery target,
// so a single logical sender can fan a value out to several independently
// built senders (e.g. the senders a dynamic build returns per self-input,
// one per downstream leaf).
func (o *Output) LinkOutput(other *Output) {
	o.mu.Lock()
	o.sinks = append(o.sinks, outputSink{other})
	o.mu.Unlock()
}

// SendOne delivers v to every linked sink. Resolves once every receiver
// has either accepted it or is already closed.
func (o *Output) SendOne(v Value) error {
	o.mu.Lock()
	sinks := o.sinks
	closed := o.closed
	o.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if len(sinks) == 0 {
		return ErrNoReceiver
	}

	live := 0
	for _, s := range sinks {
		if s.send(v) {
			live++
		}
	}
	if live == 0 {
		return ErrClosed
	}
	return nil
}

// SendMany delivers an ordered batch to every linked sink, preserving
// per-link ordering; the implementation may amortize synchronization but
// never reorders within one downstream link.
func (o *Output) SendMany(batch []Value) error {
	for _, v := range batch {
		if err := o.SendOne(v); err != nil {
			return err
		}
	}
	return nil
}

// Close drops this Output's write side on every linked sink; once every
// Output feeding an Input has closed, that Input's channel closes and its
// consumer observes ErrClosed after draining whatever was already sent.
func (o *Output) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	sinks := o.sinks
	o.mu.Unlock()

	for _, s := range sinks {
		s.detach()
	}
}
