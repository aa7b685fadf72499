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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brunotm/melodium/mock"
)

// sourceModel is a minimal ExecutiveModel that fires a single named source
// through the embedded SourceCoordinator, for exercising World.NewTrack
// without pulling in a full compiled model implementation.
type sourceModel struct {
	SourceCoordinator
	desc *Descriptor
}

func (m *sourceModel) Descriptor() *Descriptor              { return m.desc }
func (m *sourceModel) ID() ModelID                          { return m.SourceCoordinator.ID }
func (m *sourceModel) SetID(id ModelID)                     { m.SourceCoordinator.ID = id }
func (m *sourceModel) SetParameter(string, Value) error     { return nil }
func (m *sourceModel) Initialize(context.Context) error     { return nil }
func (m *sourceModel) Shutdown(context.Context, bool) error { return nil }

func (m *sourceModel) InvokeSource(ctx context.Context, source string, contexts map[string]Context, fn SourceCallback) error {
	return m.Fire(ctx, source, contexts, fn)
}

// collector is a test double recording every value observed on an Input
// until it closes, signaling done when drained.
type collector struct {
	mu   sync.Mutex
	vals []Value
	done chan struct{}
}

func newCollector() *collector { return &collector{done: make(chan struct{})} }

func (c *collector) drain(in *Input) Task {
	return func(context.Context) error {
		for {
			v, err := in.RecvOne()
			if err != nil {
				close(c.done)
				return nil
			}
			c.mu.Lock()
			c.vals = append(c.vals, v)
			c.mu.Unlock()
		}
	}
}

func (c *collector) values() []Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Value(nil), c.vals...)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to drain")
	}
}

// sinkTreatment builds a leaf treatment descriptor with a single "in" input
// whose Prepare task drains everything it receives into a fresh collector.
func sinkTreatment(name string) (d *Descriptor, coll **collector) {
	var treat *mock.Treatment
	var c *collector
	d = &Descriptor{
		Identifier: NewIdentifier("test", nil, name, "1.0.0"),
		Inputs:     []Port{{Name: "in"}},
	}
	d.Builder = &LeafTreatmentBuilder{
		Descriptor: d,
		NewTreatment: func(*World) ExecutiveTreatment {
			treat = mock.NewTreatment(d)
			treat.PrepareFn = func(TrackID) ([]Task, error) {
				c = newCollector()
				return []Task{c.drain(treat.Inputs["in"])}, nil
			}
			return treat
		},
	}
	return d, &c
}

// sourceModelDescriptor builds a model descriptor/instance pair exposing a
// single "emit" source that feeds one composite input named port.
func sourceModelDescriptor(port string) (d *Descriptor, model *sourceModel) {
	d = &Descriptor{
		Identifier: NewIdentifier("test", nil, "Src", "1.0.0"),
		Sources:    []SourceDescriptor{{Name: "emit", Outputs: []Port{{Name: port}}}},
	}
	model = &sourceModel{desc: d}
	d.Builder = &LeafModelBuilder{
		Descriptor: d,
		NewModel: func(w *World) ExecutiveModel {
			model.SourceCoordinator.World = w
			return model
		},
	}
	return d, model
}

// TestWorldSingleSourceFeedsSinkTreatment exercises S1: one model fires a
// source, the sole sub-treatment's input receives every value in order,
// then the producer closes and the consumer observes end-of-stream.
func TestWorldSingleSourceFeedsSinkTreatment(t *testing.T) {
	sink, coll := sinkTreatment("Sink")
	modelDesc, model := sourceModelDescriptor("in")

	pipeline := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Pipeline", "1.0.0"),
		Design: &Design{
			Instantiated: []ModelInstantiation{{Name: "src", Descriptor: modelDesc}},
			Treatments:   []TreatmentInstance{{Name: "sink", Descriptor: sink}},
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("sink", "in")},
			},
		},
	}
	pipeline.Builder = &CompositeBuilder{Descriptor: pipeline}

	world := NewWorld(NewPoolExecutor(2))
	ctx := context.Background()

	if err := world.Genesis(ctx, pipeline, nil); err != nil {
		t.Fatalf("genesis failed: %v", err)
	}

	go func() { _ = world.Run(ctx) }()

	err := model.InvokeSource(ctx, "emit", nil, func(outputs map[string]*Output) ([]Task, error) {
		out := outputs["in"]
		for _, n := range []int32{1, 2, 3} {
			if err := out.SendOne(I32(n)); err != nil {
				return nil, err
			}
		}
		out.Close()
		return nil, nil
	})
	if err != nil {
		t.Fatalf("invoke source failed: %v", err)
	}

	waitDone(t, (*coll).done)

	got := (*coll).values()
	assert.Len(t, got, 3)
	for i, want := range []int32{1, 2, 3} {
		assert.Equal(t, want, got[i].I32Value())
	}

	assert.NoError(t, world.Stop(ctx, false))
}

// TestWorldFanOutToTwoSubtreatments exercises S2: a composite design wires a
// single self-input to two sub-treatments, and both observe every value the
// source publishes, in order.
func TestWorldFanOutToTwoSubtreatments(t *testing.T) {
	a, collA := sinkTreatment("A")
	b, collB := sinkTreatment("B")
	modelDesc, model := sourceModelDescriptor("in")

	composite := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Fanout", "1.0.0"),
		Design: &Design{
			Instantiated: []ModelInstantiation{{Name: "src", Descriptor: modelDesc}},
			Treatments: []TreatmentInstance{
				{Name: "a", Descriptor: a},
				{Name: "b", Descriptor: b},
			},
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("a", "in")},
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("b", "in")},
			},
		},
	}
	composite.Builder = &CompositeBuilder{Descriptor: composite}

	world := NewWorld(NewPoolExecutor(2))
	ctx := context.Background()

	if err := world.Genesis(ctx, composite, nil); err != nil {
		t.Fatalf("genesis failed: %v", err)
	}

	go func() { _ = world.Run(ctx) }()

	err := model.InvokeSource(ctx, "emit", nil, func(outputs map[string]*Output) ([]Task, error) {
		out := outputs["in"]
		for _, n := range []uint32{10, 20, 30} {
			if err := out.SendOne(U32(n)); err != nil {
				return nil, err
			}
		}
		out.Close()
		return nil, nil
	})
	if err != nil {
		t.Fatalf("invoke source failed: %v", err)
	}

	waitDone(t, (*collA).done)
	waitDone(t, (*collB).done)

	for _, coll := range []**collector{collA, collB} {
		got := (*coll).values()
		assert.Len(t, got, 3)
		for i, want := range []uint32{10, 20, 30} {
			assert.Equal(t, want, got[i].U32Value())
		}
	}

	assert.NoError(t, world.Stop(ctx, false))
}

// TestWorldTwoTracksShareModelState exercises S4: two independently-fired
// tracks against the same model produce independent collectors, each seeing
// only its own values, while sharing the same registered model instance.
func TestWorldTwoTracksShareModelState(t *testing.T) {
	sink, coll := sinkTreatment("Sink")
	modelDesc, model := sourceModelDescriptor("in")

	pipeline := &Descriptor{
		Identifier: NewIdentifier("test", nil, "SharedPipeline", "1.0.0"),
		Design: &Design{
			Instantiated: []ModelInstantiation{{Name: "src", Descriptor: modelDesc}},
			Treatments:   []TreatmentInstance{{Name: "sink", Descriptor: sink}},
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("sink", "in")},
			},
		},
	}
	pipeline.Builder = &CompositeBuilder{Descriptor: pipeline}

	world := NewWorld(NewPoolExecutor(2))
	ctx := context.Background()

	if err := world.Genesis(ctx, pipeline, nil); err != nil {
		t.Fatalf("genesis failed: %v", err)
	}
	go func() { _ = world.Run(ctx) }()

	fire := func(v int32) {
		err := model.InvokeSource(ctx, "emit", nil, func(outputs map[string]*Output) ([]Task, error) {
			out := outputs["in"]
			if err := out.SendOne(I32(v)); err != nil {
				return nil, err
			}
			out.Close()
			return nil, nil
		})
		if err != nil {
			t.Fatalf("invoke source failed: %v", err)
		}
	}

	fire(1)
	waitDone(t, (*coll).done)
	first := (*coll).values()

	fire(2)
	waitDone(t, (*coll).done)
	second := (*coll).values()

	assert.Len(t, first, 1)
	assert.Equal(t, int32(1), first[0].I32Value())
	assert.Len(t, second, 1)
	assert.Equal(t, int32(2), second[0].I32Value())
	assert.Len(t, world.Models(), 1)

	assert.NoError(t, world.Stop(ctx, false))
}
