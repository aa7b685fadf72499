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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brunotm/melodium/mock"
)

func leafTreatmentDescriptor(name string, inputs, outputs []Port) (d *Descriptor, treat **mock.Treatment) {
	var t *mock.Treatment
	d = &Descriptor{
		Identifier: NewIdentifier("test", nil, name, "1.0.0"),
		Inputs:     inputs,
		Outputs:    outputs,
	}
	d.Builder = &LeafTreatmentBuilder{
		Descriptor: d,
		NewTreatment: func(*World) ExecutiveTreatment {
			t = mock.NewTreatment(d)
			return t
		},
	}
	return d, &t
}

// TestCompositeBuilderDynamicBuildMemoizesPerTrack verifies a second
// DynamicBuild call for the same (build, track) returns the cached
// FeedingInputs without re-invoking Prepare on the sub-treatment.
func TestCompositeBuilderDynamicBuildMemoizesPerTrack(t *testing.T) {
	leaf, treat := leafTreatmentDescriptor("Leaf", []Port{{Name: "in"}}, nil)

	prepareCalls := 0
	origNewTreatment := leaf.Builder.(*LeafTreatmentBuilder).NewTreatment
	leaf.Builder.(*LeafTreatmentBuilder).NewTreatment = func(w *World) ExecutiveTreatment {
		tr := origNewTreatment(w)
		mt := tr.(*mock.Treatment)
		mt.PrepareFn = func(TrackID) ([]Task, error) {
			prepareCalls++
			return nil, nil
		}
		*treat = mt
		return mt
	}

	composite := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Wrap", "1.0.0"),
		Inputs:     []Port{{Name: "in"}},
		Design: &Design{
			Treatments: []TreatmentInstance{{Name: "leaf", Descriptor: leaf}},
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("leaf", "in")},
			},
		},
	}
	builder := &CompositeBuilder{Descriptor: composite}
	composite.Builder = builder

	world := NewWorld(NewInlineExecutor())
	genEnv := NewGenesisEnvironment(world)
	res, err := builder.StaticBuild(nil, 0, "root", genEnv)
	assert.NoError(t, err)

	ctxEnv := NewContextualEnvironment(world, TrackID(1))
	first, err := builder.DynamicBuild(res.BuildID, TrackID(1), ctxEnv)
	assert.NoError(t, err)
	assert.Equal(t, 1, prepareCalls)

	second, err := builder.DynamicBuild(res.BuildID, TrackID(1), ctxEnv)
	assert.NoError(t, err)
	assert.Equal(t, 1, prepareCalls, "memoized call must not re-invoke Prepare")
	assert.Equal(t, first.FeedingInputs, second.FeedingInputs)

	third, err := builder.DynamicBuild(res.BuildID, TrackID(2), ctxEnv)
	assert.NoError(t, err)
	assert.Equal(t, 2, prepareCalls, "a distinct track must build fresh")
	assert.NotNil(t, third.FeedingInputs)
}

// TestCompositeBuilderSelfPassthrough exercises S5: a composite whose design
// connects Self.In directly to Self.Out (no sub-treatment in between) must
// resolve the passthrough via an upward GiveNext call to its parent.
func TestCompositeBuilderSelfPassthrough(t *testing.T) {
	sink, sinkTreat := leafTreatmentDescriptor("Sink", []Port{{Name: "in"}}, nil)

	passthrough := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Passthrough", "1.0.0"),
		Inputs:     []Port{{Name: "in"}},
		Outputs:    []Port{{Name: "out"}},
		Design: &Design{
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: SelfEndpoint("out")},
			},
		},
	}
	passBuilder := &CompositeBuilder{Descriptor: passthrough}
	passthrough.Builder = passBuilder

	outer := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Outer", "1.0.0"),
		Inputs:     []Port{{Name: "in"}},
		Design: &Design{
			Treatments: []TreatmentInstance{
				{Name: "pass", Descriptor: passthrough},
				{Name: "sink", Descriptor: sink},
			},
			Connections: []Connection{
				{From: SelfEndpoint("in"), To: TreatmentEndpoint("pass", "in")},
				{From: TreatmentEndpoint("pass", "out"), To: TreatmentEndpoint("sink", "in")},
			},
		},
	}
	outerBuilder := &CompositeBuilder{Descriptor: outer}
	outer.Builder = outerBuilder

	world := NewWorld(NewInlineExecutor())
	genEnv := NewGenesisEnvironment(world)
	res, err := outerBuilder.StaticBuild(nil, 0, "root", genEnv)
	assert.NoError(t, err)

	ctxEnv := NewContextualEnvironment(world, TrackID(1))
	dynRes, err := outerBuilder.DynamicBuild(res.BuildID, TrackID(1), ctxEnv)
	assert.NoError(t, err)

	senders, ok := dynRes.FeedingInputs["in"]
	assert.True(t, ok)
	assert.Len(t, senders, 1)

	assert.NoError(t, senders[0].SendOne(I32(7)))

	in := (*sinkTreat).Inputs["in"]
	v, err := in.RecvOne()
	assert.NoError(t, err)
	assert.Equal(t, int32(7), v.I32Value())
}

// TestCompositeBuilderStaticBuildUsesModelInstantiation verifies a model
// instantiation declared in a composite's design is statically built and
// registered with the owning World exactly once.
func TestCompositeBuilderStaticBuildUsesModelInstantiation(t *testing.T) {
	modelDesc := &Descriptor{Identifier: NewIdentifier("test", nil, "M", "1.0.0")}
	built := 0
	modelDesc.Builder = &LeafModelBuilder{
		Descriptor: modelDesc,
		NewModel: func(w *World) ExecutiveModel {
			built++
			return mockModel{desc: modelDesc}
		},
	}

	composite := &Descriptor{
		Identifier: NewIdentifier("test", nil, "WithModel", "1.0.0"),
		Design: &Design{
			Instantiated: []ModelInstantiation{{Name: "m", Descriptor: modelDesc}},
		},
	}
	composite.Builder = &CompositeBuilder{Descriptor: composite}

	world := NewWorld(NewInlineExecutor())
	err := world.Genesis(context.Background(), composite, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, built)
	assert.Len(t, world.Models(), 1)
}

// mockModel is a minimal ExecutiveModel satisfying the interface for
// static-build-only tests that never fire a source.
type mockModel struct{ desc *Descriptor }

func (m mockModel) Descriptor() *Descriptor              { return m.desc }
func (m mockModel) ID() ModelID                          { return 0 }
func (m mockModel) SetID(ModelID)                        {}
func (m mockModel) SetParameter(string, Value) error     { return nil }
func (m mockModel) Initialize(context.Context) error     { return nil }
func (m mockModel) Shutdown(context.Context, bool) error { return nil }
func (m mockModel) InvokeSource(context.Context, string, map[string]Context, SourceCallback) error {
	return nil
}
