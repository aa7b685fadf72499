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
	"fmt"
	"sync"
)

// NewModelFunc constructs a fresh executive model instance bound to world.
type NewModelFunc func(world *World) ExecutiveModel

// NewTreatmentFunc constructs a fresh executive treatment instance bound to
// world.
type NewTreatmentFunc func(world *World) ExecutiveTreatment

// LeafModelBuilder wraps a plain model constructor function as a build
// site, for models implemented natively rather than as a nested design.
type LeafModelBuilder struct {
	Descriptor *Descriptor
	NewModel   NewModelFunc
}

// StaticBuild constructs the model, applies every genesis-resolvable
// parameter, registers it with the World to obtain an id, and returns the
// handle.
func (b *LeafModelBuilder) StaticBuild(_ *Descriptor, _ BuildID, _ string, env *GenesisEnvironment) (StaticBuildResult, error) {
	model := b.NewModel(env.World)
	for _, p := range b.Descriptor.Parameters {
		v, err := resolveParameter(p, combinedEnv{gen: env})
		if err != nil {
			return StaticBuildResult{}, err
		}
		if err := model.SetParameter(p.Name, v); err != nil {
			return StaticBuildResult{}, err
		}
	}
	id := env.World.registerModel(model)
	model.SetID(id)
	return StaticBuildResult{Model: model}, nil
}

// DynamicBuild is a no-op for a model: models are built once, at genesis,
// and never re-materialized per track.
func (b *LeafModelBuilder) DynamicBuild(BuildID, TrackID, *ContextualEnvironment) (DynamicBuildResult, error) {
	return DynamicBuildResult{}, nil
}

// GiveNext has no meaning for a model builder.
func (b *LeafModelBuilder) GiveNext(BuildID, string, *ContextualEnvironment) (DynamicBuildResult, error) {
	return DynamicBuildResult{}, nil
}

// CheckDynamicBuild is a no-op: a leaf model carries no nested design to check.
func (b *LeafModelBuilder) CheckDynamicBuild(BuildID, *CheckEnvironment, []CheckStep) ([]*CheckBuild, error) {
	return nil, nil
}

// leafInstance is the per-build-id retained state a LeafTreatmentBuilder
// keeps between its static and dynamic phases: the treatment handle plus
// enough of its static-build call to ask its owning composite, later, who
// consumes this instance's own declared outputs.
type leafInstance struct {
	treatment   ExecutiveTreatment
	parent      *Descriptor
	parentBuild BuildID
	label       string
}

// LeafTreatmentBuilder wraps a plain treatment constructor function as a
// build site, for treatments implemented natively.
type LeafTreatmentBuilder struct {
	Descriptor   *Descriptor
	NewTreatment NewTreatmentFunc

	mu        sync.Mutex
	nextBuild BuildID
	instances map[BuildID]*leafInstance

	memoMu sync.Mutex
	memo   map[trackKey]DynamicBuildResult
}

type trackKey struct {
	build BuildID
	track TrackID
}

// StaticBuild constructs the treatment, applies const parameters, binds
// models named in env, and returns a fresh BuildID the instance is
// remembered against.
func (b *LeafTreatmentBuilder) StaticBuild(parent *Descriptor, parentBuild BuildID, label string, env *GenesisEnvironment) (StaticBuildResult, error) {
	b.mu.Lock()
	if b.instances == nil {
		b.instances = make(map[BuildID]*leafInstance)
	}
	b.nextBuild++
	id := b.nextBuild
	b.mu.Unlock()

	t := b.NewTreatment(env.World)
	for _, p := range b.Descriptor.Parameters {
		if p.Variability != 0 { // Const == 0
			continue
		}
		v, err := resolveParameter(p, combinedEnv{gen: env})
		if err != nil {
			return StaticBuildResult{}, err
		}
		if err := t.SetParameter(p.Name, v); err != nil {
			return StaticBuildResult{}, err
		}
	}
	for name, model := range env.Models {
		if err := t.SetModel(name, model); err != nil {
			return StaticBuildResult{}, err
		}
	}

	b.mu.Lock()
	b.instances[id] = &leafInstance{treatment: t, parent: parent, parentBuild: parentBuild, label: label}
	b.mu.Unlock()

	return StaticBuildResult{BuildID: id}, nil
}

// DynamicBuild applies var parameters from env to the retained instance,
// assigns each declared input a fresh Input (fed by a new Output returned
// in FeedingInputs) and each declared output a sender obtained from the
// parent's GiveNext, calls Prepare to obtain task futures, and memoizes the
// result by (build, track).
func (b *LeafTreatmentBuilder) DynamicBuild(build BuildID, track TrackID, env *ContextualEnvironment) (DynamicBuildResult, error) {
	key := trackKey{build, track}

	b.memoMu.Lock()
	if b.memo == nil {
		b.memo = make(map[trackKey]DynamicBuildResult)
	}
	if cached, ok := b.memo[key]; ok {
		b.memoMu.Unlock()
		return DynamicBuildResult{FeedingInputs: cached.FeedingInputs}, nil
	}
	b.memoMu.Unlock()

	b.mu.Lock()
	inst, ok := b.instances[build]
	b.mu.Unlock()
	if !ok {
		return DynamicBuildResult{}, fmt.Errorf("melodium: unknown build id %d for %s", build, b.Descriptor.Identifier)
	}

	for _, p := range b.Descriptor.Parameters {
		if p.Variability == 0 { // Const already applied statically
			continue
		}
		v, err := resolveParameter(p, combinedEnv{ctx: env})
		if err != nil {
			return DynamicBuildResult{}, err
		}
		if err := inst.treatment.SetParameter(p.Name, v); err != nil {
			return DynamicBuildResult{}, err
		}
	}

	feeding := make(map[string][]*Output, len(b.Descriptor.Inputs))
	for _, in := range b.Descriptor.Inputs {
		out := NewOutput()
		input := NewInput(BoundedCapacity)
		out.Link(input)
		if err := inst.treatment.AssignInput(in.Name, input); err != nil {
			return DynamicBuildResult{}, err
		}
		feeding[in.Name] = []*Output{out}
	}

	var futures []Task
	if len(b.Descriptor.Outputs) > 0 {
		if inst.parent == nil || inst.parent.Builder == nil {
			return DynamicBuildResult{}, fmt.Errorf("melodium: %s declares outputs but has no parent to resolve them", b.Descriptor.Identifier)
		}
		nextRes, err := inst.parent.Builder.GiveNext(inst.parentBuild, inst.label, env)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		for _, out := range b.Descriptor.Outputs {
			combined := NewOutput()
			for _, s := range nextRes.FeedingInputs[out.Name] {
				combined.LinkOutput(s)
			}
			if err := inst.treatment.AssignOutput(out.Name, combined); err != nil {
				return DynamicBuildResult{}, err
			}
		}
		futures = append(futures, nextRes.Futures...)
	}

	prepared, err := inst.treatment.Prepare(track)
	if err != nil {
		return DynamicBuildResult{}, err
	}
	futures = append(futures, prepared...)

	result := DynamicBuildResult{FeedingInputs: feeding, Futures: futures}

	b.memoMu.Lock()
	b.memo[key] = DynamicBuildResult{FeedingInputs: feeding}
	b.memoMu.Unlock()

	return result, nil
}

// GiveNext has no meaning for a leaf: leaves have no nested structure.
func (b *LeafTreatmentBuilder) GiveNext(BuildID, string, *ContextualEnvironment) (DynamicBuildResult, error) {
	return DynamicBuildResult{}, nil
}

// CheckDynamicBuild is a no-op: a leaf treatment carries no nested design.
func (b *LeafTreatmentBuilder) CheckDynamicBuild(BuildID, *CheckEnvironment, []CheckStep) ([]*CheckBuild, error) {
	return nil, nil
}

// resolveParameter evaluates p's bound expression (or its default) against env.
func resolveParameter(p Parameter, env evalEnv) (Value, error) {
	v, ok := env.resolveVariable(p.Name)
	if ok {
		return v, nil
	}
	if p.Default != nil {
		return *p.Default, nil
	}
	return Value{}, fmt.Errorf("melodium: unset required parameter %q", p.Name)
}
