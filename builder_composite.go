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

// buildSample is the static bookkeeping for one CompositeBuilder.StaticBuild
// call: the genesis environment it was built against, the parent treatment
// it is nested under (for upward give-next calls), its instantiated
// models, the child build-id of every sub-treatment, and the derived
// adjacency tables.
type buildSample struct {
	genesis     *GenesisEnvironment
	parent      *Descriptor
	parentBuild BuildID
	label       string

	design      *Design
	models      map[string]ExecutiveModel
	subBuilds   map[string]BuildID
	subBuilders map[string]Builder
	adjacency   *adjacency

	// trackEnv remembers the contextual environment this sample's own
	// DynamicBuild was called with, per track: GiveNext needs to resolve
	// sibling sub-treatments against this sample's own scope, not the
	// deeper, already-remapped scope its caller (one of those siblings)
	// is itself running under.
	trackEnvMu sync.Mutex
	trackEnv   map[TrackID]*ContextualEnvironment
}

// CompositeBuilder materializes a descriptor whose implementation is a
// nested Design rather than native code. This is the component that
// translates a composite's design into per-track subgraphs while
// preserving the invariant that every input port in every track is fed by
// exactly the outputs connected to it.
type CompositeBuilder struct {
	Descriptor *Descriptor

	mu        sync.Mutex
	nextBuild BuildID
	samples   map[BuildID]*buildSample

	memoMu sync.Mutex
	memo   map[trackKey]DynamicBuildResult
}

// StaticBuild instantiates every model and sub-treatment declared in the
// composite's design, against the genesis environment, and returns a fresh
// BuildID the composite instance is remembered against.
func (b *CompositeBuilder) StaticBuild(parent *Descriptor, parentBuild BuildID, label string, env *GenesisEnvironment) (StaticBuildResult, error) {
	design := b.Descriptor.Design
	sample := &buildSample{
		genesis:     env,
		parent:      parent,
		parentBuild: parentBuild,
		label:       label,
		design:      design,
		models:      make(map[string]ExecutiveModel),
		subBuilds:   make(map[string]BuildID),
		subBuilders: make(map[string]Builder),
	}

	for _, mi := range design.Instantiated {
		childEnv, err := childGenesisVariables(env, mi.Parameters)
		if err != nil {
			return StaticBuildResult{}, err
		}
		if mi.Descriptor.Builder == nil {
			return StaticBuildResult{}, fmt.Errorf("melodium: model %s has no builder", mi.Descriptor.Identifier)
		}
		res, err := mi.Descriptor.Builder.StaticBuild(b.Descriptor, 0, mi.Name, childEnv)
		if err != nil {
			return StaticBuildResult{}, err
		}
		sample.models[mi.Name] = res.Model
	}

	b.mu.Lock()
	if b.samples == nil {
		b.samples = make(map[BuildID]*buildSample)
	}
	b.nextBuild++
	thisBuild := b.nextBuild
	b.mu.Unlock()

	for _, ti := range design.Treatments {
		childEnv, err := childGenesisForTreatment(env, sample, ti)
		if err != nil {
			return StaticBuildResult{}, err
		}
		if ti.Descriptor.Builder == nil {
			return StaticBuildResult{}, fmt.Errorf("melodium: treatment %s has no builder", ti.Descriptor.Identifier)
		}
		res, err := ti.Descriptor.Builder.StaticBuild(b.Descriptor, thisBuild, ti.Name, childEnv)
		if err != nil {
			return StaticBuildResult{}, err
		}
		sample.subBuilds[ti.Name] = res.BuildID
		sample.subBuilders[ti.Name] = ti.Descriptor.Builder
	}

	sample.adjacency = buildAdjacency(design)

	b.mu.Lock()
	b.samples[thisBuild] = sample
	b.mu.Unlock()

	return StaticBuildResult{BuildID: thisBuild}, nil
}

// childGenesisVariables evaluates params as constants against parent and
// returns a genesis environment carrying only those resolved variables
// (models propagate unchanged via Base).
func childGenesisVariables(parent *GenesisEnvironment, params map[string]ValueExpression) (*GenesisEnvironment, error) {
	cp := parent.Base()
	cp.Variables = make(map[string]Value, len(params))
	for name, expr := range params {
		v, err := expr.Eval(combinedEnv{gen: parent})
		if err != nil {
			return nil, err
		}
		cp.Variables[name] = v
	}
	return cp, nil
}

// childGenesisForTreatment builds the genesis environment a sub-treatment's
// StaticBuild is evaluated against: models remapped by name (from the
// composite's own instantiations, falling back to the parent's own bound
// models), and constant parameters evaluated against the parent env.
func childGenesisForTreatment(parent *GenesisEnvironment, sample *buildSample, ti TreatmentInstance) (*GenesisEnvironment, error) {
	cp, err := childGenesisVariables(parent, ti.Parameters)
	if err != nil {
		return nil, err
	}
	cp.Models = make(map[string]ExecutiveModel, len(ti.Models))
	for localName, outerName := range ti.Models {
		if m, ok := sample.models[outerName]; ok {
			cp.Models[localName] = m
			continue
		}
		if m, ok := parent.Models[outerName]; ok {
			cp.Models[localName] = m
		}
	}
	return cp, nil
}

// childContextualFor builds the contextual environment a sub-treatment's
// DynamicBuild/GiveNext is evaluated against for one track: models
// remapped as at static time, and var parameters evaluated against the
// parent's contextual environment (and the recorded genesis environment,
// for any portion of the expression that only resolves there).
func childContextualFor(parent *ContextualEnvironment, sample *buildSample, subName string) (*ContextualEnvironment, error) {
	ti, ok := sample.design.Treatment(subName)
	if !ok {
		return nil, fmt.Errorf("melodium: unknown sub-treatment %q", subName)
	}

	cp := parent.Base()
	cp.Models = make(map[string]ExecutiveModel, len(ti.Models))
	for localName, outerName := range ti.Models {
		if m, ok := sample.models[outerName]; ok {
			cp.Models[localName] = m
			continue
		}
		if m, ok := parent.Models[outerName]; ok {
			cp.Models[localName] = m
		}
	}

	cp.Variables = make(map[string]Value, len(ti.Parameters))
	for name, expr := range ti.Parameters {
		v, err := expr.Eval(combinedEnv{ctx: parent, gen: sample.genesis})
		if err != nil {
			return nil, err
		}
		cp.Variables[name] = v
	}
	return cp, nil
}

// DynamicBuild materializes this composite's subgraph for one track,
// memoized per (build, track) so a repeated call returns the cached
// FeedingInputs without re-running Futures.
func (b *CompositeBuilder) DynamicBuild(build BuildID, track TrackID, env *ContextualEnvironment) (DynamicBuildResult, error) {
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
	sample, ok := b.samples[build]
	b.mu.Unlock()
	if !ok {
		return DynamicBuildResult{}, fmt.Errorf("melodium: unknown build id %d for %s", build, b.Descriptor.Identifier)
	}

	sample.trackEnvMu.Lock()
	if sample.trackEnv == nil {
		sample.trackEnv = make(map[TrackID]*ContextualEnvironment)
	}
	sample.trackEnv[track] = env
	sample.trackEnvMu.Unlock()

	feeding := make(map[string][]*Output)
	var futures []Task

	rootNames := make(map[string]bool)
	for _, c := range sample.adjacency.root {
		rootNames[c.To.Treatment] = true
	}
	for name := range rootNames {
		childEnv, err := childContextualFor(env, sample, name)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		subBuild := sample.subBuilds[name]
		res, err := sample.subBuilders[name].DynamicBuild(subBuild, track, childEnv)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		futures = append(futures, res.Futures...)

		for _, c := range sample.adjacency.root {
			if c.To.Treatment != name {
				continue
			}
			feeding[c.From.Port] = append(feeding[c.From.Port], res.FeedingInputs[c.To.Port]...)
		}
	}

	if len(sample.adjacency.direct) > 0 {
		if sample.parent == nil || sample.parent.Builder == nil {
			return DynamicBuildResult{}, fmt.Errorf("melodium: %s has Self pass-through but no parent", b.Descriptor.Identifier)
		}
		parentRes, err := sample.parent.Builder.GiveNext(sample.parentBuild, sample.label, env)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		for _, c := range sample.adjacency.direct {
			feeding[c.From.Port] = append(feeding[c.From.Port], parentRes.FeedingInputs[c.To.Port]...)
		}
		futures = append(futures, parentRes.Futures...)
	}

	result := DynamicBuildResult{FeedingInputs: feeding, Futures: futures}

	b.memoMu.Lock()
	b.memo[key] = DynamicBuildResult{FeedingInputs: feeding}
	b.memoMu.Unlock()

	return result, nil
}

// GiveNext resolves who consumes forLabel's outputs within this
// composite's build: downstream sub-treatments via the next map, and/or
// (for outputs that reach Self.Out) the parent composite's own GiveNext.
func (b *CompositeBuilder) GiveNext(build BuildID, forLabel string, env *ContextualEnvironment) (DynamicBuildResult, error) {
	b.mu.Lock()
	sample, ok := b.samples[build]
	b.mu.Unlock()
	if !ok {
		return DynamicBuildResult{}, fmt.Errorf("melodium: unknown build id %d for %s", build, b.Descriptor.Identifier)
	}

	feeding := make(map[string][]*Output)
	var futures []Task

	// Siblings of forLabel live in this sample's own scope, not the
	// caller's: the caller is whichever sub-treatment just finished its own
	// DynamicBuild, possibly several Models/Variables remaps deeper than
	// this composite. Resolve against the environment this sample's own
	// DynamicBuild was invoked with, falling back to env defensively if
	// DynamicBuild was somehow never called for this track.
	sample.trackEnvMu.Lock()
	scopeEnv, ok := sample.trackEnv[env.TrackID]
	sample.trackEnvMu.Unlock()
	if !ok {
		scopeEnv = env
	}

	nextNames := make(map[string]bool)
	for _, c := range sample.adjacency.next[forLabel] {
		nextNames[c.To.Treatment] = true
	}
	for name := range nextNames {
		childEnv, err := childContextualFor(scopeEnv, sample, name)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		res, err := sample.subBuilders[name].DynamicBuild(sample.subBuilds[name], env.TrackID, childEnv)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		futures = append(futures, res.Futures...)

		for _, c := range sample.adjacency.next[forLabel] {
			if c.To.Treatment != name {
				continue
			}
			feeding[c.From.Port] = append(feeding[c.From.Port], res.FeedingInputs[c.To.Port]...)
		}
	}

	var lastForLabel []Connection
	for _, c := range sample.adjacency.last {
		if c.From.Treatment == forLabel {
			lastForLabel = append(lastForLabel, c)
		}
	}
	if len(lastForLabel) > 0 {
		if sample.parent == nil || sample.parent.Builder == nil {
			return DynamicBuildResult{}, fmt.Errorf("melodium: %s has Self.Out passthrough but no parent", b.Descriptor.Identifier)
		}
		parentRes, err := sample.parent.Builder.GiveNext(sample.parentBuild, sample.label, env)
		if err != nil {
			return DynamicBuildResult{}, err
		}
		for _, c := range lastForLabel {
			feeding[c.From.Port] = append(feeding[c.From.Port], parentRes.FeedingInputs[c.To.Port]...)
		}
		futures = append(futures, parentRes.Futures...)
	}

	return DynamicBuildResult{FeedingInputs: feeding, Futures: futures}, nil
}

// CheckDynamicBuild runs the static feasibility pass over this composite's
// design.
func (b *CompositeBuilder) CheckDynamicBuild(build BuildID, check *CheckEnvironment, previous []CheckStep) ([]*CheckBuild, error) {
	return checkComposite(b.Descriptor, build, check, previous)
}
