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

import "context"

// ModelID identifies one registered executive model within a World,
// assigned in registration order at genesis time.
type ModelID uint64

// ExecutiveModel is the small trait surface every concrete model
// implementation satisfies: a descriptor, identity, parameter application,
// lifecycle hooks, and the ability to invoke one of its own sources.
type ExecutiveModel interface {
	Descriptor() *Descriptor
	ID() ModelID
	SetID(id ModelID)
	SetParameter(name string, v Value) error
	// Initialize runs exactly once, in registration order, after every
	// model in the genesis graph has been constructed and registered.
	Initialize(ctx context.Context) error
	// Shutdown is invoked in reverse registration order; the model is
	// responsible for closing its own outbound senders.
	Shutdown(ctx context.Context, immediate bool) error
	// InvokeSource fires the named source, opening a track via the owning
	// World and handing the resulting output handles to fn.
	InvokeSource(ctx context.Context, source string, contexts map[string]Context, fn SourceCallback) error
}

// SourceCallback receives the per-output senders a fired source should
// publish into, and returns the task futures the source itself contributes
// (e.g. the accept-loop driving those sends).
type SourceCallback func(outputs map[string]*Output) ([]Task, error)

// Task is one cooperatively-scheduled unit of work the executor runs to
// completion or cancellation; see executor.go.
type Task func(ctx context.Context) error

// ExecutiveTreatment is the small trait surface every concrete treatment
// implementation (compiled leaf or composite) satisfies.
type ExecutiveTreatment interface {
	Descriptor() *Descriptor
	SetGeneric(name string, dt DataType) error
	SetParameter(name string, v Value) error
	SetModel(name string, model ExecutiveModel) error
	AssignInput(name string, in *Input) error
	AssignOutput(name string, out *Output) error
	// Prepare returns the task futures this treatment instance contributes
	// for one track; called once per (instance, track).
	Prepare(track TrackID) ([]Task, error)
}

// StaticBuildResult is returned by Builder.StaticBuild: a leaf model builds
// an ExecutiveModel handle directly, while a leaf or composite treatment
// builds a fresh BuildID that later dynamic-build calls are addressed by.
type StaticBuildResult struct {
	Model   ExecutiveModel
	BuildID BuildID
}

// DynamicBuildResult is returned by Builder.DynamicBuild: the senders the
// parent must connect to for feeding this build's inputs on this track,
// and the task futures to spawn.
type DynamicBuildResult struct {
	FeedingInputs map[string][]*Output
	Futures       []Task
}

// BuildID identifies one static-build invocation of a treatment descriptor;
// fresh per instantiation, stable across every dynamic build on any track.
type BuildID uint64

// Builder is the common interface satisfied by both the compiled-leaf
// builder (builder_leaf.go) and the designed-composite builder
// (builder_composite.go).
type Builder interface {
	// StaticBuild instantiates this builder's descriptor once, at genesis
	// or composite-static-build time. parent/parentBuild are the owning
	// composite's descriptor and build id, nil/0 at the root.
	StaticBuild(parent *Descriptor, parentBuild BuildID, label string, env *GenesisEnvironment) (StaticBuildResult, error)

	// DynamicBuild materializes one track's subgraph for a prior static
	// build. Memoized per (BuildID, TrackID): a second call for the same
	// pair returns the first call's FeedingInputs without re-running
	// Futures.
	DynamicBuild(build BuildID, track TrackID, env *ContextualEnvironment) (DynamicBuildResult, error)

	// GiveNext is called by a sub-treatment's dynamic build to resolve the
	// senders downstream of for_label within the parent composite that
	// owns this builder. Leaf builders have no nested structure and
	// return a zero DynamicBuildResult, nil.
	GiveNext(build BuildID, forLabel string, env *ContextualEnvironment) (DynamicBuildResult, error)

	// CheckDynamicBuild runs the static feasibility (Check) pass before any
	// dynamic build for this builder's build id. previous is the chain of
	// (identifier, build id) pairs already entered by the caller, used to
	// detect cyclic composites.
	CheckDynamicBuild(build BuildID, check *CheckEnvironment, previous []CheckStep) ([]*CheckBuild, error)
}
