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

	"github.com/brunotm/melodium/log"
)

// World owns the genesis-registered model table, the task executor, the
// set of long-lived continuous tasks, and the shutdown sequencer. A
// process may host multiple Worlds; there is no global/singleton state.
type World struct {
	logger log.Logger

	executor Executor
	registry *TrackRegistry

	mu          sync.Mutex
	models      []ExecutiveModel
	modelsByID  map[ModelID]ExecutiveModel
	nextModelID uint64

	root        *Descriptor
	rootBuildID BuildID

	shutdownOnce sync.Once
	stopped      chan struct{}
}

// NewWorld constructs a World driven by the given Executor (see
// executor.go; pass nil for the default work-stealing pool).
func NewWorld(executor Executor) *World {
	if executor == nil {
		executor = NewPoolExecutor(0)
	}
	return &World{
		logger:     log.New("component", "world"),
		executor:   executor,
		registry:   NewTrackRegistry(),
		modelsByID: make(map[ModelID]ExecutiveModel),
		stopped:    make(chan struct{}),
	}
}

// registerModel assigns model a fresh id and records it in registration
// order; Shutdown walks this slice in reverse.
func (w *World) registerModel(model ExecutiveModel) ModelID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextModelID++
	id := ModelID(w.nextModelID)
	w.models = append(w.models, model)
	w.modelsByID[id] = model
	return id
}

// Genesis builds root against params: invokes the root descriptor's
// builder in static mode, then initializes every registered model exactly
// once, in registration order.
func (w *World) Genesis(ctx context.Context, root *Descriptor, params map[string]Value) error {
	if root.Builder == nil {
		return &DesignError{Identifier: root.Identifier, Reason: "descriptor has no builder"}
	}

	env := NewGenesisEnvironment(w)
	for k, v := range params {
		env.Variables[k] = v
	}

	res, err := root.Builder.StaticBuild(nil, 0, "root", env)
	if err != nil {
		return err
	}
	w.root = root
	w.rootBuildID = res.BuildID

	check, err := root.Builder.CheckDynamicBuild(res.BuildID, NewCheckEnvironment(sourceContextNames(root)...), nil)
	if err != nil {
		return err
	}
	_ = check

	w.mu.Lock()
	models := append([]ExecutiveModel(nil), w.models...)
	w.mu.Unlock()

	for _, m := range models {
		if err := m.Initialize(ctx); err != nil {
			w.logger.Errorw("model initialize failed", "model", m.Descriptor().Identifier.String(), "error", err)
			return err
		}
	}
	return nil
}

// AddContinuousTask installs a long-lived background task (a logger drain,
// a listener accept loop) onto the executor; it runs until ctx is canceled
// or it returns.
func (w *World) AddContinuousTask(t Task) {
	w.executor.Spawn(t)
}

// NewTrack opens a fresh track against the owning model's root treatment,
// invoking the root's dynamic build with a contextual environment carrying
// contexts and track id, spawning the resulting futures, and returning one
// sender for every input name in the root's FeedingInputs. The source
// argument is not consulted: the returned set is not narrowed to the
// sub-treatments that take this source as input. Each returned sender routes through the track's bounded
// side channel for that port: a background pump forwards delivered values
// onto the real downstream fan-out, while a slow (backpressure-full,
// never-read) track is evicted instead of stalling the send.
func (w *World) NewTrack(ctx context.Context, model ModelID, source string, contexts map[string]Context) (map[string]*Output, error) {
	entry := w.registry.Open(model, contexts)

	env := NewContextualEnvironment(w, entry.ID)
	env.Contexts = contexts

	result, err := w.root.Builder.DynamicBuild(w.rootBuildID, entry.ID, env)
	if err != nil {
		w.registry.Evict(model, entry.ID)
		return nil, err
	}

	for _, t := range result.Futures {
		w.executor.Spawn(t)
	}

	outputs := make(map[string]*Output, len(result.FeedingInputs))
	for name, senders := range result.FeedingInputs {
		downstream := NewOutput()
		for _, s := range senders {
			downstream.LinkOutput(s)
		}

		side := entry.Side(name)
		pub := NewOutput()
		pub.linkSink(boundedSink{registry: w.registry, model: model, track: entry.ID, side: side})
		outputs[name] = pub

		w.executor.Spawn(pumpSideChannel(side, downstream))
	}
	return outputs, nil
}

// pumpSideChannel bridges a track's bounded side channel to its real
// downstream fan-out, closing downstream once the side channel closes
// (either the producer detached normally, or the track was evicted).
func pumpSideChannel(side *BoundedChannel, downstream *Output) Task {
	return func(ctx context.Context) error {
		for {
			v, ok := side.Recv()
			if !ok {
				downstream.Close()
				return nil
			}
			_ = downstream.SendOne(v)
		}
	}
}

// Run drives the executor until Stop is called or ctx is canceled.
func (w *World) Run(ctx context.Context) error {
	return w.executor.Run(ctx)
}

// Stop commands shutdown on every model in reverse registration order,
// passing immediate to each model's Shutdown and to the executor's Stop.
// With immediate=false, models close their outbound senders and tasks
// drain naturally; Stop waits for the executor to quiesce. With
// immediate=true, Stop does not wait for the executor and no drain
// guarantee is made; Stop itself closes no Input or side channel, so
// receivers see end of stream only once their senders are closed.
func (w *World) Stop(ctx context.Context, immediate bool) error {
	var shutdownErr error
	w.shutdownOnce.Do(func() {
		w.mu.Lock()
		models := append([]ExecutiveModel(nil), w.models...)
		w.mu.Unlock()

		for i := len(models) - 1; i >= 0; i-- {
			if err := models[i].Shutdown(ctx, immediate); err != nil {
				w.logger.Warnw("model shutdown error", "model", models[i].Descriptor().Identifier.String(), "error", err)
				shutdownErr = err
			}
		}
		close(w.stopped)
		w.executor.Stop(immediate)
	})
	return shutdownErr
}

// Stopped reports a channel closed once Stop has completed.
func (w *World) Stopped() <-chan struct{} { return w.stopped }

// Registry exposes the track registry for introspection callers.
func (w *World) Registry() *TrackRegistry { return w.registry }

// Models exposes the registered model table for introspection callers.
func (w *World) Models() []ExecutiveModel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ExecutiveModel(nil), w.models...)
}
