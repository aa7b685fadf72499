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

// SourceCoordinator is embeddable by a concrete ExecutiveModel to implement
// InvokeSource uniformly: open a track against the owning World, hand the
// resulting per-output senders to the caller's callback, and spawn the
// futures the callback itself contributes.
type SourceCoordinator struct {
	World *World
	ID    ModelID
}

// Fire opens a new track for source, feeding contexts, and invokes fn with
// the output senders the track's dynamic build produced. It spawns every
// future fn returns alongside the ones produced by the build itself.
func (s *SourceCoordinator) Fire(ctx context.Context, source string, contexts map[string]Context, fn SourceCallback) error {
	outputs, err := s.World.NewTrack(ctx, s.ID, source, contexts)
	if err != nil {
		return err
	}

	futures, err := fn(outputs)
	if err != nil {
		return err
	}
	for _, t := range futures {
		s.World.AddContinuousTask(t)
	}
	return nil
}
