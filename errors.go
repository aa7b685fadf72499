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

import "fmt"

// Exit codes for the host process, per the CLI contract.
const (
	ExitSuccess           = 0
	ExitDesignError       = 1
	ExitRuntimeError      = 2
	ExitImmediateShutdown = 3
)

// DesignError reports an identifier that failed to resolve, a type
// mismatch, an unset parameter, an invalid context reference, or a cyclic
// composite, discovered while loading or genesis-building a design.
type DesignError struct {
	Identifier Identifier
	Reason     string
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("melodium: design error in %s: %s", e.Identifier, e.Reason)
}

// BuildError reports a check-pass failure: a missing required context in an
// actual build, a build step already included in the current chain
// (cyclic-build), or a model unavailable at static build time.
type BuildError struct {
	Identifier Identifier
	BuildID    BuildID
	Reason     string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("melodium: build error in %s (build %d): %s", e.Identifier, e.BuildID, e.Reason)
}

// TransportError is returned by Output/Input operations; a well-behaved
// treatment treats either variant as "stream ended" and returns normally.
type TransportError struct {
	// NoReceiver is true when an Output was never linked to any Input.
	NoReceiver bool
	// EverythingClosed is true when every linked receiver has closed.
	EverythingClosed bool
}

func (e *TransportError) Error() string {
	switch {
	case e.NoReceiver:
		return "melodium: transport: no receiver"
	case e.EverythingClosed:
		return "melodium: transport: everything closed"
	}
	return "melodium: transport error"
}

// ErrNoReceiver is returned by Output.SendOne/SendMany when the output was
// never linked to any Input.
var ErrNoReceiver = &TransportError{NoReceiver: true}

// ErrClosed is returned by Output.SendOne/SendMany when every linked
// receiver has closed, and by Input.RecvOne/RecvMany when drained.
var ErrClosed = &TransportError{EverythingClosed: true}

// SourceError wraps a model's own I/O failure (TCP, file, etc.); it is
// surfaced as a log record by the model and reflected in the affected
// track's completion, without aborting the World.
type SourceError struct {
	Model  Identifier
	Source string
	Cause  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("melodium: source error in %s/%s: %v", e.Model, e.Source, e.Cause)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// TaskError wraps a non-Ok result returned by a prepared treatment task; the
// World records it and continues running other tasks.
type TaskError struct {
	Treatment Identifier
	TrackID   TrackID
	Cause     error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("melodium: task error in %s (track %d): %v", e.Treatment, e.TrackID, e.Cause)
}

func (e *TaskError) Unwrap() error { return e.Cause }
