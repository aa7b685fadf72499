package mock

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

	"github.com/brunotm/melodium"
)

// make sure Model and Treatment satisfy the core's executive interfaces.
var (
	_ melodium.ExecutiveModel     = (*Model)(nil)
	_ melodium.ExecutiveTreatment = (*Treatment)(nil)
)

// Model is a mock ExecutiveModel recording every call made against it, so
// tests can assert genesis/initialize/shutdown sequencing and parameter
// application without a real resource-holding model.
type Model struct {
	Desc *melodium.Descriptor

	mu                sync.Mutex
	id                melodium.ModelID
	Parameters        map[string]melodium.Value
	InitializeErr     error
	ShutdownErr       error
	Initialized       bool
	ShutdownCalled    bool
	ShutdownImmediate bool
}

// NewModel constructs a Model mock for descriptor d.
func NewModel(d *melodium.Descriptor) *Model {
	return &Model{Desc: d, Parameters: make(map[string]melodium.Value)}
}

func (m *Model) Descriptor() *melodium.Descriptor { return m.Desc }
func (m *Model) ID() melodium.ModelID             { return m.id }
func (m *Model) SetID(id melodium.ModelID)        { m.id = id }

func (m *Model) SetParameter(name string, v melodium.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Parameters[name] = v
	return nil
}

func (m *Model) Initialize(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Initialized = true
	return m.InitializeErr
}

func (m *Model) Shutdown(_ context.Context, immediate bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShutdownCalled = true
	m.ShutdownImmediate = immediate
	return m.ShutdownErr
}

func (m *Model) InvokeSource(ctx context.Context, source string, contexts map[string]melodium.Context, fn melodium.SourceCallback) error {
	_, err := fn(nil)
	return err
}

// Treatment is a mock ExecutiveTreatment; Prepare returns whatever task
// slice PrepareFn produces (defaulting to none), so tests can exercise the
// builder/environment wiring in isolation from a real treatment body.
type Treatment struct {
	Desc *melodium.Descriptor

	mu         sync.Mutex
	Generics   map[string]melodium.DataType
	Parameters map[string]melodium.Value
	Models     map[string]melodium.ExecutiveModel
	Inputs     map[string]*melodium.Input
	Outputs    map[string]*melodium.Output

	PrepareFn func(track melodium.TrackID) ([]melodium.Task, error)
}

// NewTreatment constructs a Treatment mock for descriptor d.
func NewTreatment(d *melodium.Descriptor) *Treatment {
	return &Treatment{
		Desc:       d,
		Generics:   make(map[string]melodium.DataType),
		Parameters: make(map[string]melodium.Value),
		Models:     make(map[string]melodium.ExecutiveModel),
		Inputs:     make(map[string]*melodium.Input),
		Outputs:    make(map[string]*melodium.Output),
	}
}

func (t *Treatment) Descriptor() *melodium.Descriptor { return t.Desc }

func (t *Treatment) SetGeneric(name string, dt melodium.DataType) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Generics[name] = dt
	return nil
}

func (t *Treatment) SetParameter(name string, v melodium.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Parameters[name] = v
	return nil
}

func (t *Treatment) SetModel(name string, model melodium.ExecutiveModel) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Models[name] = model
	return nil
}

func (t *Treatment) AssignInput(name string, in *melodium.Input) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Inputs[name] = in
	return nil
}

func (t *Treatment) AssignOutput(name string, out *melodium.Output) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Outputs[name] = out
	return nil
}

func (t *Treatment) Prepare(track melodium.TrackID) ([]melodium.Task, error) {
	if t.PrepareFn == nil {
		return nil, nil
	}
	return t.PrepareFn(track)
}
