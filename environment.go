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

// Context is a named bundle of Value snapshots taken by a model's source
// when it opens a track; ContextRef expressions resolve against it.
type Context struct {
	Name   string
	Values map[string]Value
}

// GenesisEnvironment binds a composite's models and const parameter values
// at static-build time. Immutable after construction: Base returns an
// independent copy a nested static-build call can extend without mutating
// the parent's view.
type GenesisEnvironment struct {
	World     *World
	Models    map[string]ExecutiveModel
	Variables map[string]Value
	Functions map[Identifier]FunctionExecutor
}

// NewGenesisEnvironment constructs an empty environment bound to world.
func NewGenesisEnvironment(world *World) *GenesisEnvironment {
	return &GenesisEnvironment{
		World:     world,
		Models:    make(map[string]ExecutiveModel),
		Variables: make(map[string]Value),
		Functions: make(map[Identifier]FunctionExecutor),
	}
}

// Base returns a shallow copy suitable as the starting point for a nested
// static-build call: the Models and Variables maps are independent, but
// Value/model entries are shared by reference (Values are immutable;
// ExecutiveModel is shared long-lived state by design), and the Functions
// registry map itself is shared with g.
func (g *GenesisEnvironment) Base() *GenesisEnvironment {
	cp := &GenesisEnvironment{
		World:     g.World,
		Models:    make(map[string]ExecutiveModel, len(g.Models)),
		Variables: make(map[string]Value, len(g.Variables)),
		Functions: g.Functions,
	}
	for k, v := range g.Models {
		cp.Models[k] = v
	}
	for k, v := range g.Variables {
		cp.Variables[k] = v
	}
	return cp
}

func (g *GenesisEnvironment) resolveVariable(name string) (Value, bool) {
	v, ok := g.Variables[name]
	return v, ok
}

func (g *GenesisEnvironment) resolveContext(string, string) (Value, bool) {
	return Value{}, false
}

func (g *GenesisEnvironment) resolveFunction(id Identifier) (FunctionExecutor, bool) {
	fn, ok := g.Functions[id]
	return fn, ok
}

// ContextualEnvironment additionally binds a track id, per-track Context
// snapshots, and the in-progress feeding-input map used during dynamic
// build. Base mirrors GenesisEnvironment.Base for the dynamic phase.
type ContextualEnvironment struct {
	World     *World
	TrackID   TrackID
	Models    map[string]ExecutiveModel
	Variables map[string]Value
	Contexts  map[string]Context
	Functions map[Identifier]FunctionExecutor
	// Inputs maps name -> Output senders; it starts empty and no builder in
	// this package writes to it.
	Inputs map[string][]*Output
}

// NewContextualEnvironment constructs an environment for one track.
func NewContextualEnvironment(world *World, track TrackID) *ContextualEnvironment {
	return &ContextualEnvironment{
		World:     world,
		TrackID:   track,
		Models:    make(map[string]ExecutiveModel),
		Variables: make(map[string]Value),
		Contexts:  make(map[string]Context),
		Functions: make(map[Identifier]FunctionExecutor),
		Inputs:    make(map[string][]*Output),
	}
}

// Base returns a copy for a nested dynamic-build call: the Models,
// Variables and Contexts maps are independent copies, Inputs starts empty,
// and the Functions registry map is shared with c.
func (c *ContextualEnvironment) Base() *ContextualEnvironment {
	cp := &ContextualEnvironment{
		World:     c.World,
		TrackID:   c.TrackID,
		Models:    make(map[string]ExecutiveModel, len(c.Models)),
		Variables: make(map[string]Value, len(c.Variables)),
		Contexts:  make(map[string]Context, len(c.Contexts)),
		Functions: c.Functions,
		Inputs:    make(map[string][]*Output),
	}
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	for k, v := range c.Variables {
		cp.Variables[k] = v
	}
	for k, v := range c.Contexts {
		cp.Contexts[k] = v
	}
	return cp
}

func (c *ContextualEnvironment) resolveVariable(name string) (Value, bool) {
	if v, ok := c.Variables[name]; ok {
		return v, true
	}
	return Value{}, false
}

func (c *ContextualEnvironment) resolveContext(contextName, valueName string) (Value, bool) {
	ctx, ok := c.Contexts[contextName]
	if !ok {
		return Value{}, false
	}
	v, ok := ctx.Values[valueName]
	return v, ok
}

func (c *ContextualEnvironment) resolveFunction(id Identifier) (FunctionExecutor, bool) {
	fn, ok := c.Functions[id]
	return fn, ok
}

// combinedEnv resolves names by first consulting the contextual
// environment, falling back to genesis, matching the data-model rule that Var parameters check
// contextual first, then genesis; Const parameters only ever consult
// genesis because a Const expression cannot contain a Context node.
type combinedEnv struct {
	ctx *ContextualEnvironment
	gen *GenesisEnvironment
}

func (e combinedEnv) resolveVariable(name string) (Value, bool) {
	if e.ctx != nil {
		if v, ok := e.ctx.resolveVariable(name); ok {
			return v, true
		}
	}
	if e.gen != nil {
		return e.gen.resolveVariable(name)
	}
	return Value{}, false
}

func (e combinedEnv) resolveContext(contextName, valueName string) (Value, bool) {
	if e.ctx == nil {
		return Value{}, false
	}
	return e.ctx.resolveContext(contextName, valueName)
}

func (e combinedEnv) resolveFunction(id Identifier) (FunctionExecutor, bool) {
	if e.ctx != nil {
		if fn, ok := e.ctx.resolveFunction(id); ok {
			return fn, true
		}
	}
	if e.gen != nil {
		return e.gen.resolveFunction(id)
	}
	return nil, false
}
