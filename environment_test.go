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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenesisEnvironmentBaseIsIndependent(t *testing.T) {
	g := NewGenesisEnvironment(nil)
	g.Variables["a"] = I32(1)

	child := g.Base()
	child.Variables["a"] = I32(2)
	child.Variables["b"] = I32(3)

	v, _ := g.resolveVariable("a")
	assert.Equal(t, int32(1), v.I32Value())
	_, ok := g.resolveVariable("b")
	assert.False(t, ok)
}

func TestContextualEnvironmentBaseIsIndependent(t *testing.T) {
	c := NewContextualEnvironment(nil, TrackID(1))
	c.Variables["a"] = I32(1)
	c.Contexts["x"] = Context{Name: "x", Values: map[string]Value{"v": I32(9)}}

	child := c.Base()
	child.Variables["a"] = I32(2)
	delete(child.Contexts, "x")

	v, _ := c.resolveVariable("a")
	assert.Equal(t, int32(1), v.I32Value())
	_, ok := c.resolveContext("x", "v")
	assert.True(t, ok)
}

func TestCombinedEnvResolvesContextualFirstThenGenesis(t *testing.T) {
	gen := NewGenesisEnvironment(nil)
	gen.Variables["a"] = I32(100)

	ctx := NewContextualEnvironment(nil, TrackID(1))
	ctx.Variables["a"] = I32(1)
	ctx.Variables["b"] = I32(2)

	combined := combinedEnv{ctx: ctx, gen: gen}

	v, ok := combined.resolveVariable("a")
	assert.True(t, ok)
	assert.Equal(t, int32(1), v.I32Value())

	v, ok = combined.resolveVariable("b")
	assert.True(t, ok)
	assert.Equal(t, int32(2), v.I32Value())
}

func TestCombinedEnvFallsBackToGenesisWhenAbsentInContext(t *testing.T) {
	gen := NewGenesisEnvironment(nil)
	gen.Variables["only_in_genesis"] = String("g")

	ctx := NewContextualEnvironment(nil, TrackID(1))
	combined := combinedEnv{ctx: ctx, gen: gen}

	v, ok := combined.resolveVariable("only_in_genesis")
	assert.True(t, ok)
	assert.Equal(t, "g", v.StringValue())
}

func TestCombinedEnvConstOnlyConsultsGenesis(t *testing.T) {
	gen := NewGenesisEnvironment(nil)
	gen.Variables["a"] = I32(42)

	combined := combinedEnv{gen: gen}

	v, ok := combined.resolveVariable("a")
	assert.True(t, ok)
	assert.Equal(t, int32(42), v.I32Value())

	_, ok = combined.resolveContext("any", "v")
	assert.False(t, ok)
}
