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

func TestCheckCompositeMissingRequiredContext(t *testing.T) {
	d := &Descriptor{
		Identifier:       NewIdentifier("test", nil, "Needy", "1.0.0"),
		RequiredContexts: []Identifier{NewIdentifier("test", nil, "Clock", "1.0.0")},
	}

	_, err := checkComposite(d, BuildID(1), NewCheckEnvironment(), nil)
	assert.Error(t, err)
	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestCheckCompositeRequiredContextSatisfied(t *testing.T) {
	d := &Descriptor{
		Identifier:       NewIdentifier("test", nil, "Needy", "1.0.0"),
		RequiredContexts: []Identifier{NewIdentifier("test", nil, "Clock", "1.0.0")},
	}

	_, err := checkComposite(d, BuildID(1), NewCheckEnvironment("Clock"), nil)
	assert.NoError(t, err)
}

func TestCheckCompositeLeafHasNoFurtherDescent(t *testing.T) {
	d := &Descriptor{Identifier: NewIdentifier("test", nil, "Leaf", "1.0.0")}

	results, err := checkComposite(d, BuildID(1), NewCheckEnvironment(), nil)
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestCheckCompositeCyclicBuildDetected(t *testing.T) {
	id := NewIdentifier("test", nil, "Self", "1.0.0")
	d := &Descriptor{Identifier: id}

	previous := []CheckStep{{Identifier: id, BuildID: BuildID(1)}}
	_, err := checkComposite(d, BuildID(1), NewCheckEnvironment(), previous)
	assert.Error(t, err)
}

func TestCheckCompositeFedInputsFromRootConnections(t *testing.T) {
	leaf := &Descriptor{Identifier: NewIdentifier("test", nil, "Leaf", "1.0.0")}

	design := &Design{
		Treatments: []TreatmentInstance{
			{Name: "worker", Descriptor: leaf},
		},
		Connections: []Connection{
			{From: SelfEndpoint("in"), To: TreatmentEndpoint("worker", "in")},
			{From: TreatmentEndpoint("worker", "out"), To: SelfEndpoint("out")},
		},
	}

	composite := &Descriptor{
		Identifier: NewIdentifier("test", nil, "Composite", "1.0.0"),
		Design:     design,
	}

	results, err := checkComposite(composite, BuildID(1), NewCheckEnvironment(), nil)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, results[0].FedInputs["in"])
}
