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

import "github.com/brunotm/melodium/types"

// Parameter describes one named, typed argument a descriptor accepts.
type Parameter struct {
	Name        string
	Variability types.Variability
	Type        DataType
	Default     *Value
	Attributes  map[string]string
}

// Port describes one named, typed input or output of a Treatment descriptor.
type Port struct {
	Name string
	Type DataType
}

// SourceDescriptor names one entry point a Model exposes: a model may fire
// this source at runtime to open a track, carrying the listed contexts and
// feeding the listed outputs of whichever treatment declares it as a
// source-from.
type SourceDescriptor struct {
	Name             string
	RequiredContexts []Identifier
	Outputs          []Port
}

// Descriptor is the common, immutable-after-commit identity and parameter
// surface shared by Model, Treatment, Function and Context descriptors.
type Descriptor struct {
	Identifier Identifier
	Kind       types.Kind
	Parameters []Parameter

	// Treatment-only fields; zero value for the other kinds.
	Inputs           []Port
	Outputs          []Port
	Models           map[string]*Descriptor
	RequiredContexts []Identifier
	// SourcesFrom maps a declared model's local name to the set of its
	// source names that feed this treatment's inputs.
	SourcesFrom map[string][]string

	// Model-only field.
	Sources []SourceDescriptor

	// Design is non-nil when this Treatment descriptor is a composite
	// (backed by a nested design graph) rather than a compiled leaf.
	Design *Design

	// Builder is the build site this descriptor is materialized through:
	// a LeafModelBuilder/LeafTreatmentBuilder for compiled code, or a
	// CompositeBuilder when Design is non-nil.
	Builder Builder
}

// Parameter looks up a parameter by name.
func (d *Descriptor) Parameter(name string) (p Parameter, ok bool) {
	for _, p = range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Input looks up a declared input port by name.
func (d *Descriptor) Input(name string) (p Port, ok bool) {
	for _, p = range d.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Output looks up a declared output port by name.
func (d *Descriptor) Output(name string) (p Port, ok bool) {
	for _, p = range d.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// IsComposite reports whether this Treatment descriptor is backed by a
// nested design graph rather than a compiled leaf builder.
func (d *Descriptor) IsComposite() bool {
	return d.Design != nil
}
