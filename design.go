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

// Endpoint names one side of a Connection: either the composite's own Self
// I/O, or a named sub-treatment instance's port.
type Endpoint struct {
	// Self is true when this endpoint is the composite's own I/O rather
	// than a sub-treatment.
	Self bool
	// Treatment is the local sub-treatment instance name; empty when Self.
	Treatment string
	Port      string
}

// SelfEndpoint builds an Endpoint referring to the composite's own I/O.
func SelfEndpoint(port string) Endpoint { return Endpoint{Self: true, Port: port} }

// TreatmentEndpoint builds an Endpoint referring to a named sub-treatment's port.
func TreatmentEndpoint(treatment, port string) Endpoint {
	return Endpoint{Treatment: treatment, Port: port}
}

// Connection links one producing endpoint's port to one consuming
// endpoint's port. An input may be the sink of many connections (fan-in);
// an output may be the source of many connections (fan-out).
type Connection struct {
	From Endpoint
	To   Endpoint
}

// ModelInstantiation declares one named instance of a Model descriptor
// within a composite's design, with constant-expression parameter values.
type ModelInstantiation struct {
	Name       string
	Descriptor *Descriptor
	Parameters map[string]ValueExpression
}

// ModelRemap maps a sub-treatment's own declared model name to the local
// name of the model instance (or composite-inherited model) it should bind to.
type ModelRemap map[string]string

// TreatmentInstance declares one named instance of a Treatment descriptor
// within a composite's design.
type TreatmentInstance struct {
	Name       string
	Descriptor *Descriptor
	Parameters map[string]ValueExpression
	Models     ModelRemap
}

// Design is a composite treatment's nested graph: declared models,
// parameters, model instantiations, sub-treatment instances and
// connections between them.
type Design struct {
	Models       map[string]*Descriptor
	Parameters   []Parameter
	Instantiated []ModelInstantiation
	Treatments   []TreatmentInstance
	Connections  []Connection
}

// Treatment looks up a declared sub-treatment instance by name.
func (d *Design) Treatment(name string) (t TreatmentInstance, ok bool) {
	for _, t = range d.Treatments {
		if t.Name == name {
			return t, true
		}
	}
	return TreatmentInstance{}, false
}

// Instantiation looks up a declared model instantiation by name.
func (d *Design) Instantiation(name string) (m ModelInstantiation, ok bool) {
	for _, m = range d.Instantiated {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInstantiation{}, false
}

// adjacency is the set of derived connection tables a composite builder
// computes once, at static-build time, from Design.Connections.
type adjacency struct {
	// root holds the connections whose From endpoint is Self.
	root []Connection
	// next maps a sub-treatment instance name to the connections leading
	// out of its output ports toward other sub-treatments.
	next map[string][]Connection
	// last holds the connections whose To endpoint is Self.
	last []Connection
	// direct holds Self-to-Self pass-through connections.
	direct []Connection
}

// buildAdjacency derives the root/next/last/direct tables from the design's
// connection list, per the static-phase contract.
func buildAdjacency(d *Design) *adjacency {
	a := &adjacency{next: make(map[string][]Connection)}
	for _, c := range d.Connections {
		switch {
		case c.From.Self && c.To.Self:
			a.direct = append(a.direct, c)
		case c.From.Self:
			a.root = append(a.root, c)
		case c.To.Self:
			a.last = append(a.last, c)
		default:
			a.next[c.From.Treatment] = append(a.next[c.From.Treatment], c)
		}
	}
	return a
}
