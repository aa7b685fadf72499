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

// CheckStep is one entry in the chain of (identifier, build id) pairs
// already entered by an in-progress check pass, used to detect a composite
// that (directly or transitively) contains itself.
type CheckStep struct {
	Identifier Identifier
	BuildID    BuildID
}

// CheckEnvironment carries the context set available at an actual dynamic
// build, checked against a composite's required contexts before any task
// is ever spawned for it.
type CheckEnvironment struct {
	Contexts map[string]bool
}

// NewCheckEnvironment builds a CheckEnvironment from the named contexts
// that will be present at dynamic-build time.
func NewCheckEnvironment(contextNames ...string) *CheckEnvironment {
	ce := &CheckEnvironment{Contexts: make(map[string]bool, len(contextNames))}
	for _, n := range contextNames {
		ce.Contexts[n] = true
	}
	return ce
}

// CheckBuild is the per-composite bookkeeping produced by a successful
// check pass: which Self-inputs are fed by at least one root connection,
// tracked so wiring-completeness can be asserted without re-walking the
// design.
type CheckBuild struct {
	Identifier Identifier
	BuildID    BuildID
	// FedInputs has one true entry per Self-input with at least one
	// outgoing root connection.
	FedInputs map[string]bool
}

// checkComposite runs the static feasibility pass for one composite
// descriptor's design: required contexts must all be present, the
// (identifier, build) chain must not already contain this composite, and
// every root sub-treatment is checked recursively.
func checkComposite(d *Descriptor, build BuildID, check *CheckEnvironment, previous []CheckStep) ([]*CheckBuild, error) {
	for _, req := range d.RequiredContexts {
		if !check.Contexts[req.Name] {
			return nil, &BuildError{Identifier: d.Identifier, BuildID: build,
				Reason: fmt.Sprintf("missing required context %s", req.Name)}
		}
	}

	for _, step := range previous {
		if step.Identifier.Equal(d.Identifier) && step.BuildID == build {
			return nil, &BuildError{Identifier: d.Identifier, BuildID: build, Reason: "cyclic build"}
		}
	}

	if d.Design == nil {
		return nil, nil
	}

	chain := append(append([]CheckStep(nil), previous...), CheckStep{Identifier: d.Identifier, BuildID: build})
	adj := buildAdjacency(d.Design)

	cb := &CheckBuild{Identifier: d.Identifier, BuildID: build, FedInputs: make(map[string]bool)}
	for _, c := range adj.root {
		cb.FedInputs[c.From.Port] = true
	}

	results := []*CheckBuild{cb}
	rootNames := make(map[string]bool)
	for _, c := range adj.root {
		rootNames[c.To.Treatment] = true
	}

	var errs []error
	for name := range rootNames {
		ti, ok := d.Design.Treatment(name)
		if !ok || ti.Descriptor == nil {
			continue
		}
		sub, err := checkComposite(ti.Descriptor, build, check, chain)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, sub...)
	}

	if len(errs) > 0 {
		return results, errs[0]
	}
	return results, nil
}

// sourceContextNames returns the union of every context name a source
// declared on a model instantiated anywhere within root's (possibly nested)
// design can supply when it fires a track. Genesis seeds the check pass's
// CheckEnvironment with this set: a source only attaches its contexts once
// it actually opens a track, well after genesis, so the check pass must
// treat anything a reachable source commits to supplying as present.
func sourceContextNames(root *Descriptor) []string {
	seen := make(map[*Descriptor]bool)
	names := gatherSourceContexts(root, seen)
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}

func gatherSourceContexts(d *Descriptor, seen map[*Descriptor]bool) map[string]bool {
	names := make(map[string]bool)
	if d == nil || d.Design == nil || seen[d] {
		return names
	}
	seen[d] = true

	for _, mi := range d.Design.Instantiated {
		if mi.Descriptor == nil {
			continue
		}
		for _, src := range mi.Descriptor.Sources {
			for _, ctx := range src.RequiredContexts {
				names[ctx.Name] = true
			}
		}
	}
	for _, ti := range d.Design.Treatments {
		for name := range gatherSourceContexts(ti.Descriptor, seen) {
			names[name] = true
		}
	}
	return names
}
