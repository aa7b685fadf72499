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
	"strings"

	"github.com/cespare/xxhash"
)

// Identifier names a Model, Treatment, Function or Context descriptor.
// Two identifiers are equal only if root, path, name and version all match.
type Identifier struct {
	Root    string
	Path    []string
	Name    string
	Version string
}

// NewIdentifier builds an Identifier from its parts.
func NewIdentifier(root string, path []string, name string, version string) (id Identifier) {
	id.Root = root
	id.Path = append([]string(nil), path...)
	id.Name = name
	id.Version = version
	return id
}

// String renders the identifier as root/path/.../name(version)
func (id Identifier) String() (s string) {
	sb := &strings.Builder{}
	sb.WriteString(id.Root)
	for _, p := range id.Path {
		sb.WriteString("/")
		sb.WriteString(p)
	}
	sb.WriteString("/")
	sb.WriteString(id.Name)
	if id.Version != "" {
		sb.WriteString("(")
		sb.WriteString(id.Version)
		sb.WriteString(")")
	}
	return sb.String()
}

// Equal reports whether two identifiers refer to the exact same versioned entity.
func (id Identifier) Equal(other Identifier) (ok bool) {
	if id.Root != other.Root || id.Name != other.Name || id.Version != other.Version {
		return false
	}

	if len(id.Path) != len(other.Path) {
		return false
	}

	for i := range id.Path {
		if id.Path[i] != other.Path[i] {
			return false
		}
	}

	return true
}

// Hash returns a stable hash of this identifier, suitable as a map key
// component or for deduplicating build chains.
func (id Identifier) Hash() (h uint64) {
	digest := xxhash.New()
	digest.WriteString(id.Root)
	for _, p := range id.Path {
		digest.WriteString("/")
		digest.WriteString(p)
	}
	digest.WriteString("/")
	digest.WriteString(id.Name)
	digest.WriteString("@")
	digest.WriteString(id.Version)
	return digest.Sum64()
}
