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

func TestIdentifierEqual(t *testing.T) {
	a := NewIdentifier("std", []string{"io"}, "Reader", "1.0.0")
	b := NewIdentifier("std", []string{"io"}, "Reader", "1.0.0")
	c := NewIdentifier("std", []string{"io"}, "Reader", "2.0.0")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestIdentifierString(t *testing.T) {
	id := NewIdentifier("std", []string{"io", "file"}, "Reader", "1.0.0")
	assert.Equal(t, "std/io/file/Reader(1.0.0)", id.String())

	unversioned := NewIdentifier("std", nil, "Reader", "")
	assert.Equal(t, "std/Reader", unversioned.String())
}

func TestIdentifierHashStableAndDistinct(t *testing.T) {
	a := NewIdentifier("std", []string{"io"}, "Reader", "1.0.0")
	b := NewIdentifier("std", []string{"io"}, "Reader", "1.0.0")
	c := NewIdentifier("std", []string{"io"}, "Writer", "1.0.0")

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
