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

func TestOutputNoReceiver(t *testing.T) {
	out := NewOutput()
	err := out.SendOne(I32(1))
	assert.Equal(t, ErrNoReceiver, err)
}

func TestOutputSendRecvRoundTrip(t *testing.T) {
	out := NewOutput()
	in := NewInput(4)
	out.Link(in)

	assert.NoError(t, out.SendOne(I32(42)))
	v, err := in.RecvOne()
	assert.NoError(t, err)
	assert.True(t, I32(42).Equal(v))
}

func TestOutputFanOut(t *testing.T) {
	// S2: Src -> (A, B), each observes [10,20,30] in order.
	out := NewOutput()
	a := NewInput(8)
	b := NewInput(8)
	out.Link(a)
	out.Link(b)

	for _, n := range []uint32{10, 20, 30} {
		assert.NoError(t, out.SendOne(U32(n)))
	}
	out.Close()

	for _, in := range []*Input{a, b} {
		for _, want := range []uint32{10, 20, 30} {
			v, err := in.RecvOne()
			assert.NoError(t, err)
			assert.Equal(t, want, v.U32Value())
		}
		_, err := in.RecvOne()
		assert.Equal(t, ErrClosed, err)
	}
}

func TestInputFanIn(t *testing.T) {
	// S3: (X, Y) -> Join; Join only observes Closed after both X and Y closed.
	in := NewInput(8)
	x := NewOutput()
	y := NewOutput()
	x.Link(in)
	y.Link(in)

	assert.NoError(t, x.SendOne(I32(1)))
	assert.NoError(t, y.SendOne(I32(3)))
	x.Close()

	// in is still fed by y.
	_, err := in.RecvOne()
	assert.NoError(t, err)
	_, err = in.RecvOne()
	assert.NoError(t, err)

	y.Close()
	_, err = in.RecvOne()
	assert.Equal(t, ErrClosed, err)
}

func TestOutputCloseAfterAllProducersDrop(t *testing.T) {
	in := NewInput(2)
	a := NewOutput()
	b := NewOutput()
	a.Link(in)
	b.Link(in)

	a.Close()
	assert.NoError(t, b.SendOne(Bool(true)))
	b.Close()

	_, err := in.RecvOne()
	assert.NoError(t, err)
	_, err = in.RecvOne()
	assert.Equal(t, ErrClosed, err)
}

func TestLinkOutputComposesFanOut(t *testing.T) {
	inA := NewInput(2)
	inB := NewInput(2)
	leafA := NewOutput()
	leafB := NewOutput()
	leafA.Link(inA)
	leafB.Link(inB)

	combined := NewOutput()
	combined.LinkOutput(leafA)
	combined.LinkOutput(leafB)

	assert.NoError(t, combined.SendOne(I8(5)))
	va, _ := inA.RecvOne()
	vb, _ := inB.RecvOne()
	assert.Equal(t, int8(5), va.I8Value())
	assert.Equal(t, int8(5), vb.I8Value())
}
