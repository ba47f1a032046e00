package iabrenderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestVectDSPAdd(t *testing.T) {
	dsp := NewVectDSP()

	a := []float32{1, 2, 3, 4}
	b := []float32{10, 20, 30, 40}
	out := make([]float32, 4)

	dsp.Add(a, b, out, 4)
	assert.Equal(t, []float32{11, 22, 33, 44}, out)

	// Aliasing the output with an input must be safe.
	dsp.Add(a, b, a, 4)
	assert.Equal(t, []float32{11, 22, 33, 44}, a)
}

func TestVectDSPMult(t *testing.T) {
	dsp := NewVectDSP()

	a := []float32{1, 2, 3, 4}
	b := []float32{10, 20, 30, 40}
	out := make([]float32, 4)

	dsp.Mult(a, b, out, 4)
	assert.Equal(t, []float32{10, 40, 90, 160}, out)

	dsp.Mult(a, b, b, 4)
	assert.Equal(t, []float32{10, 40, 90, 160}, b)
}

func TestVectDSPRampEdgeCases(t *testing.T) {
	dsp := NewVectDSP()

	out := []float32{7, 7, 7}

	// n = 0 writes nothing.
	dsp.Ramp(0, 1, out, 0)
	assert.Equal(t, []float32{7, 7, 7}, out)

	// n = 1 writes the start value.
	dsp.Ramp(0.25, 1, out, 1)
	assert.Equal(t, float32(0.25), out[0])
}

func TestVectDSPRampEndsExactly(t *testing.T) {
	dsp := NewVectDSP()

	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(2, 4800).Draw(t, "n")
		var start = float32(rapid.Float64Range(-2, 2).Draw(t, "start"))
		var end = float32(rapid.Float64Range(-2, 2).Draw(t, "end"))

		out := make([]float32, n)
		dsp.Ramp(start, end, out, n)

		assert.Equal(t, start, out[0], "First sample must be the start value")
		assert.Equal(t, end, out[n-1], "Last sample must be the end value, bit-exact")

		// The step is constant and bit-exact across the sweep.
		step := (end - start) / float32(n-1)
		v := start
		for i := 0; i < n-1; i++ {
			assert.Equal(t, v, out[i], "Ramp must accumulate the bit-exact step")
			v += step
		}
	})
}

func TestVectDSPFill(t *testing.T) {
	dsp := NewVectDSP()

	out := make([]float32, 5)
	dsp.Fill(0.5, out, 3)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0, 0}, out)
}
