package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	Vector kernel for the per-sample hot path: add,
 *		multiply, ramp and fill over float32 buffers.
 *
 *		Upstream selects a platform-accelerated engine at
 *		compile time.  Here the capability is a per-renderer
 *		value; this is the portable version.
 *
 *		All operations tolerate the output buffer aliasing
 *		either input, and none of them allocates.
 *
 *----------------------------------------------------------------*/

// VectDSP provides vector operations over float32 sample buffers.
type VectDSP struct{}

// NewVectDSP returns the portable vector engine.
func NewVectDSP() *VectDSP {
	return &VectDSP{}
}

// Add computes out[i] = a[i] + b[i] for i in [0, n).
func (*VectDSP) Add(a, b, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = a[i] + b[i]
	}
}

// Mult computes out[i] = a[i] * b[i] for i in [0, n).
func (*VectDSP) Mult(a, b, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = a[i] * b[i]
	}
}

// Ramp writes a linear sweep of n samples from start to end.  For n == 1
// it writes start alone; for n >= 2 the final sample equals end exactly.
// The step is accumulated bit-exactly so callers may rely on a constant
// per-sample increment of (end-start)/(n-1).
func (*VectDSP) Ramp(start, end float32, out []float32, n int) {
	if n <= 0 {
		return
	}
	if n == 1 {
		out[0] = start
		return
	}

	step := (end - start) / float32(n-1)
	v := start
	for i := 0; i < n-1; i++ {
		out[i] = v
		v += step
	}
	out[n-1] = end
}

// Fill sets out[i] = v for i in [0, n).
func (*VectDSP) Fill(v float32, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = v
	}
}
