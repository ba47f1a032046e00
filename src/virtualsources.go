package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	Virtual source grid for extent rendering: a hemisphere
 *		of pre-rendered point sources, organised as latitude
 *		rings ("longitudes" of constant phi), each indexed by a
 *		balanced interval tree over the theta index.
 *
 *		Internal tree nodes carry the elementwise sum of their
 *		subtree's speaker gains plus the leaf count, so a range
 *		query accumulates gains for any theta interval in
 *		O(log n + k).
 *
 *		The sources live in a flat arena; tree nodes refer to
 *		children by index.
 *
 *----------------------------------------------------------------*/

// VirtualSource is one pre-rendered point source on the hemisphere.
type VirtualSource struct {
	ThetaIndex   int
	Theta        float32
	SpeakerGains []float32
}

// vsTreeNode is one node of a VirtualSourceTree.  Leaves have left and
// right of -1 and carry the source's own gains; internal nodes carry the
// subtree gain sums.
type vsTreeNode struct {
	thetaIndex   int
	theta        float32
	count        int
	speakerGains []float32
	left, right  int
}

// VirtualSourceTree is a balanced summed-interval tree over one ring of
// virtual sources.
type VirtualSourceTree struct {
	nodes []vsTreeNode
	root  int
}

// BuildVirtualSourceTree constructs the tree over sources (which must be
// ordered by theta index).
func BuildVirtualSourceTree(sources []VirtualSource) *VirtualSourceTree {
	t := &VirtualSourceTree{root: -1}
	if len(sources) == 0 {
		return t
	}
	t.root = t.build(sources)
	return t
}

func (t *VirtualSourceTree) build(sources []VirtualSource) int {
	if len(sources) == 1 {
		s := sources[0]
		gains := make([]float32, len(s.SpeakerGains))
		copy(gains, s.SpeakerGains)

		t.nodes = append(t.nodes, vsTreeNode{
			thetaIndex:   s.ThetaIndex,
			theta:        s.Theta,
			count:        1,
			speakerGains: gains,
			left:         -1,
			right:        -1,
		})
		return len(t.nodes) - 1
	}

	mid := (len(sources) + 1) / 2

	left := t.build(sources[:mid])
	right := t.build(sources[mid:])

	sums := make([]float32, len(t.nodes[left].speakerGains))
	for i := range sums {
		sums[i] = t.nodes[left].speakerGains[i] + t.nodes[right].speakerGains[i]
	}

	// The split key is the last theta of the left half.
	t.nodes = append(t.nodes, vsTreeNode{
		thetaIndex:   sources[mid-1].ThetaIndex,
		theta:        sources[mid-1].Theta,
		count:        t.nodes[left].count + t.nodes[right].count,
		speakerGains: sums,
		left:         left,
		right:        right,
	})
	return len(t.nodes) - 1
}

/*------------------------------------------------------------------
 *
 * Name:	AverageGainsOverRange
 *
 * Purpose:	Sum the speaker gains of all virtual sources with
 *		theta index in [queryLow, queryHigh] into speakerGains
 *		and return how many sources contributed.
 *
 *		min and max bound the (sub)tree interval under
 *		inspection; the top-level call passes the ring bounds.
 *
 *----------------------------------------------------------------*/

func (t *VirtualSourceTree) AverageGainsOverRange(queryLow, queryHigh, min, max int, speakerGains []float32) int {
	if t.root < 0 {
		return 0
	}
	return t.averageGainsOverRange(t.root, queryLow, queryHigh, min, max, speakerGains)
}

func (t *VirtualSourceTree) averageGainsOverRange(node, queryLow, queryHigh, min, max int, speakerGains []float32) int {
	n := &t.nodes[node]

	// A node whose whole interval is inside the query, or a leaf within
	// the query, contributes its sums wholesale.
	if (queryLow <= min && queryHigh >= max) ||
		(n.left < 0 && queryLow <= n.thetaIndex && queryHigh >= n.thetaIndex) {
		for i := range n.speakerGains {
			speakerGains[i] += n.speakerGains[i]
		}
		return n.count
	}

	result := 0

	if queryLow <= n.thetaIndex && n.left >= 0 {
		result += t.averageGainsOverRange(n.left, queryLow, queryHigh, min, n.thetaIndex, speakerGains)
	}

	if queryHigh > n.thetaIndex && n.right >= 0 {
		result += t.averageGainsOverRange(n.right, queryLow, queryHigh, n.thetaIndex, max, speakerGains)
	}

	return result
}

// LongitudeVirtualSources is one latitude ring of the hemisphere.
type LongitudeVirtualSources struct {
	MaxThetaIndex  int
	DeltaTheta     float32
	Phi            float32
	PhiIndex       int
	VirtualSources *VirtualSourceTree
}

// HemisphereVirtualSources is the full grid: one ring per phi division,
// from the zenith (a single source) down to the horizon.
type HemisphereVirtualSources struct {
	DeltaPhi   float32
	Longitudes []LongitudeVirtualSources
}
