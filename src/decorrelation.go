package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	Per-channel decorrelation stage.  Objects flagged for
 *		maximum decorrelation accumulate on a separate bus
 *		which runs through here once per frame; the renderer
 *		owns the tail-off policy, this stage only filters.
 *
 *		Each channel gets its own fixed delay-and-all-pass
 *		decorrelator; the per-channel delays are co-prime so
 *		channels decorrelate against each other.  State
 *		persists across frames until Reset.
 *
 *----------------------------------------------------------------*/

// decorrDelays are the per-channel all-pass loop delays in samples at
// 48kHz, prime and spaced to avoid audible comb alignment.
var decorrDelays = []int{449, 577, 641, 701, 769, 823, 881, 929, 991, 1031, 1087, 1151, 1213, 1277, 1321, 1381}

// decorrAllPassCoeff is the feedback coefficient of the Schroeder
// all-pass sections.
const decorrAllPassCoeff = float32(0.5)

// allPassSection is one Schroeder all-pass: y[n] = -g*x[n] + x[n-D] +
// g*y[n-D], implemented with a circular delay line.
type allPassSection struct {
	buffer []float32
	pos    int
	gain   float32
}

func newAllPassSection(delay int, gain float32) *allPassSection {
	return &allPassSection{
		buffer: make([]float32, delay),
		gain:   gain,
	}
}

func (s *allPassSection) process(x float32) float32 {
	w := s.buffer[s.pos]

	y := -s.gain*x + w
	s.buffer[s.pos] = x + s.gain*y

	s.pos++
	if s.pos == len(s.buffer) {
		s.pos = 0
	}

	return y
}

func (s *allPassSection) reset() {
	for i := range s.buffer {
		s.buffer[i] = 0.0
	}
	s.pos = 0
}

// IABDecorrelation decorrelates all channels of a frame together.
type IABDecorrelation struct {
	sections []*allPassSection
}

func NewIABDecorrelation() *IABDecorrelation {
	return &IABDecorrelation{}
}

// Setup builds one decorrelator per physical output channel of the
// configuration.
func (d *IABDecorrelation) Setup(config *RendererConfiguration) error {
	if config == nil {
		return ErrBadArguments
	}

	channelCount := config.PhysicalSpeakerCount()
	d.sections = make([]*allPassSection, channelCount)
	for i := 0; i < channelCount; i++ {
		delay := decorrDelays[i%len(decorrDelays)]
		d.sections[i] = newAllPassSection(delay, decorrAllPassCoeff)
	}

	return nil
}

// Reset clears all delay state.
func (d *IABDecorrelation) Reset() {
	for _, s := range d.sections {
		s.reset()
	}
}

// DecorrelateDecorOutputs filters the channels in place.
func (d *IABDecorrelation) DecorrelateDecorOutputs(channels [][]float32, channelCount, sampleCount int) error {
	if channels == nil || channelCount != len(d.sections) {
		return ErrBadArguments
	}

	for c := 0; c < channelCount; c++ {
		section := d.sections[c]
		buf := channels[c]
		for n := 0; n < sampleCount; n++ {
			buf[n] = section.process(buf[n])
		}
	}

	return nil
}
