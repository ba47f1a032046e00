package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	Channel gains processor: applies per-channel target
 *		gains to mono input samples, accumulating into the
 *		output channel buffers, with optional per-sample
 *		linear smoothing from each entity's previous gains.
 *
 *		The slope of the smoothing ramp is capped so a
 *		full-range gain change takes no less than about 10ms
 *		at 48kHz; the per-entity gain reached by the end of a
 *		sub-block seeds the next one.
 *
 *----------------------------------------------------------------*/

const (
	// maxRampSamples bounds the smoothing ramp, empirically tuned for
	// 48kHz audio.
	maxRampSamples = 4800

	// maxSlope caps the per-sample gain change: full range in
	// rampSampleMaxSlope samples.
	maxSlope           = float32(1.0) / 480.0
	rampSampleMaxSlope = 480
)

// entityPastChannelGains is the smoothing history of one entity (object
// ID, or the synthesized ID of a bed channel).
type entityPastChannelGains struct {
	channelGains []float32
	touched      bool
}

// ChannelGainsProcessor holds the per-entity gain histories of one
// renderer instance.
type ChannelGainsProcessor struct {
	entityGainHistory map[uint32]*entityPastChannelGains

	vectDSP *VectDSP

	// Working buffers; sized once so ApplyChannelGains does not
	// allocate.
	smoothedGains      []float32
	gainAppliedSamples []float32
}

func NewChannelGainsProcessor() *ChannelGainsProcessor {
	return &ChannelGainsProcessor{
		entityGainHistory:  make(map[uint32]*entityPastChannelGains),
		vectDSP:            NewVectDSP(),
		smoothedGains:      make([]float32, kIABMaxFrameSampleCount),
		gainAppliedSamples: make([]float32, kIABMaxFrameSampleCount),
	}
}

/*------------------------------------------------------------------
 *
 * Name:	ApplyChannelGains
 *
 * Purpose:	Multiply-accumulate input samples into each output
 *		channel under the target gains.
 *
 * Inputs:	entityID	- gain history key
 *		inputSamples	- mono input, sampleCount long
 *		outputSamples	- one buffer per channel
 *		initializeOutputBuffers - zero outputs first
 *		targetChannelGains - one gain per channel
 *		enableSmoothing	- ramp from the entity's previous
 *				  gains instead of applying targets flat
 *
 *		A new entity's history is initialised to the current
 *		targets, not zero: ramping up from zero on first
 *		activation causes audible artifacts.
 *
 *----------------------------------------------------------------*/

func (p *ChannelGainsProcessor) ApplyChannelGains(
	entityID uint32,
	inputSamples []float32,
	sampleCount int,
	outputSamples [][]float32,
	initializeOutputBuffers bool,
	targetChannelGains []float32,
	enableSmoothing bool,
) error {
	channelCount := len(outputSamples)

	if inputSamples == nil ||
		outputSamples == nil ||
		sampleCount == 0 ||
		channelCount == 0 ||
		len(targetChannelGains) != channelCount ||
		len(inputSamples) < sampleCount {
		return ErrBadArguments
	}

	history, ok := p.entityGainHistory[entityID]
	if !ok {
		history = &entityPastChannelGains{
			channelGains: make([]float32, channelCount),
		}
		copy(history.channelGains, targetChannelGains)
		p.entityGainHistory[entityID] = history
	}

	if enableSmoothing {
		if len(history.channelGains) != channelCount {
			return ErrBadArguments
		}

		// Degrade to the flat path when every channel already sits on its
		// target.
		enableSmoothing = false
		for i := 0; i < channelCount; i++ {
			if targetChannelGains[i] != history.channelGains[i] {
				enableSmoothing = true
				break
			}
		}
	}

	for i := 0; i < channelCount; i++ {
		if outputSamples[i] == nil || len(outputSamples[i]) < sampleCount {
			return ErrBadArguments
		}
		if initializeOutputBuffers {
			for n := 0; n < sampleCount; n++ {
				outputSamples[i][n] = 0.0
			}
		}
	}

	if enableSmoothing {
		initRampPeriod := sampleCount
		if maxRampSamples < initRampPeriod {
			initRampPeriod = maxRampSamples
		}
		if initRampPeriod == 0 {
			return ErrDivisionByZero
		}

		for i := 0; i < channelCount; i++ {
			currentGain := history.channelGains[i]
			targetGain := targetChannelGains[i]
			gainDiff := targetGain - currentGain

			slope := gainDiff / float32(initRampPeriod)

			// Cap the slope, revising the ramp period to the cap length;
			// slope zero needs no ramp at all.
			var realRampPeriod int
			switch {
			case slope > maxSlope:
				slope = maxSlope
				realRampPeriod = rampSampleMaxSlope
			case slope < -maxSlope:
				slope = -maxSlope
				realRampPeriod = rampSampleMaxSlope
			case slope == 0.0:
				realRampPeriod = 0
			default:
				realRampPeriod = initRampPeriod
			}

			// Build the per-sample gain ramp, stepping one slope past the
			// stored gain, then hold the target for any samples beyond.
			currentGain += slope
			p.vectDSP.Ramp(currentGain, targetGain, p.smoothedGains, realRampPeriod)

			if realRampPeriod < sampleCount {
				p.vectDSP.Fill(targetGain, p.smoothedGains[realRampPeriod:], sampleCount-realRampPeriod)
			}

			currentGain = p.smoothedGains[sampleCount-1]

			p.vectDSP.Mult(inputSamples, p.smoothedGains, p.gainAppliedSamples, sampleCount)
			p.vectDSP.Add(outputSamples[i], p.gainAppliedSamples, outputSamples[i], sampleCount)

			history.channelGains[i] = currentGain
			history.touched = true
		}
	} else {
		for i := 0; i < channelCount; i++ {
			p.vectDSP.Fill(targetChannelGains[i], p.smoothedGains, sampleCount)
			p.vectDSP.Mult(inputSamples, p.smoothedGains, p.gainAppliedSamples, sampleCount)
			p.vectDSP.Add(outputSamples[i], p.gainAppliedSamples, outputSamples[i], sampleCount)

			history.channelGains[i] = targetChannelGains[i]
			history.touched = true
		}
	}

	return nil
}

// UpdateGainsHistory ages the history at a frame boundary: untouched
// entities are dropped, survivors start the new frame untouched.
func (p *ChannelGainsProcessor) UpdateGainsHistory() {
	for id, history := range p.entityGainHistory {
		if !history.touched {
			delete(p.entityGainHistory, id)
		} else {
			history.touched = false
		}
	}
}

// ResetGainsHistory clears all smoothing histories.
func (p *ChannelGainsProcessor) ResetGainsHistory() {
	clear(p.entityGainHistory)
}
