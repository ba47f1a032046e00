package iabrenderer

/*------------------------------------------------------------------
 *
 * Purpose:	Frame rate / sample rate plumbing: the supported
 *		combination matrix, per-frame sample counts and the
 *		pan sub-block schedule.
 *
 *----------------------------------------------------------------*/

// FrameRate enumerates the bitstream frame rates.
type FrameRate int

const (
	FrameRate24FPS FrameRate = iota
	FrameRate25FPS
	FrameRate30FPS
	FrameRate48FPS
	FrameRate50FPS
	FrameRate60FPS
	FrameRate96FPS
	FrameRate100FPS
	FrameRate120FPS
	FrameRate23_976FPS
)

// SampleRate enumerates the bitstream sample rates.
type SampleRate int

const (
	SampleRate48000Hz SampleRate = 48000
	SampleRate96000Hz SampleRate = 96000
)

const (
	// kIABMaxFrameSampleCount is the largest per-channel sample count of
	// any supported frame (23.976fps at 48kHz).
	kIABMaxFrameSampleCount = 6403

	// kIABMaxSubblockSampleCount is the largest sub-block of any supported
	// combination (first sub-blocks of 23.976fps at 48kHz).
	kIABMaxSubblockSampleCount = 801

	// kInt32BitMaxValue scales decoded 32-bit integer samples to [-1, 1).
	kInt32BitMaxValue = float32(2147483648.0)
)

// kSubblockSize23_97FPS48kHz is the fixed sub-block schedule for the
// fractional 23.976fps rate at 48kHz.  The sizes sum to the exact frame
// sample count of 6403.
var kSubblockSize23_97FPS48kHz = [8]uint32{801, 801, 801, 801, 801, 801, 800, 797}

// GetIABNumSubBlocks returns the number of pan sub-blocks per frame for a
// frame rate.  The sub-block metadata rate stays in the vicinity of 192Hz
// across frame rates.
func GetIABNumSubBlocks(frameRate FrameRate) uint32 {
	switch frameRate {
	case FrameRate23_976FPS, FrameRate24FPS, FrameRate25FPS, FrameRate30FPS:
		return 8
	case FrameRate48FPS, FrameRate50FPS, FrameRate60FPS:
		return 4
	case FrameRate96FPS, FrameRate100FPS, FrameRate120FPS:
		return 2
	default:
		return 0
	}
}

// GetIABNumFrameSamples returns the per-channel sample count of one frame
// at the given frame rate and sample rate, or 0 for an unknown combination.
func GetIABNumFrameSamples(frameRate FrameRate, sampleRate SampleRate) uint32 {
	var at48k uint32

	switch frameRate {
	case FrameRate24FPS:
		at48k = 2000
	case FrameRate25FPS:
		at48k = 1920
	case FrameRate30FPS:
		at48k = 1600
	case FrameRate48FPS:
		at48k = 1000
	case FrameRate50FPS:
		at48k = 960
	case FrameRate60FPS:
		at48k = 800
	case FrameRate96FPS:
		at48k = 500
	case FrameRate100FPS:
		at48k = 480
	case FrameRate120FPS:
		at48k = 400
	case FrameRate23_976FPS:
		at48k = kIABMaxFrameSampleCount
	default:
		return 0
	}

	switch sampleRate {
	case SampleRate48000Hz:
		return at48k
	case SampleRate96000Hz:
		return at48k * 2
	default:
		return 0
	}
}

/*------------------------------------------------------------------
 *
 * Name:	IsSupported
 *
 * Purpose:	Check a frame rate and sample rate combination against
 *		the v1 rendering matrix.
 *
 *		48kHz: 23.976, 24, 25, 30, 48, 60, 120 fps
 *		96kHz: 24, 48 fps (decimated to 48kHz on decode)
 *
 *----------------------------------------------------------------*/

func IsSupported(frameRate FrameRate, sampleRate SampleRate) bool {
	switch sampleRate {
	case SampleRate48000Hz:
		switch frameRate {
		case FrameRate23_976FPS, FrameRate24FPS, FrameRate25FPS, FrameRate30FPS,
			FrameRate48FPS, FrameRate60FPS, FrameRate120FPS:
			return true
		}
	case SampleRate96000Hz:
		switch frameRate {
		case FrameRate24FPS, FrameRate48FPS:
			return true
		}
	}
	return false
}
