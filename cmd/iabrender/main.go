package main

/*------------------------------------------------------------------
 *
 * Purpose:	Render a synthetic object program through a speaker
 *		layout and write the result as raw interleaved float32
 *		PCM.  Useful for auditioning a layout without a
 *		bitstream in hand: a tone object orbits the room at a
 *		configurable height and rate.
 *
 *----------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	iabrenderer "github.com/doismellburning/borzoi/src"
)

func main() {
	var layoutPath = pflag.StringP("layout", "l", "", "YAML speaker layout file (required)")
	var outputPath = pflag.StringP("output", "o", "out.f32", "Output file for raw interleaved float32 PCM")
	var seconds = pflag.IntP("seconds", "s", 4, "Program length in seconds")
	var orbitHz = pflag.Float64P("orbit", "r", 0.25, "Object orbits per second")
	var toneHz = pflag.Float64P("tone", "t", 440.0, "Object tone frequency")
	var height = pflag.Float64P("height", "z", 0.0, "Object height in the unit cube, 0 floor to 1 ceiling")
	var smoothing = pflag.Bool("smoothing", true, "Enable gain smoothing")
	var verbose = pflag.BoolP("verbose", "v", false, "Verbose logging")
	var help = pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -l layout.yaml [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help || *layoutPath == "" {
		pflag.Usage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	config, err := iabrenderer.LoadLayoutFile(*layoutPath)
	if err != nil {
		logger.Fatal("could not load layout", "path", *layoutPath, "err", err)
	}
	config.Smoothing = *smoothing

	renderer, err := iabrenderer.NewIABRendererWithOptions(config, iabrenderer.RendererOptions{
		FrameGainsCache: true,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("could not build renderer", "err", err)
	}

	const frameSamples = 2000 // 24fps at 48kHz
	numChannels := renderer.OutputChannelCount()
	numFrames := *seconds * 24

	logger.Info("rendering", "channels", numChannels, "frames", numFrames, "soundfield", config.Soundfield)

	outFile, err := os.Create(*outputPath)
	if err != nil {
		logger.Fatal("could not create output", "err", err)
	}
	defer outFile.Close()

	output := make([][]float32, numChannels)
	for i := range output {
		output[i] = make([]float32, frameSamples)
	}

	tone := make([]int32, frameSamples)
	interleaved := make([]float32, frameSamples*numChannels)

	phase := 0.0
	phaseStep := 2 * math.Pi * *toneHz / 48000.0

	for f := 0; f < numFrames; f++ {
		for n := range tone {
			tone[n] = int32(0.5 * math.Sin(phase) * 2147483647.0)
			phase += phaseStep
		}

		// Eight pan sub-blocks tracking the orbit within the frame.
		subBlocks := make([]*iabrenderer.ObjectSubBlock, 8)
		for b := range subBlocks {
			t := (float64(f) + float64(b)/8.0) / 24.0
			angle := 2 * math.Pi * *orbitHz * t

			sb := &iabrenderer.ObjectSubBlock{
				PanInfoExists: true,
				Gain:          1.0,
			}
			// Orbit on the circle inscribed in the unit square, centred
			// on the room; it touches the walls only at their midpoints.
			x := 0.5 + 0.5*math.Sin(angle)
			y := 0.5 - 0.5*math.Cos(angle)
			if err := sb.Position.SetPosition(float32(x), float32(y), float32(*height)); err != nil {
				logger.Fatal("bad orbit position", "err", err)
			}
			subBlocks[b] = sb
		}

		frame := &iabrenderer.Frame{
			FrameRate:  iabrenderer.FrameRate24FPS,
			SampleRate: iabrenderer.SampleRate48000Hz,
			SubElements: []iabrenderer.FrameSubElement{
				&iabrenderer.ObjectDefinition{
					MetaID:       1,
					AudioDataID:  1,
					PanSubBlocks: subBlocks,
				},
				&iabrenderer.AudioDataPCM{
					AudioDataID: 1,
					SampleRate:  iabrenderer.SampleRate48000Hz,
					Samples:     tone,
				},
			},
		}

		rendered, err := renderer.RenderFrame(frame, output)
		if err != nil {
			logger.Fatal("render failed", "frame", f, "err", err)
		}

		for n := 0; n < rendered; n++ {
			for c := 0; c < numChannels; c++ {
				interleaved[n*numChannels+c] = output[c][n]
			}
		}

		if err := binary.Write(outFile, binary.LittleEndian, interleaved[:rendered*numChannels]); err != nil {
			logger.Fatal("write failed", "err", err)
		}

		logger.Debug("frame done", "frame", f, "samples", rendered)
	}

	logger.Info("done", "output", *outputPath)
}
