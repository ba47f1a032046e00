package main

/*------------------------------------------------------------------
 *
 * Purpose:	Sanity-check a speaker layout file: build the renderer
 *		configuration, then render an object at every point of
 *		a unit-cube position grid (walls and interior) and
 *		report the positions that fail as coverage holes.
 *
 *		A hole means an object panned there would fail to
 *		render; usually the triangulation is missing a patch or
 *		a virtual speaker.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	iabrenderer "github.com/doismellburning/borzoi/src"
)

func main() {
	var layoutPath = pflag.StringP("layout", "l", "", "YAML speaker layout file (required)")
	var steps = pflag.IntP("steps", "n", 24, "Grid steps per dimension of the sweep")
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

	config, err := iabrenderer.LoadLayoutFile(*layoutPath)
	if err != nil {
		logger.Fatal("could not load layout", "path", *layoutPath, "err", err)
	}

	logger.Info("layout loaded",
		"soundfield", config.Soundfield,
		"speakers", config.TotalSpeakerCount(),
		"outputs", config.PhysicalSpeakerCount(),
		"patches", len(config.Patches),
		"lfe", config.LFEOutputIndex() >= 0)

	renderer, err := iabrenderer.NewIABRenderer(config)
	if err != nil {
		logger.Fatal("could not build renderer", "err", err)
	}

	// Sweep the unit cube wall and interior grid: every grid point must
	// render.  An object frame with a silent asset exercises the full
	// path without producing audio.
	silent := make([]int32, 2000)
	output := make([][]float32, renderer.OutputChannelCount())
	for i := range output {
		output[i] = make([]float32, 2000)
	}

	holes := 0
	total := 0

	for ix := 0; ix <= *steps; ix++ {
		for iy := 0; iy <= *steps; iy++ {
			for iz := 0; iz <= *steps; iz++ {
				x := float32(ix) / float32(*steps)
				y := float32(iy) / float32(*steps)
				z := float32(iz) / float32(*steps)
				total++

				subBlocks := make([]*iabrenderer.ObjectSubBlock, 8)
				for b := range subBlocks {
					sb := &iabrenderer.ObjectSubBlock{PanInfoExists: b == 0, Gain: 1.0}
					if b == 0 {
						if err := sb.Position.SetPosition(x, y, z); err != nil {
							logger.Fatal("bad grid position", "err", err)
						}
					}
					subBlocks[b] = sb
				}

				frame := &iabrenderer.Frame{
					FrameRate:  iabrenderer.FrameRate24FPS,
					SampleRate: iabrenderer.SampleRate48000Hz,
					SubElements: []iabrenderer.FrameSubElement{
						&iabrenderer.ObjectDefinition{MetaID: 1, AudioDataID: 1, PanSubBlocks: subBlocks},
						&iabrenderer.AudioDataPCM{AudioDataID: 1, SampleRate: iabrenderer.SampleRate48000Hz, Samples: silent},
					},
				}

				if _, err := renderer.RenderFrame(frame, output); err != nil {
					holes++
					logger.Warn("coverage hole", "x", x, "y", y, "z", z, "err", err)
				}
			}
		}
	}

	if holes == 0 {
		logger.Info("hull coverage complete", "positions", total)
		return
	}

	logger.Error("layout has coverage holes", "holes", holes, "positions", total)

	// Angular resolution note: how fine the virtual source grid samples
	// relative to the hull patches.
	logger.Info("virtual source grid", "theta_divs", 128, "phi_divs", 32,
		"ring_spacing_deg", 90.0/32.0, "horizon_step_deg", 360.0/128.0)

	os.Exit(1)
}
