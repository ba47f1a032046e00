package iabrenderer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Purpose:	YAML speaker layout loader for the command line tools
 *		and test fixtures.
 *
 *		This is NOT the legacy renderer configuration file
 *		format; it is a minimal description of the same
 *		information, translated into a RendererConfiguration.
 *
 *		Example:
 *
 *		soundfield: "5.1"
 *		speakers:
 *		  - name: C
 *		    channel: 0
 *		    uri: urn:smpte:ul:060E2B34.0401010D.03020103.00000000
 *		    azimuth: 0
 *		    elevation: 0
 *		  - name: TS
 *		    virtual: true
 *		    azimuth: 0
 *		    elevation: 90
 *		    downmix: [{channel: 0, coefficient: 0.2}, ...]
 *		patches:
 *		  - [0, 1, 6]
 *
 *----------------------------------------------------------------*/

// LayoutFileSpeaker is one speaker entry of a layout file.
type LayoutFileSpeaker struct {
	Name      string  `yaml:"name"`
	Channel   int     `yaml:"channel"`
	URI       string  `yaml:"uri"`
	Azimuth   float64 `yaml:"azimuth"`
	Elevation float64 `yaml:"elevation"`
	Virtual   bool    `yaml:"virtual"`
	Downmix   []struct {
		Channel     int     `yaml:"channel"`
		Coefficient float32 `yaml:"coefficient"`
	} `yaml:"downmix"`
}

// LayoutFile is the YAML document structure.
type LayoutFile struct {
	Soundfield string              `yaml:"soundfield"`
	Speakers   []LayoutFileSpeaker `yaml:"speakers"`
	Patches    [][3]int            `yaml:"patches"`
}

// LoadLayoutFile reads a YAML layout description and translates it into
// a renderer configuration.
func LoadLayoutFile(path string) (*RendererConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLayout(data)
}

// ParseLayout translates YAML layout bytes into a configuration.
func ParseLayout(data []byte) (*RendererConfiguration, error) {
	var file LayoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	if len(file.Speakers) == 0 {
		return nil, fmt.Errorf("layout: %w: no speakers", ErrBadArguments)
	}

	speakers := make([]RenderSpeaker, 0, len(file.Speakers))
	for _, fs := range file.Speakers {
		speaker := RenderSpeaker{
			Name:     fs.Name,
			Channel:  fs.Channel,
			URI:      fs.URI,
			Position: positionFromDegrees(fs.Azimuth, fs.Elevation),
		}
		if fs.Virtual {
			speaker.Channel = -1
		}
		for _, dm := range fs.Downmix {
			speaker.Downmix = append(speaker.Downmix, DownmixValue{
				Channel:     dm.Channel,
				Coefficient: dm.Coefficient,
			})
		}
		speakers = append(speakers, speaker)
	}

	return NewRendererConfiguration(speakers, file.Patches, file.Soundfield)
}
