package scaffold

import (
	"github.com/dune-daq/daqgen/internal/fhicl"
)

// DefaultOverlaysLibrary is the overlay library a new generator links.
const DefaultOverlaysLibrary = "lbne-artdaq_Overlays"

var pluginTemplate = fhicl.MustParse("simple_plugin", `simple_plugin(%{generator} "generator"
  %{overlays}
  ${ARTDAQ_APPLICATION}
  ${ARTDAQ_DAQDATA}
  ${ARTDAQ_UTILITIES}
  ${ART_UTILITIES}
  ${FHICLCPP}
  ${CETLIB}
  )`)

// PluginSnippet renders the simple_plugin stanza that builds generatorToken
// as an artdaq generator plugin. An empty overlaysLib means
// DefaultOverlaysLibrary.
func PluginSnippet(generatorToken, overlaysLib string) (string, error) {
	if err := ValidateToken(generatorToken); err != nil {
		return "", err
	}
	if overlaysLib == "" {
		overlaysLib = DefaultOverlaysLibrary
	}
	params := fhicl.NewParams().
		Set("generator", fhicl.String(generatorToken)).
		Set("overlays", fhicl.String(overlaysLib))
	return fhicl.NewRenderer().Render(pluginTemplate, params)
}
