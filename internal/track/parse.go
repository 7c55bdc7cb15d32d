package track

import (
	"path/filepath"
	"strings"

	orbgeo "github.com/paulmach/orb/geo"

	"github.com/banshee-data/trackposter/internal/geo"
	"github.com/banshee-data/trackposter/internal/units"
)

// DefaultSimplifyTolerance is the default point-reduction tolerance in metres.
const DefaultSimplifyTolerance = 10.0

// Extensions lists the source formats Parse understands.
var Extensions = []string{".gpx", ".fit", ".json"}

// ParseOptions tunes source parsing.
type ParseOptions struct {
	// SimplifyTolerance is the maximum deviation in metres allowed when
	// dropping points. Zero keeps every point.
	SimplifyTolerance float64
}

// Parse turns the bytes of one source file into a Track. The format is chosen
// by the file extension. Every failure is a *LoadError.
func Parse(path string, data []byte, opts ParseOptions) (*Track, error) {
	if len(data) == 0 {
		return nil, newLoadError(EmptyFile, path, nil)
	}

	var (
		t   *Track
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gpx":
		t, err = parseGPX(data, opts)
	case ".fit":
		t, err = parseFIT(data, opts)
	case ".json":
		t, err = UnmarshalRecord(data)
	default:
		return nil, newLoadError(Unsupported, path, nil)
	}
	if err != nil {
		if k, ok := err.(Kind); ok {
			return nil, newLoadError(k, path, nil)
		}
		return nil, newLoadError(Malformed, path, err)
	}

	if !t.HasTimes() {
		return nil, newLoadError(MissingTimes, path, nil)
	}
	if t.Length <= 0 {
		return nil, newLoadError(ZeroLength, path, nil)
	}
	t.FileNames = []string{path}
	return t, nil
}

// lineLength sums great-circle distances between consecutive points.
func lineLength(lines []geo.Polyline) units.Meters {
	var total float64
	for _, line := range lines {
		for i := 1; i < len(line); i++ {
			total += orbgeo.Distance(line[i-1], line[i])
		}
	}
	return units.Meters(total)
}
