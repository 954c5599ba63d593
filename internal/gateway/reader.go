package gateway

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// lineRe matches the sensor board's report lines, e.g.
// "Distance: 42 cm | Status: Half". Anything else is discarded upstream
// of the fleet service with a warning.
var lineRe = regexp.MustCompile(`Distance: (\d+) cm \| Status: (.+)`)

// Reading is one parsed sensor line.
type Reading struct {
	DistanceCM int
	StatusText string
}

// ParseLine extracts a reading from a raw serial line. ok is false for
// lines that do not match the report format.
func ParseLine(line string) (Reading, bool) {
	match := lineRe.FindStringSubmatch(line)
	if match == nil {
		return Reading{}, false
	}
	distance, err := strconv.Atoi(match[1])
	if err != nil {
		return Reading{}, false
	}
	return Reading{DistanceCM: distance, StatusText: match[2]}, true
}

// FillPercentage derives how full the bin is from the sensor's distance
// reading. The sensor sits at the top: a distance equal to the bin height
// means empty, zero distance means full. The result is rounded and
// clamped to [0, 100].
func FillPercentage(distanceCM, binHeightCM int) (int, error) {
	if binHeightCM <= 0 {
		return 0, fmt.Errorf("bin height must be positive, got %d", binHeightCM)
	}

	fillDistance := binHeightCM - distanceCM
	if fillDistance < 0 {
		fillDistance = 0
	}

	pct := float64(fillDistance) / float64(binHeightCM) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return int(math.Round(pct)), nil
}
