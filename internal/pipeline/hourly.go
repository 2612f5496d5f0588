package pipeline

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/theirongolddev/adburn/internal/model"
)

// Operating window of the projection: hours 06 through 23.
const (
	WindowStart = 6
	WindowHours = 18
)

// Jitter returns a multiplier applied to each projected point.
type Jitter func() float64

// NoJitter pins the multiplier to 1 for deterministic output.
func NoJitter() float64 { return 1 }

// UniformJitter draws from [0.95, 1.05) using r.
func UniformJitter(r *rand.Rand) Jitter {
	return func() float64 { return 0.95 + r.Float64()*0.1 }
}

func defaultJitter() float64 { return 0.95 + rand.Float64()*0.1 }

// ProjectHourly spreads total across the operating hours up to and including
// hour, proportional to elapsed slots. The result is a synthetic curve for
// charts. It is not measured telemetry and points may dip locally because
// each slot draws its own jitter. Before the window opens a single zero
// point at 06:00 is returned. A nil jitter uses the global random source.
func ProjectHourly(hour int, total int64, jitter Jitter) []model.HourlyPoint {
	if jitter == nil {
		jitter = defaultJitter
	}

	n := 0
	for h := WindowStart; h < WindowStart+WindowHours; h++ {
		if h <= hour {
			n++
		}
	}
	if n == 0 {
		return []model.HourlyPoint{{Hour: WindowStart, Label: hourLabel(WindowStart)}}
	}

	points := make([]model.HourlyPoint, 0, n)
	for i := 0; i < n; i++ {
		h := WindowStart + i
		progress := float64(i+1) / float64(n)
		v := math.Round(float64(total) * progress * jitter())
		if v < 0 {
			v = 0
		}
		points = append(points, model.HourlyPoint{
			Hour:        h,
			Label:       hourLabel(h),
			Conversions: int64(v),
		})
	}
	return points
}

func hourLabel(h int) string { return fmt.Sprintf("%02d:00", h) }
