// Package telemetry samples flock statistics during headless runs and writes
// them as CSV.
package telemetry

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/shirou/gopsutil/v3/process"
	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/geometry"
)

// Sample is one row of telemetry.csv.
type Sample struct {
	Frame        uint64  `csv:"frame"`
	Agents       int     `csv:"agents"`
	MeanSpeed    float64 `csv:"mean_speed"`
	SpeedStdDev  float64 `csv:"speed_stddev"`
	Polarization float64 `csv:"polarization"` // 1 when every agent heads the same way
	CentroidX    float64 `csv:"centroid_x"`
	CentroidY    float64 `csv:"centroid_y"`
	MeanNearest  float64 `csv:"mean_nearest_neighbour"`
	RSSBytes     uint64  `csv:"rss_bytes"`
}

// Measure computes the flock statistics of pop. RSSBytes is left at zero.
func Measure(frame uint64, pop behavior.Population) Sample {
	s := Sample{Frame: frame, Agents: len(pop)}
	if len(pop) == 0 {
		return s
	}

	speeds := make([]float64, len(pop))
	xs := make([]float64, len(pop))
	ys := make([]float64, len(pop))
	var heading geometry.Vector2D
	for i, a := range pop {
		speeds[i] = a.Vel.Len()
		xs[i], ys[i] = a.Pos.X, a.Pos.Y
		heading = heading.Add(a.Vel.Normalize())
	}

	if len(pop) > 1 {
		s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	} else {
		s.MeanSpeed = speeds[0]
	}
	s.Polarization = heading.Scale(1 / float64(len(pop))).Len()
	s.CentroidX = stat.Mean(xs, nil)
	s.CentroidY = stat.Mean(ys, nil)
	s.MeanNearest = meanNearest(pop)
	return s
}

// meanNearest averages, over every agent, the distance to its closest neighbour.
func meanNearest(pop behavior.Population) float64 {
	if len(pop) < 2 {
		return 0
	}
	nearest := make([]float64, len(pop))
	for i := range pop {
		best := math.Inf(1)
		for j := range pop {
			if i == j {
				continue
			}
			if d := pop[i].Pos.Sub(pop[j].Pos).LenSqr(); d < best {
				best = d
			}
		}
		nearest[i] = math.Sqrt(best)
	}
	return stat.Mean(nearest, nil)
}

// Recorder writes one Sample every `every` frames.
type Recorder struct {
	out   io.Writer
	file  *os.File
	every uint64
	proc  *process.Process

	headerWritten bool
	rows          int
}

// NewRecorder writes to w. every < 1 records every frame.
func NewRecorder(w io.Writer, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	r := &Recorder{out: w, every: uint64(every)}
	// memory sampling is best effort
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		r.proc = p
	}
	return r
}

// OpenRecorder creates dir and records into dir/telemetry.csv.
// It returns nil when dir is empty, and a nil Recorder records nothing.
func OpenRecorder(dir string, every int) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	r := NewRecorder(f, every)
	r.file = f
	return r, nil
}

// Observe records pop if frame falls on the sampling interval.
func (r *Recorder) Observe(frame uint64, pop behavior.Population) error {
	if r == nil || frame%r.every != 0 {
		return nil
	}
	s := Measure(frame, pop)
	s.RSSBytes = r.rss()
	return r.Write(s)
}

func (r *Recorder) rss() uint64 {
	if r.proc == nil {
		return 0
	}
	mem, err := r.proc.MemoryInfo()
	if err != nil {
		return 0
	}
	return mem.RSS
}

// Write appends s, with the header before the first row.
func (r *Recorder) Write(s Sample) error {
	if r == nil {
		return nil
	}
	records := []Sample{s}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}
	r.rows++
	return nil
}

// Rows is the number of samples written.
func (r *Recorder) Rows() int {
	if r == nil {
		return 0
	}
	return r.rows
}

// Close syncs and closes the file opened by OpenRecorder and returns the first error.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	var firstErr error
	if err := r.file.Sync(); err != nil {
		firstErr = err
	}
	if err := r.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
