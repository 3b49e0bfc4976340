package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type FrameStats struct {
	// The current camera epoch.
	Epoch uint64

	// Number of tracing workers.
	Workers int

	// Total number of primary rays cast by the workers.
	RaysCast uint64

	// Samples accumulated into the current estimate.
	SamplesApplied uint64

	// Stale results discarded since the controller was created.
	StaleResults uint64

	// Per-pixel sample count range for the current epoch.
	MinSamples uint32
	MaxSamples uint32

	// Time since the last camera change.
	RenderTime time.Duration
}

// Get the number of samples accumulated per second since the last camera change.
func (s FrameStats) SamplesPerSecond() float64 {
	if s.RenderTime <= 0 {
		return 0
	}
	return float64(s.SamplesApplied) / s.RenderTime.Seconds()
}

// Render the stats as a table.
func (s FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Epoch", "Workers", "Rays cast", "Samples", "Stale results", "Samples/pixel"})
	table.Append([]string{
		fmt.Sprintf("%d", s.Epoch),
		fmt.Sprintf("%d", s.Workers),
		fmt.Sprintf("%d", s.RaysCast),
		fmt.Sprintf("%d", s.SamplesApplied),
		fmt.Sprintf("%d", s.StaleResults),
		fmt.Sprintf("%d - %d", s.MinSamples, s.MaxSamples),
	})
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%s (%.0f samples/s)", s.RenderTime, s.SamplesPerSecond())})

	table.Render()
	return buf.String()
}
