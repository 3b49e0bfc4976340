package bvh

import (
	"bytes"
	"fmt"
	"time"
	"unsafe"

	"github.com/olekukonko/tablewriter"
)

// Statistics collected while building a BVH.
type Stats struct {
	// Number of indexed items.
	Items int

	// Total number of flattened nodes and how many of them are leaves.
	Nodes  int
	Leaves int

	// The depth of the deepest leaf (root depth is 1).
	MaxDepth int

	// Morton code bits per axis.
	Bits uint

	BuildTime time.Duration
}

// Render the stats as a table.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Value"})
	table.Append([]string{"Items", fmt.Sprintf("%d", s.Items)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", s.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", s.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	table.Append([]string{"Morton bits/axis", fmt.Sprintf("%d", s.Bits)})
	table.Append([]string{"Node memory", fmtSize(s.Nodes * int(unsafe.Sizeof(Node{})))})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})

	table.Render()
	return buf.String()
}

func fmtSize(bytes int) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%3.1f kb", float32(bytes)/1024.0)
	}
	return fmt.Sprintf("%3.1f mb", float32(bytes)/(1024.0*1024.0))
}
