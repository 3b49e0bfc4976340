package tracer

// The RequestScheduler interface is implemented by all request generation
// strategies.
type RequestScheduler interface {
	// Restart request generation. This is called whenever the camera
	// changes and all accumulated samples have been discarded.
	Reset()

	// Generate the next render request for the given camera epoch.
	Next(epoch uint64) RenderRequest

	// Returns true while the scheduler emits coarse preview requests.
	InPreview() bool
}

// The center-out scheduler splits the frame into single-pixel-wide columns
// and visits them starting from the middle of the frame, alternating between
// the right and left side. Once all columns have been visited the sequence
// wraps around.
//
// After a reset the scheduler first emits a preview pass that traces one
// pixel per grid cell with a single sample so that a coarse image becomes
// available as soon as possible.
type centerOutScheduler struct {
	width, height uint32

	gridSize uint32
	patternM uint32
	patternN uint32

	columns     []uint32
	nextColumn  int
	preview     []uint32
	nextPreview int

	// Incremented for each emitted request so that successive passes over a
	// column use different sample patterns.
	seed uint32
}

// Create a new center-out scheduler for a frame of the given dimensions.
func NewCenterOutScheduler(width, height, gridSize, patternM, patternN uint32) RequestScheduler {
	if gridSize == 0 {
		gridSize = 1
	}

	sch := &centerOutScheduler{
		width:    width,
		height:   height,
		gridSize: gridSize,
		patternM: patternM,
		patternN: patternN,
		columns:  centerOutOrder(width),
	}

	for _, col := range sch.columns {
		if col%gridSize == 0 {
			sch.preview = append(sch.preview, col)
		}
	}

	sch.Reset()
	return sch
}

// Restart request generation beginning with a preview pass.
func (sch *centerOutScheduler) Reset() {
	sch.nextColumn = 0
	sch.nextPreview = 0
}

// Returns true while preview requests are being emitted.
func (sch *centerOutScheduler) InPreview() bool {
	return sch.nextPreview < len(sch.preview)
}

// Generate the next render request.
func (sch *centerOutScheduler) Next(epoch uint64) RenderRequest {
	sch.seed++

	if sch.InPreview() {
		col := sch.preview[sch.nextPreview]
		sch.nextPreview++
		return RenderRequest{
			Epoch:       epoch,
			TopLeft:     [2]uint32{col, 0},
			BottomRight: [2]uint32{col, sch.height - 1},
			Stride:      sch.gridSize,
			PatternM:    1,
			PatternN:    1,
			Seed:        sch.seed,
		}
	}

	col := sch.columns[sch.nextColumn]
	sch.nextColumn = (sch.nextColumn + 1) % len(sch.columns)
	return RenderRequest{
		Epoch:       epoch,
		TopLeft:     [2]uint32{col, 0},
		BottomRight: [2]uint32{col, sch.height - 1},
		Stride:      1,
		PatternM:    sch.patternM,
		PatternN:    sch.patternN,
		Seed:        sch.seed,
	}
}

// Generate the column visiting order: center, center+1, center-1, center+2,
// center-2 and so on.
func centerOutOrder(width uint32) []uint32 {
	order := make([]uint32, 0, width)
	center := int64(width / 2)
	for offset := int64(0); len(order) < int(width); offset++ {
		if col := center + offset; col < int64(width) {
			order = append(order, uint32(col))
		}
		if offset == 0 {
			continue
		}
		if col := center - offset; col >= 0 {
			order = append(order, uint32(col))
		}
	}
	return order
}
