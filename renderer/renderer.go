package renderer

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached workers.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
