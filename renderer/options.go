package renderer

type Options struct {
	// Frame dims. If not specified, the scene camera dims are used.
	FrameW uint32
	FrameH uint32

	// Number of tracing workers.
	NumWorkers int

	// Capacity of the request and result queues. Defaults to twice the
	// number of workers.
	QueueSize int

	// Size of the grid cells traced by the preview pass.
	PreviewGridSize uint32

	// Dimensions of the stratified sample pattern used by each request.
	SamplePatternM uint32
	SamplePatternN uint32

	// Min bounces before applying russian roulette for path elimination.
	MinBouncesForRR uint32

	// Max number of bounces.
	MaxBounces uint32

	// Number of samples per pixel for headless rendering.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Base seed for the worker random number generators.
	Seed int64
}

// Get the default render options.
func DefaultOptions() Options {
	return Options{
		NumWorkers:      4,
		QueueSize:       8,
		PreviewGridSize: 8,
		SamplePatternM:  4,
		SamplePatternN:  4,
		MinBouncesForRR: 3,
		MaxBounces:      10,
		SamplesPerPixel: 16,
		Exposure:        1.0,
	}
}

func (opts *Options) validate() error {
	if opts.NumWorkers < 1 || opts.PreviewGridSize == 0 || opts.SamplePatternM == 0 || opts.SamplePatternN == 0 {
		return ErrInvalidOptions
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 2 * opts.NumWorkers
	}
	return nil
}
