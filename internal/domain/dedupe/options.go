package dedupe

// Option configures a deduper built by NewInMemoryDeduper.
type Option func(*ringDeduper)

// WithMaxSize bounds how many ids are remembered. maxSize <= 0 disables
// eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
