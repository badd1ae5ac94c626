package rally

// Option applies a configuration option to the Accumulator.
type Option func(*Accumulator)

// WithPerformanceMode enables rally accumulation of neutral sub-actions.
func WithPerformanceMode(enabled bool) Option {
	return func(a *Accumulator) {
		a.performance = enabled
		a.direction = a.direction && enabled
	}
}

// WithDirectionMode records each sub-action as an origin and endpoint pair.
// It has no effect unless performance mode is enabled first.
func WithDirectionMode(enabled bool) Option {
	return func(a *Accumulator) {
		a.direction = enabled && a.performance
	}
}

// WithIDGenerator sets the generator of point and sub-action ids.
func WithIDGenerator(gen func() string) Option {
	return func(a *Accumulator) {
		if gen != nil {
			a.newID = gen
		}
	}
}
