package eval

import "github.com/roach88/triplestream/internal/binding"

const (
	// DefaultWindow is the initial number of rows pulled per side per turn.
	DefaultWindow = 16

	// DefaultMaxWindow caps window growth.
	DefaultMaxWindow = 4096
)

// Predicate decides whether a solution is kept.
type Predicate func(binding.Bindings) bool

// JoinOption configures a JoinBlock or LeftJoinBlock.
type JoinOption func(*joinConfig)

type joinConfig struct {
	lhsWindow int
	rhsWindow int
	maxWindow int
	filter    Predicate
}

func defaultJoinConfig() joinConfig {
	return joinConfig{
		lhsWindow: DefaultWindow,
		rhsWindow: DefaultWindow,
		maxWindow: DefaultMaxWindow,
	}
}

// WithLHSWindow sets the initial left-side window. Must be positive.
func WithLHSWindow(n int) JoinOption {
	return func(c *joinConfig) { c.lhsWindow = n }
}

// WithRHSWindow sets the initial right-side window. Must be positive.
func WithRHSWindow(n int) JoinOption {
	return func(c *joinConfig) { c.rhsWindow = n }
}

// WithMaxWindow caps how far windows may grow. Must be at least the
// larger initial window.
func WithMaxWindow(n int) JoinOption {
	return func(c *joinConfig) { c.maxWindow = n }
}

// WithFilter makes a merged candidate count as a match only when f accepts
// it. For a left join, an lhs row none of whose candidates pass is emitted
// unmatched.
func WithFilter(f Predicate) JoinOption {
	return func(c *joinConfig) { c.filter = f }
}

func (c joinConfig) validate(block string) error {
	if c.lhsWindow <= 0 {
		return constructionErr(ErrCodeInvalidWindow, block, "lhs window must be positive, got %d", c.lhsWindow)
	}
	if c.rhsWindow <= 0 {
		return constructionErr(ErrCodeInvalidWindow, block, "rhs window must be positive, got %d", c.rhsWindow)
	}
	if c.maxWindow < max(c.lhsWindow, c.rhsWindow) {
		return constructionErr(ErrCodeInvalidWindow, block,
			"max window %d is smaller than initial windows (%d, %d)", c.maxWindow, c.lhsWindow, c.rhsWindow)
	}
	return nil
}
