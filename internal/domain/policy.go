package domain

const (
	DefaultMaxSkippedMessageKeys = 40
	DefaultMaxMessageGap         = 2000
	DefaultMaxReceiverChains     = 5
	DefaultMaxOneTimeKeys        = 50
)

// Policy holds the bounds that shape MessageGap and one-time-key pool
// behaviour. Every constructor that needs them takes Options.
type Policy struct {
	// MaxSkippedMessageKeys caps the cache of keys derived for messages
	// that have not arrived yet. Oldest entries are evicted first.
	MaxSkippedMessageKeys int
	// MaxMessageGap is the furthest a single message may jump ahead of its
	// receiving chain.
	MaxMessageGap uint32
	// MaxReceiverChains is how many remote ratchet keys are remembered.
	MaxReceiverChains int
	// MaxOneTimeKeys bounds the unpublished one-time-key pool.
	MaxOneTimeKeys int
}

// DefaultPolicy returns the built-in bounds.
func DefaultPolicy() Policy {
	return Policy{
		MaxSkippedMessageKeys: DefaultMaxSkippedMessageKeys,
		MaxMessageGap:         DefaultMaxMessageGap,
		MaxReceiverChains:     DefaultMaxReceiverChains,
		MaxOneTimeKeys:        DefaultMaxOneTimeKeys,
	}
}

// Option adjusts a Policy.
type Option func(*Policy)

// NewPolicy applies opts over DefaultPolicy. Non-positive values are
// ignored so a zero Option never disables a bound.
func NewPolicy(opts ...Option) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

// WithPolicy replaces every bound with p's non-zero fields.
func WithPolicy(p Policy) Option {
	return func(dst *Policy) {
		WithMaxSkippedMessageKeys(p.MaxSkippedMessageKeys)(dst)
		WithMaxMessageGap(p.MaxMessageGap)(dst)
		WithMaxReceiverChains(p.MaxReceiverChains)(dst)
		WithMaxOneTimeKeys(p.MaxOneTimeKeys)(dst)
	}
}

func WithMaxSkippedMessageKeys(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxSkippedMessageKeys = n
		}
	}
}

func WithMaxMessageGap(n uint32) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxMessageGap = n
		}
	}
}

func WithMaxReceiverChains(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxReceiverChains = n
		}
	}
}

func WithMaxOneTimeKeys(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.MaxOneTimeKeys = n
		}
	}
}
