package txd

import (
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/imgfactory/txdtools/pkg/rw"
)

// Option configures parsing and serialisation.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	names   encoding.Encoding
	version uint32
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: rw.DefaultVersion,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger routes diagnostics (skipped chunks, failed textures, dropped
// textures) to logger. By default they are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCharmap decodes and encodes texture names with enc instead of ASCII.
// Any golang.org/x/text single-byte encoding such as charmap.Windows1252 works.
func WithCharmap(enc encoding.Encoding) Option {
	return func(o *options) {
		o.names = enc
	}
}

// WithVersion sets the chunk version written by Serialize.
// Zero keeps rw.DefaultVersion.
func WithVersion(version uint32) Option {
	return func(o *options) {
		if version != 0 {
			o.version = version
		}
	}
}
