package txd

import "errors"

var (
	// ErrNotChunkStream is the only error Parse returns: the input is too
	// short to hold a chunk header.
	ErrNotChunkStream = errors.New("txd: input is not a chunk stream")

	// ErrTruncatedInput means a fixed-size field ran past the end of a texture.
	ErrTruncatedInput = errors.New("txd: truncated input")
	// ErrMalformedChunk means a chunk header is inconsistent with its context.
	ErrMalformedChunk = errors.New("txd: malformed chunk")
	// ErrUnsupportedFormat means the raster format is recognised but not decoded.
	ErrUnsupportedFormat = errors.New("txd: unsupported raster format")
	// ErrEncodeUnsupported means a texture has no pixels to re-encode.
	ErrEncodeUnsupported = errors.New("txd: texture cannot be encoded")

	ErrIndexOutOfRange = errors.New("txd: texture index out of range")
	ErrInvalidName     = errors.New("txd: invalid texture name")
	ErrDuplicateName   = errors.New("txd: duplicate texture name")
	ErrNotDecoded      = errors.New("txd: texture has no decoded pixels")
)
