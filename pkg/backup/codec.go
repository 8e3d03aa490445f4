package backup

import (
	"fmt"
	"io"
	"time"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel favours ratio; backups are written once and rarely read.
const DefaultCompressionLevel = zstd.DefaultCompression

// Reader decompresses the content of a backup.
type Reader struct {
	header  Header
	zReader io.ReadCloser
}

// NewReader reads and validates the header, then returns a reader for the
// decompressed content.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	reader := &Reader{}
	if err := reader.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	reader.zReader = zstd.NewReader(io.LimitReader(r, int64(reader.header.CompressedLength)))
	return reader, nil
}

// Header returns the backup header.
func (r *Reader) Header() *Header {
	return &r.header
}

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (int, error) {
	return r.zReader.Read(p)
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// ReadAll reads the entire decompressed content of a backup.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return reader.readContent()
}

func (r *Reader) readContent() ([]byte, error) {
	data := make([]byte, r.header.Length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// WriterOption configures Encode.
type WriterOption func(*writerConfig)

type writerConfig struct {
	level   int
	modTime time.Time
}

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) WriterOption {
	return func(c *writerConfig) {
		c.level = level
	}
}

// WithModTime records the modification time of the original, which Restore
// puts back.
func WithModTime(t time.Time) WriterOption {
	return func(c *writerConfig) {
		c.modTime = t
	}
}

// Encode compresses data and writes it as a backup to dst.
func Encode(dst io.Writer, data []byte, opts ...WriterOption) error {
	cfg := &writerConfig{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(cfg)
	}

	compressed, err := zstd.CompressLevel(nil, data, cfg.level)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	h := Header{
		Version:          FormatVersion,
		ModTime:          cfg.modTime,
		Length:           uint64(len(data)),
		CompressedLength: uint64(len(compressed)),
	}
	buf, err := h.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := dst.Write(buf); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := dst.Write(compressed); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}
