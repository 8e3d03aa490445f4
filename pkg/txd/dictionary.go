// Package txd reads and writes RenderWare texture dictionaries (.txd).
//
// A dictionary is a Texture Dictionary chunk holding a Struct with the
// texture count followed by one Texture Native chunk per raster. Parsing is
// lenient: damaged textures are kept with nil Pixels and damaged dictionaries
// yield the textures read so far. Problems are reported through the logger
// given with WithLogger.
//
// Serialisation re-encodes every decoded texture as D3D9 DXT1, or DXT5 when
// it has alpha, with a single mip level. Textures without pixels are dropped.
package txd

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/imgfactory/txdtools/pkg/dxt"
	"github.com/imgfactory/txdtools/pkg/rw"
)

// MaxTextures bounds the texture count accepted from a dictionary header.
const MaxTextures = 500

// Defaults written for textures that carry no sampler state.
const (
	DefaultFilterMode = 0x02 // linear
	DefaultAddressing = 0x11 // wrap U, wrap V
)

// Dictionary is a parsed texture dictionary.
type Dictionary struct {
	Version  uint32 // Chunk version of the outer header
	Textures []Texture

	opts []Option
}

// New returns an empty dictionary that serialises with opts.
func New(opts ...Option) *Dictionary {
	o := newOptions(opts)
	return &Dictionary{Version: o.version, opts: opts}
}

// Parse decodes a texture dictionary. The only error is ErrNotChunkStream
// for input shorter than a chunk header; every other problem is logged and
// parsing keeps what it could read.
func Parse(data []byte, opts ...Option) (*Dictionary, error) {
	o := newOptions(opts)
	if len(data) < rw.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotChunkStream, len(data))
	}

	outer, outerRange, err := rw.ReadChunkHeader(data, 0)
	d := &Dictionary{Version: outer.Version, opts: opts}

	if outer.Type != rw.ChunkTextureDictionary {
		o.logger.Warn("outer chunk is not a texture dictionary", "type", rw.TypeName(outer.Type))
	}

	buf := data
	if err != nil {
		o.logger.Warn("dictionary size exceeds input", "declared", outer.Size, "available", len(data)-rw.HeaderSize)
	} else {
		buf = data[:outerRange.End]
	}

	structHdr, structRange, err := rw.ReadChunkHeader(buf, rw.HeaderSize)
	if err != nil {
		o.logger.Warn("missing dictionary struct", "error", err)
		return d, nil
	}
	if structHdr.Type != rw.ChunkStruct || structRange.Len() < 4 {
		o.logger.Warn("malformed dictionary struct", "type", rw.TypeName(structHdr.Type), "size", structHdr.Size)
		return d, nil
	}

	count := binary.LittleEndian.Uint32(structRange.Of(buf))
	if count == 0 || count > MaxTextures {
		o.logger.Warn("texture count out of range, reading no textures", "count", count, "max", MaxTextures)
		return d, nil
	}

	d.Textures = make([]Texture, 0, count)
	cursor := structRange.End
	for i := 0; i < int(count); i++ {
		h, r, err := rw.ReadChunkHeader(buf, cursor)
		if err != nil {
			o.logger.Warn("stopping at unreadable chunk",
				"index", i, "offset", cursor, "error", fmt.Errorf("%w: %v", ErrMalformedChunk, err))
			break
		}

		if h.Type == rw.ChunkTextureNative {
			tex, err := parseTextureNative(r.Of(buf), i, o)
			if err != nil {
				o.logger.Warn("texture not decoded", "index", i, "name", tex.Name, "error", err)
			} else {
				o.logger.Debug("texture decoded", "index", i, "name", tex.Name,
					"format", tex.Format, "width", tex.Width, "height", tex.Height)
			}
			d.Textures = append(d.Textures, tex)
		} else {
			o.logger.Debug("skipping chunk", "index", i, "type", rw.TypeName(h.Type), "size", h.Size)
		}

		cursor = r.End
	}

	return d, nil
}

// MarshalBinary serialises the dictionary with the options it was created
// or parsed with, writing its own Version.
func (d *Dictionary) MarshalBinary() ([]byte, error) {
	opts := append(append([]Option(nil), d.opts...), WithVersion(d.Version))
	return Serialize(d.Textures, opts...), nil
}

// Serialize writes textures as a new texture dictionary. Textures without
// pixels are skipped and reported as ErrEncodeUnsupported; the count field
// holds the number actually written.
func Serialize(textures []Texture, opts ...Option) []byte {
	o := newOptions(opts)

	var natives []byte
	written := 0
	for i := range textures {
		payload, err := encodeTextureNative(&textures[i], o)
		if err != nil {
			o.logger.Warn("texture dropped", "index", i, "name", textures[i].Name, "error", err)
			continue
		}
		natives = rw.AppendChunk(natives, rw.ChunkTextureNative, o.version, payload)
		written++
	}

	var countField [4]byte
	binary.LittleEndian.PutUint32(countField[:], uint32(written))

	body := rw.AppendChunk(make([]byte, 0, len(natives)+3*rw.HeaderSize+4), rw.ChunkStruct, o.version, countField[:])
	body = append(body, natives...)
	body = rw.AppendChunk(body, rw.ChunkExtension, o.version, nil)

	return rw.AppendChunk(nil, rw.ChunkTextureDictionary, o.version, body)
}

// encodeTextureNative builds the payload of one Texture Native chunk.
func encodeTextureNative(t *Texture, o *options) ([]byte, error) {
	if t.Pixels == nil {
		return nil, fmt.Errorf("%w: %s has no decoded pixels", ErrEncodeUnsupported, t.Name)
	}
	if t.Width <= 0 || t.Height <= 0 || t.Width > 0xFFFF || t.Height > 0xFFFF {
		return nil, fmt.Errorf("%w: %s has invalid size %dx%d", ErrEncodeUnsupported, t.Name, t.Width, t.Height)
	}
	if len(t.Pixels) < t.Width*t.Height*4 {
		return nil, fmt.Errorf("%w: %s has %d pixel bytes, need %d",
			ErrEncodeUnsupported, t.Name, len(t.Pixels), t.Width*t.Height*4)
	}

	hdr := nativeHeader{
		Platform:     PlatformD3D9,
		FilterMode:   t.FilterMode,
		Addressing:   t.Addressing,
		Width:        uint16(t.Width),
		Height:       uint16(t.Height),
		Depth:        16,
		MipLevels:    1,
		RasterType:   4,
		PlatformProp: 0x08, // compressed
	}
	if hdr.FilterMode == 0 {
		hdr.FilterMode = DefaultFilterMode
	}
	if hdr.Addressing == 0 {
		hdr.Addressing = DefaultAddressing
	}
	encodeName(&hdr.Name, t.Name, o)
	encodeName(&hdr.MaskName, t.AlphaName, o)

	var data []byte
	if t.HasAlpha {
		hdr.RasterFlags = RasterFormat4444
		hdr.D3DFormat = FourCCDXT5
		hdr.PlatformProp |= 0x01
		data = dxt.EncodeDXT5(t.Pixels, t.Width, t.Height)
	} else {
		hdr.RasterFlags = RasterFormat565
		hdr.D3DFormat = FourCCDXT1
		data = dxt.EncodeDXT1(t.Pixels, t.Width, t.Height)
	}

	st := bytes.NewBuffer(make([]byte, 0, nativeHeaderSize+4+len(data)))
	if err := binary.Write(st, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("write texture header: %w", err)
	}
	if err := binary.Write(st, binary.LittleEndian, uint32(len(data))); err != nil {
		return nil, fmt.Errorf("write pixel length: %w", err)
	}
	st.Write(data)

	payload := rw.AppendChunk(nil, rw.ChunkStruct, o.version, st.Bytes())
	return rw.AppendChunk(payload, rw.ChunkExtension, o.version, nil), nil
}

// Failed returns the indices of textures that were kept without pixels.
func (d *Dictionary) Failed() []int {
	var idx []int
	for i := range d.Textures {
		if !d.Textures[i].Decoded() {
			idx = append(idx, i)
		}
	}
	return idx
}
