// Package formats provides parsers for GTA Vice City asset file formats.
// RenderWare binary stream chunk reader, shared by the DFF decoder.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Chunk stream errors.
var (
	ErrTruncatedChunk   = errors.New("chunk length exceeds remaining data")
	ErrChunkTreeTooDeep = errors.New("chunk nesting exceeds depth budget")
)

// chunkHeaderSize is the fixed RenderWare chunk header: kind, payload
// size and library stamp, each a little-endian uint32.
const chunkHeaderSize = 12

// maxChunkDepth bounds recursion into nested chunk payloads so a
// corrupt file cannot blow the stack.
const maxChunkDepth = 32

// ChunkKind is a RenderWare section tag.
type ChunkKind uint32

// Known chunk kinds. Anything else passes through as an opaque leaf.
const (
	ChunkStruct       ChunkKind = 0x01
	ChunkString       ChunkKind = 0x02
	ChunkExtension    ChunkKind = 0x03
	ChunkTexture      ChunkKind = 0x06
	ChunkMaterial     ChunkKind = 0x07
	ChunkMaterialList ChunkKind = 0x08
	ChunkFrameList    ChunkKind = 0x0E
	ChunkGeometry     ChunkKind = 0x0F
	ChunkClump        ChunkKind = 0x10
	ChunkAtomic       ChunkKind = 0x14
	ChunkGeometryList ChunkKind = 0x1A
)

// String returns a human-readable chunk kind name.
func (k ChunkKind) String() string {
	switch k {
	case ChunkStruct:
		return "Struct"
	case ChunkString:
		return "String"
	case ChunkExtension:
		return "Extension"
	case ChunkTexture:
		return "Texture"
	case ChunkMaterial:
		return "Material"
	case ChunkMaterialList:
		return "MaterialList"
	case ChunkFrameList:
		return "FrameList"
	case ChunkGeometry:
		return "Geometry"
	case ChunkClump:
		return "Clump"
	case ChunkAtomic:
		return "Atomic"
	case ChunkGeometryList:
		return "GeometryList"
	default:
		return fmt.Sprintf("Unknown(0x%X)", uint32(k))
	}
}

// IsContainer reports whether a chunk of this kind holds child chunks
// in its payload rather than record data.
func (k ChunkKind) IsContainer() bool {
	switch k {
	case ChunkExtension, ChunkTexture, ChunkMaterial, ChunkMaterialList,
		ChunkFrameList, ChunkGeometry, ChunkClump, ChunkAtomic, ChunkGeometryList:
		return true
	}
	return false
}

// RWVersion is the library version unpacked from a chunk's stamp field.
type RWVersion uint32

// decodeRWVersion unpacks the packed library stamp. Stamps with the
// high half set use the packed 3.x encoding; older files store the
// version shifted down by one byte.
func decodeRWVersion(stamp uint32) RWVersion {
	if stamp&0xFFFF0000 != 0 {
		return RWVersion((stamp>>14&0x3FF00 + 0x30000) | (stamp >> 16 & 0x3F))
	}
	return RWVersion(stamp << 8)
}

// Major returns the major version digit (3 for every GTA-era file).
func (v RWVersion) Major() int { return int(v>>16) & 0xF }

// Minor returns the minor version digit.
func (v RWVersion) Minor() int { return int(v>>12) & 0xF }

// AtLeast reports whether the version is >= major.minor.
func (v RWVersion) AtLeast(major, minor int) bool {
	if v.Major() != major {
		return v.Major() > major
	}
	return v.Minor() >= minor
}

// String returns the version as "Major.Minor".
func (v RWVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// Chunk is one node of the stream: a kind tag, the declared payload
// size, the library stamp, and the raw payload bytes. For container
// kinds the payload is itself a chunk sequence.
type Chunk struct {
	Kind    ChunkKind
	Size    uint32
	Library uint32
	Payload []byte
}

// Version returns the chunk's decoded library version.
func (c *Chunk) Version() RWVersion {
	return decodeRWVersion(c.Library)
}

// ChunkReader yields the chunk sequence of one buffer. It advances
// strictly forward and is not restartable; Next returns io.EOF once
// the buffer is exhausted.
type ChunkReader struct {
	buf []byte
	pos int
}

// NewChunkReader positions a reader at the start of a chunk sequence.
func NewChunkReader(data []byte) *ChunkReader {
	return &ChunkReader{buf: data}
}

// Next decodes the header at the cursor and returns the chunk with the
// cursor advanced past header and payload. A header or payload that
// overruns the buffer fails with ErrTruncatedChunk; the payload is
// never read out of bounds.
func (r *ChunkReader) Next() (*Chunk, error) {
	remaining := len(r.buf) - r.pos
	if remaining == 0 {
		return nil, io.EOF
	}
	if remaining < chunkHeaderSize {
		return nil, fmt.Errorf("%w: %d header bytes at offset %d", ErrTruncatedChunk, remaining, r.pos)
	}

	c := &Chunk{
		Kind:    ChunkKind(binary.LittleEndian.Uint32(r.buf[r.pos:])),
		Size:    binary.LittleEndian.Uint32(r.buf[r.pos+4:]),
		Library: binary.LittleEndian.Uint32(r.buf[r.pos+8:]),
	}
	r.pos += chunkHeaderSize

	if int(c.Size) > len(r.buf)-r.pos {
		return nil, fmt.Errorf("%w: chunk %s declares %d bytes, %d remain",
			ErrTruncatedChunk, c.Kind, c.Size, len(r.buf)-r.pos)
	}
	c.Payload = r.buf[r.pos : r.pos+int(c.Size)]
	r.pos += int(c.Size)

	return c, nil
}

// WalkChunks visits every chunk of the stream in document order,
// descending into container payloads. The visitor receives the chunk
// and its nesting depth (0 for top level). Descent is bounded by
// maxChunkDepth; deeper nesting fails with ErrChunkTreeTooDeep rather
// than recursing without limit.
func WalkChunks(data []byte, visit func(c *Chunk, depth int) error) error {
	return walkChunks(data, 0, visit)
}

func walkChunks(data []byte, depth int, visit func(c *Chunk, depth int) error) error {
	if depth > maxChunkDepth {
		return ErrChunkTreeTooDeep
	}

	r := NewChunkReader(data)
	for {
		c, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := visit(c, depth); err != nil {
			return err
		}
		if c.Kind.IsContainer() {
			if err := walkChunks(c.Payload, depth+1, visit); err != nil {
				return err
			}
		}
	}
}
