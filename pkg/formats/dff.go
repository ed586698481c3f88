// Package formats provides parsers for GTA Vice City asset file formats.
// DFF (RenderWare model container) decoder: record decoders plus the
// model assembler that folds a chunk tree into a renderable Model.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/leodutra/bevy-city/pkg/gtaenc"
)

// DFF format errors.
var (
	ErrNoClump                 = errors.New("model container has no clump chunk")
	ErrInsufficientRecordBytes = errors.New("record needs more bytes than remain")
)

// Geometry format flags (struct header of a Geometry chunk).
const (
	geomTextured  = 0x04
	geomPrelit    = 0x08
	geomNormals   = 0x10
	geomTextured2 = 0x80
)

// Record sizes on disk.
const (
	triangleRecordSize = 8
	vec3RecordSize     = 12
	texCoordRecordSize = 8
	rgbaRecordSize     = 4
)

// RGBA is a four-channel 8-bit color.
type RGBA struct {
	R, G, B, A uint8
}

// Triangle is one face record in canonical field order. The on-disk
// order differs; see decodeTriangle.
type Triangle struct {
	Vertex1    uint16
	Vertex2    uint16
	Vertex3    uint16
	MaterialID uint16
}

// Material holds the surface color and, when the material is textured,
// the referenced texture name. The name is an asset reference, not a
// loaded resource; mapping it to texture data is host logic.
type Material struct {
	Color   RGBA
	Texture string
}

// Model is the assembled result of decoding a DFF: flat vertex,
// triangle, material and texture-reference collections in document
// order, ready for a renderer. Triangle vertex indices and material ids
// are rebased when a clump carries several geometries; they are not
// range-checked here, consumers must treat out-of-range references as
// their own error class.
type Model struct {
	Version      RWVersion
	Vertices     []mgl32.Vec3
	Normals      []mgl32.Vec3
	UVs          [][2]float32
	Prelight     []RGBA
	Triangles    []Triangle
	Materials    []Material
	TexturePaths []string
}

// decodeTriangle reads one face record. The on-disk field order is
// (vertex2, vertex1, materialID, vertex3); the decoder reassigns it
// into canonical (vertex1, vertex2, vertex3, materialID) order. The
// remap matches the format's front-face winding and must be preserved
// exactly, it is not a transposition bug.
func decodeTriangle(b []byte) (Triangle, error) {
	if len(b) < triangleRecordSize {
		return Triangle{}, fmt.Errorf("%w: triangle record, got %d of %d", ErrInsufficientRecordBytes, len(b), triangleRecordSize)
	}
	return Triangle{
		Vertex2:    binary.LittleEndian.Uint16(b[0:2]),
		Vertex1:    binary.LittleEndian.Uint16(b[2:4]),
		MaterialID: binary.LittleEndian.Uint16(b[4:6]),
		Vertex3:    binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// decodeVec3 reads three consecutive little-endian float32 components.
func decodeVec3(b []byte) (mgl32.Vec3, error) {
	if len(b) < vec3RecordSize {
		return mgl32.Vec3{}, fmt.Errorf("%w: vector record, got %d of %d", ErrInsufficientRecordBytes, len(b), vec3RecordSize)
	}
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}, nil
}

// decodeTexCoord reads a UV pair.
func decodeTexCoord(b []byte) ([2]float32, error) {
	if len(b) < texCoordRecordSize {
		return [2]float32{}, fmt.Errorf("%w: texcoord record, got %d of %d", ErrInsufficientRecordBytes, len(b), texCoordRecordSize)
	}
	return [2]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
	}, nil
}

// decodeRGBA reads a four-byte color record.
func decodeRGBA(b []byte) (RGBA, error) {
	if len(b) < rgbaRecordSize {
		return RGBA{}, fmt.Errorf("%w: color record, got %d of %d", ErrInsufficientRecordBytes, len(b), rgbaRecordSize)
	}
	return RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// ParseDFF decodes a model container from a byte slice. The top-level
// chunk must be a clump; its geometry list, materials and texture
// references are folded into one Model. Chunk kinds with no decoder
// (frames, atomics, plugin extensions) are skipped without error.
func ParseDFF(data []byte) (*Model, error) {
	root, err := NewChunkReader(data).Next()
	if err == io.EOF {
		return nil, ErrNoClump
	}
	if err != nil {
		return nil, err
	}
	if root.Kind != ChunkClump {
		return nil, fmt.Errorf("%w: found %s", ErrNoClump, root.Kind)
	}

	m := &Model{Version: root.Version()}

	r := NewChunkReader(root.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if c.Kind == ChunkGeometryList {
			if err := m.assembleGeometryList(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// assembleGeometryList walks a geometry list chunk: a struct child
// carrying the geometry count, then that many Geometry chunks.
func (m *Model) assembleGeometryList(list *Chunk) error {
	r := NewChunkReader(list.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c.Kind == ChunkGeometry {
			if err := m.assembleGeometry(c); err != nil {
				return err
			}
		}
	}
}

// assembleGeometry folds one Geometry chunk into the model: the struct
// child holds the vertex and triangle records, the material list child
// the surface records. Indices of appended triangles are rebased onto
// the model's flat collections.
func (m *Model) assembleGeometry(geom *Chunk) error {
	vertexBase := uint16(len(m.Vertices))
	materialBase := uint16(len(m.Materials))

	r := NewChunkReader(geom.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch c.Kind {
		case ChunkStruct:
			if err := m.decodeGeometryStruct(c, vertexBase, materialBase); err != nil {
				return fmt.Errorf("geometry struct: %w", err)
			}
		case ChunkMaterialList:
			if err := m.assembleMaterialList(c); err != nil {
				return fmt.Errorf("material list: %w", err)
			}
		}
	}
}

// decodeGeometryStruct decodes the fixed-layout geometry records:
// header, optional prelight colors, optional texture coordinate sets,
// the triangle array, and per morph target the vertex and normal
// arrays. Only the first morph target's positions and normals are kept.
func (m *Model) decodeGeometryStruct(c *Chunk, vertexBase, materialBase uint16) error {
	b := c.Payload
	if len(b) < 16 {
		return fmt.Errorf("%w: geometry header, got %d of 16", ErrInsufficientRecordBytes, len(b))
	}
	format := binary.LittleEndian.Uint32(b[0:4])
	triangleCount := int(binary.LittleEndian.Uint32(b[4:8]))
	vertexCount := int(binary.LittleEndian.Uint32(b[8:12]))
	morphTargets := int(binary.LittleEndian.Uint32(b[12:16]))
	off := 16

	// Pre-3.4 files keep the ambient/specular/diffuse lighting triple
	// in the geometry itself.
	if !c.Version().AtLeast(3, 4) {
		off += 12
	}

	if format&geomPrelit != 0 {
		for i := 0; i < vertexCount; i++ {
			col, err := decodeRGBA(sliceFrom(b, off))
			if err != nil {
				return fmt.Errorf("prelight %d: %w", i, err)
			}
			m.Prelight = append(m.Prelight, col)
			off += rgbaRecordSize
		}
	}

	uvSets := int(format >> 16 & 0xFF)
	if uvSets == 0 {
		if format&geomTextured2 != 0 {
			uvSets = 2
		} else if format&geomTextured != 0 {
			uvSets = 1
		}
	}
	for set := 0; set < uvSets; set++ {
		for i := 0; i < vertexCount; i++ {
			uv, err := decodeTexCoord(sliceFrom(b, off))
			if err != nil {
				return fmt.Errorf("texcoord set %d entry %d: %w", set, i, err)
			}
			// Additional UV sets are consumed for layout but only the
			// first is retained.
			if set == 0 {
				m.UVs = append(m.UVs, uv)
			}
			off += texCoordRecordSize
		}
	}

	for i := 0; i < triangleCount; i++ {
		tri, err := decodeTriangle(sliceFrom(b, off))
		if err != nil {
			return fmt.Errorf("triangle %d: %w", i, err)
		}
		tri.Vertex1 += vertexBase
		tri.Vertex2 += vertexBase
		tri.Vertex3 += vertexBase
		tri.MaterialID += materialBase
		m.Triangles = append(m.Triangles, tri)
		off += triangleRecordSize
	}

	for target := 0; target < morphTargets; target++ {
		// Bounding sphere (center xyz + radius) then presence flags.
		if len(b)-off < 24 {
			return fmt.Errorf("%w: morph target %d header", ErrInsufficientRecordBytes, target)
		}
		hasVertices := binary.LittleEndian.Uint32(b[off+16:off+20]) != 0
		hasNormals := binary.LittleEndian.Uint32(b[off+20:off+24]) != 0
		off += 24

		if hasVertices {
			for i := 0; i < vertexCount; i++ {
				v, err := decodeVec3(sliceFrom(b, off))
				if err != nil {
					return fmt.Errorf("vertex %d: %w", i, err)
				}
				if target == 0 {
					m.Vertices = append(m.Vertices, v)
				}
				off += vec3RecordSize
			}
		}
		if hasNormals {
			for i := 0; i < vertexCount; i++ {
				n, err := decodeVec3(sliceFrom(b, off))
				if err != nil {
					return fmt.Errorf("normal %d: %w", i, err)
				}
				if target == 0 {
					m.Normals = append(m.Normals, n)
				}
				off += vec3RecordSize
			}
		}
	}

	return nil
}

// assembleMaterialList walks a material list chunk and appends its
// Material children in document order.
func (m *Model) assembleMaterialList(list *Chunk) error {
	r := NewChunkReader(list.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c.Kind == ChunkMaterial {
			if err := m.assembleMaterial(c); err != nil {
				return err
			}
		}
	}
}

// assembleMaterial decodes one Material chunk: the struct child holds
// flags, the RGBA color and the textured flag; a Texture child names
// the referenced texture asset.
func (m *Model) assembleMaterial(matChunk *Chunk) error {
	var mat Material

	r := NewChunkReader(matChunk.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch c.Kind {
		case ChunkStruct:
			// flags u32, color rgba, pad u32, textured u32; 3.4+ adds
			// the ambient/specular/diffuse triple, not kept here.
			if len(c.Payload) < 16 {
				return fmt.Errorf("%w: material struct, got %d of 16", ErrInsufficientRecordBytes, len(c.Payload))
			}
			col, err := decodeRGBA(c.Payload[4:8])
			if err != nil {
				return err
			}
			mat.Color = col
		case ChunkTexture:
			name, err := decodeTextureName(c)
			if err != nil {
				return err
			}
			mat.Texture = name
			if name != "" {
				m.TexturePaths = append(m.TexturePaths, name)
			}
		}
	}

	m.Materials = append(m.Materials, mat)
	return nil
}

// decodeTextureName extracts the texture name from a Texture chunk:
// its first String child is the texture name, the second the alpha
// mask name, which is ignored here.
func decodeTextureName(tex *Chunk) (string, error) {
	r := NewChunkReader(tex.Payload)
	for {
		c, err := r.Next()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if c.Kind == ChunkString {
			return gtaenc.FixedString(c.Payload), nil
		}
	}
}

// sliceFrom returns the tail of b starting at off, or an empty slice
// when off is past the end, letting record decoders report the short
// read themselves.
func sliceFrom(b []byte, off int) []byte {
	if off >= len(b) {
		return nil
	}
	return b[off:]
}
