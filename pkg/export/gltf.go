// Package export converts decoded models into glTF documents.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/leodutra/bevy-city/pkg/formats"
)

// ErrEmptyModel is returned for models with no vertex data.
var ErrEmptyModel = errors.New("model has no vertices")

// BuildDocument converts a decoded model into a glTF document holding a
// single mesh, one primitive per material. Positions and normals are
// rebased from the game's Z-up frame into glTF's Y-up frame; everything
// else carries over as decoded.
func BuildDocument(name string, model *formats.Model) (*gltf.Document, error) {
	if len(model.Vertices) == 0 {
		return nil, ErrEmptyModel
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "bevy-city"

	positions := make([][3]float32, len(model.Vertices))
	for i, v := range model.Vertices {
		positions[i] = [3]float32{v.X(), v.Z(), -v.Y()}
	}
	positionAccessor := modeler.WritePosition(doc, positions)

	attributes := map[string]uint32{
		"POSITION": positionAccessor,
	}

	if len(model.Normals) == len(model.Vertices) {
		normals := make([][3]float32, len(model.Normals))
		for i, n := range model.Normals {
			normals[i] = [3]float32{n.X(), n.Z(), -n.Y()}
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}

	if len(model.UVs) == len(model.Vertices) {
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, model.UVs)
	}

	if len(model.Prelight) == len(model.Vertices) {
		colors := make([][4]uint8, len(model.Prelight))
		for i, c := range model.Prelight {
			colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
		}
		attributes["COLOR_0"] = modeler.WriteColor(doc, colors)
	}

	gltfMesh := &gltf.Mesh{Name: name}

	for iMat := 0; iMat < materialCount(model); iMat++ {
		indices := make([]uint32, 0, len(model.Triangles)*3)
		for _, tri := range model.Triangles {
			if int(tri.MaterialID) != iMat {
				continue
			}
			indices = append(indices, uint32(tri.Vertex1), uint32(tri.Vertex2), uint32(tri.Vertex3))
		}
		if len(indices) == 0 {
			continue
		}

		indicesAccessor := modeler.WriteIndices(doc, indices)
		primitive := &gltf.Primitive{
			Indices:    gltf.Index(indicesAccessor),
			Attributes: attributes,
		}
		if iMat < len(model.Materials) {
			primitive.Material = gltf.Index(exportMaterial(doc, name, iMat, model.Materials[iMat]))
		}
		gltfMesh.Primitives = append(gltfMesh.Primitives, primitive)
	}

	doc.Meshes = append(doc.Meshes, gltfMesh)
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	return doc, nil
}

// materialCount counts one slot per referenced material. Triangles may
// name a material the material list never defined; those still get a
// primitive, just without a glTF material.
func materialCount(model *formats.Model) int {
	max := len(model.Materials)
	for _, tri := range model.Triangles {
		if int(tri.MaterialID) >= max {
			max = int(tri.MaterialID) + 1
		}
	}
	return max
}

func exportMaterial(doc *gltf.Document, meshName string, index int, mat formats.Material) uint32 {
	name := mat.Texture
	if name == "" {
		name = fmt.Sprintf("%s_material_%d", meshName, index)
	}

	color := new([4]float32)
	*color = [4]float32{
		float32(mat.Color.R) / 255,
		float32(mat.Color.G) / 255,
		float32(mat.Color.B) / 255,
		float32(mat.Color.A) / 255,
	}

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
		},
	})
	return uint32(len(doc.Materials) - 1)
}

// Encode writes the document to w in the binary container format.
func Encode(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// Save writes the document to path; a .glb extension selects the
// binary container.
func Save(doc *gltf.Document, path string) error {
	if isBinaryPath(path) {
		return gltf.SaveBinary(doc, path)
	}
	return gltf.Save(doc, path)
}

func isBinaryPath(path string) bool {
	return len(path) >= 4 && path[len(path)-4:] == ".glb"
}
