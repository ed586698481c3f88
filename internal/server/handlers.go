package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/leodutra/bevy-city/internal/assets"
	"github.com/leodutra/bevy-city/pkg/export"
	"github.com/leodutra/bevy-city/pkg/formats"
)

// handleList returns the names of all files across mounted archives.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{"files": s.assets.List()})
}

// handleFile returns raw asset bytes by path.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	data, err := s.assets.Load(path)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// instanceJSON is the wire shape of one placement record.
type instanceJSON struct {
	ModelName string     `json:"model_name"`
	Interior  uint32     `json:"interior"`
	Position  [3]float32 `json:"position"`
	Scale     [3]float32 `json:"scale"`
	Rotation  [4]float32 `json:"rotation"`
	LOD       bool       `json:"lod"`
}

// handleIPL decodes a placement list and returns its instances.
func (s *Server) handleIPL(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	data, err := s.assets.Load(path)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	ipl, err := formats.ParseIPL(data)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("decoding %s: %w", path, err))
		return
	}

	instances := make([]instanceJSON, len(ipl.Instances))
	for i, inst := range ipl.Instances {
		instances[i] = instanceJSON{
			ModelName: inst.ModelName,
			Interior:  inst.Interior,
			Position:  inst.Position,
			Scale:     inst.Scale,
			Rotation:  [4]float32{inst.Rotation.V[0], inst.Rotation.V[1], inst.Rotation.V[2], inst.Rotation.W},
			LOD:       assets.IsLODName(inst.ModelName),
		}
	}

	// Report the sections carried as raw lines; inst is already
	// decoded above.
	sections := make([]string, 0, len(ipl.Sections))
	for name := range ipl.Sections {
		if name == "inst" {
			continue
		}
		sections = append(sections, name)
	}
	sort.Strings(sections)

	s.writeJSON(w, map[string]any{
		"instances": instances,
		"sections":  sections,
	})
}

// modelJSON summarises a decoded model container.
type modelJSON struct {
	Version   string         `json:"version"`
	Vertices  int            `json:"vertices"`
	Normals   int            `json:"normals"`
	UVs       int            `json:"uvs"`
	Prelight  int            `json:"prelight"`
	Triangles int            `json:"triangles"`
	Materials []materialJSON `json:"materials"`
	Textures  []string       `json:"textures"`
}

type materialJSON struct {
	Color   [4]uint8 `json:"color"`
	Texture string   `json:"texture,omitempty"`
}

// handleDFF decodes a model container by model name and returns a
// summary of its contents.
func (s *Server) handleDFF(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	model, err := s.loadModel(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	summary := modelJSON{
		Version:   model.Version.String(),
		Vertices:  len(model.Vertices),
		Normals:   len(model.Normals),
		UVs:       len(model.UVs),
		Prelight:  len(model.Prelight),
		Triangles: len(model.Triangles),
		Textures:  model.TexturePaths,
	}
	for _, mat := range model.Materials {
		summary.Materials = append(summary.Materials, materialJSON{
			Color:   [4]uint8{mat.Color.R, mat.Color.G, mat.Color.B, mat.Color.A},
			Texture: mat.Texture,
		})
	}

	s.writeJSON(w, summary)
}

// handleGLTF decodes a model and streams it back as binary glTF.
func (s *Server) handleGLTF(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	model, err := s.loadModel(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	doc, err := export.BuildDocument(name, model)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".glb"))
	if err := export.Encode(w, doc); err != nil {
		s.log.Error("streaming model", zap.String("model", name), zap.Error(err))
	}
}

func (s *Server) loadModel(name string) (*formats.Model, error) {
	data, err := s.assets.Load(assets.ModelPath(name))
	if err != nil {
		return nil, err
	}
	model, err := formats.ParseDFF(data)
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", name, err)
	}
	return model, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
