package web

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/imgfactory/txdtools/pkg/dxt"
	"github.com/imgfactory/txdtools/pkg/txd"
)

// TextureInfo is the JSON listing of one texture.
type TextureInfo struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	AlphaName string `json:"alpha_name,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	HasAlpha  bool   `json:"has_alpha"`
	Mipmaps   int    `json:"mipmaps"`
	Decoded   bool   `json:"decoded"`
}

// DictionaryInfo is the JSON listing of a dictionary.
type DictionaryInfo struct {
	File     string        `json:"file"`
	Version  uint32        `json:"version"`
	Textures []TextureInfo `json:"textures"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	files, err := s.files()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, files)
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	d, _, err := s.load(file)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	info := DictionaryInfo{File: file, Version: d.Version, Textures: make([]TextureInfo, len(d.Textures))}
	for i := range d.Textures {
		t := &d.Textures[i]
		info.Textures[i] = TextureInfo{
			Index:     i,
			Name:      t.Name,
			AlphaName: t.AlphaName,
			Width:     t.Width,
			Height:    t.Height,
			Format:    t.Format.String(),
			HasAlpha:  t.HasAlpha,
			Mipmaps:   int(t.MipmapCount),
			Decoded:   t.Decoded(),
		}
	}
	s.writeJSON(w, info)
}

// handleTexture writes a texture as PNG; ?alpha=1 gives its alpha channel
// as a greyscale image.
func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	t, err := s.texture(r)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if !t.Decoded() {
		s.writeError(w, http.StatusUnprocessableEntity, errors.Errorf("texture %q was not decoded", t.Name))
		return
	}

	var img image.Image = t.Image()
	if r.URL.Query().Get("alpha") == "1" {
		img = dxt.ToNRGBA(t.AlphaPreview(), t.Width, t.Height)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.logger.Error("write png", "error", err)
	}
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	path, err := s.path(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+file+"\"")
	http.ServeFile(w, r, path)
}

// UploadResult reports what an upload wrote.
type UploadResult struct {
	Written int      `json:"written"`
	Dropped []string `json:"dropped,omitempty"`
}

// handleUpload replaces a texture's pixels with the PNG in form field "image"
// and rewrites the file. Rewriting drops textures that were not decoded, so
// it is refused with 409 Conflict unless the query carries force=1.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, _ := strconv.Atoi(vars["index"])
	force := r.URL.Query().Get("force") == "1"

	f, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "read form file"))
		return
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode png"))
		return
	}
	replacement := txd.NewTexture("", img)

	s.mu.Lock()
	defer s.mu.Unlock()

	d, path, err := s.load(vars["file"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err := d.Replace(index, replacement.Pixels, replacement.Width, replacement.Height); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var dropped []string
	for _, i := range d.Failed() {
		dropped = append(dropped, d.Textures[i].Name)
	}
	if len(dropped) > 0 && !force {
		s.writeError(w, http.StatusConflict, errors.Errorf(
			"saving would drop %d textures that were not decoded (%s), retry with force=1",
			len(dropped), strings.Join(dropped, ", ")))
		return
	}

	if err := s.save(path, d); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, UploadResult{Written: len(d.Textures) - len(dropped), Dropped: dropped})
}

func (s *Server) texture(r *http.Request) (*txd.Texture, error) {
	vars := mux.Vars(r)
	d, _, err := s.load(vars["file"])
	if err != nil {
		return nil, err
	}
	index, _ := strconv.Atoi(vars["index"])
	if index >= len(d.Textures) {
		return nil, errors.Wrapf(txd.ErrIndexOutOfRange, "texture %d of %d", index, len(d.Textures))
	}
	return &d.Textures[index], nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn("request failed", "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{err.Error()})
}
