// Package catalogd serves a local asset tree over the catalog protocol the
// agent consumes: a manifest of ids and content hashes plus the image bytes
// behind each id. It exists for self-hosting and development setups that
// don't sit behind a full photo-service proxy.
package catalogd

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/framesync/internal/domain"
)

type AssetIndex interface {
	Index() domain.Manifest
	Path(id domain.AssetID, hash domain.ContentHash) string
}

// Server is the catalog HTTP handler.
type Server struct {
	store AssetIndex
	mux   *http.ServeMux
}

// NewServer creates a new Server instance
func NewServer(store AssetIndex) *Server {
	s := &Server{
		store: store,
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /assets", s.handleAssets)
	s.mux.HandleFunc("GET /image/{id}", s.handleImage)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	index := s.store.Index()
	log.Debugf("Serving manifest with %d assets", len(index))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(index); err != nil {
		log.Warnf("Failed to write manifest: %v", err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAssetID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Not a valid UUID")
		return
	}

	hash, ok := s.store.Index()[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}

	path := s.store.Path(id, hash)
	f, err := os.Open(path)
	if err != nil {
		log.Warnf("Failed to open %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Failed to read asset")
		return
	}
	defer f.Close()

	ctype := mime.TypeByExtension(filepath.Ext(path))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)

	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}

	if _, err := io.Copy(w, f); err != nil {
		log.Warnf("Failed to stream %s: %v", path, err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
