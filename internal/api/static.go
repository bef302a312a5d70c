package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// StaticFileHandler serves the dashboard files with an index.html fallback
// for client-side routes.
type StaticFileHandler struct {
	dir    string
	fs     http.Handler
	logger *logger.Logger
}

// NewStaticFileHandler creates a handler rooted at dir.
func NewStaticFileHandler(dir string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		dir:    dir,
		fs:     http.FileServer(http.Dir(dir)),
		logger: log.Named("api-static"),
	}
}

func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean(strings.TrimPrefix(r.URL.Path, "/")))

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		index := filepath.Join(h.dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			h.logger.Debug("Static file not found", logger.String("path", r.URL.Path))
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}
	h.fs.ServeHTTP(w, r)
}
