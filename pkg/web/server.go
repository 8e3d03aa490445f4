// Package web serves the texture dictionaries of a directory over HTTP:
// listings as JSON, textures as PNG, and texture replacement by upload.
package web

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/imgfactory/txdtools/pkg/backup"
	"github.com/imgfactory/txdtools/pkg/txd"
)

// Server browses and edits the .txd files of one directory.
type Server struct {
	dir    string
	backup bool
	opts   []txd.Option
	logger *slog.Logger

	// mu serialises uploads so two edits of one file cannot interleave.
	mu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithTXDOptions passes parse and serialise options to every dictionary.
func WithTXDOptions(opts ...txd.Option) Option {
	return func(s *Server) {
		s.opts = append(s.opts, opts...)
	}
}

// WithBackup keeps a backup of each file before the first upload changes it.
func WithBackup(keep bool) Option {
	return func(s *Server) {
		s.backup = keep
	}
}

// WithLogger sets the logger for handler errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer returns a server for dir.
func NewServer(dir string, opts ...Option) *Server {
	s := &Server{dir: dir, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes wrapped in request logging and panic recovery.
// Access logs go to accessLog, nil disables them.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/txd", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/json/txd/{file}", s.handleDictionary).Methods(http.MethodGet)
	r.HandleFunc("/png/txd/{file}/{index:[0-9]+}", s.handleTexture).Methods(http.MethodGet)
	r.HandleFunc("/dump/txd/{file}", s.handleDump).Methods(http.MethodGet)
	r.HandleFunc("/upload/txd/{file}/{index:[0-9]+}", s.handleUpload).Methods(http.MethodPost)

	var h http.Handler = r
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler()(h)
}

// ListenAndServe serves on addr with access logs on stdout.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr, "dir", s.dir)
	return http.ListenAndServe(addr, s.Handler(os.Stdout))
}

// files returns the sorted .txd file names of the directory.
func (s *Server) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", s.dir)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".txd") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// path resolves a file route variable inside the directory.
func (s *Server) path(file string) (string, error) {
	if file != filepath.Base(file) || !strings.EqualFold(filepath.Ext(file), ".txd") {
		return "", errors.Errorf("invalid file name %q", file)
	}
	return filepath.Join(s.dir, file), nil
}

func (s *Server) load(file string) (*txd.Dictionary, string, error) {
	path, err := s.path(file)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read %s", file)
	}
	d, err := txd.Parse(data, s.opts...)
	if err != nil {
		return nil, "", errors.Wrapf(err, "parse %s", file)
	}
	return d, path, nil
}

func (s *Server) save(path string, d *txd.Dictionary) error {
	data, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	saved, err := backup.WriteFile(path, data, s.backup)
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if saved != "" {
		s.logger.Info("backup kept", "path", saved)
	}
	return nil
}
