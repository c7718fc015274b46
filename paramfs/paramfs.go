// Package paramfs exposes loaded units and their parameters over HTTP, in the
// role a sysfs parameter directory plays for kernel modules.
//
// Routes:
//
//	GET /units                              loaded units
//	GET /units/{unit}/parameters            readable parameters of a unit
//	GET /units/{unit}/parameters/{param}    one parameter (?format=text for the bare value)
//	PUT /units/{unit}/parameters/{param}    write the request body as the new value
//	GET /log?since=N                        host log records after sequence N
//	GET /metrics                            Prometheus metrics, when configured
package paramfs

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/klog"
)

// MaxValueSize bounds a PUT body, matching a single page of parameter text.
const MaxValueSize = 4096

// Backend is the parameter surface paramfs serves. *unitmod.Host implements it.
type Backend interface {
	Units() []unitmod.UnitInfo
	ListParams(unit string) ([]unitmod.ParamInfo, error)
	ReadParam(unit, param string) (unitmod.Value, error)
	WriteParam(unit, param, text string) error
}

// LogSource supplies log records for GET /log.
type LogSource interface {
	Since(seq uint64) []klog.Record
}

var _ Backend = (*unitmod.Host)(nil)
var _ LogSource = (*klog.Ring)(nil)

// Option configures the handler.
type Option func(*server)

// WithLog serves GET /log from src.
func WithLog(src LogSource) Option {
	return func(s *server) { s.log = src }
}

// WithMetrics serves GET /metrics from g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *server) { s.gatherer = g }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l unitmod.Logger) Option {
	return func(s *server) { s.logger = l }
}

type server struct {
	backend  Backend
	log      LogSource
	gatherer prometheus.Gatherer
	logger   unitmod.Logger
}

// New returns a handler serving backend.
func New(backend Backend, opts ...Option) http.Handler {
	s := &server{backend: backend}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/units", s.handleUnits)
	r.Route("/units/{unit}/parameters", func(r chi.Router) {
		r.Get("/", s.handleListParams)
		r.Get("/{param}", s.handleReadParam)
		r.Put("/{param}", s.handleWriteParam)
	})
	if s.log != nil {
		r.Get("/log", s.handleLog)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	return r
}

// ParamView is the JSON form of a parameter. Value is a number for integer
// parameters and a string for string parameters; it is null when the stored
// bytes are not valid text.
type ParamView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Perm        string `json:"perm"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value"`
	Invalid     bool   `json:"invalid,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Units())
}

func (s *server) handleListParams(w http.ResponseWriter, r *http.Request) {
	infos, err := s.backend.ListParams(chi.URLParam(r, "unit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ParamView, 0, len(infos))
	for _, info := range infos {
		out = append(out, view(info.Name, info.Type, info.Perm, info.Description, info.Value))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleReadParam(w http.ResponseWriter, r *http.Request) {
	unit, name := chi.URLParam(r, "unit"), chi.URLParam(r, "param")
	value, err := s.backend.ReadParam(unit, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		text, err := textOf(value)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, text+"\n")
		return
	}

	infos, err := s.backend.ListParams(unit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, info := range infos {
		if info.Name == name {
			writeJSON(w, http.StatusOK, view(info.Name, info.Type, info.Perm, info.Description, value))
			return
		}
	}
	writeJSON(w, http.StatusOK, view(name, value.Type(), 0, "", value))
}

func (s *server) handleWriteParam(w http.ResponseWriter, r *http.Request) {
	unit, name := chi.URLParam(r, "unit"), chi.URLParam(r, "param")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxValueSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.backend.WriteParam(unit, name, string(body)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLog(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "since: " + err.Error()})
			return
		}
		since = n
	}
	records := s.log.Since(since)
	if records == nil {
		records = []klog.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError && s.logger != nil {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// StatusFor maps a parameter surface error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, unitmod.ErrUnitNotLoaded), errors.Is(err, unitmod.ErrParamNotFound):
		return http.StatusNotFound
	case errors.Is(err, unitmod.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, unitmod.ErrTypeMismatch), errors.Is(err, unitmod.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, unitmod.ErrEncoding):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func view(name string, t unitmod.ParamType, perm unitmod.Permission, desc string, v unitmod.Value) ParamView {
	pv := ParamView{Name: name, Type: t.String(), Perm: perm.String(), Description: desc}
	switch v.Type() {
	case unitmod.ParamInt:
		pv.Value, _ = v.Int()
	case unitmod.ParamString:
		if text, err := v.Text(); err == nil {
			pv.Value = text
		} else {
			pv.Invalid = true
		}
	}
	return pv
}

func textOf(v unitmod.Value) (string, error) {
	if v.Type() == unitmod.ParamInt {
		n, err := v.Int()
		return strconv.FormatInt(n, 10), err
	}
	return v.Text()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
