package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/parser"
	"github.com/vincentngwk/GIT-ML-DS/internal/report"
	"github.com/vincentngwk/GIT-ML-DS/internal/session"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

// APIResponse is the envelope of every JSON answer. Status 0 means success.
type APIResponse struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

// StateResponse describes what a session currently shows.
type StateResponse struct {
	Session string        `json:"session"`
	State   session.State `json:"state"`
	Dataset *DatasetInfo  `json:"dataset,omitempty"`
	Flash   string        `json:"flash,omitempty"`
}

// DatasetInfo is the shape of a resolved dataset.
type DatasetInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Source string   `json:"source"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Names  []string `json:"columns"`
}

func apiCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	})
}

func jsonOK(w http.ResponseWriter, r *http.Request, msg string, data interface{}) {
	render.JSON(w, r, APIResponse{Status: 0, Msg: msg, Data: data})
}

func jsonError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, APIResponse{Status: code, Msg: msg})
}

func datasetInfo(ds *dataset.Dataset) *DatasetInfo {
	if ds == nil {
		return nil
	}
	return &DatasetInfo{
		ID:     ds.ID,
		Name:   ds.Name,
		Source: string(ds.Source),
		Rows:   ds.Nrow(),
		Cols:   ds.Ncol(),
		Names:  ds.Names(),
	}
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	resp := StateResponse{Session: sess.ID, State: sess.State(), Flash: sess.TakeFlash()}
	ds, err := s.resolver.Resolve(sess)
	if err != nil {
		jsonError(w, r, errorStatus(err), err.Error())
		return
	}
	resp.Dataset = datasetInfo(ds)
	jsonOK(w, r, "ok", resp)
}

// reportAPI serves the profile report. format selects a registered renderer;
// json (the default) wraps the report in the API envelope.
func (s *Server) reportAPI(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.resolveOrAwait(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	var rdr widget.Renderer
	if format != "" && format != "json" {
		var err error
		if rdr, err = widget.Get(format); err != nil {
			jsonError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	rep, _, err := s.orch.Profile(r.Context(), ds)
	if err != nil {
		jsonError(w, r, errorStatus(err), err.Error())
		return
	}
	if rdr == nil {
		jsonOK(w, r, "ok", rep)
		return
	}
	view, err := rdr.Render(rep)
	if err != nil {
		jsonError(w, r, http.StatusInternalServerError, "render report: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", view.ContentType)
	_, _ = w.Write(view.Body)
}

// table pages through the raw rows with offset and limit query parameters.
func (s *Server) table(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.resolveOrAwait(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	offset, err := cast.ToIntE(defaultString(q.Get("offset"), "0"))
	if err != nil || offset < 0 {
		jsonError(w, r, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := cast.ToIntE(defaultString(q.Get("limit"), cast.ToString(max(s.opt.TableMaxRows, 0))))
	if err != nil || limit < 0 {
		jsonError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	end := ds.Nrow()
	if limit > 0 {
		end = min(end, offset+limit)
	}
	rows := ds.Rows(offset, end)
	if rows == nil {
		rows = [][]string{}
	}
	jsonOK(w, r, "ok", report.Table{
		Columns:   ds.Names(),
		Rows:      rows,
		TotalRows: ds.Nrow(),
		TotalCols: ds.Ncol(),
		Truncated: offset > 0 || end < ds.Nrow(),
	})
}

func (s *Server) resolveOrAwait(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := s.resolver.Resolve(sessionFrom(r))
	if err != nil {
		jsonError(w, r, errorStatus(err), err.Error())
		return nil, false
	}
	if ds == nil {
		jsonError(w, r, http.StatusConflict, awaitingMsg)
		return nil, false
	}
	return ds, true
}

// errorStatus maps input problems to 422 and everything else to 500.
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case dataset.IsInputError(err), errors.Is(err, parser.ErrUnsupported):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// HealthController answers liveness and readiness probes.
type HealthController struct {
	store *session.Store
}

// NewHealthController creates a health controller.
func NewHealthController(store *session.Store) *HealthController {
	return &HealthController{store: store}
}

// HealthResponse is the probe payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Sessions  int       `json:"sessions"`
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ok", Timestamp: time.Now(), Service: "eda-app", Sessions: c.store.Len()})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ready", Timestamp: time.Now(), Service: "eda-app", Sessions: c.store.Len()})
}
