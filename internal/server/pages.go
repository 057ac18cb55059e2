package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/vincentngwk/GIT-ML-DS/internal/report"
	"github.com/vincentngwk/GIT-ML-DS/internal/session"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

const awaitingMsg = "Awaiting for CSV file to be uploaded."

var pageTmpl = template.Must(template.New("page").Funcs(widget.Funcs).Parse(pageHTML))

type pageData struct {
	Base        string
	ExampleURL  string
	MaxUploadMB int64
	State       session.State
	Flash       string
	Error       string
	Page        *report.Page
	Report      template.HTML
}

func (d pageData) Awaiting() bool { return d.State == session.AwaitingInput }

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := pageData{
		Base:        s.opt.BasePath,
		ExampleURL:  s.opt.ExampleCSVURL,
		MaxUploadMB: s.opt.MaxUploadBytes >> 20,
		State:       sess.State(),
		Flash:       sess.TakeFlash(),
	}
	code := http.StatusOK
	ds, err := s.resolver.Resolve(sess)
	if err == nil && ds != nil {
		var page *report.Page
		page, err = s.orch.Render(r.Context(), ds)
		if err == nil {
			data.Page = page
			// produced by html/template
			data.Report = template.HTML(page.View.Body)
		}
	}
	if err != nil {
		slog.Error("render page", "session", sess.ID, "error", err)
		data.Error = err.Error()
		code = errorStatus(err)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		slog.Error("execute page template", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	render.Status(r, code)
	render.HTML(w, r, buf.String())
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)

	name, data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		result := "missing"
		if errors.As(err, &tooLarge) {
			result = "too_large"
			err = fmt.Errorf("file exceeds the %s upload limit: %w", formatBytes(s.opt.MaxUploadBytes), err)
		}
		s.metrics.ObserveUpload(result)
		s.fail(w, r, sess, err)
		return
	}
	if _, err := s.resolver.OnUpload(r.Context(), sess, name, data); err != nil {
		s.metrics.ObserveUpload("invalid")
		s.fail(w, r, sess, err)
		return
	}
	s.metrics.ObserveUpload("ok")
	s.done(w, r, sess)
}

func readUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("no file selected: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return hdr.Filename, data, nil
}

func (s *Server) example(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if _, err := s.resolver.OnExample(r.Context(), sess); err != nil {
		s.fail(w, r, sess, err)
		return
	}
	s.done(w, r, sess)
}

// reset discards the session and starts a fresh one.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	old := sessionFrom(r)
	s.resolver.Reset(old)
	s.store.Delete(old.ID)
	fresh := s.store.New()
	s.setCookie(w, fresh)
	s.done(w, r, fresh)
}

// done answers a successful form post: JSON for API clients, otherwise a
// redirect back to the page.
func (s *Server) done(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if render.GetAcceptedContentType(r) == render.ContentTypeJSON {
		ds, _ := s.resolver.Resolve(sess)
		jsonOK(w, r, "ok", StateResponse{Session: sess.ID, State: sess.State(), Dataset: datasetInfo(ds)})
		return
	}
	http.Redirect(w, r, s.opt.BasePath+"/", http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if render.GetAcceptedContentType(r) == render.ContentTypeJSON {
		sess.TakeFlash()
		code := errorStatus(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadRequest
		}
		jsonError(w, r, code, err.Error())
		return
	}
	sess.SetFlash(err.Error())
	http.Redirect(w, r, s.opt.BasePath+"/", http.StatusSeeOther)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
