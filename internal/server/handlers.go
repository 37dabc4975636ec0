package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/zenui/zendiagram/pkg/buildinfo"
	"github.com/zenui/zendiagram/pkg/document"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) (int, zerrors.Code) {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, zerrors.ErrCodeInvalidInput
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, zerrors.ErrCodeTimeout
	}
	code := zerrors.GetCode(err)
	switch code {
	case zerrors.ErrCodeInvalidInput, zerrors.ErrCodeInvalidDocument, zerrors.ErrCodeInvalidStrategy,
		zerrors.ErrCodeInvalidFormat, zerrors.ErrCodeInvalidID, zerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest, code
	case zerrors.ErrCodeNotFound, zerrors.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	case zerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, code
	case zerrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests, code
	case zerrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity, code
	}
	return http.StatusInternalServerError, zerrors.ErrCodeInternal
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	body := errorBody{
		Error:     zerrors.UserMessage(err),
		Code:      string(code),
		Field:     zerrors.FieldOf(err),
		RequestID: RequestID(r.Context()),
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", body.RequestID)
		body.Error, body.Field = "internal server error", ""
	}
	writeJSON(w, status, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "zendiagram",
		"version": buildinfo.Version,
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, zerrors.New(zerrors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}

// documentFormat picks the decoder from the Content-Type header.
func documentFormat(r *http.Request) document.Format {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/toml", "text/toml", "application/x-toml":
		return document.FormatTOML
	}
	return document.FormatJSON
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	data, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}
	return pipeline.Load(r.Context(), data, documentFormat(r), "request "+RequestID(r.Context()))
}

func queryFloat(q map[string][]string, key string) (float64, error) {
	v := firstOf(q, key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, zerrors.New(zerrors.ErrCodeInvalidInput, "%s must be a number, got %q", key, v)
	}
	return f, nil
}

func queryBool(q map[string][]string, key string) (*bool, error) {
	v := firstOf(q, key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, zerrors.New(zerrors.ErrCodeInvalidInput, "%s must be true or false, got %q", key, v)
	}
	return &b, nil
}

func firstOf(q map[string][]string, key string) string {
	if vs := q[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// layoutOptions reads layout options from the query string.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Strategy: firstOf(q, "strategy"),
		ActiveID: firstOf(q, "select"),
		Logger:   s.logger,
	}
	var err error
	if opts.Width, err = queryFloat(q, "width"); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(q, "height"); err != nil {
		return opts, err
	}
	if opts.NodeSpacing, err = queryFloat(q, "spacing"); err != nil {
		return opts, err
	}
	if v := firstOf(q, "iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, zerrors.New(zerrors.ErrCodeInvalidInput, "iterations must be a non-negative integer, got %q", v)
		}
		opts.Iterations = n
	}
	if opts.AutoLayout, err = queryBool(q, "auto_layout"); err != nil {
		return opts, err
	}
	refresh, err := queryBool(q, "refresh")
	if err != nil {
		return opts, err
	}
	opts.Refresh = refresh != nil && *refresh
	return opts, nil
}

// renderOptions adds the render options and the single output format.
func (s *Server) renderOptions(r *http.Request, opts *pipeline.Options) error {
	q := r.URL.Query()
	format := firstOf(q, "format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}
	opts.Formats = []string{format}
	opts.Renderer = firstOf(q, "renderer")
	opts.Graphviz = firstOf(q, "graphviz_layout")

	var err error
	if opts.Scale, err = queryFloat(q, "scale"); err != nil {
		return err
	}
	if opts.Grid, err = queryFloat(q, "grid"); err != nil {
		return err
	}
	if firstOf(q, "margin") != "" {
		m, err := queryFloat(q, "margin")
		if err != nil {
			return err
		}
		opts.Margin = &m
	}
	noLabels, err := queryBool(q, "no_labels")
	if err != nil {
		return err
	}
	opts.NoLabels = noLabels != nil && *noLabels
	return nil
}

func cacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.loadDocument(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := document.MarshalSnapshot(snap)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeArtifact(w, pipeline.FormatJSON, data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r)
	if err == nil {
		err = s.renderOptions(r, &opts)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.loadDocument(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	format := opts.Formats[0]
	writeArtifact(w, format, res.Artifacts[format])
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{Logger: s.logger}
	if err := s.renderOptions(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := document.UnmarshalSnapshot(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), snap, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	format := opts.Formats[0]
	writeArtifact(w, format, artifacts[format])
}
