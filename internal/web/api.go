// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"projdex/internal/events"
	"projdex/internal/inventory"
	"projdex/internal/launcher"
	"projdex/internal/project"
	"projdex/internal/stack"
)

// ProjectResponse is the JSON representation of a catalog entry.
type ProjectResponse struct {
	project.Project
	DisplayName string             `json:"display_name"`
	Launcher    *launcher.Launcher `json:"launcher"`
}

// ProjectsListResponse wraps the sorted catalog.
type ProjectsListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

// OpenResponse is returned by POST /api/projects/open.
type OpenResponse struct {
	Project ProjectResponse `json:"project"`
	Command string          `json:"command,omitempty"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type topRequest struct {
	Path string `json:"path"`
	Top  bool   `json:"top"`
}

type aliasRequest struct {
	Path  string `json:"path"`
	Alias string `json:"alias"`
}

// maxBody bounds request bodies; every request is a small JSON object.
const maxBody = 64 << 10

// detectTimeout bounds a batch classification pass started over HTTP.
const detectTimeout = 10 * time.Minute

func (s *Server) toResponse(p project.Project, reg *launcher.Registry) ProjectResponse {
	resp := ProjectResponse{Project: p, DisplayName: p.DisplayName()}
	if l, ok := reg.Resolve(p.LauncherID); ok {
		resp.Launcher = &l
	}
	return resp
}

// listResponse sorts projects by the configured order, or by override when
// it names a valid key.
func (s *Server) listResponse(projects []project.Project, override string) ProjectsListResponse {
	st := s.settings()
	by := st.SortBy
	if o, ok := project.ParseSortBy(override); ok {
		by = o
	}
	sorted := project.Clone(projects)
	project.Sort(sorted, by)

	result := make([]ProjectResponse, 0, len(sorted))
	for _, p := range sorted {
		result = append(result, s.toResponse(p, st.Launchers))
	}
	return ProjectsListResponse{Projects: result, Count: len(result)}
}

// handleGetProjects handles GET /api/projects. An optional ?sort= overrides
// the configured order.
func (s *Server) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.engine.Catalog()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listResponse(projects, r.URL.Query().Get("sort")))
}

// handleScan handles POST /api/scan. The rescan runs to completion even if
// the client disconnects.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	projects, err := s.engine.Scan(context.WithoutCancel(r.Context()), s.settings().Scan)
	s.notify(events.ScanFinishedMsg{Projects: projects, Err: err})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listResponse(projects, ""))
}

// handleDetect handles POST /api/detect. With {"path": ...} it classifies a
// single directory; with an empty body it runs a batch pass over the catalog
// and streams progress on /api/events.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Path != "" {
		tag, err := s.engine.ClassifyOne(req.Path)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": req.Path, "project_type": tag})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), detectTimeout)
	defer cancel()
	projects, err := s.engine.ClassifyBatch(ctx, func(percent int) {
		s.events.Publish(progressEvent(percent))
		s.notify(events.DetectProgressMsg{Percent: percent})
	})
	s.notify(events.DetectFinishedMsg{Projects: projects, Err: err})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.listResponse(projects, ""))
}

// handleAddCustom handles POST /api/projects/custom.
func (s *Server) handleAddCustom(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeRequired(r, &req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	p, err := s.engine.AddCustom(req.Path)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toResponse(p, s.settings().Launchers))
}

// handleRemoveCustom handles DELETE /api/projects/custom?path=.
func (s *Server) handleRemoveCustom(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.engine.RemoveCustom(path); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handleOpen handles POST /api/projects/open. It records the open and returns
// the resolved launcher command; launching is left to the caller.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeRequired(r, &req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	p, err := s.engine.RecordOpen(req.Path)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	resp := OpenResponse{Project: s.toResponse(p, s.settings().Launchers)}
	if resp.Project.Launcher != nil {
		resp.Command = resp.Project.Launcher.CommandLine(p.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetTop handles POST /api/projects/top.
func (s *Server) handleSetTop(w http.ResponseWriter, r *http.Request) {
	var req topRequest
	if err := decodeRequired(r, &req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	p, err := s.engine.SetTop(req.Path, req.Top)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(p, s.settings().Launchers))
}

// handleSetAlias handles POST /api/projects/alias. An empty alias clears it.
func (s *Server) handleSetAlias(w http.ResponseWriter, r *http.Request) {
	var req aliasRequest
	if err := decodeRequired(r, &req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	p, err := s.engine.SetAlias(req.Path, req.Alias)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(p, s.settings().Launchers))
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, inventory.ErrNotCustom):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrAlreadyPresent), errors.Is(err, inventory.ErrNoCatalog):
		return http.StatusConflict
	case errors.Is(err, inventory.ErrPathNotExist), errors.Is(err, inventory.ErrNotDirectory),
		errors.Is(err, stack.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// decodeRequired decodes a JSON body into v.
func decodeRequired(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
}

// decodeOptional decodes a JSON body into v; an empty body is allowed.
func decodeOptional(r *http.Request, v any) error {
	err := decodeRequired(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
