package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ReloadResponse reports the registry after a reload.
type ReloadResponse struct {
	Total int `json:"total"`
	User  int `json:"user"`
}

// CheckScriptRequest carries a user script to check.
type CheckScriptRequest struct {
	Script string `json:"script"`
}

// CheckScriptResponse is the outcome of a script check.
type CheckScriptResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) reloadResponse() ReloadResponse {
	return ReloadResponse{
		Total: len(s.manager.Commands()),
		User:  len(s.manager.UserCommands()),
	}
}

// reload handles POST /reload.
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	s.manager.LoadCommands(r.Context())
	writeJSON(w, http.StatusOK, s.reloadResponse())
}

// reloadNamespace handles POST /reload/{namespace}.
func (s *Server) reloadNamespace(w http.ResponseWriter, r *http.Request) {
	s.manager.LoadUserCommands(r.Context(), chi.URLParam(r, "namespace"))
	writeJSON(w, http.StatusOK, s.reloadResponse())
}

// checkScript handles POST /script/check. Nothing is registered.
func (s *Server) checkScript(w http.ResponseWriter, r *http.Request) {
	var req CheckScriptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.manager.CheckUserScript(r.Context(), req.Script); err != nil {
		writeJSON(w, http.StatusOK, CheckScriptResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, CheckScriptResponse{OK: true})
}
