package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/sentence"
)

// InputRequest carries raw input for preview and execute.
type InputRequest struct {
	Input string `json:"input"`
}

// PreviewResponse is the result of a preview request.
type PreviewResponse struct {
	Command command.Summary `json:"command"`
	Verb    string          `json:"verb"`
	Match   string          `json:"match"`
	Args    command.Args    `json:"args"`
	OK      bool            `json:"ok"`
	Content string          `json:"content"`
}

// ExecuteResponse is the result of an execute request.
type ExecuteResponse struct {
	Command command.Summary `json:"command"`
	OK      bool            `json:"ok"`
}

// listCommands handles GET /command. The optional kind query parameter
// selects "builtin" or "user" commands.
func (s *Server) listCommands(w http.ResponseWriter, r *http.Request) {
	var cmds []*command.Command
	switch r.URL.Query().Get("kind") {
	case "builtin":
		cmds = s.manager.BuiltinCommands()
	case "user":
		cmds = s.manager.UserCommands()
	case "":
		cmds = s.manager.Commands()
	default:
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "kind must be builtin or user")
		return
	}

	out := make([]command.Summary, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Summarize())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *command.Command {
	uuid := chi.URLParam(r, "uuid")
	cmd := s.manager.GetCommandByUUID(uuid)
	if cmd == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "command not found: "+uuid)
	}
	return cmd
}

// getCommand handles GET /command/{uuid}.
func (s *Server) getCommand(w http.ResponseWriter, r *http.Request) {
	if cmd := s.lookup(w, r); cmd != nil {
		writeJSON(w, http.StatusOK, cmd.Summarize())
	}
}

// enableCommand handles POST /command/{uuid}/enable.
func (s *Server) enableCommand(w http.ResponseWriter, r *http.Request) {
	if cmd := s.lookup(w, r); cmd != nil {
		s.manager.EnableCommand(cmd)
		writeJSON(w, http.StatusOK, cmd.Summarize())
	}
}

// disableCommand handles POST /command/{uuid}/disable.
func (s *Server) disableCommand(w http.ResponseWriter, r *http.Request) {
	if cmd := s.lookup(w, r); cmd != nil {
		s.manager.DisableCommand(cmd)
		writeJSON(w, http.StatusOK, cmd.Summarize())
	}
}

// listNamespaces handles GET /namespace.
func (s *Server) listNamespaces(w http.ResponseWriter, r *http.Request) {
	ns := s.manager.Namespaces()
	if ns == nil {
		ns = []string{}
	}
	writeJSON(w, http.StatusOK, ns)
}

// parse resolves the request input, writing the error response itself.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) *sentence.Sentence {
	var req InputRequest
	if !decodeBody(w, r, &req) {
		return nil
	}
	sent, err := s.parser.Parse(r.Context(), req.Input)
	switch {
	case errors.Is(err, sentence.ErrEmpty):
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "input is required")
		return nil
	case errors.Is(err, sentence.ErrNoMatch):
		writeError(w, http.StatusNotFound, ErrCodeNoMatch, "no command matches "+req.Input)
		return nil
	case err != nil:
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return nil
	}
	return sent
}

// preview handles POST /preview.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	sent := s.parse(w, r)
	if sent == nil {
		return
	}

	var display command.Buffer
	ok := s.manager.CallPreview(r.Context(), sent, &display)
	writeJSON(w, http.StatusOK, PreviewResponse{
		Command: sent.Command().Summarize(),
		Verb:    sent.Verb,
		Match:   sent.Match,
		Args:    sent.Args(),
		OK:      ok,
		Content: display.Content(),
	})
}

// execute handles POST /execute. Successful input is recorded in the
// history.
func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	sent := s.parse(w, r)
	if sent == nil {
		return
	}

	ok := s.manager.CallExecute(r.Context(), sent)
	if ok {
		s.manager.CommandHistoryPush(sent.Input)
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{
		Command: sent.Command().Summarize(),
		OK:      ok,
	})
}

// history handles GET /history.
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	h := s.manager.CommandHistory()
	if h == nil {
		h = []string{}
	}
	writeJSON(w, http.StatusOK, h)
}
