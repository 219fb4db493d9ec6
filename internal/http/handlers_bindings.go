package http

import (
	"net/http"

	"rentledger/internal/core"
	applog "rentledger/internal/log"
)

func (s *Server) handleGetBindings(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Bindings(core.BindingKind(r.PathValue("table")))
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

type bindingRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSetBinding(w http.ResponseWriter, r *http.Request) {
	kind := core.BindingKind(r.PathValue("table"))
	code := r.PathValue("code")

	var req bindingRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, applog.OpBind, err)
		return
	}
	if err := s.svc.SetBinding(r.Context(), kind, code, req.Name); err != nil {
		s.writeError(w, r, applog.OpBind, err)
		return
	}
	s.logger.LogLedgerChange(r.Context(), applog.OpBind, string(kind), "", 1, s.svc.Revision())
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteBinding is idempotent: deleting an unbound code succeeds.
func (s *Server) handleDeleteBinding(w http.ResponseWriter, r *http.Request) {
	kind := core.BindingKind(r.PathValue("table"))
	if err := s.svc.DeleteBinding(r.Context(), kind, r.PathValue("code")); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	s.logger.LogLedgerChange(r.Context(), applog.OpDelete, string(kind), "", 1, s.svc.Revision())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"participants": s.svc.Participants()})
}
