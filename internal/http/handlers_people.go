package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"splittracker/internal/core"
)

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.store.ListPeople(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch people")
		return
	}
	if people == nil {
		people = []core.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req core.NewPerson
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid person data", Detail: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "Invalid person data")
		return
	}

	person, err := s.store.CreatePerson(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to create person")
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := s.store.DeletePerson(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to delete person")
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Person not found"})
		return
	}
	// Their expenses stay behind as orphans and disappear from reads.
	slog.InfoContext(r.Context(), "Person deleted", "person_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Person deleted successfully"})
}

func (s *Server) handlePeopleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.svc.PeopleWithBalances(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch people with balances")
		return
	}
	writeJSON(w, http.StatusOK, balances)
}
