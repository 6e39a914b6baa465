package httpserver

import (
	"net/http"

	"revista/backend/internal/pagination"
	userusecase "revista/backend/internal/usecase/user"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.users.List(r.Context(), q.Get("role"), pagination.Normalize(q.Get("page"), q.Get("limit")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "")
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input userusecase.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := s.users.Create(r.Context(), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, user, "User created successfully")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input userusecase.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := s.users.Update(r.Context(), id, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "User updated successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
