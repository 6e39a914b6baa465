package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"revista/backend/internal/domain/auth"
	authusecase "revista/backend/internal/usecase/auth"
	"revista/backend/internal/validation"
)

func pathID(r *http.Request, name string) (int64, error) {
	return validation.ParseID(mux.Vars(r)[name])
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input authusecase.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := s.auth.Register(r.Context(), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, user, "User registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	session, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, session, "Login successful")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Me(r.Context(), claimsFrom(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "")
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input authusecase.ProfileInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := s.auth.UpdateProfile(r.Context(), claimsFrom(r), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "Profile updated successfully")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var input authusecase.ChangePasswordInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.auth.ChangePassword(r.Context(), claimsFrom(r), input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}
