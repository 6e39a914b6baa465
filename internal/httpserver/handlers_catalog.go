package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"revista/backend/internal/apperr"
	"revista/backend/internal/pagination"
	issueusecase "revista/backend/internal/usecase/issue"
	publisherusecase "revista/backend/internal/usecase/publisher"
	titleusecase "revista/backend/internal/usecase/title"
	"revista/backend/internal/validation"
)

func (s *Server) handleListPublishers(w http.ResponseWriter, r *http.Request) {
	items, err := s.publishers.List(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeList(w, items)
}

func (s *Server) handleGetPublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.publishers.Get(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item, "")
}

func (s *Server) handlePublisherStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	stats, err := s.publishers.Stats(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, stats, "")
}

func (s *Server) handleCreatePublisher(w http.ResponseWriter, r *http.Request) {
	var input publisherusecase.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.publishers.Create(r.Context(), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, item, "Publisher created successfully")
}

func (s *Server) handleUpdatePublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input publisherusecase.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.publishers.Update(r.Context(), id, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item, "Publisher updated successfully")
}

func (s *Server) handleDeletePublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.publishers.Delete(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Publisher deleted successfully")
}

func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request) {
	publisherID, err := validation.ParseOptionalID(r.URL.Query().Get("publisher_id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	items, err := s.titles.List(r.Context(), publisherID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeList(w, items)
}

func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.titles.Get(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item, "")
}

func (s *Server) handleCreateTitle(w http.ResponseWriter, r *http.Request) {
	var input titleusecase.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.titles.Create(r.Context(), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, item, "Title created successfully")
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input titleusecase.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.titles.Update(r.Context(), id, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item, "Title updated successfully")
}

func (s *Server) handleDeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.titles.Delete(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Title deleted successfully")
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	titleID, err := validation.ParseOptionalID(q.Get("title_id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	year, err := parseYear(q.Get("publication_year"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	page, err := s.issues.List(r.Context(),
		issueusecase.Filter{TitleID: titleID, PublicationYear: year},
		pagination.Normalize(q.Get("page"), q.Get("limit")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writePage(w, page)
}

func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2100 {
		return 0, apperr.Validation(apperr.FieldError{
			Field:   "publication_year",
			Message: "must be a year between 1900 and 2100",
			Value:   raw,
		})
	}
	return year, nil
}

func (s *Server) handleSearchIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.issues.Search(r.Context(), q.Get("q"), q.Get("limit"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeList(w, items)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	detail, err := s.issues.Get(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, detail, "")
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var input issueusecase.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.issues.Create(r.Context(), input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, item, "Issue created successfully")
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input issueusecase.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	item, err := s.issues.Update(r.Context(), id, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item, "Issue updated successfully")
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.issues.Delete(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Issue deleted successfully")
}
