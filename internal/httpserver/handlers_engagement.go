package httpserver

import (
	"net/http"

	"revista/backend/internal/pagination"
	engagementusecase "revista/backend/internal/usecase/engagement"
)

func (s *Server) handleRateIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input engagementusecase.RateInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	rating, err := s.engagement.Rate(r.Context(), claimsFrom(r), issueID, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, rating, "Rating saved successfully")
}

func (s *Server) handleIssueRatings(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	summary, err := s.engagement.Ratings(r.Context(), issueID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary, "")
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var input engagementusecase.CommentInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	comment, err := s.engagement.AddComment(r.Context(), claimsFrom(r), issueID, input)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, comment, "Comment added successfully")
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := s.engagement.Comments(r.Context(), issueID, pagination.Normalize(q.Get("page"), q.Get("limit")))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentID")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.engagement.DeleteComment(r.Context(), claimsFrom(r), commentID); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted successfully")
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	items, err := s.engagement.Favorites(r.Context(), claimsFrom(r))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeList(w, items)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.engagement.AddFavorite(r.Context(), claimsFrom(r), issueID); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Issue added to favorites")
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := s.engagement.RemoveFavorite(r.Context(), claimsFrom(r), issueID); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Issue removed from favorites")
}

func (s *Server) handleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "issueID")
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	status, err := s.engagement.IsFavorite(r.Context(), claimsFrom(r), issueID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, status, "")
}
