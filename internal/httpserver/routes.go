package httpserver

import (
	"net/http"

	"revista/backend/internal/access"
	"revista/backend/internal/apperr"
	"revista/backend/internal/domain/auth"
	"revista/backend/internal/infrastructure/ratelimit"
)

var errRouteNotFound = apperr.New(apperr.KindNotFound, "ROUTE_NOT_FOUND", "Route not found")

// open applies only the rate limit.
func (s *Server) open(limiter *ratelimit.Limiter, h http.HandlerFunc) http.Handler {
	return s.withRateLimit(limiter, h)
}

// guarded applies the rate limit, then authentication, then the role check.
func (s *Server) guarded(limiter *ratelimit.Limiter, allowed []auth.Role, h http.HandlerFunc) http.Handler {
	return s.withRateLimit(limiter, s.authenticate(s.requireRoles(allowed, h)))
}

func (s *Server) registerRoutes() {
	r := s.router
	l := s.limiters
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", s.health.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.health.handleLive).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.health.handleReady).Methods(http.MethodGet)

	r.Handle("/auth/register", s.open(l.auth, s.handleRegister)).Methods(http.MethodPost)
	r.Handle("/auth/login", s.open(l.auth, s.handleLogin)).Methods(http.MethodPost)
	r.Handle("/auth/me", s.guarded(l.api, access.Anyone, s.handleMe)).Methods(http.MethodGet)
	r.Handle("/auth/profile", s.guarded(l.api, access.Anyone, s.handleUpdateProfile)).Methods(http.MethodPut)
	r.Handle("/auth/password", s.guarded(l.auth, access.Anyone, s.handleChangePassword)).Methods(http.MethodPut)

	r.Handle("/publishers", s.open(l.api, s.handleListPublishers)).Methods(http.MethodGet)
	r.Handle("/publishers", s.guarded(l.create, access.Admins, s.handleCreatePublisher)).Methods(http.MethodPost)
	r.Handle("/publishers/{id}", s.open(l.api, s.handleGetPublisher)).Methods(http.MethodGet)
	r.Handle("/publishers/{id}/stats", s.open(l.api, s.handlePublisherStats)).Methods(http.MethodGet)
	r.Handle("/publishers/{id}", s.guarded(l.api, access.Admins, s.handleUpdatePublisher)).Methods(http.MethodPut)
	r.Handle("/publishers/{id}", s.guarded(l.api, access.Admins, s.handleDeletePublisher)).Methods(http.MethodDelete)

	r.Handle("/titles", s.open(l.api, s.handleListTitles)).Methods(http.MethodGet)
	r.Handle("/titles", s.guarded(l.create, access.Editors, s.handleCreateTitle)).Methods(http.MethodPost)
	r.Handle("/titles/{id}", s.open(l.api, s.handleGetTitle)).Methods(http.MethodGet)
	r.Handle("/titles/{id}", s.guarded(l.api, access.Editors, s.handleUpdateTitle)).Methods(http.MethodPut)
	r.Handle("/titles/{id}", s.guarded(l.api, access.Admins, s.handleDeleteTitle)).Methods(http.MethodDelete)

	// Literal segments under /issues must be registered before /issues/{id}.
	r.Handle("/issues/search", s.open(l.search, s.handleSearchIssues)).Methods(http.MethodGet)
	r.Handle("/issues/comments/{commentID}", s.guarded(l.api, access.Anyone, s.handleDeleteComment)).Methods(http.MethodDelete)
	r.Handle("/issues", s.open(l.api, s.handleListIssues)).Methods(http.MethodGet)
	r.Handle("/issues", s.guarded(l.create, access.Editors, s.handleCreateIssue)).Methods(http.MethodPost)
	r.Handle("/issues/{id}", s.open(l.api, s.handleGetIssue)).Methods(http.MethodGet)
	r.Handle("/issues/{id}", s.guarded(l.api, access.Editors, s.handleUpdateIssue)).Methods(http.MethodPut)
	r.Handle("/issues/{id}", s.guarded(l.api, access.Admins, s.handleDeleteIssue)).Methods(http.MethodDelete)
	r.Handle("/issues/{id}/rate", s.guarded(l.content, access.Anyone, s.handleRateIssue)).Methods(http.MethodPost)
	r.Handle("/issues/{id}/ratings", s.open(l.api, s.handleIssueRatings)).Methods(http.MethodGet)
	r.Handle("/issues/{id}/comments", s.guarded(l.content, access.Anyone, s.handleAddComment)).Methods(http.MethodPost)
	r.Handle("/issues/{id}/comments", s.open(l.api, s.handleListComments)).Methods(http.MethodGet)

	r.Handle("/favorites", s.guarded(l.api, access.Anyone, s.handleListFavorites)).Methods(http.MethodGet)
	r.Handle("/favorites/{issueID}", s.guarded(l.api, access.Anyone, s.handleAddFavorite)).Methods(http.MethodPost)
	r.Handle("/favorites/{issueID}", s.guarded(l.api, access.Anyone, s.handleRemoveFavorite)).Methods(http.MethodDelete)
	r.Handle("/favorites/{issueID}/check", s.guarded(l.api, access.Anyone, s.handleCheckFavorite)).Methods(http.MethodGet)

	r.Handle("/users", s.guarded(l.api, access.Admins, s.handleListUsers)).Methods(http.MethodGet)
	r.Handle("/users", s.guarded(l.api, access.Admins, s.handleCreateUser)).Methods(http.MethodPost)
	r.Handle("/users/{id}", s.guarded(l.api, access.Admins, s.handleGetUser)).Methods(http.MethodGet)
	r.Handle("/users/{id}", s.guarded(l.api, access.Admins, s.handleUpdateUser)).Methods(http.MethodPut)
	r.Handle("/users/{id}", s.guarded(l.api, access.Admins, s.handleDeleteUser)).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeAppError(w, req, errRouteNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:      errorBody{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"},
			StatusCode: http.StatusMethodNotAllowed,
		})
	})
}
