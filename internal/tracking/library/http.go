// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/readtrack/internal/platform/request"
	"github.com/taibuivan/readtrack/internal/platform/respond"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/dateutil"
	"github.com/taibuivan/readtrack/pkg/pagination"
	"github.com/taibuivan/readtrack/pkg/query"
	"github.com/taibuivan/readtrack/pkg/slice"
)

// Handler exposes the user's library over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// # Request & Response Bodies

type addRequest struct {
	BookID string `json:"book_id"`
}

type progressRequest struct {
	PagesRead *int `json:"pages_read"`
}

type sessionRequest struct {
	Date            string `json:"date"`
	PagesRead       int    `json:"pages_read"`
	DurationMinutes *int   `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

// sessionResponse renders the session date as a calendar date.
type sessionResponse struct {
	*Session
	Date string `json:"date"`
}

type sessionResultResponse struct {
	Session sessionResponse `json:"session"`
	Entry   *Entry          `json:"entry"`
}

func toSessionResponse(session *Session) sessionResponse {
	return sessionResponse{Session: session, Date: dateutil.Format(session.Date)}
}

// Routes returns the library endpoints. Every route is scoped to the caller.
//
//   - GET    /                              : list (?status=, ?q=, ?favorite=)
//   - POST   /                              : add a book
//   - GET    /stats                         : counts per status
//   - GET    /sessions                      : reading history (?from=, ?to=)
//   - GET    /{id}                          : read
//   - PATCH  /{id}                          : comment, favorite, rating
//   - DELETE /{id}                          : remove with sessions and memberships
//   - PUT    /{id}/progress                 : set pages read
//   - GET    /{id}/sessions                 : ledger
//   - POST   /{id}/sessions                 : record a session
//   - DELETE /{id}/sessions/{sessionID}     : delete a session
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listEntries)
	router.Post("/", handler.addEntry)
	router.Get("/stats", handler.getStats)
	router.Get("/sessions", handler.getHistory)

	router.Route("/{id}", func(router chi.Router) {
		router.Get("/", handler.getEntry)
		router.Patch("/", handler.updateEntry)
		router.Delete("/", handler.removeEntry)
		router.Put("/progress", handler.setProgress)
		router.Get("/sessions", handler.listSessions)
		router.Post("/sessions", handler.recordSession)
		router.Delete("/sessions/{sessionID}", handler.deleteSession)
	})

	return router
}

// # Entries

func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	favorite, err := requestutil.QueryBool(request, "favorite")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Statuses: slice.Map(query.StringSlice(request.URL.Query().Get("status")), func(value string) progress.Status {
			return progress.Status(value)
		}),
		Query:    request.URL.Query().Get("q"),
		Favorite: favorite,
	}

	paginationParams := pagination.FromRequest(request)
	entries, total, err := handler.service.ListEntries(request.Context(), userID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) addEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body addRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.AddToLibrary(request.Context(), userID, body.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, entry)
}

func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.GetEntry(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *Handler) updateEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input MetaInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.UpdateEntry(request.Context(), userID, requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *Handler) removeEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveEntry(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) setProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body progressRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if body.PagesRead == nil {
		respond.Error(writer, request, apperr.FieldInvalid(FieldPagesRead, "Required"))
		return
	}

	entry, err := handler.service.SetPagesRead(request.Context(), userID, requestutil.ID(request, "id"), *body.PagesRead)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}

func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.Stats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

// # Sessions

func (handler *Handler) getHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	from, err := requestutil.QueryDate(request, FieldFrom)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	to, err := requestutil.QueryDate(request, FieldTo)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.service.History(request.Context(), userID, from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, slice.Map(sessions, toSessionResponse))
}

func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.service.ListSessions(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, slice.Map(sessions, toSessionResponse))
}

func (handler *Handler) recordSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body sessionRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var date time.Time
	if body.Date != "" {
		date, err = dateutil.Parse(body.Date)
		if err != nil {
			respond.Error(writer, request, apperr.FieldInvalid(FieldDate, "Must be a date in YYYY-MM-DD format"))
			return
		}
	}

	result, err := handler.service.RecordSession(request.Context(), userID, requestutil.ID(request, "id"), SessionInput{
		Date:            date,
		PagesRead:       body.PagesRead,
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResultResponse{
		Session: toSessionResponse(result.Session),
		Entry:   result.Entry,
	})
}

func (handler *Handler) deleteSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.DeleteSession(request.Context(), userID, requestutil.ID(request, "id"), requestutil.ID(request, "sessionID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}
