// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readtrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/readtrack/internal/platform/request"
	"github.com/taibuivan/readtrack/internal/platform/respond"
	"github.com/taibuivan/readtrack/internal/platform/sec"
	"github.com/taibuivan/readtrack/pkg/pagination"
)

// Handler exposes the book catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the book endpoints.
//
//   - GET    /       : search (?q=, ?author_id=)
//   - POST   /       : create
//   - GET    /{id}   : read
//   - PUT    /{id}   : replace (re-derives tracked entries on page-count change)
//   - DELETE /{id}   : admin only
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listBooks)
	router.Post("/", handler.createBook)
	router.Get("/{id}", handler.getBook)
	router.Put("/{id}", handler.updateBook)
	router.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteBook)

	return router
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()
	filter := Filter{
		Query:    query.Get("q"),
		AuthorID: query.Get("author_id"),
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	book, err := handler.service.GetBook(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.CreateBook(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, book)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.UpdateBook(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteBook(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
