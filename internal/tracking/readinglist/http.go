// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readtrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/readtrack/internal/platform/request"
	"github.com/taibuivan/readtrack/internal/platform/respond"
)

// Handler exposes reading lists over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a reading list [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type listRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	LibraryEntryID string `json:"library_entry_id"`
}

// Routes returns the reading list endpoints.
//
//   - GET    /                        : the caller's lists
//   - POST   /                        : create
//   - GET    /{id}                    : read with members
//   - PATCH  /{id}                    : rename
//   - DELETE /{id}                    : delete (entries are kept)
//   - POST   /{id}/entries            : add an entry
//   - DELETE /{id}/entries/{entryID}  : remove an entry
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listLists)
	router.Post("/", handler.createList)
	router.Get("/{id}", handler.getList)
	router.Patch("/{id}", handler.renameList)
	router.Delete("/{id}", handler.deleteList)
	router.Post("/{id}/entries", handler.addEntry)
	router.Delete("/{id}/entries/{entryID}", handler.removeEntry)

	return router
}

func (handler *Handler) listLists(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lists, err := handler.service.ListLists(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lists)
}

func (handler *Handler) createList(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body listRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	list, err := handler.service.CreateList(request.Context(), userID, body.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, list)
}

func (handler *Handler) getList(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	list, err := handler.service.GetList(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

func (handler *Handler) renameList(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body listRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	list, err := handler.service.RenameList(request.Context(), userID, requestutil.ID(request, "id"), body.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

func (handler *Handler) deleteList(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteList(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) addEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body memberRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	listID := requestutil.ID(request, "id")
	if err := handler.service.AddEntry(request.Context(), userID, listID, body.LibraryEntryID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	list, err := handler.service.GetList(request.Context(), userID, listID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, list)
}

func (handler *Handler) removeEntry(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveEntry(request.Context(), userID, requestutil.ID(request, "id"), requestutil.ID(request, "entryID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
