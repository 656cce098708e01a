// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/readtrack/internal/platform/request"
	"github.com/taibuivan/readtrack/internal/platform/respond"
	"github.com/taibuivan/readtrack/pkg/dateutil"
	"github.com/taibuivan/readtrack/pkg/slice"
)

// Handler exposes reading goals over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a goal [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type goalRequest struct {
	GoalType  Type    `json:"goal_type"`
	Period    Period  `json:"period"`
	Target    int     `json:"target"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type goalResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GoalType  Type      `json:"goal_type"`
	Period    Period    `json:"period"`
	Target    int       `json:"target"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(goal *Goal) goalResponse {
	return goalResponse{
		ID:        goal.ID,
		UserID:    goal.UserID,
		GoalType:  goal.GoalType,
		Period:    goal.Period,
		Target:    goal.Target,
		StartDate: dateutil.Format(goal.StartDate),
		EndDate:   dateutil.Format(goal.EndDate),
		CreatedAt: goal.CreatedAt,
		UpdatedAt: goal.UpdatedAt,
	}
}

// toInput parses the calendar dates of a goal body.
func (body goalRequest) toInput() (Input, error) {
	input := Input{GoalType: body.GoalType, Period: body.Period, Target: body.Target}

	if body.StartDate != "" {
		start, err := dateutil.Parse(body.StartDate)
		if err != nil {
			return Input{}, apperr.FieldInvalid(FieldStartDate, "Must be a date in YYYY-MM-DD format")
		}
		input.StartDate = start
	}

	if body.EndDate != nil {
		end, err := dateutil.Parse(*body.EndDate)
		if err != nil {
			return Input{}, apperr.FieldInvalid(FieldEndDate, "Must be a date in YYYY-MM-DD format")
		}
		input.EndDate = &end
	}
	return input, nil
}

// Routes returns the goal endpoints.
//
//   - GET    /                : list (?period=, ?goal_type=)
//   - POST   /                : create
//   - GET    /{id}            : read
//   - PUT    /{id}            : replace
//   - DELETE /{id}            : delete
//   - GET    /{id}/progress   : evaluate
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listGoals)
	router.Post("/", handler.createGoal)
	router.Get("/{id}", handler.getGoal)
	router.Put("/{id}", handler.updateGoal)
	router.Delete("/{id}", handler.deleteGoal)
	router.Get("/{id}/progress", handler.getProgress)

	return router
}

func (handler *Handler) listGoals(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := request.URL.Query()
	filter := Filter{
		Period:   Period(query.Get("period")),
		GoalType: Type(query.Get("goal_type")),
	}

	goals, err := handler.service.ListGoals(request.Context(), userID, filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, slice.Map(goals, toResponse))
}

func (handler *Handler) createGoal(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body goalRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := body.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	goal, err := handler.service.CreateGoal(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, toResponse(goal))
}

func (handler *Handler) getGoal(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	goal, err := handler.service.GetGoal(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(goal))
}

func (handler *Handler) updateGoal(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body goalRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := body.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	goal, err := handler.service.UpdateGoal(request.Context(), userID, requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, toResponse(goal))
}

func (handler *Handler) deleteGoal(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteGoal(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) getProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	progress, err := handler.service.Progress(request.Context(), userID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}
