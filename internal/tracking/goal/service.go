// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal

import (
	"context"
	"log/slog"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/dateutil"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

// Service implements goal use cases.
type Service struct {
	repo   Repository
	cache  ProgressCache
	basis  Basis
	logger *slog.Logger
}

// NewService constructs a goal [Service]. cache may be nil; an unknown basis
// falls back to [BasisDateAdded].
func NewService(repo Repository, cache ProgressCache, basis Basis, logger *slog.Logger) *Service {
	if basis != BasisSessionDate {
		basis = BasisDateAdded
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		basis:  basis,
		logger: logger,
	}
}

// # Goal Management

/*
CreateGoal validates and stores a new goal.

Parameters:
  - context: context.Context
  - userID: string
  - input: Input (a nil EndDate is derived from the period)

Returns:
  - *Goal: Stored goal
  - error: Validation failures
*/
func (service *Service) CreateGoal(context context.Context, userID string, input Input) (*Goal, error) {
	goal, err := build(input)
	if err != nil {
		return nil, err
	}

	goal.ID = uuid.New()
	goal.UserID = userID
	if err := service.repo.Create(context, goal); err != nil {
		return nil, err
	}

	service.logger.Info("reading_goal_created",
		slog.String("user_id", userID),
		slog.String("goal_id", goal.ID),
		slog.String("goal_type", string(goal.GoalType)),
		slog.Int("target", goal.Target),
	)
	return goal, nil
}

// GetGoal returns one of the user's goals.
func (service *Service) GetGoal(context context.Context, userID, goalID string) (*Goal, error) {
	return service.repo.FindByID(context, userID, goalID)
}

// ListGoals returns the user's goals.
func (service *Service) ListGoals(context context.Context, userID string, filter Filter) ([]*Goal, error) {
	validator := &validate.Validator{}
	if filter.Period != "" {
		validator.Custom(FieldPeriod, !filter.Period.Valid(), "Must be one of: DAILY, WEEKLY, MONTHLY, YEARLY")
	}
	if filter.GoalType != "" {
		validator.Custom(FieldGoalType, !filter.GoalType.Valid(), "Must be one of: PAGES, BOOKS")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}
	return service.repo.List(context, userID, filter)
}

// UpdateGoal replaces a goal's fields and drops its cached progress.
func (service *Service) UpdateGoal(context context.Context, userID, goalID string, input Input) (*Goal, error) {
	goal, err := build(input)
	if err != nil {
		return nil, err
	}

	goal.ID = goalID
	goal.UserID = userID
	if err := service.repo.Update(context, goal); err != nil {
		return nil, err
	}

	service.logger.Info("reading_goal_updated", slog.String("user_id", userID), slog.String("goal_id", goalID))
	service.invalidateGoal(context, userID, goalID)

	return service.repo.FindByID(context, userID, goalID)
}

// DeleteGoal removes a goal and its cached progress.
func (service *Service) DeleteGoal(context context.Context, userID, goalID string) error {
	if err := service.repo.Delete(context, userID, goalID); err != nil {
		return err
	}

	service.logger.Info("reading_goal_deleted", slog.String("user_id", userID), slog.String("goal_id", goalID))
	service.invalidateGoal(context, userID, goalID)
	return nil
}

// # Progress

/*
Progress evaluates a goal, serving from the cache when possible.

Parameters:
  - context: context.Context
  - userID: string
  - goalID: string

Returns:
  - *Progress: Current value and capped percentage
  - error: NotFound when the goal is absent or not the user's
*/
func (service *Service) Progress(context context.Context, userID, goalID string) (*Progress, error) {
	goal, err := service.repo.FindByID(context, userID, goalID)
	if err != nil {
		return nil, err
	}

	// The generation is read before the snapshot so that an invalidation
	// landing in between makes the fill below a no-op.
	fill := false
	var generation int64
	if service.cache != nil {
		cached, ok, err := service.cache.Get(context, userID, goalID)
		if err != nil {
			service.logger.Warn("goal_cache_read_failed", slog.String("goal_id", goalID), slog.Any("error", err))
		} else if ok {
			return cached, nil
		} else if generation, err = service.cache.Generation(context, userID); err != nil {
			service.logger.Warn("goal_cache_read_failed", slog.String("goal_id", goalID), slog.Any("error", err))
		} else {
			fill = true
		}
	}

	snapshot, err := service.repo.Snapshot(context, userID, goal.StartDate, goal.EndDate)
	if err != nil {
		return nil, err
	}

	result := Evaluate(goal, snapshot, service.basis)

	if fill {
		stored, err := service.cache.Set(context, userID, generation, &result)
		if err != nil {
			service.logger.Warn("goal_cache_write_failed", slog.String("goal_id", goalID), slog.Any("error", err))
		} else if !stored {
			service.logger.Debug("goal_cache_fill_skipped", slog.String("goal_id", goalID), slog.Int64("generation", generation))
		}
	}
	return &result, nil
}

// InvalidateUser drops the cached progress of every goal of a user. The
// library service calls it after each committed change.
func (service *Service) InvalidateUser(context context.Context, userID string) error {
	if service.cache == nil {
		return nil
	}
	return service.cache.InvalidateUser(context, userID)
}

// # Helpers

func (service *Service) invalidateGoal(context context.Context, userID, goalID string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.InvalidateGoal(context, userID, goalID); err != nil {
		service.logger.Warn("goal_cache_invalidation_failed", slog.String("goal_id", goalID), slog.Any("error", err))
	}
}

// build validates input and resolves the window end.
func build(input Input) (*Goal, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldGoalType, !input.GoalType.Valid(), "Must be one of: PAGES, BOOKS")
	validator.Custom(FieldPeriod, !input.Period.Valid(), "Must be one of: DAILY, WEEKLY, MONTHLY, YEARLY")
	validator.Range(FieldTarget, input.Target, 1, constants.MaxCount)
	validator.Custom(FieldStartDate, input.StartDate.IsZero(), "Required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	start := dateutil.Truncate(input.StartDate)
	end := DefaultEnd(input.Period, start)
	if input.EndDate != nil {
		end = dateutil.Truncate(*input.EndDate)
	}
	if end.Before(start) {
		return nil, apperr.FieldInvalid(FieldEndDate, "Must not be before start_date")
	}

	return &Goal{
		GoalType:  input.GoalType,
		Period:    input.Period,
		Target:    input.Target,
		StartDate: start,
		EndDate:   end,
	}, nil
}
