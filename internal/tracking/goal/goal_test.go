// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/readtrack/internal/tracking/goal"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/pointer"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func january(goalType goal.Type, target int) *goal.Goal {
	return &goal.Goal{
		ID:        "g1",
		GoalType:  goalType,
		Period:    goal.PeriodMonthly,
		Target:    target,
		StartDate: day(time.January, 1),
		EndDate:   day(time.January, 31),
	}
}

/*
TestEvaluateDateAdded covers the date-added window basis.
*/
func TestEvaluateDateAdded(t *testing.T) {
	entries := []goal.EntrySnapshot{
		{Status: progress.InProgress, PagesRead: 80, TotalPages: 300, DateAdded: day(time.January, 3).Add(22 * time.Hour)},
		{Status: progress.Done, PagesRead: 150, TotalPages: 150, DateAdded: day(time.January, 31).Add(23 * time.Hour)},
		{Status: progress.Done, PagesRead: 500, TotalPages: 500, DateAdded: day(time.February, 1)},
	}

	result := goal.Evaluate(january(goal.TypePages, 200), entries, goal.BasisDateAdded)
	assert.Equal(t, 230, result.CurrentValue)
	assert.Equal(t, 100, result.ProgressPercentage)
	assert.True(t, result.Completed)

	books := []goal.EntrySnapshot{
		{Status: progress.Done, DateAdded: day(time.January, 2)},
		{Status: progress.Done, DateAdded: day(time.January, 9)},
		{Status: progress.InProgress, DateAdded: day(time.January, 20)},
	}

	result = goal.Evaluate(january(goal.TypeBooks, 5), books, goal.BasisDateAdded)
	assert.Equal(t, 2, result.CurrentValue)
	assert.Equal(t, 40, result.ProgressPercentage)
	assert.False(t, result.Completed)
	assert.Equal(t, "g1", result.GoalID)
}

/*
TestEvaluateSessionDate covers the session-date window basis.
*/
func TestEvaluateSessionDate(t *testing.T) {
	entries := []goal.EntrySnapshot{
		// Added last year, read this month
		{Status: progress.Done, PagesRead: 100, TotalPages: 100, DateAdded: day(time.January, 1).AddDate(-1, 0, 0),
			FinishedAt: pointer.To(day(time.January, 15).Add(8 * time.Hour)), WindowPages: 120},
		// Finished before the window
		{Status: progress.Done, PagesRead: 50, TotalPages: 50, DateAdded: day(time.January, 1).AddDate(0, -2, 0),
			FinishedAt: pointer.To(day(time.January, 1).AddDate(0, 0, -1)), WindowPages: 0},
		{Status: progress.InProgress, PagesRead: 30, TotalPages: 400, DateAdded: day(time.January, 10), WindowPages: 30},
	}

	pages := goal.Evaluate(january(goal.TypePages, 200), entries, goal.BasisSessionDate)
	assert.Equal(t, 130, pages.CurrentValue, "window pages are capped per entry")
	assert.Equal(t, 65, pages.ProgressPercentage)

	books := goal.Evaluate(january(goal.TypeBooks, 4), entries, goal.BasisSessionDate)
	assert.Equal(t, 1, books.CurrentValue)
	assert.Equal(t, 25, books.ProgressPercentage)
}

/*
TestEvaluatePercentageRounding checks banker's rounding and the zero target.
*/
func TestEvaluatePercentageRounding(t *testing.T) {
	tests := []struct {
		name    string
		current int
		target  int
		want    int
	}{
		{"half rounds to even down", 1, 8, 12},    // 12.5
		{"half rounds to even up", 3, 8, 38},      // 37.5
		{"third", 1, 3, 33},
		{"capped", 9, 4, 100},
		{"zero target", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := january(goal.TypePages, tt.target)
			entries := []goal.EntrySnapshot{{PagesRead: tt.current, TotalPages: 1000, DateAdded: day(time.January, 5)}}
			assert.Equal(t, tt.want, goal.Evaluate(g, entries, goal.BasisDateAdded).ProgressPercentage)
		})
	}
}

/*
TestDefaultEnd checks the end date derived from each period.
*/
func TestDefaultEnd(t *testing.T) {
	tests := []struct {
		period goal.Period
		start  time.Time
		want   time.Time
	}{
		{goal.PeriodDaily, day(time.March, 4), day(time.March, 4)},
		{goal.PeriodWeekly, day(time.March, 4), day(time.March, 10)},
		{goal.PeriodWeekly, day(time.December, 29), time.Date(2027, time.January, 4, 0, 0, 0, 0, time.UTC)},
		{goal.PeriodMonthly, day(time.February, 10), day(time.February, 28)},
		{goal.PeriodMonthly, day(time.December, 1), day(time.December, 31)},
		{goal.PeriodYearly, day(time.June, 15), day(time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period)+"/"+tt.start.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, goal.DefaultEnd(tt.period, tt.start))
		})
	}
}
