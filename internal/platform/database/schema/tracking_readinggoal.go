package schema

// TrackingReadingGoalTable represents the 'tracking.readinggoal' table
type TrackingReadingGoalTable struct {
	Table     string
	ID        string
	UserID    string
	GoalType  string
	Period    string
	Target    string
	StartDate string
	EndDate   string
	CreatedAt string
	UpdatedAt string
}

// TrackingReadingGoal is the schema definition for tracking.readinggoal
var TrackingReadingGoal = TrackingReadingGoalTable{
	Table:     "tracking.readinggoal",
	ID:        "id",
	UserID:    "userid",
	GoalType:  "goaltype",
	Period:    "period",
	Target:    "target",
	StartDate: "startdate",
	EndDate:   "enddate",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t TrackingReadingGoalTable) Columns() []string {
	return []string{t.ID, t.UserID, t.GoalType, t.Period, t.Target, t.StartDate, t.EndDate, t.CreatedAt, t.UpdatedAt}
}
