package schema

// TrackingReadingSessionTable represents the 'tracking.readingsession' table
type TrackingReadingSessionTable struct {
	Table           string
	ID              string
	LibraryEntryID  string
	SessionDate     string
	PagesRead       string
	DurationMinutes string
	Notes           string
	CreatedAt       string
}

// TrackingReadingSession is the schema definition for tracking.readingsession
var TrackingReadingSession = TrackingReadingSessionTable{
	Table:           "tracking.readingsession",
	ID:              "id",
	LibraryEntryID:  "libraryentryid",
	SessionDate:     "sessiondate",
	PagesRead:       "pagesread",
	DurationMinutes: "durationminutes",
	Notes:           "notes",
	CreatedAt:       "createdat",
}

func (t TrackingReadingSessionTable) Columns() []string {
	return []string{t.ID, t.LibraryEntryID, t.SessionDate, t.PagesRead, t.DurationMinutes, t.Notes, t.CreatedAt}
}
