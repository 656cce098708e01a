package schema

// TrackingLibraryEntryTable represents the 'tracking.libraryentry' table
type TrackingLibraryEntryTable struct {
	Table      string
	ID         string
	UserID     string
	BookID     string
	Status     string
	PagesRead  string
	Comment    string
	IsFavorite string
	Rating     string
	DateAdded  string
	FinishedAt string
	UpdatedAt  string
}

// TrackingLibraryEntry is the schema definition for tracking.libraryentry
var TrackingLibraryEntry = TrackingLibraryEntryTable{
	Table:      "tracking.libraryentry",
	ID:         "id",
	UserID:     "userid",
	BookID:     "bookid",
	Status:     "status",
	PagesRead:  "pagesread",
	Comment:    "comment",
	IsFavorite: "isfavorite",
	Rating:     "rating",
	DateAdded:  "dateadded",
	FinishedAt: "finishedat",
	UpdatedAt:  "updatedat",
}

func (t TrackingLibraryEntryTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.BookID, t.Status, t.PagesRead, t.Comment, t.IsFavorite, t.Rating,
		t.DateAdded, t.FinishedAt, t.UpdatedAt,
	}
}
