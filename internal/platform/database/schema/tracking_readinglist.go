package schema

// TrackingReadingListTable represents the 'tracking.readinglist' table
type TrackingReadingListTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// TrackingReadingList is the schema definition for tracking.readinglist
var TrackingReadingList = TrackingReadingListTable{
	Table:     "tracking.readinglist",
	ID:        "id",
	UserID:    "userid",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t TrackingReadingListTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Name, t.CreatedAt, t.UpdatedAt}
}
