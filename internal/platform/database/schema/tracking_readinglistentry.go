package schema

// TrackingReadingListEntryTable represents the 'tracking.readinglistentry' table
type TrackingReadingListEntryTable struct {
	Table          string
	ListID         string
	LibraryEntryID string
	AddedAt        string
}

// TrackingReadingListEntry is the schema definition for tracking.readinglistentry
var TrackingReadingListEntry = TrackingReadingListEntryTable{
	Table:          "tracking.readinglistentry",
	ListID:         "listid",
	LibraryEntryID: "libraryentryid",
	AddedAt:        "addedat",
}

func (t TrackingReadingListEntryTable) Columns() []string {
	return []string{t.ListID, t.LibraryEntryID, t.AddedAt}
}
