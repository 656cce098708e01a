package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table      string
	ID         string
	Title      string
	Slug       string
	AuthorID   string
	TotalPages string
	CreatedAt  string
	UpdatedAt  string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:      "catalog.book",
	ID:         "id",
	Title:      "title",
	Slug:       "slug",
	AuthorID:   "authorid",
	TotalPages: "totalpages",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{t.ID, t.Title, t.Slug, t.AuthorID, t.TotalPages, t.CreatedAt, t.UpdatedAt}
}
