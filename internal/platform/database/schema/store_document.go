package schema

// StoreDocumentTable represents the 'store.document' table
type StoreDocumentTable struct {
	Table      string
	Collection string
	ID         string
	Data       string
	CreatedAt  string
	UpdatedAt  string
}

// StoreDocument is the schema definition for store.document
var StoreDocument = StoreDocumentTable{
	Table:      "store.document",
	Collection: "collection",
	ID:         "id",
	Data:       "data",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t StoreDocumentTable) Columns() []string {
	return []string{t.Collection, t.ID, t.Data, t.CreatedAt, t.UpdatedAt}
}
