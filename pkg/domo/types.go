package domo

// UpdateMethod selects the upload semantics for a dataset data push.
type UpdateMethod string

const (
	// UpdateAppend adds rows without touching existing dataset contents.
	UpdateAppend UpdateMethod = "APPEND"
	// UpdateReplace substitutes the dataset's entire contents.
	UpdateReplace UpdateMethod = "REPLACE"
)

// Column is one column of a dataset schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Domo column types.
const (
	TypeString   = "STRING"
	TypeLong     = "LONG"
	TypeDecimal  = "DECIMAL"
	TypeDate     = "DATE"
	TypeDatetime = "DATETIME"
)

// Schema is a dataset schema.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Dataset describes a Domo dataset.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int64  `json:"rows"`
	Schema      Schema `json:"schema"`
}

// createDatasetRequest is the provisioning payload.
type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Schema      Schema `json:"schema"`
}
