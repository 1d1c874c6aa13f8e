package models

// Page is one slice of the paginated history endpoint. NextCursor and
// NextStartDate are opaque; an empty cursor means this was the last page.
type Page struct {
	Transactions  []APITransaction `json:"transactions"`
	NextCursor    string           `json:"nextCursor"`
	NextStartDate string           `json:"nextStartDate"`
}
