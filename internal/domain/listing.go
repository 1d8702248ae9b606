package domain

// Detail holds enrichment fields scraped from a listing's own page.
// Absent fields stay empty, never inferred from the search result row.
type Detail struct {
	Description  string `json:"description,omitempty"`
	Condition    string `json:"condition,omitempty"`
	Measurements string `json:"measurements,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Listing is one comparable result from the target site, already merged
// with its detail enrichment. Title and URL are always set; a result
// that cannot yield both is dropped by the parser instead.
type Listing struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Price      *float64 `json:"price"`
	Location   string   `json:"location,omitempty"`
	PostedDate string   `json:"posted_date,omitempty"` // verbatim from source markup

	Detail
}
