package crossref

// Work is the subset of a Crossref work record papercat reads.
type Work struct {
	DOI      string   `json:"DOI"`
	Title    []string `json:"title"`
	Subject  []string `json:"subject"`
	Abstract string   `json:"abstract"` // JATS XML fragment
}

// workResponse wraps GET /works/{doi}.
type workResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// searchResponse wraps GET /works?query.title=...
type searchResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int    `json:"total-results"`
		Items        []Work `json:"items"`
	} `json:"message"`
}
