package model

// FilmUpload is one record of a bulk JSON import
type FilmUpload struct {
	Title       string   `json:"title"`
	Year        *int     `json:"year"`
	DirectedBy  string   `json:"directed by"`
	WrittenBy   []string `json:"written by"`
	ProducedBy  []string `json:"produced by"`
	Starring    []string `json:"starring"`
	RunningTime *int     `json:"running time"`
	Genres      []string `json:"genres"`
}

// ImportResult is the outcome of importing a single FilmUpload
type ImportResult struct {
	Index int
	Title string
	ID    int64
	Err   error
}

// OK returns true if the record was persisted
func (r ImportResult) OK() bool {
	return r.Err == nil
}

// ImportSummary collects the results of a bulk import, in input order
type ImportSummary struct {
	Results []ImportResult
}

// Imported returns the number of persisted records
func (s ImportSummary) Imported() (n int) {
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return
}

// Failed returns the number of rejected records
func (s ImportSummary) Failed() int {
	return len(s.Results) - s.Imported()
}

// ImportFailure describes a rejected record in an UploadResponse
type ImportFailure struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// UploadResponse is the body returned by a bulk import
type UploadResponse struct {
	Imported int             `json:"imported"`
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

// Response converts the summary to its API representation
func (s ImportSummary) Response() UploadResponse {
	resp := UploadResponse{
		Imported: s.Imported(),
		Failed:   s.Failed(),
	}
	for _, r := range s.Results {
		if r.OK() {
			continue
		}
		resp.Failures = append(resp.Failures, ImportFailure{
			Index:  r.Index,
			Title:  r.Title,
			Reason: r.Err.Error(),
		})
	}
	return resp
}
