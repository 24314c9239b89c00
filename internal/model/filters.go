package model

// Filters is the optional-field query used by film listing and reporting.
// Nil pointers and empty slices mean "no constraint".
type Filters struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`

	Year      *int `json:"year"`
	YearSince *int `json:"yearSince"`
	YearTo    *int `json:"yearTo"`

	DirectedBy *string  `json:"directedBy"`
	WrittenBy  []string `json:"writtenBy"`
	ProducedBy []string `json:"producedBy"`
	Starring   []string `json:"starring"`
	Genres     []string `json:"genres"`

	RunningTime    *int `json:"runningTime"`
	RunningTimeMin *int `json:"runningTimeMin"`
	RunningTimeMax *int `json:"runningTimeMax"`
}
