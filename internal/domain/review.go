package domain

// Review is both the shape the extraction step emits and the persisted row.
// ReviewerName is the only required field and the dedup key for upserts:
// a later record with the same name overwrites the earlier one.
type Review struct {
	ID              int64    `json:"id,omitempty"`
	ReviewerName    string   `json:"reviewer_name"`
	ReviewerCountry *string  `json:"reviewer_country,omitempty"`
	ReviewTitle     *string  `json:"review_title,omitempty"`
	PositiveText    *string  `json:"positive_text,omitempty"`
	NegativeText    *string  `json:"negative_text,omitempty"`
	Score           *float64 `json:"score,omitempty"`     // 1–10 scale
	StayDate        *string  `json:"stay_date,omitempty"` // free text, not a parsed date
	RoomType        *string  `json:"room_type,omitempty"`
	TravelerType    *string  `json:"traveler_type,omitempty"`
}

// IngestReport summarizes one ingestion run. Added counts inserts only;
// in-place updates of already-seen reviewer names are not counted.
type IngestReport struct {
	Added  int
	Source string
}

const (
	SourceDirectScrape = "direct_scrape"
	SourceSearch       = "search"
)
