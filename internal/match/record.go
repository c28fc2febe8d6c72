package match

// Canonical field values carried over from the upstream site verbatim.
const (
	// ScoreUnknown is the sentinel used when no numeric score could be read.
	// Its spacing differs from the computed "A - B" form on purpose; consumers
	// match it literally.
	ScoreUnknown = "- : -"

	// StatusFinished marks a match reported as over by the upstream site.
	StatusFinished = "إنتهت المباراة"

	// StatusNotStarted is the default status, and the value any status
	// containing a colon is rewritten to (a colon means the extractor picked
	// up a kickoff time instead of a status).
	StatusNotStarted = "لم تبدأ"

	// Unspecified fills missing channel or commentator names.
	Unspecified = "غير محدد"

	// FallbackTitle is used when a page has neither team containers nor a title.
	FallbackTitle = "مباراة"
)

// Info keys populated by the extractor.
const (
	InfoChampionship = "championship"
	InfoRound        = "round"
	InfoStadium      = "stadium"
	InfoTime         = "time"
	InfoDate         = "date"
	InfoScore        = "current_score"
	InfoStatus       = "match_status"
)

// Team is one side of a match.
type Team struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Teams holds either a structured home/away pair or, when the page layout
// did not expose two team containers, the page title as FullTitle. Exactly
// one representation is populated.
type Teams struct {
	Home      *Team  `json:"home,omitempty"`
	Away      *Team  `json:"away,omitempty"`
	FullTitle string `json:"full_title,omitempty"`
}

// Channel is one broadcaster/commentator pair.
type Channel struct {
	Channel     string `json:"channel"`
	Commentator string `json:"commentator"`
}

// Record is one harvested match. ID is the numeric identifier from the
// detail page URL ("0" when unresolvable) and doubles as the sink upsert key.
type Record struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Teams    Teams             `json:"teams"`
	Info     map[string]string `json:"info"`
	Channels []Channel         `json:"channels"`
}

// NewRecord returns a Record with initialized collections and the default ID.
func NewRecord(url string) Record {
	return Record{
		ID:       "0",
		URL:      url,
		Info:     make(map[string]string),
		Channels: make([]Channel, 0),
	}
}

// Championship returns the championship attribute, empty when missing.
// Used as the snapshot sort key.
func (r Record) Championship() string {
	return r.Info[InfoChampionship]
}
