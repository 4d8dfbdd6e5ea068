package model

// EventSummary is one row of the completed-events listing.
type EventSummary struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Link     string `json:"link"`
}

// Flatten returns the summary as ordered columns.
func (e EventSummary) Flatten() []Field {
	return []Field{
		{Name: "name", Value: e.Name},
		{Name: "date", Value: e.Date},
		{Name: "location", Value: e.Location},
		{Name: "link", Value: e.Link},
	}
}

// WalkResult is the outcome of a pagination walk. Partial is set when the
// walk stopped on a fetch failure before reaching the last page.
type WalkResult struct {
	Start   string         `json:"start"`
	Events  []EventSummary `json:"events"`
	Pages   int            `json:"pages"`
	Partial bool           `json:"partial"`
}

// FightLink is one bout listed on an event card.
type FightLink struct {
	Link     string    `json:"link"`
	Fighters [2]string `json:"fighters"`
	Markers  [2]string `json:"markers"`
}

// EventCard is an event details page: its summary and the bouts on it.
type EventCard struct {
	Event  EventSummary `json:"event"`
	Fights []FightLink  `json:"fights"`
}
