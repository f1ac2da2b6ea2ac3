package domain

// SearchMatch is one retrieval result. Derived per query, never stored.
type SearchMatch struct {
	Rank     int     `json:"rank"`
	Distance float64 `json:"distance"`
	Source   string  `json:"source"`
	Excerpt  string  `json:"excerpt"`
}

// QueryRoute tags which information source the orchestrator picked
// for a question.
type QueryRoute string

const (
	RouteDocuments QueryRoute = "documents"
	RouteWeb       QueryRoute = "web"
	RouteBoth      QueryRoute = "both"
	RouteNone      QueryRoute = "none"
)

type SourceReview struct {
	HasSources bool     `json:"has_sources"`
	CitedTools []string `json:"cited_tools"`
	Confidence float64  `json:"confidence"`
}

type UncertaintyReview struct {
	IsUncertain            bool `json:"is_uncertain"`
	ShouldAskClarification bool `json:"should_ask_clarification"`
}

type AgentAnswer struct {
	Text           string            `json:"text"`
	Route          QueryRoute        `json:"route"`
	ToolsUsed      []string          `json:"tools_used"`
	ConversationID string            `json:"conversation_id"`
	Sources        SourceReview      `json:"sources"`
	Uncertainty    UncertaintyReview `json:"uncertainty"`
}
