package ollama

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/akulikov/research-assistant/internal/core/domain"
)

// Router classifies questions into retrieval routes. The model decides;
// a keyword heuristic takes over when the model is unreachable or
// returns something unusable.
type Router struct {
	client *Client
}

func NewRouter(client *Client) *Router {
	return &Router{client: client}
}

func (r *Router) Route(ctx context.Context, question string) (domain.QueryRoute, error) {
	respText, err := r.client.generateJSON(ctx, "route", buildRoutePrompt(question))
	if err != nil {
		slog.Warn("route_fallback", "reason", "model unavailable", "error", err)
		return keywordRoute(question), nil
	}

	var parsed struct {
		Route string `json:"route"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		slog.Warn("route_fallback", "reason", "unparseable response", "error", err)
		return keywordRoute(question), nil
	}

	switch domain.QueryRoute(strings.ToLower(strings.TrimSpace(parsed.Route))) {
	case domain.RouteDocuments:
		return domain.RouteDocuments, nil
	case domain.RouteWeb:
		return domain.RouteWeb, nil
	case domain.RouteBoth:
		return domain.RouteBoth, nil
	case domain.RouteNone:
		return domain.RouteNone, nil
	default:
		slog.Warn("route_fallback", "reason", "unknown route", "route", parsed.Route)
		return keywordRoute(question), nil
	}
}

var personalMarkers = []string{
	"my ", "mine", "note", "document", "file", "saved", "wrote", "uploaded",
}

var freshnessMarkers = []string{
	"latest", "current", "today", "news", "recent", "weather", "price", "now",
}

func keywordRoute(question string) domain.QueryRoute {
	q := strings.ToLower(question)

	personal := containsAny(q, personalMarkers)
	fresh := containsAny(q, freshnessMarkers)

	switch {
	case personal && fresh:
		return domain.RouteBoth
	case personal:
		return domain.RouteDocuments
	case fresh:
		return domain.RouteWeb
	default:
		return domain.RouteBoth
	}
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
