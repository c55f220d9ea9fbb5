package viewmodels

import (
	"time"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
)

type NodesResponse struct {
	BuildID    string                   `json:"build_id"`
	BuiltAt    time.Time                `json:"built_at"`
	Total      int                      `json:"total"`
	Nodes      []services.AnnotatedNode `json:"nodes"`
	Dangling   []services.DanglingRef   `json:"dangling,omitempty"`
	Collisions []services.NameCollision `json:"collisions,omitempty"`
}

type ScopeResponse struct {
	Key   string                   `json:"key"`
	Total int                      `json:"total"`
	Nodes []services.AnnotatedNode `json:"nodes"`
}

type SearchResponse struct {
	Query string               `json:"query"`
	Hits  []services.SearchHit `json:"hits"`
}

type ImportResponse struct {
	BuildID  string `json:"build_id"`
	Imported int    `json:"imported"`
	Roots    int    `json:"roots"`
}
