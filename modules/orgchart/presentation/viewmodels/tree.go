package viewmodels

import (
	"time"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

type OrgTreeNode struct {
	Identity      string       `json:"identity"`
	ID            string       `json:"id,omitempty"`
	Name          string       `json:"name"`
	Title         string       `json:"title,omitempty"`
	Department    string       `json:"department,omitempty"`
	Category      string       `json:"category,omitempty"`
	ParentByLine  string       `json:"parent_by_line,omitempty"`
	ParentByGroup string       `json:"parent_by_group,omitempty"`
	Depth         int          `json:"depth"`
	Group         bool         `json:"group"`
	Tags          []string     `json:"tags,omitempty"`
	Stats         domain.Stats `json:"stats"`
	Selected      bool         `json:"selected,omitempty"`
}

// OrgTree is the chart in pre-order: every node follows its line manager.
type OrgTree struct {
	BuildID string        `json:"build_id"`
	BuiltAt time.Time     `json:"built_at"`
	Nodes   []OrgTreeNode `json:"nodes"`
}
