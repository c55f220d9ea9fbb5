package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

// AnnotatedNode pairs a built node with its recursive stats for consumers.
type AnnotatedNode struct {
	domain.Node
	Stats domain.Stats `json:"recursive_stats"`
}

type BuildOptions struct {
	Classifier *Classifier
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// Snapshot is the result of one build. It is never modified after Build
// returns; accessors hand out copies.
type Snapshot struct {
	BuildID    uuid.UUID
	BuiltAt    time.Time
	forest     *Forest
	stats      map[string]domain.Stats
	collisions []NameCollision
}

// Build runs normalize, index, link and aggregate over one record snapshot.
// Data problems degrade to roots and zero counts; only a missing classifier
// is reported as an error.
func Build(records []domain.RawRecord, opts BuildOptions) (*Snapshot, error) {
	start := time.Now()
	if opts.Classifier == nil {
		recordBuild(false, 0, 0)
		return nil, ErrNoBuckets
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	idx := BuildIndex(NormalizeAll(records))
	forest := BuildForest(idx)
	stats, err := Aggregate(forest, opts.Classifier)
	if err != nil {
		recordBuild(false, 0, 0)
		return nil, err
	}

	snap := &Snapshot{
		BuildID:    uuid.New(),
		BuiltAt:    now().UTC(),
		forest:     forest,
		stats:      stats,
		collisions: idx.Collisions(),
	}
	snap.report(opts.Logger)
	recordBuild(true, time.Since(start).Seconds(), forest.Len())
	return snap, nil
}

func (s *Snapshot) report(log logrus.FieldLogger) {
	dangling := s.forest.Dangling()
	cycles := s.forest.CycleRoots()
	recordAnomalies("collision", len(s.collisions))
	recordAnomalies("dangling", len(dangling))
	recordAnomalies("cycle", len(cycles))
	if log == nil {
		return
	}

	for _, c := range s.collisions {
		log.WithFields(logrus.Fields{
			"build_id": s.BuildID,
			"kind":     c.Kind,
			"key":      c.Key,
			"shadowed": c.Shadowed,
			"winner":   c.Winner,
		}).Warn("orgchart: lookup key claimed by more than one node")
	}
	for _, d := range dangling {
		log.WithFields(logrus.Fields{
			"build_id": s.BuildID,
			"identity": d.Identity,
			"kind":     d.Kind,
			"ref":      d.Ref,
		}).Debug("orgchart: parent reference not found, node has no parent of this kind")
	}
	for _, n := range cycles {
		log.WithFields(logrus.Fields{
			"build_id": s.BuildID,
			"identity": n.Identity,
		}).Warn("orgchart: line-manager cycle, node promoted to root")
	}
	log.WithFields(logrus.Fields{
		"build_id": s.BuildID,
		"nodes":    s.forest.Len(),
		"roots":    len(s.forest.roots),
		"dangling": len(dangling),
	}).Info("orgchart: hierarchy built")
}

func (s *Snapshot) Len() int { return s.forest.Len() }
func (s *Snapshot) Forest() *Forest { return s.forest }
func (s *Snapshot) Roots() []domain.Node { return s.forest.Roots() }
func (s *Snapshot) AllNodes() []domain.Node { return s.forest.AllNodes() }
func (s *Snapshot) Dangling() []DanglingRef { return s.forest.Dangling() }
func (s *Snapshot) CycleRoots() []domain.Node { return s.forest.CycleRoots() }
func (s *Snapshot) Node(id string) (domain.Node, bool) { return s.forest.Node(id) }

func (s *Snapshot) Collisions() []NameCollision {
	out := make([]NameCollision, len(s.collisions))
	copy(out, s.collisions)
	return out
}

func (s *Snapshot) Stats(identity string) (domain.Stats, bool) {
	st, ok := s.stats[identity]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

func (s *Snapshot) annotate(nodes []domain.Node) []AnnotatedNode {
	out := make([]AnnotatedNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, AnnotatedNode{Node: n, Stats: s.stats[n.Identity].Clone()})
	}
	return out
}

func (s *Snapshot) Annotated() []AnnotatedNode { return s.annotate(s.forest.AllNodes()) }

func (s *Snapshot) AnnotatedRoots() []AnnotatedNode { return s.annotate(s.forest.Roots()) }

func (s *Snapshot) Scope(scopeKey string) []AnnotatedNode {
	return s.annotate(ExtractScope(s.forest.AllNodes(), scopeKey))
}

func (s *Snapshot) Reports(identity string) []AnnotatedNode {
	return s.annotate(ExtractReports(s.forest.AllNodes(), identity))
}

func (s *Snapshot) Search(query string, limit int) []SearchHit {
	return Search(s.forest.AllNodes(), query, limit)
}

func (s *Snapshot) Dashboard(now time.Time, topN int) Dashboard {
	return BuildDashboard(s.forest.AllNodes(), s.stats, now, topN)
}
