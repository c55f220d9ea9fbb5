package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/mappers"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/viewmodels"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/application"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/httpapi"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/middleware"
)

const (
	defaultMaxUpload = 32 << 20
	maxSearchLimit   = 200
	maxTopSpans      = 100
)

// UploadReader turns an uploaded workbook into raw records.
type UploadReader func(r io.Reader, filename string) ([]domain.RawRecord, error)

type OrgChartAPIController struct {
	app        application.Application
	orgchart   *services.OrgChartService
	readUpload UploadReader
	apiPrefix  string
	maxUpload  int64
}

type OrgChartAPIControllerOptions struct {
	// MaxUpload caps the multipart body of an import; zero means 32 MiB.
	MaxUpload int64
	// ReadUpload parses import uploads. Without it the import route answers 503.
	ReadUpload UploadReader
}

func NewOrgChartAPIController(app application.Application, opts OrgChartAPIControllerOptions) application.Controller {
	maxUpload := opts.MaxUpload
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &OrgChartAPIController{
		app:        app,
		orgchart:   app.Service(services.OrgChartService{}).(*services.OrgChartService),
		readUpload: opts.ReadUpload,
		apiPrefix:  "/api/orgchart",
		maxUpload:  maxUpload,
	}
}

func (c *OrgChartAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrgChartAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.TracedMiddleware("orgchart.api"))

	api.HandleFunc("/nodes", c.instrumentAPI("orgchart.nodes.list", c.ListNodes)).Methods(http.MethodGet)
	api.HandleFunc("/tree", c.instrumentAPI("orgchart.tree", c.GetTree)).Methods(http.MethodGet)
	api.HandleFunc("/scope", c.instrumentAPI("orgchart.scope", c.GetScope)).Methods(http.MethodGet)
	api.HandleFunc("/reports/{identity}", c.instrumentAPI("orgchart.reports", c.GetReports)).Methods(http.MethodGet)
	api.HandleFunc("/search", c.instrumentAPI("orgchart.search", c.Search)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", c.instrumentAPI("orgchart.dashboard", c.GetDashboard)).Methods(http.MethodGet)
	api.HandleFunc("/import", c.instrumentAPI("orgchart.import", c.Import)).Methods(http.MethodPost)
	api.HandleFunc("/refresh", c.instrumentAPI("orgchart.refresh", c.Refresh)).Methods(http.MethodPost)
}

func (c *OrgChartAPIController) snapshot(w http.ResponseWriter, r *http.Request) (*services.Snapshot, bool) {
	snap, err := c.orgchart.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return snap, true
}

func (c *OrgChartAPIController) ListNodes(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	nodes := snap.Annotated()
	writeJSON(w, http.StatusOK, viewmodels.NodesResponse{
		BuildID:    snap.BuildID.String(),
		BuiltAt:    snap.BuiltAt,
		Total:      len(nodes),
		Nodes:      nodes,
		Dangling:   snap.Dangling(),
		Collisions: snap.Collisions(),
	})
}

func (c *OrgChartAPIController) GetTree(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mappers.ForestToTree(snap, strings.TrimSpace(r.URL.Query().Get("selected"))))
}

func (c *OrgChartAPIController) GetScope(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_QUERY", "key is required")
		return
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	nodes := snap.Scope(key)
	writeJSON(w, http.StatusOK, viewmodels.ScopeResponse{Key: key, Total: len(nodes), Nodes: nodes})
}

func (c *OrgChartAPIController) GetReports(w http.ResponseWriter, r *http.Request) {
	identity := strings.TrimSpace(mux.Vars(r)["identity"])
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	if _, found := snap.Node(identity); !found {
		writeAPIError(w, r, http.StatusNotFound, "ORGCHART_NODE_NOT_FOUND", "node not found")
		return
	}
	nodes := snap.Reports(identity)
	writeJSON(w, http.StatusOK, viewmodels.ScopeResponse{Key: identity, Total: len(nodes), Nodes: nodes})
}

func (c *OrgChartAPIController) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, err := parseBoundedInt(r.URL.Query().Get("limit"), maxSearchLimit)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_QUERY", "limit is invalid")
		return
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.SearchResponse{Query: q, Hits: snap.Search(q, limit)})
}

func (c *OrgChartAPIController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	top, err := parseBoundedInt(r.URL.Query().Get("top"), maxTopSpans)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_QUERY", "top is invalid")
		return
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Dashboard(c.orgchart.Now(), top))
}

func (c *OrgChartAPIController) Import(w http.ResponseWriter, r *http.Request) {
	if c.readUpload == nil {
		writeAPIError(w, r, http.StatusServiceUnavailable, "ORGCHART_IMPORT_DISABLED", "spreadsheet import is not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUpload)
	if err := r.ParseMultipartForm(c.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, r, http.StatusRequestEntityTooLarge, "ORGCHART_UPLOAD_TOO_LARGE", "upload exceeds the size limit")
			return
		}
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_UPLOAD", "multipart form is invalid")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_UPLOAD", "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	records, err := c.readUpload(file, header.Filename)
	if err != nil {
		middleware.LoggerFrom(r.Context()).WithError(err).WithField("filename", header.Filename).Warn("orgchart: unreadable upload")
		writeAPIError(w, r, http.StatusBadRequest, "ORGCHART_INVALID_SPREADSHEET", "spreadsheet could not be read")
		return
	}

	snap, err := c.orgchart.Import(r.Context(), records)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.ImportResponse{
		BuildID:  snap.BuildID.String(),
		Imported: snap.Len(),
		Roots:    len(snap.Roots()),
	})
}

func (c *OrgChartAPIController) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := c.orgchart.Invalidate(r.Context()); err != nil {
		middleware.LoggerFrom(r.Context()).WithError(err).Warn("orgchart: cache invalidation failed")
	}
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.ImportResponse{
		BuildID:  snap.BuildID.String(),
		Imported: snap.Len(),
		Roots:    len(snap.Roots()),
	})
}

// parseBoundedInt reads an optional non-negative integer; empty means 0 and
// values above upper are clamped.
func parseBoundedInt(raw string, upper int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("must be non-negative")
	}
	if n > upper {
		n = upper
	}
	return n, nil
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Status >= http.StatusInternalServerError {
			middleware.LoggerFrom(r.Context()).WithFields(logrus.Fields{
				"code":  svcErr.Code,
				"cause": svcErr.Cause,
			}).Error("orgchart: request failed")
		}
		writeAPIError(w, r, svcErr.Status, svcErr.Code, svcErr.Message)
		return
	}
	middleware.LoggerFrom(r.Context()).WithError(err).Error("orgchart: request failed")
	writeAPIError(w, r, http.StatusInternalServerError, "ORGCHART_INTERNAL", "internal error")
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, httpapi.Meta("request_id", middleware.RequestIDFrom(r.Context())))
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		logrus.WithError(err).Warn("orgchart: failed to encode response")
	}
}
