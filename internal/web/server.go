package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"MarketBreadth/internal/calculator"
	"MarketBreadth/internal/chart"
	"MarketBreadth/internal/loader"
	"MarketBreadth/internal/model"
)

//go:embed templates/index.html
var templateFS embed.FS

// Server renders the dashboard page and its JSON/Parquet endpoints. Every
// request runs one pass over the loader's current cache contents.
type Server struct {
	loader *loader.Loader
	preset model.Preset
	page   *template.Template
}

// NewServer creates a new dashboard server.
func NewServer(l *loader.Loader, preset model.Preset) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{loader: l, preset: preset, page: page}, nil
}

// RegisterRoutes registers all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/series.parquet", s.handleSeriesParquet)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return logRequests(mux)
}

// pass loads the table and composes the chart for it.
func (s *Server) pass(ctx context.Context) (*model.Table, model.ChartSpec, error) {
	table, err := s.loader.Load(ctx)
	if err != nil {
		return nil, model.ChartSpec{}, err
	}
	gaps := calculator.CalendarGaps(table.Dates())
	return table, chart.Compose(table, gaps, s.preset), nil
}

type pageData struct {
	Preset    model.Preset
	Figure    *chart.PlotlyFigure
	FetchedAt string
	Rows      int
	Error     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Preset: s.preset}
	status := http.StatusOK

	table, spec, err := s.pass(r.Context())
	if err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
		data.Error = err.Error()
		status = http.StatusBadGateway
	} else {
		fig := chart.Figure(spec)
		data.Figure = &fig
		data.FetchedAt = table.FetchedAt.Format("2006-01-02 15:04:05 MST")
		data.Rows = table.Len()
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Printf("[ERROR] execute template: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.loader.Clear("web")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	_, spec, err := s.pass(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, chart.Figure(spec))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	table, err := s.loader.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, table)
}

func (s *Server) handleSeriesParquet(w http.ResponseWriter, r *http.Request) {
	table, err := s.loader.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := WriteParquet(&buf, table); err != nil {
		log.Printf("[ERROR] encode parquet: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", `attachment; filename="breadth.parquet"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"cached":      false,
		"ttl_seconds": int(s.loader.Cache.TTL().Seconds()),
	}
	if at, ok := s.loader.Cache.FetchedAt(); ok {
		if _, fresh := s.loader.Cache.Get(); fresh {
			resp["cached"] = true
			resp["fetched_at"] = at.Format(time.RFC3339)
		}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[INFO] %s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
