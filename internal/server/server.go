package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/graphbridge/internal/backend"
	"github.com/agenthands/graphbridge/internal/config"
	"github.com/agenthands/graphbridge/internal/driver"
	"github.com/agenthands/graphbridge/internal/reconcile"
	"github.com/agenthands/graphbridge/internal/rows"
	"github.com/agenthands/graphbridge/internal/snapshot"
	"github.com/agenthands/graphbridge/internal/tabular"
)

type Server struct {
	Config   *config.Config
	Exporter *snapshot.Exporter
	Selector *backend.Selector
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}

	// Override config with env vars if present (simple override logic)
	if uri := os.Getenv("GRAPH_URI"); uri != "" {
		cfg.Graph.URI = uri
	}
	if user := os.Getenv("GRAPH_USER"); user != "" {
		cfg.Graph.User = user
	}
	if pass := os.Getenv("GRAPH_PASSWORD"); pass != "" {
		cfg.Graph.Password = pass
	}
	if db := os.Getenv("GRAPH_DATABASE"); db != "" {
		cfg.Graph.Database = db
	}
	if path := os.Getenv("TABULAR_PATH"); path != "" {
		cfg.Tabular.Path = path
	}

	// A missing graph store is not fatal: exports are skipped and reads
	// fall back to the tabular store.
	var graphDriver driver.GraphDriver
	d, err := driver.NewBoltDriver(context.Background(), cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		log.Printf("Graph store unavailable, export disabled: %v", err)
	} else {
		graphDriver = d
	}

	tables, err := tabular.Open(cfg.Tabular.Path, nil)
	if err != nil {
		log.Fatalf("Failed to open tabular store: %v", err)
	}

	var loader backend.GraphLoader
	var exporter *snapshot.Exporter
	if graphDriver != nil {
		loader = reconcile.NewLoader(graphDriver, nil)
		exporter = snapshot.NewExporter(graphDriver, nil)
	}

	return &Server{
		Config:   cfg,
		Exporter: exporter,
		Selector: backend.NewSelector(loader, tables, nil),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/export", s.Export)
	r.GET("/datasets/:kind", s.Dataset)

	return r
}

type ExportRequest struct {
	Entities      []rows.Row `json:"entities"`
	Relationships []rows.Row `json:"relationships"`
}

func (s *Server) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !s.Config.Export.Enabled || s.Exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph export unavailable"})
		return
	}

	result, err := s.Exporter.Export(c.Request.Context(), req.Entities, req.Relationships, snapshot.Options{
		BatchSize: s.Config.Export.BatchSize,
		Workers:   s.Config.Export.Workers,
	})
	if err != nil {
		log.Printf("Export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) Dataset(c *gin.Context) {
	kind := backend.DatasetKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown dataset kind"})
		return
	}

	loaded, err := s.Selector.Resolve(c.Request.Context(), kind, s.Config.Query)
	if err != nil {
		if errors.Is(err, backend.ErrNoDataAvailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No data available"})
			return
		}
		log.Printf("Failed to resolve %s: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dataset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": loaded})
}
