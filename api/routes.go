package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pdf_imagetools/config"
	"pdf_imagetools/fetch"
	"pdf_imagetools/storage"
)

// Handlers holds the collaborators every endpoint needs.
type Handlers struct {
	cfg     *config.Config
	store   *storage.Store
	fetcher *fetch.Fetcher
}

// NewHandlers wires the HTTP handlers to configuration, output storage and the document fetcher.
func NewHandlers(cfg *config.Config, store *storage.Store, fetcher *fetch.Fetcher) *Handlers {
	return &Handlers{cfg: cfg, store: store, fetcher: fetcher}
}

// NewRouter returns a gin engine with logging, recovery, CORS and every route registered.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(h.cfg.CORSOrigins)))
	SetupRoutes(r, h)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pdf_imagetools",
		})
	})

	// Route of the original single-endpoint service
	r.POST("/generate-pdf", h.HandleGenerateReport)

	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/generate-report", h.HandleGenerateReport)
		apiGroup.POST("/remove-logos", h.HandleRemoveLogos)
		apiGroup.POST("/extract-images", h.HandleExtractImages)
		apiGroup.POST("/analyze-logos", h.HandleAnalyzeLogos)
		apiGroup.POST("/preview-image", h.HandlePreviewImage)
	}

	r.GET(StaticRoute+"/:name", h.HandleStatic)
}
