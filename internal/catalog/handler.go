package catalog

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"lnreader/pkg/logger"
)

type Handler struct {
	Service *Service
	// RepositoryURL is the feed users add to the app to install plugins.
	RepositoryURL string
}

func NewHandler(svc *Service, repositoryURL string) *Handler {
	return &Handler{Service: svc, RepositoryURL: repositoryURL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                // GET /plugins?q=&lang=
	rg.GET("/languages", h.languages) // GET /plugins/languages
}

func (h *Handler) list(c *gin.Context) {
	all, err := h.Service.Summaries(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[catalog] list: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	items := Filter(all, c.Query("q"), c.Query("lang"))

	c.JSON(http.StatusOK, gin.H{
		"total":                len(items),
		"repository":           h.RepositoryURL,
		"repository_deep_link": RepositoryDeepLink(h.RepositoryURL),
		"languages":            Languages(all),
		"items":                items,
	})
}

func (h *Handler) languages(c *gin.Context) {
	all, err := h.Service.Summaries(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[catalog] languages: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": Languages(all)})
}

// RepositoryDeepLink returns the link that opens the app's add-repository
// dialog for repoURL. Spaces in repoURL are escaped as %20.
func RepositoryDeepLink(repoURL string) string {
	return "lnreader://repo/add?url=" + strings.ReplaceAll(url.QueryEscape(repoURL), "+", "%20")
}
