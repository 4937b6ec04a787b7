package upgrader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lnreader/internal/backup"
	"lnreader/internal/migrate"
	"lnreader/pkg/logger"
	"lnreader/pkg/models"
)

const maxBackupSize = 10 << 20

// Catalog supplies validated plugin descriptors; *catalog.Service implements it.
type Catalog interface {
	Plugins(ctx context.Context) ([]models.Plugin, error)
}

type Handler struct {
	Catalog Catalog
	Rules   migrate.Rules
	Repo    *Repo
	Tokens  TokenService

	basePath string
}

func NewHandler(cat Catalog, rules migrate.Rules, repo *Repo, tokens TokenService) *Handler {
	return &Handler{Catalog: cat, Rules: rules, Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	h.basePath = rg.BasePath()
	rg.POST("", h.upgrade)                // POST /tools/backup-upgrader
	rg.GET("/download", h.download)       // GET /tools/backup-upgrader/download?token=
	rg.GET("/unmatched.csv", h.unmatched) // GET /tools/backup-upgrader/unmatched.csv?token=
}

func (h *Handler) upgrade(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)

	body, closeBody, err := backupBody(c)
	if err != nil {
		badUpload(c, err)
		return
	}
	records, err := backup.ReadLegacy(body)
	closeBody()
	if err != nil {
		badUpload(c, err)
		return
	}

	plugins, err := h.Catalog.Plugins(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[upgrader] load plugins: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if len(plugins) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "plugin catalogue is empty, try again later"})
		return
	}

	result := h.Rules.Migrate(records, plugins)

	rep := Report{
		ID:        uuid.NewString(),
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Repo.Save(c.Request.Context(), rep); err != nil {
		logger.Error.Printf("[upgrader] save report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	logger.Info.Printf("[upgrader] report %s: %d migrated, %d unmatched, %d plugins",
		rep.ID, len(result.MigratedNovels), len(result.UnmatchedEntries), len(result.RequiredPlugins))

	resp := gin.H{
		"id":               rep.ID,
		"message":          statusMessage(len(result.MigratedNovels)),
		"migratedNovels":   result.MigratedNovels,
		"requiredPlugins":  result.RequiredPlugins,
		"unmatchedEntries": result.UnmatchedEntries,
	}

	token, exp, err := h.Tokens.Sign(rep.ID)
	if err != nil {
		logger.Error.Printf("[upgrader] sign download token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}
	if len(result.MigratedNovels) > 0 {
		resp["downloadUrl"] = h.basePath + "/download?token=" + url.QueryEscape(token)
	}
	if len(result.UnmatchedEntries) > 0 {
		resp["unmatchedUrl"] = h.basePath + "/unmatched.csv?token=" + url.QueryEscape(token)
	}
	resp["expiresAt"] = exp.UTC().Format(time.RFC3339)

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) download(c *gin.Context) {
	rep, ok := h.reportFromToken(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="`+backup.MigratedFileName+`"`)
	c.Status(http.StatusOK)
	if err := backup.WriteMigrated(c.Writer, rep.Result.MigratedNovels); err != nil {
		logger.Error.Printf("[upgrader] write download %s: %v", rep.ID, err)
	}
}

func (h *Handler) unmatched(c *gin.Context) {
	rep, ok := h.reportFromToken(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="unmatched.csv"`)
	c.Status(http.StatusOK)
	if err := backup.WriteUnmatchedCSV(c.Writer, rep.Result.UnmatchedEntries); err != nil {
		logger.Error.Printf("[upgrader] write unmatched %s: %v", rep.ID, err)
	}
}

func (h *Handler) reportFromToken(c *gin.Context) (*Report, bool) {
	raw := strings.TrimSpace(c.Query("token"))
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return nil, false
	}

	claims, err := h.Tokens.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return nil, false
	}

	rep, err := h.Repo.Get(c.Request.Context(), claims.ReportID)
	if err != nil {
		logger.Error.Printf("[upgrader] get report %s: %v", claims.ReportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return nil, false
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return rep, true
}

// backupBody returns the uploaded file from a multipart form field "backup",
// or the raw request body otherwise.
func backupBody(c *gin.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("backup")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, nil, err
			}
			return nil, nil, errors.New("backup file required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, errors.New("cannot open uploaded backup")
		}
		return f, func() { _ = f.Close() }, nil
	}
	return c.Request.Body, func() {}, nil
}

// badUpload answers 413 when the body hit maxBackupSize and 400 otherwise.
func badUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "backup too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func statusMessage(migrated int) string {
	if migrated == 0 {
		return "No matching novels found"
	}
	return message.NewPrinter(language.English).Sprintf("%d novels migrated", migrated)
}
