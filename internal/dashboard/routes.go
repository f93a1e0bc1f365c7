package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techtrail/techtrail/internal/profile"
	"github.com/techtrail/techtrail/internal/store"
	"github.com/techtrail/techtrail/internal/tech"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, deps Deps) {
	router.GET("/", handleIndex(deps))

	api := router.Group("/api")
	{
		api.GET("/technologies", handleList(deps))
		api.POST("/technologies", handleAdd(deps))
		api.PATCH("/technologies/:id/status", handleSetStatus(deps))
		api.PATCH("/technologies/:id/notes", handleSetNotes(deps))
		api.POST("/technologies/bulk-status", handleBulkStatus(deps))
		api.DELETE("/technologies/:id", handleRemove(deps))

		api.POST("/actions/complete-all", handleCompleteAll(deps))
		api.POST("/actions/reset-all", handleResetAll(deps))
		api.POST("/actions/random", handleRandom(deps))

		api.GET("/stats", handleStats(deps))
		api.GET("/export", handleExport(deps))
		api.POST("/import", handleImport(deps))

		api.GET("/news", handleNews(deps))
		api.POST("/news/refresh", handleNewsRefresh(deps))
	}

	router.GET("/events", handleSSE(deps))
}

func handleIndex(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings := profile.Settings{Theme: "dark"}
		if deps.KV != nil {
			settings = profile.LoadSettings(deps.KV)
		}
		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"theme": settings.Theme,
			"stats": tech.Summarize(deps.Collection.List()),
		})
	}
}

func handleList(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := c.DefaultQuery("status", tech.FilterAll)
		if filter != tech.FilterAll {
			if _, err := tech.ParseStatus(filter); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		projected := tech.Project(deps.Collection.List(), filter, c.Query("q"))
		c.JSON(http.StatusOK, gin.H{"technologies": projected, "count": len(projected)})
	}
}

type addRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
	Priority       string `json:"priority"`
	Deadline       string `json:"deadline"`
	EstimatedHours int    `json:"estimatedHours"`
}

func handleAdd(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t := tech.Technology{
			Title:          req.Title,
			Description:    req.Description,
			Notes:          req.Notes,
			Category:       req.Category,
			Difficulty:     req.Difficulty,
			Deadline:       req.Deadline,
			EstimatedHours: req.EstimatedHours,
		}
		if req.Title == "" || req.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
			return
		}
		if req.Status != "" {
			status, err := tech.ParseStatus(req.Status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			t.Status = status
		}
		if req.Priority != "" {
			priority, err := tech.ParsePriority(req.Priority)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			t.Priority = priority
		}
		added, err := deps.Collection.Add(t)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, added)
	}
}

func handleSetStatus(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := tech.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deps.Collection.SetStatus(id, status); err != nil {
			writeStoreError(c, err)
			return
		}
		if status == tech.StatusCompleted && deps.Notifier != nil {
			deps.Notifier.Send(c.Request.Context(), fmt.Sprintf("Technology %d marked completed", id))
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleSetNotes(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req struct {
			Notes string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deps.Collection.SetNotes(id, req.Notes); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleBulkStatus(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDs    []int64 `json:"ids"`
			Status string  `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := tech.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := deps.Collection.BulkSetStatus(req.IDs, status); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(req.IDs)})
	}
}

func handleRemove(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := deps.Collection.Remove(id); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleCompleteAll(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Collection.MarkAllCompleted(); err != nil {
			if errors.Is(err, tech.ErrEmpty) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			writeStoreError(c, err)
			return
		}
		if deps.Notifier != nil {
			deps.Notifier.Send(c.Request.Context(), "All technologies marked completed")
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleResetAll(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Collection.ResetAll(); err != nil {
			if errors.Is(err, tech.ErrEmpty) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func handleRandom(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		picked, err := deps.Collection.PickRandomNotStarted()
		if err != nil {
			writeStoreError(c, err)
			return
		}
		if picked == nil {
			c.JSON(http.StatusOK, gin.H{"picked": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"picked": picked})
	}
}

func handleStats(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := deps.Collection.List()
		all := tech.Summarize(records)
		owned := tech.SummarizeOwned(records)
		c.JSON(http.StatusOK, gin.H{
			"all":      all,
			"owned":    owned,
			"progress": all.Progress(),
		})
	}
}

func handleExport(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		data, err := tech.Export(deps.Collection.List(), now)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		name := tech.ExportFilename(now)
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/json", data)
	}
}

func handleImport(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, err := tech.ParseMergeMode(c.DefaultQuery("mode", string(tech.MergeAppend)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
			return
		}
		if err := tech.CheckImportFile(fileHeader.Filename, fileHeader.Size); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, err := tech.DecodeImport(data, time.Now())
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		total, err := deps.Collection.Merge(records, mode)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		if deps.Notifier != nil {
			deps.Notifier.Send(c.Request.Context(),
				fmt.Sprintf("Imported %d technologies (%d total)", len(records), total))
		}
		c.JSON(http.StatusOK, gin.H{"imported": len(records), "total": total})
	}
}

func handleNews(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.News == nil {
			c.JSON(http.StatusOK, gin.H{"items": []any{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":       deps.News.Latest(c.Request.Context()),
			"lastUpdated": deps.News.LastUpdated(),
		})
	}
}

func handleNewsRefresh(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.News == nil {
			c.JSON(http.StatusOK, gin.H{"items": []any{}})
			return
		}
		items := deps.News.Refresh(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"items": items, "lastUpdated": deps.News.LastUpdated()})
	}
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return 0, false
	}
	return id, true
}

// writeStoreError maps a persistence failure to a 500; anything else from
// the collection is a bad request.
func writeStoreError(c *gin.Context, err error) {
	var we *store.WriteError
	if errors.As(err, &we) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
