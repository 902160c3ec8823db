package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gostream/gostream/internal/cache"
	"github.com/gostream/gostream/internal/database"
	"github.com/gostream/gostream/internal/encoder"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/metrics"
	"github.com/gostream/gostream/internal/storage"
	"github.com/gostream/gostream/internal/tracing"
	"github.com/gostream/gostream/pkg/models"
)

// VideoRepository is the catalog store surface the handlers need
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *models.VideoAsset) error
	GetVideo(ctx context.Context, id string) (*models.VideoAsset, error)
	ListVideos(ctx context.Context, opts database.ListOptions) (*models.VideoList, error)
	UpdateVideo(ctx context.Context, id string, update *models.VideoUpdate) (*models.VideoAsset, error)
	DeleteVideo(ctx context.Context, id string) (*models.VideoAsset, error)
	Health(ctx context.Context) error
}

// Encoder is the best-effort encoding capability behind the upload path
type Encoder interface {
	Encode(ctx context.Context, rawPath string) encoder.Outcome
}

// API holds the content service dependencies
type API struct {
	repo    VideoRepository
	cache   *cache.Cache // nil when disabled
	store   *storage.Store
	encoder Encoder
	log     *logging.Logger
}

// healthCheck reports service and catalog store health
func (api *API) healthCheck(c *gin.Context) {
	if err := api.repo.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// uploadVideo ingests a raw upload: both files are persisted first, the
// raw video is offered to the transcode workers, and the catalog record
// points at whichever rendition survived. Files written during a failed
// request are always removed before responding.
func (api *API) uploadVideo(c *gin.Context) {
	span, ctx := tracing.StartSpan(c.Request.Context(), "content.upload")
	defer tracing.FinishSpan(span)

	thumbFile, thumbErr := c.FormFile("thumbnail")
	videoFile, videoErr := c.FormFile("video")
	if thumbErr != nil || videoErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thumbnail and video files are required"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	category := c.PostForm("category")
	duration := c.PostForm("duration")
	releaseYear := c.PostForm("releaseYear")
	if title == "" || description == "" || category == "" || duration == "" || releaseYear == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	if !models.IsValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	durationSecs, err := strconv.Atoi(duration)
	if err != nil || durationSecs <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration"})
		return
	}

	year, err := strconv.Atoi(releaseYear)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid releaseYear"})
		return
	}

	// Validation passed; persist both files under generated unique names.
	// From here on every failure path must clean up what was written.
	thumbName := api.store.GenerateName(thumbFile.Filename)
	if err := c.SaveUploadedFile(thumbFile, api.store.DiskPath(thumbName)); err != nil {
		api.log.ErrorWithErr("Failed to save thumbnail", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	thumbnailURL := api.store.URL(thumbName)

	videoName := api.store.GenerateName(videoFile.Filename)
	if err := c.SaveUploadedFile(videoFile, api.store.DiskPath(videoName)); err != nil {
		api.log.ErrorWithErr("Failed to save video", err)
		api.removeFile(thumbnailURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	rawURL := api.store.URL(videoName)

	// Best-effort encode; total unavailability degrades to storing the
	// raw upload in place, never to a failed request
	videoURL := rawURL
	outcome := api.encoder.Encode(ctx, api.store.DiskPath(videoName))
	if outcome.Encoded {
		videoURL = outcome.EncodedPath
	} else {
		api.log.Warn("Falling back to raw upload")
	}

	video := &models.VideoAsset{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Thumbnail:   thumbnailURL,
		VideoURL:    videoURL,
		Duration:    durationSecs,
		Category:    category,
		ReleaseYear: year,
		Cast:        models.SplitCast(c.PostForm("cast")),
		Director:    c.PostForm("director"),
	}

	if err := api.repo.CreateVideo(ctx, video); err != nil {
		api.log.ErrorWithErr("Failed to create video", err)
		tracing.LogError(span, err)
		api.removeFile(thumbnailURL)
		api.removeFile(rawURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating video: " + err.Error()})
		return
	}

	metrics.RecordUpload(videoFile.Size, !outcome.Encoded)
	api.log.WithVideoID(video.ID).Infof("Video created with url %s", video.VideoURL)

	c.JSON(http.StatusCreated, video)
}

// getVideo retrieves a catalog record, consulting the cache first
func (api *API) getVideo(c *gin.Context) {
	videoID := c.Param("id")
	ctx := c.Request.Context()

	if api.cache != nil {
		if video, err := api.cache.GetVideo(ctx, videoID); err != nil {
			api.log.ErrorWithErr("Cache lookup failed", err)
		} else if video != nil {
			c.JSON(http.StatusOK, video)
			return
		}
	}

	video, err := api.repo.GetVideo(ctx, videoID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if api.cache != nil {
		if err := api.cache.SetVideo(ctx, video); err != nil {
			api.log.ErrorWithErr("Cache store failed", err)
		}
	}

	c.JSON(http.StatusOK, video)
}

// listVideos retrieves catalog records with filtering and pagination
func (api *API) listVideos(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	list, err := api.repo.ListVideos(c.Request.Context(), database.ListOptions{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Page:     page,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// updateVideo applies a partial metadata update. File references are
// owned by upload and delete; this endpoint never touches them.
func (api *API) updateVideo(c *gin.Context) {
	videoID := c.Param("id")

	var update models.VideoUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if update.Category != nil && !models.IsValidCategory(*update.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	video, err := api.repo.UpdateVideo(c.Request.Context(), videoID, &update)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	api.invalidateCache(c.Request.Context(), videoID)

	c.JSON(http.StatusOK, video)
}

// deleteVideo removes the catalog record and then the files it
// referenced; a record must never outlive its files
func (api *API) deleteVideo(c *gin.Context) {
	videoID := c.Param("id")

	video, err := api.repo.DeleteVideo(c.Request.Context(), videoID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	api.removeFile(video.Thumbnail)
	api.removeFile(video.VideoURL)
	api.invalidateCache(c.Request.Context(), videoID)

	metrics.VideosDeletedTotal.Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// removeFile deletes a stored file best-effort; failures are logged,
// never surfaced
func (api *API) removeFile(url string) {
	if url == "" {
		return
	}
	err := api.store.Remove(url)
	api.log.LogStorageOperation("remove", url, err)
}

func (api *API) invalidateCache(ctx context.Context, videoID string) {
	if api.cache == nil {
		return
	}
	if err := api.cache.DeleteVideo(ctx, videoID); err != nil {
		api.log.ErrorWithErr("Cache invalidation failed", err)
	}
}
