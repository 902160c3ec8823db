package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/metrics"
	"github.com/gostream/gostream/internal/storage"
	"github.com/gostream/gostream/internal/transcoder"
)

// Worker handles encode requests. Each request is independent; there is
// no shared job state and no queue.
type Worker struct {
	ffmpeg     *transcoder.FFmpeg
	uploads    *storage.Store
	encodedDir string
	log        *logging.Logger
}

func newWorker(ffmpeg *transcoder.FFmpeg, uploads *storage.Store, encodedDir string, log *logging.Logger) *Worker {
	return &Worker{
		ffmpeg:     ffmpeg,
		uploads:    uploads,
		encodedDir: encodedDir,
		log:        log,
	}
}

// healthCheck is the reachability probe content services call before
// committing to a file transfer
func (w *Worker) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// encode receives one raw video, runs ffmpeg synchronously and responds
// with a reference to the encoded output. The received input is left in
// place; it is local scratch space for this worker.
func (w *Worker) encode(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video uploaded"})
		return
	}

	inputName := w.uploads.GenerateName(file.Filename)
	inputPath := w.uploads.DiskPath(inputName)
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	outputName := fmt.Sprintf("%d-encoded.mp4", time.Now().UnixMilli())
	outputPath := filepath.Join(w.encodedDir, outputName)

	start := time.Now()
	if err := w.ffmpeg.Encode(c.Request.Context(), inputPath, outputPath); err != nil {
		w.log.ErrorWithErr("Encoding failed", err)
		metrics.RecordWorkerEncode("failed", time.Since(start).Seconds())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Encoding failed"})
		return
	}

	w.log.Infof("Encoded video at: %s", outputPath)
	metrics.RecordWorkerEncode("completed", time.Since(start).Seconds())

	c.JSON(http.StatusOK, gin.H{"encodedPath": "/encoded/" + outputName})
}
