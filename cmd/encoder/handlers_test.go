package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/storage"
	"github.com/gostream/gostream/internal/transcoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWorker wires a worker whose "ffmpeg" is an arbitrary command,
// so encode outcomes can be forced without real media
func newTestWorker(t *testing.T, ffmpegPath string) (*Worker, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploads, err := storage.New(t.TempDir(), "/uploads")
	require.NoError(t, err)

	log, err := logging.NewDefaultLogger()
	require.NoError(t, err)

	worker := newWorker(
		transcoder.NewFFmpeg(ffmpegPath, time.Minute),
		uploads,
		t.TempDir(),
		log,
	)

	router := gin.New()
	router.GET("/health", worker.healthCheck)
	router.POST("/encode", worker.encode)

	return worker, router
}

func encodeRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("video", "raw.mp4")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/encode", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestWorker(t, "true")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestEncode_NoFile(t *testing.T) {
	_, router := newTestWorker(t, "true")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/encode", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No video uploaded")
}

func TestEncode_Success(t *testing.T) {
	// `true` exits zero, standing in for a successful ffmpeg run
	worker, router := newTestWorker(t, "true")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, encodeRequest(t, []byte("raw video bytes")))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Regexp(t, regexp.MustCompile(`^/encoded/\d+-encoded\.mp4$`), body["encodedPath"])

	// The received input stays on disk as worker scratch space
	entries, err := os.ReadDir(worker.uploads.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEncode_SlowEncodeSurvivesServerTimeouts(t *testing.T) {
	// An "ffmpeg" that outlasts the header deadline by a wide margin
	script := filepath.Join(t.TempDir(), "slow-ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 2\nexit 0\n"), 0o755))

	_, router := newTestWorker(t, script)

	// Same server construction as production: only the header read is
	// deadlined, so a synchronous encode longer than any fixed timeout
	// must still deliver its result to the caller
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: time.Second,
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	defer srv.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("video", "raw.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("raw video bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post("http://"+ln.Addr().String()+"/encode", form.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Regexp(t, regexp.MustCompile(`^/encoded/\d+-encoded\.mp4$`), out["encodedPath"])
}

func TestEncode_CommandFailure(t *testing.T) {
	// `false` exits non-zero, standing in for a broken encode
	_, router := newTestWorker(t, "false")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, encodeRequest(t, []byte("raw video bytes")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Encoding failed")
}
