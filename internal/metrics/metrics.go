package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostream_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gostream_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Upload Metrics
	VideoUploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gostream_video_uploads_total",
			Help: "Total number of video uploads that produced a catalog record",
		},
	)

	VideoUploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gostream_video_upload_size_bytes",
			Help:    "Size of uploaded videos in bytes",
			Buckets: prometheus.ExponentialBuckets(1024*1024, 2, 15), // 1MB to 16GB
		},
	)

	RawFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gostream_upload_raw_fallbacks_total",
			Help: "Total number of uploads stored unencoded because no worker was available",
		},
	)

	// Encoder Client Metrics
	EncodeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostream_encode_attempts_total",
			Help: "Total number of encode attempts against transcode workers",
		},
		[]string{"endpoint", "result"},
	)

	EncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gostream_encode_duration_seconds",
			Help:    "Duration of successful remote encodes in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		},
	)

	// Catalog Metrics
	VideosDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gostream_videos_deleted_total",
			Help: "Total number of catalog records deleted",
		},
	)

	// Worker Metrics
	WorkerEncodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostream_worker_encodes_total",
			Help: "Total number of encode jobs handled by the transcode worker",
		},
		[]string{"status"},
	)

	WorkerEncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gostream_worker_encode_duration_seconds",
			Help:    "Duration of ffmpeg invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordUpload records a completed upload
func RecordUpload(sizeBytes int64, fellBack bool) {
	VideoUploadsTotal.Inc()
	VideoUploadSizeBytes.Observe(float64(sizeBytes))
	if fellBack {
		RawFallbacksTotal.Inc()
	}
}

// RecordEncodeAttempt records one attempt against a transcode worker
func RecordEncodeAttempt(endpoint, result string) {
	EncodeAttemptsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordWorkerEncode records an encode job handled by the worker
func RecordWorkerEncode(status string, duration float64) {
	WorkerEncodesTotal.WithLabelValues(status).Inc()
	WorkerEncodeDuration.Observe(duration)
}
