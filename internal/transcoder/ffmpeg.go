package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// FFmpeg wraps the ffmpeg command used by the transcode worker
type FFmpeg struct {
	ffmpegPath string
	timeout    time.Duration
}

// NewFFmpeg creates a new FFmpeg instance
func NewFFmpeg(ffmpegPath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
	}
}

// encodeArgs builds the ffmpeg arguments for the worker's single
// H.264/AAC output profile
func encodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-preset", "fast",
		"-c:v", "libx264",
		"-crf", "28",
		"-c:a", "aac",
		"-y", // overwrite output
		outputPath,
	}
}

// Encode runs ffmpeg synchronously against the input file, blocking
// until the command exits or the deadline passes
func (f *FFmpeg) Encode(ctx context.Context, inputPath, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffmpegPath, encodeArgs(inputPath, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}

	return nil
}
