package transcoder

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs("/uploads/in.mp4", "/encoded/out.mp4")

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i /uploads/in.mp4",
		"-c:v libx264",
		"-crf 28",
		"-c:a aac",
		"-preset fast",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}

	// Output path must come last
	if args[len(args)-1] != "/encoded/out.mp4" {
		t.Errorf("Expected output path last, got %q", args[len(args)-1])
	}
}

func TestEncode_MissingBinary(t *testing.T) {
	ffmpeg := NewFFmpeg("/nonexistent/ffmpeg", time.Minute)

	err := ffmpeg.Encode(context.Background(), "in.mp4", "out.mp4")
	if err == nil {
		t.Fatal("Expected error for missing ffmpeg binary")
	}
	if !strings.Contains(err.Error(), "ffmpeg failed") {
		t.Errorf("Expected wrapped ffmpeg error, got %v", err)
	}
}

func TestEncode_FailingCommand(t *testing.T) {
	// `false` exits non-zero immediately, standing in for a broken encode
	ffmpeg := NewFFmpeg("false", time.Minute)

	err := ffmpeg.Encode(context.Background(), "in.mp4", "out.mp4")
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
}
