package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Clipper cuts a [start, end) segment out of a source video.
type Clipper interface {
	Clip(ctx context.Context, sourceURL string, start, end float64) (string, error)
}

// FFmpegClipper shells out to ffmpeg. The source can be a local path or an
// HTTP URL, which lets clips run straight off a presigned download link.
type FFmpegClipper struct {
	Path string
}

func NewFFmpegClipper(path string) *FFmpegClipper {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegClipper{Path: path}
}

// Clip writes the segment to a temp file and returns its path. The caller
// removes the file when done.
func (c *FFmpegClipper) Clip(ctx context.Context, sourceURL string, start, end float64) (string, error) {
	if end <= start {
		return "", errors.New("clip end must be after start")
	}

	out, err := os.CreateTemp("", "clip-*.mp4")
	if err != nil {
		return "", err
	}
	out.Close()

	cmd := exec.CommandContext(ctx, c.Path,
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", sourceURL,
		"-c", "copy",
		"-movflags", "+faststart",
		"-y", out.Name(),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("ffmpeg: %w: %s", err, tail(output, 400))
	}
	return out.Name(), nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
