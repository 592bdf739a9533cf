package media

import (
	"context"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:      "0.000",
		12.5:   "12.500",
		90.125: "90.125",
	}
	for input, expect := range cases {
		if got := formatSeconds(input); got != expect {
			t.Fatalf("expected %s, got %s", expect, got)
		}
	}
}

func TestClipRejectsEmptyRange(t *testing.T) {
	clipper := NewFFmpegClipper("")
	if clipper.Path != "ffmpeg" {
		t.Fatalf("expected default ffmpeg path, got %s", clipper.Path)
	}
	if _, err := clipper.Clip(context.Background(), "source.mp4", 10, 10); err == nil {
		t.Fatalf("expected empty range to error")
	}
	if _, err := clipper.Clip(context.Background(), "source.mp4", 10, 5); err == nil {
		t.Fatalf("expected inverted range to error")
	}
}
