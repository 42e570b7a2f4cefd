package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1KB", 1024},
		{"1.5KB", 1536},
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1TB", 1024 * 1024 * 1024 * 1024},
		{"10 MB", 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		result, err := ParseBytes(tt.input)
		if err != nil {
			t.Errorf("ParseBytes(%q): %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, result, tt.expected)
		}
	}
}

func TestParseBytesInvalid(t *testing.T) {
	_, err := ParseBytes("invalid")
	if err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestReporterSourceTracking(t *testing.T) {
	reporter := NewReporter(Options{
		TotalSources:   3,
		UpdateInterval: 100 * time.Millisecond,
	})

	// Track without starting the update loop
	reporter.SourceStarted()
	if reporter.inFlight.Load() != 1 {
		t.Errorf("expected 1 in flight, got %d", reporter.inFlight.Load())
	}

	reporter.SourceDownloaded(256)
	if reporter.inFlight.Load() != 0 {
		t.Errorf("expected 0 in flight after download, got %d", reporter.inFlight.Load())
	}
	if reporter.downloaded.Load() != 1 {
		t.Errorf("expected 1 downloaded, got %d", reporter.downloaded.Load())
	}
	if reporter.bytes.Load() != 256 {
		t.Errorf("expected 256 bytes, got %d", reporter.bytes.Load())
	}

	reporter.SourceStarted()
	reporter.SourceSkipped()
	if reporter.skipped.Load() != 1 {
		t.Errorf("expected 1 skipped, got %d", reporter.skipped.Load())
	}

	reporter.SourceStarted()
	reporter.SourceFailed()
	if reporter.failed.Load() != 1 {
		t.Errorf("expected 1 failed, got %d", reporter.failed.Load())
	}
	if reporter.inFlight.Load() != 0 {
		t.Errorf("expected 0 in flight at end, got %d", reporter.inFlight.Load())
	}
}

func TestReporterStartStop(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(Options{
		TotalSources:   2,
		Output:         &buf,
		UpdateInterval: 10 * time.Millisecond,
	})

	reporter.Start()

	reporter.SourceStarted()
	reporter.SourceDownloaded(1024)
	reporter.SourceStarted()
	reporter.SourceSkipped()

	time.Sleep(50 * time.Millisecond) // let updates run

	reporter.Stop()
	reporter.Stop() // second stop is a no-op

	time.Sleep(20 * time.Millisecond) // let the final status flush

	out := buf.String()
	if !strings.Contains(out, "Downloading 2 sources") {
		t.Errorf("missing header in output: %q", out)
	}
	if !strings.Contains(out, "1 downloaded | 1 skipped | 0 failed") {
		t.Errorf("missing summary in output: %q", out)
	}
}
