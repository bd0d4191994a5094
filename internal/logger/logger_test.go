package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		l := New(&bytes.Buffer{}, tt.in, "")
		if l.GetLevel() != tt.want {
			t.Errorf("level %q: expected %s, got %s", tt.in, tt.want, l.GetLevel())
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.WithField("url", "https://example.com/a.png").Info("Processing OCR request")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Processing OCR request" {
		t.Errorf("Unexpected msg: %v", entry["msg"])
	}
	if entry["url"] != "https://example.com/a.png" {
		t.Errorf("Unexpected url field: %v", entry["url"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "text")
	l.Debug("decoding image")

	if !strings.Contains(buf.String(), `msg="decoding image"`) {
		t.Errorf("Expected text formatted output, got %q", buf.String())
	}
}
