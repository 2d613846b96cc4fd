package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestViewLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "debug", Output: &buf})

	log.ViewLogger("articles").LogFieldIssue("df", "13/40/2020", errors.New("bad date"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}
	if entry["view"] != "articles" || entry["component"] != "search" {
		t.Errorf("Missing view fields: %v", entry)
	}
	if entry["param"] != "df" || entry["level"] != "warn" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	if entry["service"] != "simplesearch" {
		t.Errorf("Expected service field, got %v", entry["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "warn", Output: &buf})

	log.LogListing("ALL", 0, 3, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("Debug listing should be filtered at warn level, got %q", buf.String())
	}

	log.LogHTTPRequest("GET", "/api/v1/views/:name", 500, time.Millisecond, "req-1")
	if buf.Len() == 0 {
		t.Error("Expected 5xx request to be logged at warn level")
	}
}
