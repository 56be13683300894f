package logs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit_Levels(t *testing.T) {
	testCases := []struct {
		level string
		want  logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			l := Init(Options{Level: tc.level, Output: &bytes.Buffer{}})
			if l.GetLevel() != tc.want {
				t.Errorf("level = %v, want %v", l.GetLevel(), tc.want)
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Output: &buf})
	With("test").WithField("principal_id", "p1").Info("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
	if entry["principal_id"] != "p1" {
		t.Errorf("principal_id = %v, want p1", entry["principal_id"])
	}
}

func TestInit_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Output: &buf})
	Logger.Debug("hidden")
	Logger.Info("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info line missing from %q", out)
	}
}
