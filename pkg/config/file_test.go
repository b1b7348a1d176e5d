package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/battwarn/battwarn/pkg/utils/ptr"
)

func TestDefaultsWhenFileMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "battwarn.json"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	if got := f.UpperThreshold(); got != 80 {
		t.Errorf("UpperThreshold() = %d, want 80", got)
	}
	if got := f.LowerThreshold(); got != 20 {
		t.Errorf("LowerThreshold() = %d, want 20", got)
	}
	if got := f.PollInterval(); got != 15*time.Second {
		t.Errorf("PollInterval() = %s, want 15s", got)
	}
	if got := f.VoiceRepeatInterval(); got != time.Minute {
		t.Errorf("VoiceRepeatInterval() = %s, want 1m", got)
	}
	if got := f.QuietHours(); got != "" {
		t.Errorf("QuietHours() = %q, want empty", got)
	}
	if f.AllowNonRootAccess() {
		t.Errorf("AllowNonRootAccess() = true, want false")
	}

	if err := f.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battwarn.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if got := f.UpperThreshold(); got != 80 {
		t.Errorf("UpperThreshold() = %d, want default 80", got)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battwarn.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battwarn.json")

	f := NewFileFromConfig(&RawFileConfig{
		UpperThreshold:      ptr.To(70),
		LowerThreshold:      ptr.To(30),
		PollIntervalSeconds: ptr.To(5.0),
		VoiceRepeatMinutes:  ptr.To(2.5),
		QuietHours:          ptr.To("0 22 * * *"),
	}, path)

	if err := f.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	if got := g.UpperThreshold(); got != 70 {
		t.Errorf("UpperThreshold() = %d, want 70", got)
	}
	if got := g.LowerThreshold(); got != 30 {
		t.Errorf("LowerThreshold() = %d, want 30", got)
	}
	if got := g.PollInterval(); got != 5*time.Second {
		t.Errorf("PollInterval() = %s, want 5s", got)
	}
	if got := g.VoiceRepeatInterval(); got != 150*time.Second {
		t.Errorf("VoiceRepeatInterval() = %s, want 2m30s", got)
	}
	if got := g.QuietHours(); got != "0 22 * * *" {
		t.Errorf("QuietHours() = %q", got)
	}
}

func TestSetThresholds(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	f.SetUpperThreshold(75)
	f.SetLowerThreshold(25)

	if got := f.UpperThreshold(); got != 75 {
		t.Errorf("UpperThreshold() = %d, want 75", got)
	}
	if got := f.LowerThreshold(); got != 25 {
		t.Errorf("LowerThreshold() = %d, want 25", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       *RawFileConfig
		wantErr bool
	}{
		{
			name:    "defaults",
			c:       &RawFileConfig{},
			wantErr: false,
		},
		{
			name: "lower above upper",
			c: &RawFileConfig{
				UpperThreshold: ptr.To(20),
				LowerThreshold: ptr.To(80),
			},
			wantErr: true,
		},
		{
			name: "lower equals upper",
			c: &RawFileConfig{
				UpperThreshold: ptr.To(50),
				LowerThreshold: ptr.To(50),
			},
			wantErr: true,
		},
		{
			name: "upper out of range",
			c: &RawFileConfig{
				UpperThreshold: ptr.To(101),
			},
			wantErr: true,
		},
		{
			name: "negative lower",
			c: &RawFileConfig{
				LowerThreshold: ptr.To(-1),
			},
			wantErr: true,
		},
		{
			name: "sub-second poll interval",
			c: &RawFileConfig{
				PollIntervalSeconds: ptr.To(0.5),
			},
			wantErr: true,
		},
		{
			name: "zero voice repeat",
			c: &RawFileConfig{
				VoiceRepeatMinutes: ptr.To(0.0),
			},
			wantErr: true,
		},
		{
			name: "quiet hours without duration",
			c: &RawFileConfig{
				QuietHours:                ptr.To("0 22 * * *"),
				QuietHoursDurationMinutes: ptr.To(0.0),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileFromConfig(tt.c, "")
			if err := f.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestReloadCommitsValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battwarn.json")
	if err := os.WriteFile(path, []byte(`{"upperThreshold":80,"lowerThreshold":20}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"upperThreshold":70,"lowerThreshold":30}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}

	if got := f.UpperThreshold(); got != 70 {
		t.Errorf("UpperThreshold() = %d, want 70", got)
	}
	if got := f.LowerThreshold(); got != 30 {
		t.Errorf("LowerThreshold() = %d, want 30", got)
	}
}

func TestReloadKeepsPreviousValuesOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battwarn.json")
	if err := os.WriteFile(path, []byte(`{"upperThreshold":80,"lowerThreshold":20}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}

	// Inverted thresholds must be rejected without touching the
	// running values.
	if err := os.WriteFile(path, []byte(`{"upperThreshold":10,"lowerThreshold":90}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.Reload(); err == nil {
		t.Fatalf("expected Reload to reject inverted thresholds")
	}

	if got := f.UpperThreshold(); got != 80 {
		t.Errorf("UpperThreshold() = %d after failed reload, want 80", got)
	}
	if got := f.LowerThreshold(); got != 20 {
		t.Errorf("LowerThreshold() = %d after failed reload, want 20", got)
	}

	// Same for a file that no longer parses.
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.Reload(); err == nil {
		t.Fatalf("expected Reload to reject malformed config")
	}
	if got := f.UpperThreshold(); got != 80 {
		t.Errorf("UpperThreshold() = %d after failed reload, want 80", got)
	}
}
