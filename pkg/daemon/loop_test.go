package daemon

import (
	"sync"
	"testing"
	"time"
)

func TestTickRecorder_GapSince(t *testing.T) {
	tests := []struct {
		name      string
		records   []time.Time
		tolerance time.Duration
		wantGap   bool
	}{
		{
			name:      "no records",
			records:   nil,
			tolerance: time.Second * 30,
			wantGap:   false,
		},
		{
			name: "recent tick",
			records: []time.Time{
				time.Now().Add(-time.Second * 10),
			},
			tolerance: time.Second * 30,
			wantGap:   false,
		},
		{
			name: "stale tick",
			records: []time.Time{
				time.Now().Add(-time.Minute * 5),
			},
			tolerance: time.Second * 30,
			wantGap:   true,
		},
		{
			name: "only the last record matters",
			records: []time.Time{
				time.Now().Add(-time.Hour),
				time.Now().Add(-time.Second * 5),
			},
			tolerance: time.Second * 30,
			wantGap:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &TickRecorder{
				MaxRecordCount: 10,
				LastTickTimes:  tt.records,
				mu:             &sync.Mutex{},
			}
			if _, got := r.GapSince(tt.tolerance); got != tt.wantGap {
				t.Errorf("GapSince() = %t, want %t", got, tt.wantGap)
			}
		})
	}
}

func TestTickRecorder_MaxRecordCount(t *testing.T) {
	r := NewTickRecorder(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		r.AddRecord(base.Add(time.Duration(i) * time.Second))
	}

	if len(r.LastTickTimes) != 3 {
		t.Fatalf("expected 3 records kept, got %d", len(r.LastTickTimes))
	}
	if got := r.GetLastRecord(); !got.Equal(base.Add(4 * time.Second).Round(0)) {
		t.Fatalf("unexpected last record %v", got)
	}
}

func TestTickRecorder_ClearRecords(t *testing.T) {
	r := NewTickRecorder(10)
	r.AddRecordNow()
	r.ClearRecords()

	if !r.GetLastRecord().IsZero() {
		t.Fatalf("expected no records after clear")
	}
}
