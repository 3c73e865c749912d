package helpers

import (
	"testing"
	"time"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size, offset, limit int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{2, 0, DefaultPageSize, DefaultPageSize},
		{1, MaxPageSize + 1, 0, DefaultPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		if offset != tt.offset || limit != tt.limit {
			t.Errorf("CalculateOffsetLimit(%d, %d) = %d, %d; want %d, %d",
				tt.page, tt.size, offset, limit, tt.offset, tt.limit)
		}
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	if info.TotalPages != 3 || info.CurrentPage != 2 || info.TotalItems != 45 {
		t.Errorf("Unexpected pagination %+v", info)
	}
	empty := NewPaginationInfo(0, 1, 20)
	if empty.TotalPages != 1 {
		t.Errorf("Expected an empty first page to report 1 page, got %d", empty.TotalPages)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-04-01")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !d.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", d)
	}

	ts, err := ParseDate("2026-04-01T23:30:00+02:00")
	if err != nil {
		t.Fatalf("ParseDate RFC3339 failed: %v", err)
	}
	if got := StartOfDay(ts); !got.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start of day in UTC, got %v", got)
	}

	if _, err := ParseDate("01/04/2026"); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("90m", time.Hour); got != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", got)
	}
	if got := ParseDuration("soon", time.Hour); got != time.Hour {
		t.Errorf("Expected fallback 1h, got %v", got)
	}
}
