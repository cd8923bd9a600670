package store

import (
	"path/filepath"
	"testing"
)

// TestRecordAndListFetches 抓取日志写入读出
func TestRecordAndListFetches(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "weatherhist.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	entries := []FetchEntry{
		{RunID: "run-1", Dataset: "dalian_weather_history", City: "dalian", Year: 2023, Month: 1, Rows: 31, Status: "ok"},
		{RunID: "run-1", Dataset: "dalian_weather_history", City: "dalian", Year: 2023, Month: 2, Rows: 0, Status: "network", Error: "status 502"},
	}
	for _, e := range entries {
		if err := s.RecordFetch(e); err != nil {
			t.Fatalf("RecordFetch failed: %v", err)
		}
	}

	got, err := s.ListFetches(10)
	if err != nil {
		t.Fatalf("ListFetches failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}

	// 时间倒序，最后写入的在前
	if got[0].Month != 2 || got[0].Status != "network" || got[0].Error != "status 502" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Month != 1 || got[1].Rows != 31 || got[1].Status != "ok" {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
	if got[0].CreatedAt == "" {
		t.Fatal("created_at should be set")
	}
}

// TestListFetches_Empty 空库返回空列表
func TestListFetches_Empty(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "weatherhist.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	got, err := s.ListFetches(10)
	if err != nil {
		t.Fatalf("ListFetches failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}
