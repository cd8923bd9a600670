package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"weatherhist/internal/sheet"
	"weatherhist/internal/store"
)

// TestFetchYear_PartialFailure 单月失败不影响其余月份，最后仍统一落盘
func TestFetchYear_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 5 月挂掉，其余月份正常
		if strings.HasSuffix(r.URL.Path, "202305.html") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, samplePage)
	}))
	defer srv.Close()

	dir := t.TempDir()
	logs, err := store.New(filepath.Join(dir, "weatherhist.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	defer logs.Close()

	o := NewOrchestrator(NewClient(srv.URL, testLogger()), logs, 0, testLogger())
	path := filepath.Join(dir, "dalian_weather_history.xlsx")

	report, err := o.FetchYear(context.Background(), path, "dalian", "2023")
	if err != nil {
		t.Fatalf("FetchYear failed: %v", err)
	}

	if len(report.Months) != 12 {
		t.Fatalf("expected 12 month results, got %d", len(report.Months))
	}
	if report.Dataset != "dalian_weather_history" {
		t.Fatalf("dataset = %q", report.Dataset)
	}
	if report.RunID == "" {
		t.Fatal("run id should be set")
	}

	for _, m := range report.Months {
		want := "ok"
		if m.Month == 5 {
			want = "network"
		}
		if m.Status != want {
			t.Fatalf("month %d status = %q, want %q", m.Month, m.Status, want)
		}
	}

	// 样例页面每月 2 条合格记录，5 月缺席
	if report.TotalRows != 22 {
		t.Fatalf("total rows = %d, want 22", report.TotalRows)
	}

	records, err := sheet.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 22 {
		t.Fatalf("saved records = %d, want 22", len(records))
	}

	// 抓取历史每月一条
	entries, err := logs.ListFetches(0)
	if err != nil {
		t.Fatalf("ListFetches failed: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 log entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.RunID != report.RunID {
			t.Fatalf("log run id = %q, want %q", e.RunID, report.RunID)
		}
	}
}

// TestFetchYear_ValidationYear 全年校验失败仍保存空数据集
func TestFetchYear_ValidationYear(t *testing.T) {
	o := NewOrchestrator(NewClient("http://127.0.0.1:0", testLogger()), nil, 0, testLogger())
	path := filepath.Join(t.TempDir(), "bad_year.xlsx")

	report, err := o.FetchYear(context.Background(), path, "dalian", "2010")
	if err != nil {
		t.Fatalf("FetchYear failed: %v", err)
	}
	if report.TotalRows != 0 {
		t.Fatalf("total rows = %d, want 0", report.TotalRows)
	}
	for _, m := range report.Months {
		if m.Status != "validation" {
			t.Fatalf("month %d status = %q, want validation", m.Month, m.Status)
		}
	}

	records, err := sheet.Load(path)
	if err != nil {
		t.Fatalf("workbook should exist with header: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty dataset, got %d rows", len(records))
	}
}
