package store

import "fmt"

// FetchEntry 一次月度抓取的日志
type FetchEntry struct {
	ID        int64  `json:"id"`
	RunID     string `json:"runId"`
	Dataset   string `json:"dataset"`
	City      string `json:"city"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Rows      int    `json:"rows"`
	Status    string `json:"status"` // ok/validation/network/parse/error
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// RecordFetch 写入一条抓取日志
func (s *Store) RecordFetch(e FetchEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO fetch_logs (run_id, dataset, city, year, month, rows, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Dataset, e.City, e.Year, e.Month, e.Rows, e.Status, e.Error)
	if err != nil {
		return fmt.Errorf("failed to record fetch log: %w", err)
	}
	return nil
}

// ListFetches 按时间倒序列出最近的抓取日志
func (s *Store) ListFetches(limit int) ([]FetchEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, run_id, dataset, city, year, month, rows, status, error, created_at
		FROM fetch_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch logs: %w", err)
	}
	defer rows.Close()

	var entries []FetchEntry
	for rows.Next() {
		var e FetchEntry
		if err := rows.Scan(&e.ID, &e.RunID, &e.Dataset, &e.City, &e.Year, &e.Month,
			&e.Rows, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
