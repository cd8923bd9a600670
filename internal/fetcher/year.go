package fetcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"weatherhist/internal/sheet"
	"weatherhist/internal/store"
)

// MonthResult 单月抓取结果
type MonthResult struct {
	Month  int    `json:"month"`
	Rows   int    `json:"rows"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// YearReport 年度抓取报告
type YearReport struct {
	RunID     string        `json:"runId"`
	Dataset   string        `json:"dataset"`
	City      string        `json:"city"`
	Year      string        `json:"year"`
	TotalRows int           `json:"totalRows"`
	Months    []MonthResult `json:"months"`
}

// Orchestrator 年度抓取调度器
// 12 个月严格顺序抓取，保证行按月份有序，也避免触发站点限流
type Orchestrator struct {
	client *Client
	logs   *store.Store // 可为 nil，抓取历史仅作诊断
	pause  time.Duration
	logger *slog.Logger
}

// NewOrchestrator 创建调度器
func NewOrchestrator(client *Client, logs *store.Store, pause time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{client: client, logs: logs, pause: pause, logger: logger}
}

// FetchYear 抓取一整年写入 path 对应的数据集，最后统一落盘一次
// 单个月失败只记日志并继续，该月在结果中缺席；打开或保存工作簿
// 失败才返回错误
func (o *Orchestrator) FetchYear(ctx context.Context, path, city, year string) (*YearReport, error) {
	book, err := sheet.OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	report := &YearReport{
		RunID:   uuid.New().String(),
		Dataset: datasetName(path),
		City:    city,
		Year:    year,
	}

	yearNum, _ := strconv.Atoi(year)

	for m := 1; m <= 12; m++ {
		if m > 1 && o.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(o.pause):
			}
		}
		if ctx.Err() != nil {
			o.logger.Warn("fetch cancelled, saving partial result", "dataset", report.Dataset, "year", year)
			break
		}

		rows, err := o.client.FetchMonth(ctx, book, city, year, strconv.Itoa(m))
		result := MonthResult{Month: m, Rows: rows, Status: ErrorKind(err)}
		if err != nil {
			result.Error = err.Error()
			o.logger.Error("month fetch failed", "dataset", report.Dataset, "year", year, "month", m, "error", err)
		}

		report.Months = append(report.Months, result)
		report.TotalRows += rows
		o.logMonth(report, yearNum, result)
	}

	if err := book.Save(); err != nil {
		return report, err
	}

	o.logger.Info("year fetched", "dataset", report.Dataset, "city", city, "year", year, "rows", report.TotalRows)
	return report, nil
}

// logMonth 抓取历史入库，失败不影响抓取本身
func (o *Orchestrator) logMonth(report *YearReport, year int, r MonthResult) {
	if o.logs == nil {
		return
	}
	err := o.logs.RecordFetch(store.FetchEntry{
		RunID:   report.RunID,
		Dataset: report.Dataset,
		City:    report.City,
		Year:    year,
		Month:   r.Month,
		Rows:    r.Rows,
		Status:  r.Status,
		Error:   r.Error,
	})
	if err != nil {
		o.logger.Warn("failed to record fetch log", "error", err)
	}
}

func datasetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
