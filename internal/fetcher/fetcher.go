// Package fetcher 从天气后报风格的月度历史页面抓取逐日天气记录。
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"weatherhist/internal/sheet"
)

// MinYear 站点收录历史数据的起始年份
const MinYear = 2011

var (
	// ErrYearOutOfRange 年份超出 [2011, 当前年份]
	ErrYearOutOfRange = errors.New("year out of range")
	// ErrMonthOutOfRange 月份超出 [1,12] 或是当前年份的未来月份
	ErrMonthOutOfRange = errors.New("month out of range")
	// ErrFetchStatus 页面请求返回非 200
	ErrFetchStatus = errors.New("unable to access weather data page")
	// ErrTableNotFound 页面中找不到天气数据表
	ErrTableNotFound = errors.New("weather data table not found")
)

// Client 月度天气页面抓取客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient 创建抓取客户端
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// MonthURL 拼出某城市某年某月的页面地址
// 形如 {base}/{city}/month/{YYYY}{MM}.html，月份补足两位
func (c *Client) MonthURL(city, year, month string) string {
	if len(month) == 1 {
		month = "0" + month
	}
	return fmt.Sprintf("%s/%s/month/%s%s.html", c.baseURL, city, year, month)
}

// FetchMonth 抓取一个月的数据并按行序追加进 book，返回追加的行数
// 只改内存，不落盘；校验失败、请求失败、找不到数据表时无任何写入。
// 单行日期不匹配或结构异常只跳过该行，不影响其余行
func (c *Client) FetchMonth(ctx context.Context, book *sheet.Book, city, year, month string) (int, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < MinYear || y > time.Now().Year() {
		return 0, fmt.Errorf("%w: %q", ErrYearOutOfRange, year)
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 || (y == time.Now().Year() && m > int(time.Now().Month())) {
		return 0, fmt.Errorf("%w: %q", ErrMonthOutOfRange, month)
	}

	pageURL := c.MonthURL(city, year, month)
	c.logger.Info("fetching weather data", "city", city, "year", y, "month", m, "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s status %d", ErrFetchStatus, pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page %s: %w", pageURL, err)
	}

	table := doc.Find("table.weather-table").First()
	if table.Length() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrTableNotFound, pageURL)
	}

	added := 0
	var appendErr error
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true // 表头行
		}

		cells := row.Find("td")
		if cells.Length() < 4 {
			c.logger.Warn("malformed row, skipping", "url", pageURL, "row", i)
			return true
		}

		rec, ok := ExtractRecord(
			cells.Eq(0).Text(),
			cells.Eq(1).Text(),
			cells.Eq(2).Text(),
			cells.Eq(3).Text(),
		)
		if !ok {
			c.logger.Info("date cell does not match, skipping row", "url", pageURL, "row", i)
			return true
		}

		if err := book.Append(rec); err != nil {
			appendErr = err
			return false
		}
		added++
		return true
	})
	if appendErr != nil {
		return added, appendErr
	}

	c.logger.Info("month fetched", "city", city, "year", y, "month", m, "rows", added)
	return added, nil
}

// FetchMonthToFile 打开（或新建）数据集工作簿，抓取一个月并立即落盘
// 与 FetchMonth 相对：后者写入调用方持有的会话，由调用方决定何时保存
func (c *Client) FetchMonthToFile(ctx context.Context, path, city, year, month string) (int, error) {
	book, err := sheet.OpenOrCreate(path)
	if err != nil {
		return 0, err
	}
	defer book.Close()

	added, err := c.FetchMonth(ctx, book, city, year, month)
	if err != nil {
		return added, err
	}

	return added, book.Save()
}

// ErrorKind 将错误归入诊断类别，用于抓取日志
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrYearOutOfRange), errors.Is(err, ErrMonthOutOfRange):
		return "validation"
	case errors.Is(err, ErrTableNotFound):
		return "parse"
	case errors.Is(err, ErrFetchStatus):
		return "network"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "network"
	}
	return "error"
}
