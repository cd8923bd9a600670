package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"weatherhist/internal/analyse"
	"weatherhist/internal/config"
	"weatherhist/internal/fetcher"
	"weatherhist/internal/model"
	"weatherhist/internal/sheet"
	"weatherhist/internal/store"
	"weatherhist/internal/train"
)

// Handler API 处理器
type Handler struct {
	cfg    *config.AppConfig
	orch   *fetcher.Orchestrator
	logs   *store.Store
	logger *slog.Logger

	// 同一时刻只允许一个抓取任务，数据集只支持单写者
	fetchMu sync.Mutex
}

// NewHandler 创建 API 处理器
func NewHandler(cfg *config.AppConfig, orch *fetcher.Orchestrator, logs *store.Store, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, orch: orch, logs: logs, logger: logger}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/datasets", h.ListDatasets)

	// 月度统计
	router.GET("/aggregates/temperature", h.GetTemperature)
	router.GET("/aggregates/wind", h.GetWind)
	router.GET("/aggregates/weather", h.GetWeather)

	// 回归预测
	router.GET("/predict", h.GetPredict)

	// 抓取
	router.POST("/fetch", h.Fetch)
	router.GET("/logs", h.ListLogs)
}

// DatasetInfo 数据集概况
type DatasetInfo struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Rows   int    `json:"rows"`
}

// StatusResponse 系统状态响应
type StatusResponse struct {
	City     string        `json:"city"`
	Datasets []DatasetInfo `json:"datasets"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		City: h.cfg.Fetch.City,
		Datasets: []DatasetInfo{
			h.datasetInfo(h.cfg.Fetch.HistoryDataset),
			h.datasetInfo(h.cfg.Fetch.CurrentDataset),
		},
	})
}

// ListDatasets 列出数据目录下的全部数据集
// GET /api/datasets
func (h *Handler) ListDatasets(c *gin.Context) {
	dataDir, _, err := config.EnsureDirs(h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matches, _ := filepath.Glob(filepath.Join(dataDir, "*.xlsx"))
	datasets := make([]DatasetInfo, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		datasets = append(datasets, h.datasetInfo(name[:len(name)-len(".xlsx")]))
	}
	c.JSON(http.StatusOK, datasets)
}

// GetTemperature 月平均气温
// GET /api/aggregates/temperature?dataset=xxx
func (h *Handler) GetTemperature(c *gin.Context) {
	records, ok := h.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analyse.MonthlyAverageTemperature(records))
}

// GetWind 各月风力等级年均出现次数
// GET /api/aggregates/wind?dataset=xxx
func (h *Handler) GetWind(c *gin.Context) {
	records, ok := h.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analyse.WindLevelDistribution(records))
}

// GetWeather 各月天气状况年均出现次数
// GET /api/aggregates/weather?dataset=xxx
func (h *Handler) GetWeather(c *gin.Context) {
	records, ok := h.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analyse.ConditionDistribution(records))
}

// GetPredict 训练并预测 12 个月平均最高温度
// GET /api/predict?dataset=xxx&compare=yyy&degree=8
func (h *Handler) GetPredict(c *gin.Context) {
	records, ok := h.loadDataset(c)
	if !ok {
		return
	}

	degree := h.cfg.Model.Degree
	if v := c.Query("degree"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			degree = d
		}
	}

	m, err := train.Fit(analyse.MonthlyAverageTemperature(records), degree)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}

	var actual []model.MonthlyTemperature
	if compare := c.Query("compare"); compare != "" {
		compareRecords, err := sheet.Load(config.DatasetPath(h.cfg, filepath.Base(compare)))
		if err != nil {
			h.logger.Warn("compare dataset not loadable, predicting only", "dataset", compare, "error", err)
		} else {
			actual = analyse.MonthlyAverageTemperature(compareRecords)
		}
	}

	points, err := m.Compare(months, actual)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"degree": m.Degree(),
		"points": points,
	})
}

// FetchRequest 抓取请求
type FetchRequest struct {
	Dataset string `json:"dataset" binding:"required"`
	City    string `json:"city"`
	Year    string `json:"year" binding:"required"`
}

// Fetch 抓取一整年数据到指定数据集
// POST /api/fetch
func (h *Handler) Fetch(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.City == "" {
		req.City = h.cfg.Fetch.City
	}

	h.fetchMu.Lock()
	defer h.fetchMu.Unlock()

	path := config.DatasetPath(h.cfg, filepath.Base(req.Dataset))
	report, err := h.orch.FetchYear(c.Request.Context(), path, req.City, req.Year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListLogs 抓取历史
// GET /api/logs?limit=100
func (h *Handler) ListLogs(c *gin.Context) {
	if h.logs == nil {
		c.JSON(http.StatusOK, []store.FetchEntry{})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.logs.ListFetches(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []store.FetchEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// loadDataset 读取 dataset 参数指向的数据集，失败时已写响应
func (h *Handler) loadDataset(c *gin.Context) ([]model.DailyRecord, bool) {
	name := c.Query("dataset")
	if name == "" {
		name = h.cfg.Fetch.HistoryDataset
	}

	path := config.DatasetPath(h.cfg, filepath.Base(name))
	records, err := sheet.Load(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return records, true
}

// datasetInfo 数据集存在性与行数
func (h *Handler) datasetInfo(name string) DatasetInfo {
	info := DatasetInfo{Name: name}
	path := config.DatasetPath(h.cfg, name)
	if _, err := os.Stat(path); err != nil {
		return info
	}
	info.Exists = true
	if records, err := sheet.Load(path); err == nil {
		info.Rows = len(records)
	}
	return info
}
