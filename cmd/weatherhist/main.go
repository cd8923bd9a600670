package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"weatherhist/internal/analyse"
	"weatherhist/internal/charts"
	"weatherhist/internal/config"
	"weatherhist/internal/fetcher"
	"weatherhist/internal/server"
	"weatherhist/internal/sheet"
	"weatherhist/internal/store"
	"weatherhist/internal/train"
	"weatherhist/internal/util"
)

var (
	port    = flag.Int("port", 0, "查看服务端口 (覆盖配置文件)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	city    = flag.String("city", "", "城市拼音 (覆盖配置文件)")
	serve   = flag.Bool("serve", false, "批处理结束后启动本地查看服务")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  WeatherHist - 历史天气统计分析工具")
	fmt.Println("==========================================")

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *city != "" {
		cfg.Fetch.City = *city
	}

	dataPath, resultsPath, err := config.EnsureDirs(cfg)
	if err != nil {
		log.Fatalf("创建数据目录失败: %v", err)
	}
	fmt.Printf("数据目录: %s\n", dataPath)
	fmt.Printf("结果目录: %s\n", resultsPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// 抓取历史日志库，打不开时只影响诊断，不影响主流程
	logs, err := store.New(filepath.Join(dataPath, "weatherhist.db"))
	if err != nil {
		logger.Warn("fetch log store unavailable", "error", err)
		logs = nil
	} else {
		defer logs.Close()
	}

	if err := runPipeline(context.Background(), cfg, logs, logger); err != nil {
		log.Fatalf("批处理失败: %v", err)
	}

	if !*serve {
		return
	}

	// 启动本地查看服务
	srv := server.NewServer(cfg, logs, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
}

// runPipeline 批处理主流程：补抓缺失数据集，出三张统计图，训练并预测
// 单月抓取失败只记日志继续，数据集打不开或存不上才算失败
func runPipeline(ctx context.Context, cfg *config.AppConfig, logs *store.Store, logger *slog.Logger) error {
	client := fetcher.NewClient(cfg.Fetch.BaseURL, logger)
	orch := fetcher.NewOrchestrator(client, logs,
		time.Duration(cfg.Fetch.PauseMillis)*time.Millisecond, logger)

	historyPath := config.DatasetPath(cfg, cfg.Fetch.HistoryDataset)
	currentPath := config.DatasetPath(cfg, cfg.Fetch.CurrentDataset)

	// 历史数据集不存在时整年补抓
	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		for _, year := range cfg.Fetch.HistoryYears {
			if _, err := orch.FetchYear(ctx, historyPath, cfg.Fetch.City, strconv.Itoa(year)); err != nil {
				return err
			}
		}
	}

	// 当年留出数据集不存在时按月补抓，每月各自落盘
	if _, err := os.Stat(currentPath); os.IsNotExist(err) {
		year := strconv.Itoa(cfg.Fetch.CurrentYear)
		for m := 1; m <= cfg.Fetch.CurrentMonths; m++ {
			if _, err := client.FetchMonthToFile(ctx, currentPath, cfg.Fetch.City, year, strconv.Itoa(m)); err != nil {
				if fetcher.ErrorKind(err) == "error" {
					return err
				}
				logger.Error("month fetch failed", "year", year, "month", m, "error", err)
			}
		}
	}

	records, err := sheet.Load(historyPath)
	if err != nil {
		return err
	}

	temps := analyse.MonthlyAverageTemperature(records)
	if err := charts.RenderTemperatureTrend(config.ResultPath(cfg, "temperature_trend.png"), temps); err != nil {
		logger.Error("temperature chart failed", "error", err)
	}
	if err := charts.RenderWindDistribution(config.ResultPath(cfg, "wind_distribution.png"), analyse.WindLevelDistribution(records)); err != nil {
		logger.Error("wind chart failed", "error", err)
	}
	if err := charts.RenderConditionDistribution(config.ResultPath(cfg, "weather_distribution.png"), analyse.ConditionDistribution(records)); err != nil {
		logger.Error("condition chart failed", "error", err)
	}

	m, err := train.Fit(temps, cfg.Model.Degree)
	if err != nil {
		logger.Error("training failed, skipping prediction", "error", err)
		return nil
	}

	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}

	var compare []train.ComparePoint
	currentRecords, err := sheet.Load(currentPath)
	if err != nil {
		logger.Warn("compare dataset not loadable, predicting only", "path", currentPath, "error", err)
		compare, err = m.Compare(months, nil)
	} else {
		compare, err = m.Compare(months, analyse.MonthlyAverageTemperature(currentRecords))
	}
	if err != nil {
		return err
	}

	for _, p := range compare {
		if p.Actual != nil {
			logger.Info("prediction", "month", p.Month, "predicted", p.Predicted, "actual", *p.Actual)
		} else {
			logger.Info("prediction", "month", p.Month, "predicted", p.Predicted)
		}
	}

	if err := charts.RenderPrediction(config.ResultPath(cfg, "prediction_vs_actual.png"), compare); err != nil {
		logger.Error("prediction chart failed", "error", err)
	}

	return nil
}
