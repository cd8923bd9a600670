package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"weatherhist/internal/train"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Fetch  FetchConfig  `toml:"fetch"`
	Model  ModelConfig  `toml:"model"`
}

// ServerConfig 本地查看服务配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据目录配置
type DataConfig struct {
	DataDir    string `toml:"data_dir"`    // 工作簿与抓取日志目录
	ResultsDir string `toml:"results_dir"` // 图表输出目录
}

// FetchConfig 抓取配置
type FetchConfig struct {
	BaseURL        string `toml:"base_url"` // 天气后报历史页面根地址
	City           string `toml:"city"`     // 城市拼音，如 dalian
	PauseMillis    int    `toml:"pause_ms"` // 相邻月份请求间隔，礼貌性限速
	HistoryYears   []int  `toml:"history_years"`
	CurrentYear    int    `toml:"current_year"`
	CurrentMonths  int    `toml:"current_months"` // 当年已抓取的月份数 1..N
	HistoryDataset string `toml:"history_dataset"`
	CurrentDataset string `toml:"current_dataset"`
}

// ModelConfig 回归模型配置
type ModelConfig struct {
	Degree int `toml:"degree"` // 多项式阶数
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:    "data",
			ResultsDir: "results",
		},
		Fetch: FetchConfig{
			BaseURL:        "https://www.tianqihoubao.com/lishi",
			City:           "dalian",
			PauseMillis:    500,
			HistoryYears:   []int{2022, 2023, 2024},
			CurrentYear:    2025,
			CurrentMonths:  6,
			HistoryDataset: "dalian_weather_history",
			CurrentDataset: "dalian_weather_now",
		},
		Model: ModelConfig{
			Degree: train.DefaultDegree,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下，不存在时返回默认配置
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// 环境变量覆盖（用于集成测试指向本地假站点）
	if v := os.Getenv("WEATHERHIST_BASE_URL"); v != "" {
		config.Fetch.BaseURL = v
	}

	return config, nil
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDirs 确保数据目录与结果目录存在，返回两者的路径
func EnsureDirs(config *AppConfig) (dataDir, resultsDir string, err error) {
	dataDir = resolveDir(config.Data.DataDir)
	resultsDir = resolveDir(config.Data.ResultsDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return "", "", err
	}

	return dataDir, resultsDir, nil
}

// DatasetPath 数据集名到工作簿文件路径
func DatasetPath(config *AppConfig, name string) string {
	return filepath.Join(resolveDir(config.Data.DataDir), name+".xlsx")
}

// ResultPath 图表文件路径
func ResultPath(config *AppConfig, filename string) string {
	return filepath.Join(resolveDir(config.Data.ResultsDir), filename)
}

// resolveDir 相对目录挂在可执行文件目录下，绝对目录原样使用
func resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, dir)
}
