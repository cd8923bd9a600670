package model

// MonthlyTemperature 某月的平均气温
type MonthlyTemperature struct {
	Month   int     `json:"month"`
	AvgHigh float64 `json:"avgHigh"` // 平均最高温度
	AvgLow  float64 `json:"avgLow"`  // 平均最低温度
}

// WindLevelCount 某月某风力等级的年均出现次数
type WindLevelCount struct {
	Month   int     `json:"month"`
	Level   string  `json:"level"`   // 风力等级，如 "3级"、"3-4级"
	PerYear float64 `json:"perYear"` // 出现次数 / 数据中的年份数
}

// ConditionCount 某月某天气状况的年均出现次数
type ConditionCount struct {
	Month     int     `json:"month"`
	Condition string  `json:"condition"` // 天气状况，如 "晴"、"小雨"
	PerYear   float64 `json:"perYear"`
}
