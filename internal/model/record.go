package model

// SheetColumns 天气数据表固定表头
// 与天气后报月度页面的四列原始数据一一对应（白天/夜间各记一次）
var SheetColumns = []string{
	"年", "月", "日",
	"白天天气", "夜间天气",
	"最高温度/℃", "最低温度/℃",
	"白天风力风向", "夜间风力风向",
}

// DailyRecord 一天的天气观测记录
// 由抓取解析产生，追加进工作表后不再修改
type DailyRecord struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`

	DayCondition   string `json:"dayCondition"`   // 白天天气，可为空
	NightCondition string `json:"nightCondition"` // 夜间天气，可为空

	TempHigh *float64 `json:"tempHigh"` // 最高温度/℃，nil 表示缺失
	TempLow  *float64 `json:"tempLow"`  // 最低温度/℃，nil 表示缺失

	DayWind   string `json:"dayWind"`   // 白天风力风向，格式 "风向 风力等级"
	NightWind string `json:"nightWind"` // 夜间风力风向
}

// Temp 构造温度指针，便于测试和内部赋值
func Temp(v float64) *float64 {
	return &v
}
