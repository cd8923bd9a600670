package fetcher

import (
	"regexp"
	"strconv"
	"strings"

	"weatherhist/internal/model"
)

// dateRe 日期单元格格式，如 "2023年3月5日"
// 三个数字组缺一不可，匹配失败整行跳过
var dateRe = regexp.MustCompile(`^\s*(\d{4})年(\d{1,2})月(\d{1,2})日`)

// ExtractRecord 将一行的四个单元格文本解析为一条日记录
// 日期不符合 "<年>年<月>月<日>日" 时返回 ok=false，调用方跳过该行；
// 天气/温度/风力三类字段各自独立回退：某一类按 "/" 拆不出白天、夜间
// 两部分时，该类的两个字段一起置空（温度置缺失），不影响其余字段
func ExtractRecord(dateCell, conditionCell, temperatureCell, windCell string) (model.DailyRecord, bool) {
	m := dateRe.FindStringSubmatch(dateCell)
	if m == nil {
		return model.DailyRecord{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	r := model.DailyRecord{Year: year, Month: month, Day: day}

	if d, n, ok := splitPair(conditionCell); ok {
		r.DayCondition = d
		r.NightCondition = n
	}

	if hi, lo, ok := splitPair(temperatureCell); ok {
		r.TempHigh = parseCelsius(hi)
		r.TempLow = parseCelsius(lo)
	}

	if d, n, ok := splitPair(windCell); ok {
		r.DayWind = d
		r.NightWind = n
	}

	return r, true
}

// splitPair 按 "/" 拆出白天、夜间两个子值
// 恰好两部分才算匹配，页面文本中的换行和多余空白压成单个空格
func splitPair(s string) (day, night string, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return collapseSpace(parts[0]), collapseSpace(parts[1]), true
}

// parseCelsius 去掉 "℃" 后缀并转数字，转不动按缺失处理
func parseCelsius(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "℃"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
