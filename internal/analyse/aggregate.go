// Package analyse 将逐日天气记录汇总为月度统计。
// 三类统计互相独立，都是对已加载数据的只读查询，每次调用现算，
// 数据缺失或不可解析只会让对应切片变空，不会报错。
package analyse

import (
	"sort"
	"strings"

	"weatherhist/internal/model"
)

// MonthlyAverageTemperature 按月平均最高/最低温度
// 任一温度缺失的行不参与计算，没有有效行的月份在结果中缺席
func MonthlyAverageTemperature(records []model.DailyRecord) []model.MonthlyTemperature {
	type acc struct {
		high, low float64
		n         int
	}
	byMonth := make(map[int]*acc)

	for _, r := range records {
		if r.TempHigh == nil || r.TempLow == nil {
			continue
		}
		a := byMonth[r.Month]
		if a == nil {
			a = &acc{}
			byMonth[r.Month] = a
		}
		a.high += *r.TempHigh
		a.low += *r.TempLow
		a.n++
	}

	result := make([]model.MonthlyTemperature, 0, len(byMonth))
	for month, a := range byMonth {
		result = append(result, model.MonthlyTemperature{
			Month:   month,
			AvgHigh: a.high / float64(a.n),
			AvgLow:  a.low / float64(a.n),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}

// WindLevelDistribution 按月、按风力等级的年均出现次数
// 白天和夜间各算一次出现；提取不出风力等级的值直接丢弃。
// 年均 = 出现次数 / 数据中不同年份的个数
func WindLevelDistribution(records []model.DailyRecord) []model.WindLevelCount {
	years := distinctYears(records)
	if years == 0 {
		return nil
	}

	type key struct {
		month int
		level string
	}
	counts := make(map[key]int)

	for _, r := range records {
		for _, wind := range []string{r.DayWind, r.NightWind} {
			level, ok := extractWindForce(wind)
			if !ok {
				continue
			}
			counts[key{r.Month, level}]++
		}
	}

	result := make([]model.WindLevelCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, model.WindLevelCount{
			Month:   k.month,
			Level:   k.level,
			PerYear: float64(n) / float64(years),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		ri, rj := WindLevelRank(result[i].Level), WindLevelRank(result[j].Level)
		if ri != rj {
			return ri < rj
		}
		return result[i].Level < result[j].Level
	})
	return result
}

// ConditionDistribution 按月、按天气状况的年均出现次数
// 排序先月份，再按固定的天气严重程度词表，词表外的状况按字典序排在最后
func ConditionDistribution(records []model.DailyRecord) []model.ConditionCount {
	years := distinctYears(records)
	if years == 0 {
		return nil
	}

	type key struct {
		month     int
		condition string
	}
	counts := make(map[key]int)

	for _, r := range records {
		for _, cond := range []string{r.DayCondition, r.NightCondition} {
			if cond == "" {
				continue
			}
			counts[key{r.Month, cond}]++
		}
	}

	result := make([]model.ConditionCount, 0, len(counts))
	for k, n := range counts {
		result = append(result, model.ConditionCount{
			Month:     k.month,
			Condition: k.condition,
			PerYear:   float64(n) / float64(years),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return conditionLess(result[i].Condition, result[j].Condition)
	})
	return result
}

// extractWindForce 取风力风向串中最后一个空白分隔段作为风力等级
// 如 "北风 3级" 取 "3级"；没有空白分隔的串提取不出等级
func extractWindForce(wind string) (string, bool) {
	fields := strings.Fields(wind)
	if len(fields) < 2 {
		return "", false
	}
	return fields[len(fields)-1], true
}

// WindLevelRank 风力等级标签的排序秩
// "3-4级" 这类两位数字夹一个非数字字符的记 34，"3级" 这类单个
// 前导数字的记 30，解析不出数字的记 99 垫底（仍保留在结果里）
func WindLevelRank(level string) int {
	runes := []rune(level)
	if len(runes) == 0 || !isDigit(runes[0]) {
		return 99
	}
	d1 := int(runes[0] - '0')
	if len(runes) > 2 && isDigit(runes[2]) {
		return d1*10 + int(runes[2]-'0')
	}
	return d1 * 10
}

// conditionOrder 天气状况的固定严重程度词表
var conditionOrder = []string{
	"晴", "多云", "阴",
	"小雨", "小到中雨", "中雨", "中到大雨", "大雨", "大到暴雨", "大暴雨",
	"阵雨", "雷阵雨",
	"雨夹雪", "阵雪", "小雪", "小到中雪", "中雪", "中到大雪", "大雪", "大到暴雪", "暴雪",
}

var conditionRank = func() map[string]int {
	m := make(map[string]int, len(conditionOrder))
	for i, c := range conditionOrder {
		m[c] = i
	}
	return m
}()

// SortConditions 按词表顺序排列状况标签，词表外的按字典序附在末尾
func SortConditions(labels []string) []string {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Slice(sorted, func(i, j int) bool { return conditionLess(sorted[i], sorted[j]) })
	return sorted
}

func conditionLess(a, b string) bool {
	ra, aKnown := conditionRank[a]
	rb, bKnown := conditionRank[b]
	switch {
	case aKnown && bKnown:
		return ra < rb
	case aKnown:
		return true
	case bKnown:
		return false
	default:
		return a < b
	}
}

// distinctYears 数据中不同年份的个数，作年均化的分母
func distinctYears(records []model.DailyRecord) int {
	years := make(map[int]struct{})
	for _, r := range records {
		years[r.Year] = struct{}{}
	}
	return len(years)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
