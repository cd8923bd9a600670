// Package charts 把月度统计结果渲染成 PNG 图表。
// 样式是机械性的：折线表示随月份变化的数值，每个风力等级或
// 天气状况各占一条序列。
package charts

import (
	"fmt"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart"

	"weatherhist/internal/analyse"
	"weatherhist/internal/model"
	"weatherhist/internal/train"
)

// RenderTemperatureTrend 月平均气温变化趋势图
func RenderTemperatureTrend(path string, temps []model.MonthlyTemperature) error {
	if len(temps) == 0 {
		return fmt.Errorf("no temperature data to render")
	}

	months := make([]float64, len(temps))
	highs := make([]float64, len(temps))
	lows := make([]float64, len(temps))
	for i, t := range temps {
		months[i] = float64(t.Month)
		highs[i] = t.AvgHigh
		lows[i] = t.AvgLow
	}

	graph := chart.Chart{
		Title:      "Monthly Average Temperature",
		TitleStyle: chart.Style{Show: true},
		Width:      1200,
		Height:     700,
		XAxis: chart.XAxis{
			Name:      "Month",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Ticks:     monthTicks(),
		},
		YAxis: chart.YAxis{
			Name:      "Temperature (°C)",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "avg high",
				Style:   chart.Style{Show: true},
				XValues: months,
				YValues: highs,
			},
			chart.ContinuousSeries{
				Name:    "avg low",
				Style:   chart.Style{Show: true, StrokeDashArray: []float64{5.0, 5.0}},
				XValues: months,
				YValues: lows,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

// RenderWindDistribution 各月风力等级分布情况图，每个等级一条序列
func RenderWindDistribution(path string, counts []model.WindLevelCount) error {
	if len(counts) == 0 {
		return fmt.Errorf("no wind data to render")
	}

	levels := make([]string, 0)
	seen := make(map[string]bool)
	byLevel := make(map[string][]model.WindLevelCount)
	for _, c := range counts {
		if !seen[c.Level] {
			seen[c.Level] = true
			levels = append(levels, c.Level)
		}
		byLevel[c.Level] = append(byLevel[c.Level], c)
	}
	sort.Slice(levels, func(i, j int) bool {
		ri, rj := analyse.WindLevelRank(levels[i]), analyse.WindLevelRank(levels[j])
		if ri != rj {
			return ri < rj
		}
		return levels[i] < levels[j]
	})

	series := make([]chart.Series, 0, len(levels))
	for _, level := range levels {
		var xs, ys []float64
		for _, c := range byLevel[level] {
			xs = append(xs, float64(c.Month))
			ys = append(ys, c.PerYear)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    level,
			Style:   chart.Style{Show: true},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:      "Wind Force Distribution by Month",
		TitleStyle: chart.Style{Show: true},
		Width:      1200,
		Height:     800,
		XAxis: chart.XAxis{
			Name:      "Month",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Ticks:     monthTicks(),
		},
		YAxis: chart.YAxis{
			Name:      "Occurrences per Year",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

// RenderConditionDistribution 各月天气状况分布图，每种状况一条序列
func RenderConditionDistribution(path string, counts []model.ConditionCount) error {
	if len(counts) == 0 {
		return fmt.Errorf("no condition data to render")
	}

	labels := make([]string, 0)
	seen := make(map[string]bool)
	byCondition := make(map[string][]model.ConditionCount)
	for _, c := range counts {
		if !seen[c.Condition] {
			seen[c.Condition] = true
			labels = append(labels, c.Condition)
		}
		byCondition[c.Condition] = append(byCondition[c.Condition], c)
	}
	labels = analyse.SortConditions(labels)

	series := make([]chart.Series, 0, len(labels))
	for _, label := range labels {
		var xs, ys []float64
		for _, c := range byCondition[label] {
			xs = append(xs, float64(c.Month))
			ys = append(ys, c.PerYear)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    label,
			Style:   chart.Style{Show: true},
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:      "Weather Condition Distribution by Month",
		TitleStyle: chart.Style{Show: true},
		Width:      1400,
		Height:     800,
		XAxis: chart.XAxis{
			Name:      "Month",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Ticks:     monthTicks(),
		},
		YAxis: chart.YAxis{
			Name:      "Occurrences per Year",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

// RenderPrediction 预测与真实平均最高温度对照图
func RenderPrediction(path string, points []train.ComparePoint) error {
	if len(points) == 0 {
		return fmt.Errorf("no prediction data to render")
	}

	var px, py []float64
	var ax, ay []float64
	for _, p := range points {
		px = append(px, float64(p.Month))
		py = append(py, p.Predicted)
		if p.Actual != nil {
			ax = append(ax, float64(p.Month))
			ay = append(ay, *p.Actual)
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "predicted avg high",
			Style:   chart.Style{Show: true, StrokeDashArray: []float64{5.0, 5.0}},
			XValues: px,
			YValues: py,
		},
	}
	if len(ax) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "actual avg high",
			Style:   chart.Style{Show: true},
			XValues: ax,
			YValues: ay,
		})
	}

	graph := chart.Chart{
		Title:      "Predicted vs Actual Monthly Average High",
		TitleStyle: chart.Style{Show: true},
		Width:      1200,
		Height:     700,
		XAxis: chart.XAxis{
			Name:      "Month",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
			Ticks:     monthTicks(),
		},
		YAxis: chart.YAxis{
			Name:      "Temperature (°C)",
			NameStyle: chart.Style{Show: true},
			Style:     chart.Style{Show: true},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, graph)
}

func monthTicks() []chart.Tick {
	ticks := make([]chart.Tick, 12)
	for i := 0; i < 12; i++ {
		ticks[i] = chart.Tick{Value: float64(i + 1), Label: fmt.Sprintf("%d", i+1)}
	}
	return ticks
}

func renderPNG(path string, graph chart.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
