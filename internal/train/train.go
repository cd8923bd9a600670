// Package train 用低阶多项式回归拟合月度平均最高温度。
package train

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"weatherhist/internal/model"
)

// DefaultDegree 默认多项式阶数
const DefaultDegree = 8

// Model 训练好的多项式模型
type Model struct {
	degree int
	coeffs []float64 // coeffs[i] 是 x^i 的系数
}

// ComparePoint 某月的预测值与留出数据的真实值
type ComparePoint struct {
	Month     int      `json:"month"`
	Predicted float64  `json:"predicted"`
	Actual    *float64 `json:"actual"` // 留出数据中没有该月时为 nil
}

// Fit 对 月份→平均最高温度 做最小二乘多项式拟合
// 训练点最多 12 个，阶数超过自由度时压到 点数-1
// 只有一个训练点时退化为常数模型
func Fit(temps []model.MonthlyTemperature, degree int) (*Model, error) {
	if len(temps) == 0 {
		return nil, errors.New("no training data")
	}
	if len(temps) == 1 {
		return &Model{degree: 0, coeffs: []float64{temps[0].AvgHigh}}, nil
	}
	if degree < 1 {
		degree = 1
	}
	if degree >= len(temps) {
		degree = len(temps) - 1
	}

	rows := len(temps)
	cols := degree + 1

	// 范德蒙德矩阵 + QR 求解
	x := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, 1, nil)
	for i, t := range temps {
		v := 1.0
		for j := 0; j < cols; j++ {
			x.Set(i, j, v)
			v *= float64(t.Month)
		}
		y.Set(i, 0, t.AvgHigh)
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = beta.At(j, 0)
	}
	return &Model{degree: degree, coeffs: coeffs}, nil
}

// Degree 实际使用的阶数
func (m *Model) Degree() int {
	return m.degree
}

// Predict 求多项式在某月的值
func (m *Model) Predict(month float64) float64 {
	v := 0.0
	for i := len(m.coeffs) - 1; i >= 0; i-- {
		v = v*month + m.coeffs[i]
	}
	return v
}

// PredictMonths 预测一串月份的平均最高温度
// 月份必须是 1..12 内的非空升序序列
func (m *Model) PredictMonths(months []int) ([]float64, error) {
	if err := validateMonths(months); err != nil {
		return nil, err
	}

	result := make([]float64, len(months))
	for i, month := range months {
		result[i] = m.Predict(float64(month))
	}
	return result, nil
}

// Compare 预测并与留出数据的月度均值左连接
// 留出数据中缺席的月份 Actual 为 nil
func (m *Model) Compare(months []int, actual []model.MonthlyTemperature) ([]ComparePoint, error) {
	predicted, err := m.PredictMonths(months)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]float64, len(actual))
	for _, t := range actual {
		byMonth[t.Month] = t.AvgHigh
	}

	points := make([]ComparePoint, len(months))
	for i, month := range months {
		p := ComparePoint{Month: month, Predicted: predicted[i]}
		if v, ok := byMonth[month]; ok {
			p.Actual = model.Temp(v)
		}
		points[i] = p
	}
	return points, nil
}

func validateMonths(months []int) error {
	if len(months) == 0 {
		return errors.New("invalid months: empty")
	}
	for i, m := range months {
		if m < 1 || m > 12 {
			return fmt.Errorf("invalid month: %d", m)
		}
		if i > 0 && m < months[i-1] {
			return errors.New("invalid months: not ascending")
		}
	}
	return nil
}
