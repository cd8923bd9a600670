// Package sheet 以 xlsx 工作簿实现追加式天气数据表。
// 表结构固定为 model.SheetColumns 的 9 列，只追加不去重，
// 内存中的改动仅在显式 Save 时落盘。
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"weatherhist/internal/model"
)

// Book 一个数据集对应的工作簿会话
type Book struct {
	file  *excelize.File
	path  string
	sheet string
	rows  int // 当前总行数，含表头
}

// OpenOrCreate 打开数据集工作簿，不存在时新建并写入表头
// 新建的表头文件立即落盘，之后追加的数据行由调用方 Save 落盘
func OpenOrCreate(path string) (*Book, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return create(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	name := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	return &Book{file: f, path: path, sheet: name, rows: len(rows)}, nil
}

// create 新建带表头的工作簿
func create(path string) (*Book, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	f := excelize.NewFile()
	name := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(model.SheetColumns))
	for i, col := range model.SheetColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	b := &Book{file: f, path: path, sheet: name, rows: 1}
	if err := b.Save(); err != nil {
		f.Close()
		return nil, err
	}
	return b, nil
}

// Path 工作簿文件路径
func (b *Book) Path() string {
	return b.path
}

// Count 数据行数，不含表头
func (b *Book) Count() int {
	if b.rows <= 1 {
		return 0
	}
	return b.rows - 1
}

// Append 在表尾追加一条记录，仅改内存
// 不做任何去重，重复抓取同一月份会产生相同键的重复行
func (b *Book) Append(r model.DailyRecord) error {
	cell, err := excelize.CoordinatesToCellName(1, b.rows+1)
	if err != nil {
		return err
	}

	row := []interface{}{
		r.Year, r.Month, r.Day,
		r.DayCondition, r.NightCondition,
		tempCell(r.TempHigh), tempCell(r.TempLow),
		r.DayWind, r.NightWind,
	}
	if err := b.file.SetSheetRow(b.sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	b.rows++
	return nil
}

// Save 将当前全部内容落盘，整体覆盖旧文件
// 先写临时文件再改名，保存失败不会留下损坏的半成品
func (b *Book) Save() error {
	tmp := b.path + ".tmp.xlsx"
	if err := b.file.SaveAs(tmp); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

// Close 释放工作簿资源，不落盘
func (b *Book) Close() error {
	return b.file.Close()
}

// Records 读出全部数据行为类型化记录
// 年或月解析失败的行视为杂质跳过，温度列非数字按缺失处理
func (b *Book) Records() ([]model.DailyRecord, error) {
	rows, err := b.file.GetRows(b.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", b.sheet, err)
	}

	records := make([]model.DailyRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // 表头
		}
		r, ok := parseRow(row)
		if !ok {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// Load 只读加载一个数据集的全部记录
func Load(path string) ([]model.DailyRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	b := &Book{file: f, path: path, sheet: name}
	return b.Records()
}

// tempCell 温度写入值，缺失写空单元格
func tempCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// parseRow 一行单元格文本转记录
func parseRow(row []string) (model.DailyRecord, bool) {
	year, err1 := strconv.Atoi(strings.TrimSpace(cellAt(row, 0)))
	month, err2 := strconv.Atoi(strings.TrimSpace(cellAt(row, 1)))
	if err1 != nil || err2 != nil {
		return model.DailyRecord{}, false
	}
	day, _ := strconv.Atoi(strings.TrimSpace(cellAt(row, 2)))

	return model.DailyRecord{
		Year:           year,
		Month:          month,
		Day:            day,
		DayCondition:   strings.TrimSpace(cellAt(row, 3)),
		NightCondition: strings.TrimSpace(cellAt(row, 4)),
		TempHigh:       parseTemp(cellAt(row, 5)),
		TempLow:        parseTemp(cellAt(row, 6)),
		DayWind:        strings.TrimSpace(cellAt(row, 7)),
		NightWind:      strings.TrimSpace(cellAt(row, 8)),
	}, true
}

// cellAt GetRows 会裁掉行尾空单元格，越界按空处理
func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func parseTemp(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
