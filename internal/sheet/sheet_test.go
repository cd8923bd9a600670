package sheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"weatherhist/internal/model"
)

func sampleRecord() model.DailyRecord {
	return model.DailyRecord{
		Year: 2023, Month: 3, Day: 5,
		DayCondition: "晴", NightCondition: "多云",
		TempHigh: model.Temp(10), TempLow: model.Temp(2),
		DayWind: "北风 3级", NightWind: "南风 2级",
	}
}

// TestOpenOrCreate_New 新建数据集只有表头
func TestOpenOrCreate_New(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")

	b, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	defer b.Close()

	if b.Count() != 0 {
		t.Fatalf("new book should have 0 data rows, got %d", b.Count())
	}

	// 新建时表头立即落盘
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("header file not saved: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(rows))
	}
	for i, col := range model.SheetColumns {
		if rows[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
}

// TestRoundTrip 追加保存后重新加载，逐字段一致
func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")

	b, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}

	want := sampleRecord()
	if err := b.Append(want); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b.Close()

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Year != want.Year || got.Month != want.Month || got.Day != want.Day {
		t.Fatalf("date mismatch: %+v", got)
	}
	if got.DayCondition != want.DayCondition || got.NightCondition != want.NightCondition {
		t.Fatalf("condition mismatch: %+v", got)
	}
	if got.TempHigh == nil || *got.TempHigh != *want.TempHigh {
		t.Fatalf("temp high mismatch: %v", got.TempHigh)
	}
	if got.TempLow == nil || *got.TempLow != *want.TempLow {
		t.Fatalf("temp low mismatch: %v", got.TempLow)
	}
	if got.DayWind != want.DayWind || got.NightWind != want.NightWind {
		t.Fatalf("wind mismatch: %+v", got)
	}
}

// TestRoundTrip_MissingFields 缺失温度与空字段的往返
func TestRoundTrip_MissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")

	b, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}

	want := model.DailyRecord{Year: 2023, Month: 7, Day: 1}
	if err := b.Append(want); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := b.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b.Close()

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.TempHigh != nil || got.TempLow != nil {
		t.Fatalf("temps should stay missing: %v / %v", got.TempHigh, got.TempLow)
	}
	if got.DayCondition != "" || got.DayWind != "" {
		t.Fatalf("string fields should stay empty: %+v", got)
	}
}

// TestAppendAccumulates 重新打开后追加不去重，行数只增
func TestAppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")

	for i := 0; i < 3; i++ {
		b, err := OpenOrCreate(path)
		if err != nil {
			t.Fatalf("OpenOrCreate #%d failed: %v", i, err)
		}
		if b.Count() != i {
			t.Fatalf("before append #%d: count = %d, want %d", i, b.Count(), i)
		}
		if err := b.Append(sampleRecord()); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if err := b.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		b.Close()
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 duplicated records, got %d", len(records))
	}
}

// TestRecords_SkipsJunkRows 年或月不是数字的行被跳过
func TestRecords_SkipsJunkRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.xlsx")

	b, err := OpenOrCreate(path)
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	if err := b.Append(sampleRecord()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// 手工塞一行杂质
	junk := []interface{}{"年份?", "x", "y"}
	if err := b.file.SetSheetRow(b.sheet, "A3", &junk); err != nil {
		t.Fatalf("SetSheetRow failed: %v", err)
	}
	b.rows++

	records, err := b.Records()
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected junk row skipped, got %d records", len(records))
	}
	b.Close()
}
