package timegrid

import (
	"testing"

	"github.com/banci/banci/pkg/errors"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"运营日起点", "04:00", 240},
		{"上午时段", "06:30", 390},
		{"跨午夜前最后时段", "23:45", 1425},
		{"午夜视为次日", "00:00", 1440},
		{"凌晨视为次日", "01:00", 1500},
		{"次日凌晨半点", "00:30", 1470},
		{"25点写法", "25:00", 1500},
		{"带空白", " 08:15 ", 495},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if err != nil {
				t.Fatalf("ParseClock(%q) 意外出错: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseClock(%q) = %d, 期望 %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseClock_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"缺少冒号", "0800"},
		{"空字符串", ""},
		{"小时非数字", "ab:30"},
		{"分钟非数字", "08:xx"},
		{"分钟越界", "08:75"},
		{"小时越界", "99:00"},
		{"多段冒号", "08:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClock(tt.input)
			if err == nil {
				t.Fatalf("ParseClock(%q) 应该报错", tt.input)
			}
			if !errors.Is(err, errors.CodeInvalidTime) {
				t.Errorf("错误码应为 INVALID_TIME, 实际 %s", errors.GetCode(err))
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{240, "04:00"},
		{390, "06:30"},
		{1440, "00:00"},
		{1500, "01:00"},
		{1485, "00:45"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.expected {
			t.Errorf("FormatMinutes(%d) = %s, 期望 %s", tt.minutes, got, tt.expected)
		}
	}
}

func TestSnapping(t *testing.T) {
	if got := FloorToStep(247); got != 240 {
		t.Errorf("FloorToStep(247) = %d, 期望 240", got)
	}
	if got := FloorToStep(255); got != 255 {
		t.Errorf("FloorToStep(255) = %d, 期望 255", got)
	}
	if got := CeilToStep(247); got != 255 {
		t.Errorf("CeilToStep(247) = %d, 期望 255", got)
	}
	if got := CeilToStep(255); got != 255 {
		t.Errorf("CeilToStep(255) = %d, 期望 255", got)
	}
	if !IsAligned(300) || IsAligned(301) {
		t.Error("IsAligned 判断错误")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(100); got != DayStart {
		t.Errorf("Clamp(100) = %d, 期望 %d", got, DayStart)
	}
	if got := Clamp(2000); got != DayEnd {
		t.Errorf("Clamp(2000) = %d, 期望 %d", got, DayEnd)
	}
	if got := Clamp(600); got != 600 {
		t.Errorf("Clamp(600) = %d, 期望 600", got)
	}
}

func TestIntervalStarts(t *testing.T) {
	starts := IntervalStarts()
	if len(starts) != IntervalCount {
		t.Fatalf("时段数 = %d, 期望 %d", len(starts), IntervalCount)
	}
	if starts[0] != 240 {
		t.Errorf("首时段 = %d, 期望 240", starts[0])
	}
	if starts[len(starts)-1] != 1485 {
		t.Errorf("末时段 = %d, 期望 1485", starts[len(starts)-1])
	}
	// 序列有序且步长固定
	for i := 1; i < len(starts); i++ {
		if starts[i]-starts[i-1] != StepMinutes {
			t.Fatalf("时段 %d 与 %d 间隔不是 %d 分钟", starts[i-1], starts[i], StepMinutes)
		}
	}
}

func TestIntervalIndex(t *testing.T) {
	if idx, ok := IntervalIndex(240); !ok || idx != 0 {
		t.Errorf("IntervalIndex(240) = %d,%v, 期望 0,true", idx, ok)
	}
	if idx, ok := IntervalIndex(1485); !ok || idx != IntervalCount-1 {
		t.Errorf("IntervalIndex(1485) = %d,%v, 期望 %d,true", idx, ok, IntervalCount-1)
	}
	if _, ok := IntervalIndex(1500); ok {
		t.Error("IntervalIndex(1500) 应返回 false")
	}
	if _, ok := IntervalIndex(247); ok {
		t.Error("非网格时间应返回 false")
	}
}
