package interval

import (
	"errors"
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		want    float64
		wantErr error
	}{
		{"整班", at(9, 0), at(17, 0), 8, nil},
		{"半小时", at(9, 0), at(17, 30), 8.5, nil},
		{"相等", at(9, 0), at(9, 0), 0, ErrInvalidInterval},
		{"倒置", at(17, 0), at(9, 0), 0, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Duration(tt.start, tt.end)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，实际: %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("期望 %v 小时，实际 %v", tt.want, got)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := Interval{Start: at(9, 0), End: at(17, 0)}

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"部分重叠", Interval{at(16, 0), at(20, 0)}, true},
		{"首尾相接", Interval{at(17, 0), at(20, 0)}, false},
		{"尾首相接", Interval{at(6, 0), at(9, 0)}, false},
		{"完全包含", Interval{at(10, 0), at(11, 0)}, true},
		{"完全覆盖", Interval{at(8, 0), at(18, 0)}, true},
		{"不相交", Interval{at(18, 0), at(20, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(base, tt.other); got != tt.want {
				t.Errorf("Overlaps = %v，期望 %v", got, tt.want)
			}
			if got := Overlaps(tt.other, base); got != tt.want {
				t.Errorf("Overlaps 应满足对称性，反向结果 %v", got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{8.5, "8 h 30 m"},
		{8, "8 h 0 m"},
		{0, "0 h 0 m"},
		{1.0 / 60, "0 h 1 m"},
		{7.999, "8 h 0 m"}, // 479.94 分钟取整后进位为整小时
		{2.25, "2 h 15 m"},
		{-1.5, "-1 h 30 m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.hours); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q，期望 %q", tt.hours, got, tt.want)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("期望 ErrInvalidInterval，实际: %v", err)
	}
	iv, err := New(at(10, 0), at(12, 15))
	if err != nil {
		t.Fatalf("New 应成功: %v", err)
	}
	if iv.Hours() != 2.25 {
		t.Errorf("期望 2.25 小时，实际 %v", iv.Hours())
	}
}

func TestContains(t *testing.T) {
	iv := Interval{Start: at(9, 0), End: at(17, 0)}
	if !Contains(iv, at(9, 0)) {
		t.Error("起点应包含在区间内")
	}
	if Contains(iv, at(17, 0)) {
		t.Error("终点不应包含在区间内")
	}
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2024, 2)
	if !from.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("起始日错误: %v", from)
	}
	if !to.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("结束日错误: %v", to)
	}

	from, to = MonthRange(2024, 12)
	if to.Year() != 2025 || to.Month() != time.January {
		t.Errorf("12 月应跨年到 2025-01，实际 %v", to)
	}
	_ = from
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := DateOf(time.Date(2024, 3, 31, 23, 30, 0, 0, loc))
	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}
