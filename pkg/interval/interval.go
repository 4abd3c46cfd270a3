package interval

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInterval 结束时间不晚于开始时间
var ErrInvalidInterval = errors.New("时间区间无效：结束时间必须晚于开始时间")

// Interval 半开时间区间 [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// New 构造并校验区间
func New(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Hours 区间时长（小时）
func (i Interval) Hours() float64 {
	return i.End.Sub(i.Start).Hours()
}

// Duration 计算 [start, end) 的小时数（含小数，如 8.5）
func Duration(start, end time.Time) (float64, error) {
	if !end.After(start) {
		return 0, ErrInvalidInterval
	}
	return end.Sub(start).Hours(), nil
}

// Overlaps 判断两个半开区间是否相交；首尾相接（a.End == b.Start）不算重叠
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains 判断时刻 t 是否落在区间内
func Contains(i Interval, t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// RoundMinutes 按最近整分钟取整，报表与 FormatDuration 共用同一规则
func RoundMinutes(hours float64) int64 {
	return int64(math.Round(hours * 60))
}

// FormatDuration 渲染为 "8 h 30 m"；分钟四舍五入，满 60 进位到小时
func FormatDuration(hours float64) string {
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	total := RoundMinutes(hours)
	return fmt.Sprintf("%s%d h %d m", sign, total/60, total%60)
}

// MonthRange 返回自然月的半开日期区间 [当月1日, 次月1日)，时区为 UTC
func MonthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// DateOf 取 t 在其自身时区下的日历日，归一化为 UTC 零点
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
