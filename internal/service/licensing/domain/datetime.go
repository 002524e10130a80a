package domain

import (
	"sync"
	"time"
)

// DefaultTimezone 是 Cassandra 后端使用的基准时区。
// 后端所有的日期字段都以这个时区为准。
const DefaultTimezone = "Asia/Seoul"

var (
	refZoneMu sync.RWMutex
	refZone   *time.Location
)

// ReferenceZone 返回进程级的基准时区。
// 未显式设置时惰性加载 DefaultTimezone。
func ReferenceZone() *time.Location {
	refZoneMu.RLock()
	loc := refZone
	refZoneMu.RUnlock()
	if loc != nil {
		return loc
	}

	refZoneMu.Lock()
	defer refZoneMu.Unlock()
	if refZone == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			// tzdata 不可用时退化为固定偏移 (KST 没有夏令时)
			loc = time.FixedZone("KST", 9*60*60)
		}
		refZone = loc
	}
	return refZone
}

// SetReferenceZone 覆盖基准时区。只应在进程启动阶段调用一次。
func SetReferenceZone(loc *time.Location) {
	refZoneMu.Lock()
	refZone = loc
	refZoneMu.Unlock()
}

// 响应中出现过的日期格式。带时区偏移的格式在前，其余按精度降序。
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
	}
	zonelessLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// ConvertDateTime 把响应里异构的日期表示(字符串或已有的 time.Time)
// 安全地归一化为 time.Time。
//
// correctTimezone 为 true 时，无时区信息的字符串按基准时区解释，
// 带时区的值被换算到基准时区(时刻不变，展示字段变化)；
// 为 false 时保留字符串自带/本地隐含的时区。
//
// 输入既不是字符串也不是 time.Time，或者字符串无法解析时，
// 返回 *InvalidInputError。
func ConvertDateTime(value any, correctTimezone bool) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		if correctTimezone && v.Location().String() != ReferenceZone().String() {
			return v.In(ReferenceZone()), nil
		}
		return v, nil

	case string:
		return parseDateTime(v, correctTimezone)

	default:
		return time.Time{}, &InvalidInputError{
			Value:  value,
			Reason: "expected a date/time string or a time.Time",
		}
	}
}

func parseDateTime(s string, correctTimezone bool) (time.Time, error) {
	implied := time.Local
	if correctTimezone {
		implied = ReferenceZone()
	}

	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, implied); err == nil {
			return t, nil
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if correctTimezone {
				return t.In(ReferenceZone()), nil
			}
			return t, nil
		}
	}

	return time.Time{}, &InvalidInputError{Value: s, Reason: "unparseable date/time string"}
}

// endOfDay 把时刻钉在所在日历日的最后一秒。键的过期日总是 23:59:59。
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
