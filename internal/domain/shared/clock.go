package shared

import "time"

// Clock 当前时间来源，测试中可替换为固定时间
type Clock func() time.Time

// SystemClock 系统时间
func SystemClock() Clock {
	return time.Now
}
