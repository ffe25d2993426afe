package types

import (
	"strconv"
	"strings"
)

// ParseYearMonth 解析 "YYYY" 或 "YYYY-MM" 格式的日期。只有年份时 month 为 0。
func ParseYearMonth(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	yearPart, monthPart, hasMonth := strings.Cut(s, "-")
	if len(yearPart) != 4 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(yearPart)
	if err != nil || y < 1900 || y > 2100 {
		return 0, 0, false
	}
	if !hasMonth {
		return y, 0, true
	}
	m, err := strconv.Atoi(monthPart)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

// FormatYearMonth 与 ParseYearMonth 对应；month<=0 时只输出年份
func FormatYearMonth(year, month int) string {
	if month <= 0 {
		return strconv.Itoa(year)
	}
	if month < 10 {
		return strconv.Itoa(year) + "-0" + strconv.Itoa(month)
	}
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}
