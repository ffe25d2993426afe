package tracing

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxLength 普通属性值的最大长度（按 rune 计）
	DefaultMaxLength = 200
	// MaxKeyLength 缓存键的最大长度
	MaxKeyLength = 100
	// MaxPromptLength 提示词与模型响应的最大长度
	MaxPromptLength = 300
)

// 简历正文里最常见的联系方式，写入 span 前替换掉
var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\- ]{8,}\d`)
)

// TruncateString 超长时保留首尾各一半，中间用 "..." 连接。maxLength 不超过 3 时直接截断。
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// RedactContact 把邮箱和电话号码替换为占位符
func RedactContact(s string) string {
	if !strings.ContainsAny(s, "@0123456789") {
		return s
	}
	s = emailRe.ReplaceAllString(s, "[email]")
	return phoneRe.ReplaceAllStringFunc(s, func(m string) string {
		// 年份区间 "2020 - 2022" 也会命中正则，按数字个数区分
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < 10 {
			return m
		}
		return "[phone]"
	})
}

// SafePrompt 提示词里带着简历原文，先脱敏再截断
func SafePrompt(prompt string) string {
	return TruncateString(RedactContact(prompt), MaxPromptLength)
}

func SafeKey(key string) string {
	return TruncateString(key, MaxKeyLength)
}
