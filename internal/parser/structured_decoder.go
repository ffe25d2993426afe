package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSONObject 从模型的自由文本响应中定位第一个 JSON 对象。
// 优先使用 ```json 代码块，否则从第一个 '{' 开始做括号匹配（跳过字符串字面量中的括号）。
// 找不到完整对象时返回空字符串。
func ExtractJSONObject(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	if m := fencedJSONRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			return text[start : end+1]
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return ""
}

// matchBrace 返回与 text[start] 处 '{' 配对的 '}' 位置，不存在时返回 -1
func matchBrace(text string, start int) int {
	level := 0
	inStr, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

// DecodeBestEffort 定位响应中的 JSON 对象并解码到 v。
// 直接解码失败时修复字符串内未转义的双引号后再试一次。
func DecodeBestEffort(text string, v any) error {
	raw := ExtractJSONObject(text)
	if raw == "" {
		return ErrNoJSON
	}
	raw = strings.ToValidUTF8(raw, "")

	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	fixed := sanitizeJSON(raw)
	if fixErr := json.Unmarshal([]byte(fixed), v); fixErr != nil {
		return fmt.Errorf("decode JSON (sanitized retry: %v): %w", fixErr, err)
	}
	return nil
}

// sanitizeJSON 把字符串字面量内部未转义的双引号改写为 \"。
// 某个 '"' 之后的第一个非空白字符是 : , ] } 之一时才视为字符串结束。
func sanitizeJSON(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	inStr, escaped := false, false

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
				break
			}
			j := i + 1
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if j >= len(src) || strings.IndexByte(":,]}", src[j]) >= 0 {
				inStr = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}
		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)
			continue
		default:
			b.WriteByte(c)
		}
		escaped = false
	}
	return b.String()
}

// 以下为 JSON 解析失败时的正则兜底，只依赖 "key": value 的局部形态

var quotedStringRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

func keyPrefix(key string) string {
	return `"` + regexp.QuoteMeta(key) + `"\s*:\s*`
}

// ExtractStringList 提取 "key": [ "a", "b" ] 中的字符串
func ExtractStringList(text, key string) []string {
	re := regexp.MustCompile(`(?s)` + keyPrefix(key) + `\[(.*?)\]`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, q := range quotedStringRe.FindAllStringSubmatch(m[1], -1) {
		if s := strings.TrimSpace(unescapeJSONString(q[1])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractString 提取 "key": "value" 中的字符串
func ExtractString(text, key string) string {
	re := regexp.MustCompile(keyPrefix(key) + `"((?:[^"\\]|\\.)*)"`)
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(unescapeJSONString(m[1]))
	}
	return ""
}

// ExtractNumber 提取 "key": 12.5 或 "key": "12.5" 中的数字
func ExtractNumber(text, key string) (float64, bool) {
	re := regexp.MustCompile(keyPrefix(key) + `"?(-?\d+(?:\.\d+)?)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	return f, err == nil
}

// ExtractObjects 提取 "key": [ {...}, {...} ] 中每个对象的字符串字段。
// 对象按括号配对切分，字段值只保留字符串和数字。
func ExtractObjects(text, key string) []map[string]string {
	loc := regexp.MustCompile(keyPrefix(key) + `\[`).FindStringIndex(text)
	if loc == nil {
		return nil
	}
	var out []map[string]string
	pairRe := regexp.MustCompile(`"([A-Za-z_][\w]*)"\s*:\s*(?:"((?:[^"\\]|\\.)*)"|(-?\d+(?:\.\d+)?))`)
	rest := text[loc[1]:]
	for {
		open := strings.IndexAny(rest, "{]")
		if open < 0 || rest[open] == ']' {
			break
		}
		end := matchBrace(rest, open)
		body := rest[open:]
		if end > open {
			body = rest[open : end+1]
		}
		obj := make(map[string]string)
		for _, p := range pairRe.FindAllStringSubmatch(body, -1) {
			v := p[2]
			if v == "" {
				v = p[3]
			}
			obj[p[1]] = strings.TrimSpace(unescapeJSONString(v))
		}
		if len(obj) > 0 {
			out = append(out, obj)
		}
		if end <= open {
			break
		}
		rest = rest[end+1:]
	}
	return out
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}
