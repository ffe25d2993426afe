package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 模型输出的字段类型并不可靠：数字可能是字符串，列表可能是逗号分隔的字符串

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// coerceFloat 无法转换时返回 NaN
func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%")), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// coerceStringList 接受字符串数组、对象数组（取 name 字段）或分隔符连接的字符串
func coerceStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return splitList(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				item = field(m, "name", "skill", "value")
			}
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := coerceString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}

// coerceObjects 接受对象数组，忽略其中的非对象元素
func coerceObjects(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		if m, ok := v.(map[string]any); ok {
			return []map[string]any{m}
		}
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// field 按顺序返回第一个存在的键（忽略大小写、下划线与驼峰差异）
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	for k, v := range m {
		norm := strings.ToLower(strings.ReplaceAll(k, "_", ""))
		for _, want := range keys {
			if norm == strings.ToLower(strings.ReplaceAll(want, "_", "")) {
				return v
			}
		}
	}
	return nil
}

// stringMapToAny 把正则兜底提取的字符串对象转换为通用形式
func stringMapToAny(objs []map[string]string) []map[string]any {
	out := make([]map[string]any, 0, len(objs))
	for _, o := range objs {
		m := make(map[string]any, len(o))
		for k, v := range o {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}
