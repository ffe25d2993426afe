package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

// 行数不超过该值时认为上游文本提取质量较差，需要二次切分
const degradedLineThreshold = 3

var (
	sentenceBreakRe = regexp.MustCompile(`\.\s+`)
	bulletGlyphRe   = regexp.MustCompile(`\s*([•●▪■◆◦‣∙·➢➤►✓✔])\s*`)
	wideSpaceRe     = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{3000}]{3,}`)
)

// NormalizeLines 将原始文本切分为去空白、非空的有序行序列。
// 直接按换行切分得到的行数 <= 3 时，按句号、项目符号和长空白再切分一次。
func NormalizeLines(raw string) []types.Line {
	raw = strings.ToValidUTF8(raw, "")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := splitLines(raw)
	if len(lines) <= degradedLineThreshold && strings.TrimSpace(raw) != "" {
		resplit := raw
		resplit = sentenceBreakRe.ReplaceAllString(resplit, ".\n")
		resplit = bulletGlyphRe.ReplaceAllString(resplit, "\n$1 ")
		resplit = wideSpaceRe.ReplaceAllString(resplit, "\n")
		if again := splitLines(resplit); len(again) > len(lines) {
			lines = again
		}
	}
	return lines
}

func splitLines(text string) []types.Line {
	var out []types.Line
	blank := false
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			blank = len(out) > 0
			continue
		}
		out = append(out, types.Line{Index: len(out), Text: l, BlankBefore: blank})
		blank = false
	}
	return out
}

// lineTexts 提取行文本
func lineTexts(lines []types.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
