package parser

import (
	"strings"

	"resume-match-go/internal/types"
)

const (
	// DescriptionDelimiter 子段落描述行的连接符
	DescriptionDelimiter = "\n"
	capsTitleMaxLen      = 50
)

// Subsection 章节内的一个逻辑条目（一段工作、一个项目、一个学位）
type Subsection struct {
	Title string
	Lines []string
}

// Description 返回去除项目符号后用固定分隔符连接的描述
func (s Subsection) Description() string {
	parts := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		if t := stripBullet(l); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, DescriptionDelimiter)
}

// DivideSubsections 根据格式线索把章节行切分为子段落。边界为：前有空行、
// 50字符以内的全大写行、年份区间行，以及一组新项目符号列表的开始。
// 新列表开始于非项目符号行之后；若当前条目已有列表，该非项目符号行作为新条目的标题。
func DivideSubsections(lines []types.Line) []Subsection {
	var subs []Subsection
	var cur []types.Line
	curHasBullet := false

	flush := func() {
		if len(cur) == 0 {
			return
		}
		sub := Subsection{Title: stripBullet(cur[0].Text)}
		for _, l := range cur[1:] {
			sub.Lines = append(sub.Lines, l.Text)
		}
		subs = append(subs, sub)
		cur, curHasBullet = nil, false
	}

	for i, l := range lines {
		bullet := isBullet(l.Text)
		boundary := len(cur) > 0 && (l.BlankBefore || isCapsTitle(l.Text) || yearRangeRe.MatchString(l.Text))

		if !boundary && bullet && i > 0 && !isBullet(lines[i-1].Text) && curHasBullet && len(cur) > 1 {
			// 上一行是新条目的标题：把它移到新条目中
			title := cur[len(cur)-1]
			cur = cur[:len(cur)-1]
			flush()
			cur = []types.Line{title}
		}
		if boundary {
			flush()
		}
		cur = append(cur, l)
		if bullet {
			curHasBullet = true
		}
	}
	flush()
	return subs
}

func isCapsTitle(s string) bool {
	s = stripBullet(s)
	return len(s) < capsTitleMaxLen && isAllCaps(s) && wordCount(s) >= 1 && !isShortAcronymList(s)
}

// isShortAcronymList 排除 "AWS, GCP, SQL" 这类全大写的技术列表
func isShortAcronymList(s string) bool {
	return strings.ContainsAny(s, ",;")
}
