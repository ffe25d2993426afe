package parser

import (
	"resume-match-go/internal/types"
)

// AssembleSections 按锚点把行序列切成章节。每个锚点的内容是它与下一锚点之间的行
// （不含标题行本身，但包含标题行携带的 Inline 内容）。同类章节按出现顺序合并，
// 只返回参与抽取的章节类型。
func AssembleSections(lines []types.Line, anchors []types.SectionAnchor) []types.Section {
	anchors = normalizeAnchors(append([]types.SectionAnchor(nil), anchors...))

	byType := make(map[types.SectionType]*types.Section)
	var order []types.SectionType
	for i, a := range anchors {
		if !isExtractable(a.Type) {
			continue
		}
		end := len(lines)
		if i+1 < len(anchors) {
			end = anchors[i+1].Index
		}

		var content []types.Line
		if a.Inline != "" {
			l := types.Line{Index: a.Index, Text: a.Inline}
			if a.Index >= 0 && a.Index < len(lines) {
				l.BlankBefore = lines[a.Index].BlankBefore
			}
			content = append(content, l)
		}
		for j := a.Index + 1; j < end && j < len(lines); j++ {
			if j >= 0 {
				content = append(content, lines[j])
			}
		}

		sec, ok := byType[a.Type]
		if !ok {
			sec = &types.Section{Type: a.Type}
			byType[a.Type] = sec
			order = append(order, a.Type)
		}
		sec.Lines = append(sec.Lines, content...)
	}

	out := make([]types.Section, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

// sectionLines 返回指定类型章节的行，不存在时返回 nil
func sectionLines(sections []types.Section, t types.SectionType) []types.Line {
	for _, s := range sections {
		if s.Type == t {
			return s.Lines
		}
	}
	return nil
}

func isExtractable(t types.SectionType) bool {
	for _, s := range types.ExtractableSections {
		if s == t {
			return true
		}
	}
	return false
}
