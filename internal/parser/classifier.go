package parser

import (
	"resume-match-go/internal/types"
)

// 未分类簇向前后各看的已分类行数
const neighborWindow = 3

// ClassifyLines 在没有任何章节标题时按内容特征为每行分类。
// 第一遍逐行打分，取严格最高分；平分或零分的行记为 SectionUnknown。
// 第二遍把连续的未分类行作为一簇，用前后邻居投票，邻居无法决出时参考簇内格式信号。
func ClassifyLines(lines []types.Line) []types.SectionType {
	labels := make([]types.SectionType, len(lines))
	for i, l := range lines {
		labels[i] = bestSection(scoreLine(l.Text))
	}

	resolved := append([]types.SectionType(nil), labels...)
	for start := 0; start < len(labels); {
		if labels[start] != types.SectionUnknown {
			start++
			continue
		}
		end := start
		for end+1 < len(labels) && labels[end+1] == types.SectionUnknown {
			end++
		}
		section := resolveCluster(lines[start:end+1], neighborVotes(labels, start, end))
		for i := start; i <= end; i++ {
			resolved[i] = section
		}
		start = end + 1
	}
	return resolved
}

// classifiedAnchors 将逐行分类结果转换为锚点：每段连续同类行一个锚点，锚点行本身即内容
func classifiedAnchors(lines []types.Line, labels []types.SectionType) []types.SectionAnchor {
	var anchors []types.SectionAnchor
	for i, l := range lines {
		if i > 0 && labels[i] == labels[i-1] {
			continue
		}
		anchors = append(anchors, types.SectionAnchor{Index: l.Index, Type: labels[i], Inline: l.Text})
	}
	return anchors
}

func bestSection(scores map[types.SectionType]int) types.SectionType {
	best, bestScore, tie := types.SectionUnknown, 0, false
	for _, section := range types.ExtractableSections {
		s := scores[section]
		switch {
		case s > bestScore:
			best, bestScore, tie = section, s, false
		case s == bestScore && s > 0:
			tie = true
		}
	}
	if tie || bestScore <= 0 {
		return types.SectionUnknown
	}
	return best
}

func neighborVotes(labels []types.SectionType, start, end int) map[types.SectionType]int {
	votes := make(map[types.SectionType]int)
	for i := start - 1; i >= 0 && i >= start-neighborWindow; i-- {
		if labels[i] != types.SectionUnknown {
			votes[labels[i]]++
		}
	}
	for i := end + 1; i < len(labels) && i <= end+neighborWindow; i++ {
		if labels[i] != types.SectionUnknown {
			votes[labels[i]]++
		}
	}
	return votes
}

// resolveCluster 邻居投票决出唯一最高者时采用；否则在并列类别（或无邻居时的全部类别）中
// 叠加簇内格式信号再比较一次，仍无法决出则保持未分类
func resolveCluster(cluster []types.Line, votes map[types.SectionType]int) types.SectionType {
	if section := bestSection(votes); section != types.SectionUnknown {
		return section
	}

	candidates := topSections(votes)
	signals := clusterSignals(cluster)
	tally := make(map[types.SectionType]int)
	for section := range candidates {
		tally[section] = votes[section]
	}
	for section, n := range signals {
		if len(candidates) > 0 && !candidates[section] {
			continue
		}
		tally[section] += n
	}
	return bestSection(tally)
}

func topSections(votes map[types.SectionType]int) map[types.SectionType]bool {
	max := 0
	for _, n := range votes {
		if n > max {
			max = n
		}
	}
	top := make(map[types.SectionType]bool)
	if max == 0 {
		return top
	}
	for section, n := range votes {
		if n == max {
			top[section] = true
		}
	}
	return top
}

// clusterSignals 簇内格式信号：日期和职位词指向经历，项目符号指向经历/项目，逗号或冒号列表指向技能
func clusterSignals(cluster []types.Line) map[types.SectionType]int {
	signals := make(map[types.SectionType]int)
	var hasDate, hasTitle, hasBullet, hasList bool
	for _, l := range cluster {
		hasDate = hasDate || yearRe.MatchString(l.Text) || monthYearRe.MatchString(l.Text)
		hasTitle = hasTitle || jobTitleRe.MatchString(l.Text)
		hasBullet = hasBullet || isBullet(l.Text)
		hasList = hasList || commaListRe.MatchString(stripBullet(l.Text)) || colonListRe.MatchString(stripBullet(l.Text))
	}
	if hasDate {
		signals[types.SectionExperience]++
	}
	if hasTitle {
		signals[types.SectionExperience]++
	}
	if hasBullet {
		signals[types.SectionExperience]++
		signals[types.SectionProjects]++
	}
	if hasList {
		signals[types.SectionSkills]++
	}
	return signals
}
