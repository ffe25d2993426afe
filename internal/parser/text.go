package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	bulletPrefixRe = regexp.MustCompile(`^\s*(?:[-*•●▪■◆◦‣∙·➢➤►✓✔]|\d{1,2}[.)])\s+`)
	urlRe          = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s,;)]+|\b(?:github\.com|gitlab\.com|bitbucket\.org)/[^\s,;)]+`)
	githubRefRe    = regexp.MustCompile(`(?i)\b(?:github|gitlab|bitbucket)\b`)
	jobTitleRe     = regexp.MustCompile(`(?i)\b(?:engineer|developer|programmer|manager|intern|analyst|consultant|designer|architect|lead|director|specialist|administrator|scientist|coordinator|researcher|assistant|officer|technician|associate|devops|sre)s?\b`)
	yearRangeRe    = regexp.MustCompile(`(?i)\d{4}\s*(?:-|–|—|to)\s*(?:\d{4}|present)`)
	listSepRe      = regexp.MustCompile(`\s*[,;|•·]\s*|\s+/\s+`)
	wordSplitRe    = regexp.MustCompile(`\s+`)
)

// isBullet 行是否以项目符号或编号开头
func isBullet(s string) bool {
	return bulletPrefixRe.MatchString(s)
}

// stripBullet 去除行首的项目符号
func stripBullet(s string) string {
	return strings.TrimSpace(bulletPrefixRe.ReplaceAllString(s, ""))
}

// isAllCaps 至少包含一个字母且所有字母均为大写
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// containsFold 忽略大小写的双向包含判断，任一为空时返回 false
func containsFold(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// dedupeFold 忽略大小写去重，保留首次出现的写法和顺序
func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		k := strings.ToLower(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// splitList 按逗号、分号、竖线等分隔符切分
func splitList(s string) []string {
	parts := listSepRe.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstURL(s string) string {
	return strings.TrimRight(urlRe.FindString(s), ".")
}
