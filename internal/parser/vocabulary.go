package parser

import (
	"regexp"
	"sort"
	"strings"
)

// techVocabulary 常见技术名词，用于技能兜底扫描和项目技术栈识别
var techVocabulary = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Go", "Golang", "Rust", "C++", "C#", "C",
	"Ruby", "PHP", "Kotlin", "Swift", "Scala", "R", "MATLAB", "Perl", "Dart", "Elixir", "Haskell",
	"SQL", "NoSQL", "HTML", "CSS", "Sass", "Bash", "Shell", "PowerShell", "Solidity",
	"React", "React Native", "Angular", "Vue", "Next.js", "Nuxt", "Svelte", "jQuery", "Redux",
	"Node.js", "Express", "Django", "Flask", "FastAPI", "Spring", "Spring Boot", "Rails",
	"Laravel", ".NET", "ASP.NET", "Gin", "Hertz", "gRPC", "GraphQL", "REST", "Flutter",
	"TensorFlow", "PyTorch", "Keras", "scikit-learn", "Pandas", "NumPy", "OpenCV", "Spark",
	"Hadoop", "Kafka", "RabbitMQ", "Airflow", "LangChain",
	"Docker", "Kubernetes", "Helm", "Terraform", "Ansible", "Jenkins", "GitHub Actions",
	"GitLab CI", "CI/CD", "AWS", "Azure", "GCP", "Google Cloud", "Firebase", "Heroku", "Vercel",
	"Linux", "Unix", "Git", "Nginx", "Prometheus", "Grafana",
	"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis", "Elasticsearch", "DynamoDB",
	"Cassandra", "Oracle", "Snowflake", "BigQuery",
	"Figma", "Jira", "Tableau", "Power BI", "Excel",
}

type vocabTerm struct {
	name string
	re   *regexp.Regexp
}

// 按长度降序匹配，优先识别 "Spring Boot" 而不是 "Spring"
var vocabTerms = buildVocabTerms(techVocabulary)

// 单字母或易与普通英文混淆的词，只在独立成词且大小写一致时识别
var caseSensitiveTerms = map[string]bool{"Go": true, "C": true, "R": true, "REST": true, "Spring": true, "Swift": true, "Express": true, "Excel": true, "Oracle": true}

func buildVocabTerms(words []string) []vocabTerm {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	terms := make([]vocabTerm, 0, len(sorted))
	for _, w := range sorted {
		pattern := `(?:^|[^\w.+#-])` + regexp.QuoteMeta(w) + `(?:$|[^\w+#])`
		if !caseSensitiveTerms[w] {
			pattern = `(?i)` + pattern
		}
		terms = append(terms, vocabTerm{name: w, re: regexp.MustCompile(pattern)})
	}
	return terms
}

// findTechnologies 返回文本中出现的技术名词（按出现位置排序，规范写法）
func findTechnologies(text string) []string {
	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	covered := make([]bool, len(text)+1)
	for _, t := range vocabTerms {
		for _, loc := range t.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlaps(covered, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				covered[i] = true
			}
			hits = append(hits, hit{name: t.name, pos: start})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.name)
	}
	return dedupeFold(names)
}

func overlaps(covered []bool, start, end int) bool {
	// 边界字符可能是分隔符，只检查中间部分
	for i := start + 1; i < end-1 && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

// mentionsTechnology 文本是否包含任一技术名词
func mentionsTechnology(text string) bool {
	for _, t := range vocabTerms {
		if t.re.MatchString(text) {
			return true
		}
	}
	return false
}

// nonSkillWords 明显不是技能的词，常见于章节标题或个人信息
var nonSkillWords = map[string]struct{}{
	"training": {}, "internship": {}, "internships": {}, "hobbies": {}, "interests": {},
	"skills": {}, "technical skills": {}, "experience": {}, "projects": {}, "education": {},
	"references": {}, "languages": {}, "tools": {}, "frameworks": {}, "others": {}, "other": {},
	"etc": {}, "and": {}, "summary": {}, "certifications": {}, "awards": {}, "achievements": {},
	"volunteering": {}, "activities": {}, "contact": {}, "profile": {},
}

func isNonSkillWord(s string) bool {
	_, ok := nonSkillWords[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
