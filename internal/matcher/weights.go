package matcher

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// 权重之和允许的误差
const weightTolerance = 0.001

// ErrInvalidWeights 权重为负或总和不为 1
var ErrInvalidWeights = errors.New("invalid match weights")

// 匹配模式
const (
	ModeFull   = "full"
	ModeSimple = "simple"
)

// 权重表的键名，与配置文件和 MatchResult.Weights 一致
const (
	KeySkills          = "skills"
	KeyRequiredSkills  = "required_skills"
	KeyPreferredSkills = "preferred_skills"
	KeyExperience      = "experience"
	KeyEducation       = "education"
	KeyProjects        = "projects"
	KeyLLM             = "llm"
)

// Weights 各维度子分数的权重，总和须为 1。
// Skills 作用于必需/加分技能的混合分，通常与 RequiredSkills/PreferredSkills 二选一。
type Weights struct {
	Skills          float64
	RequiredSkills  float64
	PreferredSkills float64
	Experience      float64
	Education       float64
	Projects        float64
	LLM             float64
}

var (
	// FullWeights 默认权重：必需技能、加分技能分开计分，并包含外部定性分析
	FullWeights = Weights{RequiredSkills: 0.35, PreferredSkills: 0.15, Experience: 0.20, Education: 0.10, Projects: 0.10, LLM: 0.10}
	// SimpleWeights 简化权重：技能混合计分，不调用外部定性分析
	SimpleWeights = Weights{Skills: 0.40, Experience: 0.30, Education: 0.20, Projects: 0.10}
)

// Preset 返回模式对应的预设权重
func Preset(mode string) (Weights, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeFull:
		return FullWeights, nil
	case ModeSimple:
		return SimpleWeights, nil
	default:
		return Weights{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidWeights, mode)
	}
}

// Sum 权重总和
func (w Weights) Sum() float64 {
	return w.Skills + w.RequiredSkills + w.PreferredSkills + w.Experience + w.Education + w.Projects + w.LLM
}

// Validate 检查权重非负且总和为 1 (±0.001)
func (w Weights) Validate() error {
	for key, v := range w.Map() {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, key, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: sum is %.4f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Map 以键名形式导出权重，省略为 0 的项
func (w Weights) Map() map[string]float64 {
	all := map[string]float64{
		KeySkills:          w.Skills,
		KeyRequiredSkills:  w.RequiredSkills,
		KeyPreferredSkills: w.PreferredSkills,
		KeyExperience:      w.Experience,
		KeyEducation:       w.Education,
		KeyProjects:        w.Projects,
		KeyLLM:             w.LLM,
	}
	for k, v := range all {
		if v == 0 {
			delete(all, k)
		}
	}
	return all
}

// WeightsFromMap 从键名形式构造权重并校验
func WeightsFromMap(m map[string]float64) (Weights, error) {
	var w Weights
	for k, v := range m {
		switch strings.ToLower(k) {
		case KeySkills:
			w.Skills = v
		case KeyRequiredSkills:
			w.RequiredSkills = v
		case KeyPreferredSkills:
			w.PreferredSkills = v
		case KeyExperience:
			w.Experience = v
		case KeyEducation:
			w.Education = v
		case KeyProjects:
			w.Projects = v
		case KeyLLM:
			w.LLM = v
		default:
			return Weights{}, fmt.Errorf("%w: unknown key %q", ErrInvalidWeights, k)
		}
	}
	return w, w.Validate()
}

// withoutLLM 把 LLM 权重按比例分摊到其余维度
func (w Weights) withoutLLM() Weights {
	rest := w.Sum() - w.LLM
	if w.LLM == 0 || rest <= 0 {
		return w
	}
	scale := (rest + w.LLM) / rest
	return Weights{
		Skills:          w.Skills * scale,
		RequiredSkills:  w.RequiredSkills * scale,
		PreferredSkills: w.PreferredSkills * scale,
		Experience:      w.Experience * scale,
		Education:       w.Education * scale,
		Projects:        w.Projects * scale,
	}
}
