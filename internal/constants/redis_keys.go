package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// MatchModulePrefix 解析与匹配模块
	MatchModulePrefix = "resume-match"

	// EntityLLMResult 模型调用结果实体
	EntityLLMResult = "llm"

	// KeyLLMResultPrefix 模型调用结果缓存 (STRING)，后接内容指纹
	// 格式: app:resume-match:llm:{fingerprint}
	KeyLLMResultPrefix = AppPrefix + ":" + MatchModulePrefix + ":" + EntityLLMResult + ":"
)
