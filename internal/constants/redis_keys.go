package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ScoreModulePrefix 评分模块
	ScoreModulePrefix = "score"

	// EntitySemantic 语义相似度实体
	EntitySemantic = "semantic"

	// KeySemanticScore 语义相似度分数缓存 (STRING)
	// 格式: app:score:semantic:{fingerprint}
	KeySemanticScore = AppPrefix + ":" + ScoreModulePrefix + ":" + EntitySemantic + ":%s"
)
