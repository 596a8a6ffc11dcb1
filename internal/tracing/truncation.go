package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxRedisLength Redis键值最大长度
	MaxRedisLength = 100

	// MaxFilenameLength 上传文件名最大长度
	MaxFilenameLength = 80
)

// maskPIILookup 需要掩码处理的属性名片段
// 属性名按 "." "_" "-" 切分后逐段比较, "filename" 不会命中 "name"
var maskPIILookup = map[string]bool{
	"email":    true,
	"phone":    true,
	"password": true,
	"address":  true,
	"name":     true,
	"secret":   true,
	"token":    true,
	"api_key":  true,
}

// SafeAttributeValue 确保属性值安全，不包含敏感信息
// 敏感字段返回掩码后的值, 其余按 maxLength 截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	if isSensitiveKey(name) {
		return MaskPII(value)
	}
	return TruncateString(value, maxLength)
}

func isSensitiveKey(name string) bool {
	lowerName := strings.ToLower(name)
	if maskPIILookup[lowerName] {
		return true
	}
	parts := strings.FieldsFunc(lowerName, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, part := range parts {
		if maskPIILookup[part] {
			return true
		}
		// 跨段的组合键, 如 "embedding.api_key"
		if i > 0 && maskPIILookup[parts[i-1]+"_"+part] {
			return true
		}
	}
	return false
}

// MaskPII 对个人敏感信息进行掩码处理
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)

	if length <= 1 {
		return "*"
	}
	if length <= 4 {
		if length == 2 {
			return string(runes[0:1]) + "*"
		}
		return string(runes[0:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	}

	// 保留首尾各两个字符: "13812345678" -> "13*******78"
	return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
}

// TruncateString 截断字符串，并在截断时添加省略号
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}

	// 保留前后部分，中间用...连接
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeRedisKey 安全处理Redis键
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeFilename 安全处理上传文件名
func SafeFilename(name string) string {
	return TruncateString(name, MaxFilenameLength)
}
