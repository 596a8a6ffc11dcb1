package parser

import "strings"

// NormalizeText 统一文本形态: 转小写, [a-z] 与空白以外的字符替换为空格, 合并连续空白并去掉首尾空白
// 纯函数, 对同一输入重复调用结果不变
func NormalizeText(text string) string {
	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(cleaned), " ")
}
