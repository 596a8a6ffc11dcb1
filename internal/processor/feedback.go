package processor

import (
	"fmt"

	"ats-scorer/internal/constants"
)

// 改进建议文案
const (
	TipWellOptimized = "Your resume is well-optimized for this role!"
	TipAddKeywords   = "Consider adding more job-specific keywords to your resume."
)

// GenerateTips 根据缺失关键词生成改进建议
// 没有缺失时返回一条肯定的提示; 否则返回引导语加至多 maxTips 条 "Include keyword: X"
func GenerateTips(missingKeywords []string, maxTips int) []string {
	if len(missingKeywords) == 0 {
		return []string{TipWellOptimized}
	}
	if maxTips <= 0 || maxTips > constants.MaxKeywordTips {
		maxTips = constants.MaxKeywordTips
	}

	n := len(missingKeywords)
	if n > maxTips {
		n = maxTips
	}
	tips := make([]string, 0, n+1)
	tips = append(tips, TipAddKeywords)
	for _, kw := range missingKeywords[:n] {
		tips = append(tips, fmt.Sprintf("Include keyword: %s", kw))
	}
	return tips
}
