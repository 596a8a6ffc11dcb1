package keywords

import "strings"

// Matcher 在规范化文本中查找词表关键词
//
// 文本按空白切分成词集合, 关键词必须与其中某个词完全相同才算命中。
// 因此含空格或标点的关键词 (如 "machine learning", "c++") 永远不会命中。
type Matcher struct {
	taxonomy *Taxonomy
}

// NewMatcher 创建关键词匹配器
func NewMatcher(taxonomy *Taxonomy) *Matcher {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Matcher{taxonomy: taxonomy}
}

// Taxonomy 匹配器使用的词表
func (m *Matcher) Taxonomy() *Taxonomy {
	return m.taxonomy
}

// KeywordsPresent 返回文本中出现的关键词, 按词表顺序且不重复
func (m *Matcher) KeywordsPresent(text string) []string {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		tokens[tok] = struct{}{}
	}

	found := make([]string, 0)
	for _, kw := range m.taxonomy.ordered {
		if _, ok := tokens[kw]; ok {
			found = append(found, kw)
		}
	}
	return found
}

// Missing 职位描述中出现而简历中没有的关键词, 保持 jobKeywords 的顺序
func (m *Matcher) Missing(jobKeywords, resumeKeywords []string) []string {
	have := make(map[string]struct{}, len(resumeKeywords))
	for _, kw := range resumeKeywords {
		have[kw] = struct{}{}
	}

	missing := make([]string, 0)
	seen := make(map[string]struct{})
	for _, kw := range jobKeywords {
		if _, ok := have[kw]; ok {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		missing = append(missing, kw)
	}
	return missing
}

// Compare 同时计算简历命中的关键词与缺失的关键词
func (m *Matcher) Compare(resumeText, jobText string) (found, missing []string) {
	found = m.KeywordsPresent(resumeText)
	missing = m.Missing(m.KeywordsPresent(jobText), found)
	return found, missing
}
