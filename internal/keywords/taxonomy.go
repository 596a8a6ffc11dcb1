// Package keywords 维护岗位关键词词表并在规范化文本中匹配关键词
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// Category 一个岗位类别及其有序关键词
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type taxonomyFile struct {
	Categories []Category `yaml:"categories"`
}

// Taxonomy 不可变的关键词词表, 构造后只读, 可在请求间共享
type Taxonomy struct {
	categories []Category
	ordered    []string // 去重后按类别顺序排列的关键词
	index      map[string]struct{}
}

// NewTaxonomy 由类别列表构造词表; 关键词统一为小写并去掉首尾空白
func NewTaxonomy(categories []Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("关键词词表不能为空")
	}

	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]struct{}),
	}
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("关键词类别名不能为空")
		}
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			kws = append(kws, kw)
			if _, seen := t.index[kw]; !seen {
				t.index[kw] = struct{}{}
				t.ordered = append(t.ordered, kw)
			}
		}
		t.categories = append(t.categories, Category{Name: name, Keywords: kws})
	}
	if len(t.ordered) == 0 {
		return nil, fmt.Errorf("关键词词表中没有任何关键词")
	}
	return t, nil
}

// ParseTaxonomy 解析 YAML 格式的词表
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析关键词词表失败: %w", err)
	}
	return NewTaxonomy(file.Categories)
}

// LoadTaxonomy 从文件加载词表; path 为空时返回内置词表
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取关键词词表 %s 失败: %w", path, err)
	}
	return ParseTaxonomy(data)
}

var (
	defaultOnce     sync.Once
	defaultTaxonomy *Taxonomy
)

// DefaultTaxonomy 内置词表, 进程内只解析一次
func DefaultTaxonomy() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := ParseTaxonomy(defaultTaxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("内置关键词词表无效: %v", err))
		}
		defaultTaxonomy = t
	})
	return defaultTaxonomy
}

// Categories 返回类别副本
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Keywords 去重后的全部关键词副本
func (t *Taxonomy) Keywords() []string {
	return append([]string(nil), t.ordered...)
}

// Contains 关键词是否属于词表
func (t *Taxonomy) Contains(keyword string) bool {
	_, ok := t.index[keyword]
	return ok
}

// Size 去重后的关键词数量
func (t *Taxonomy) Size() int {
	return len(t.ordered)
}
