// Package language 判断文本是否为英文
package language

import (
	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/rs/zerolog"
)

// 语言标识 (ISO 639-1, 无二字码时用 ISO 639-3)
const (
	// English 英文
	English = "en"
	// Undetermined 检测置信度不足, 无法判定语言
	Undetermined = "und"
)

// Detector 返回文本的语言标识; 英文固定为 "en", 无法判定时返回 "und"
type Detector interface {
	Detect(text string) string
}

// WhatlangDetector 基于 whatlanggo 的三元组统计检测
// 置信度未超过 whatlanggo.ReliableConfidenceThreshold 时视为无法判定
type WhatlangDetector struct{}

// Detect 实现 Detector
func (WhatlangDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Eng {
		return English
	}
	if info.Script == nil {
		return ""
	}
	// 技能清单这类关键词堆叠的文本几乎没有功能词, 三元组统计会在多个语言间摇摆
	if !info.IsReliable() {
		return Undetermined
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return info.Lang.Iso6393()
}

// Guard 只放行英文文本
// 只有高置信度地识别为其他语言时才拒绝; 短文本因此可能被放行
type Guard struct {
	detector Detector
	logger   *zerolog.Logger
}

// NewGuard 创建语言检查器, detector 为 nil 时使用 whatlanggo
func NewGuard(detector Detector, logger *zerolog.Logger) *Guard {
	if detector == nil {
		detector = WhatlangDetector{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Guard{detector: detector, logger: logger}
}

// IsEnglish 文本是否被检测为英文
func (g *Guard) IsEnglish(text string) bool {
	switch lang := g.detector.Detect(text); lang {
	case English:
		return true
	case Undetermined:
		g.logger.Debug().Int("chars", len(text)).Msg("语言检测置信度不足, 按英文处理")
		return true
	default:
		g.logger.Debug().Str("detected", lang).Int("chars", len(text)).Msg("文本未被识别为英文")
		return false
	}
}
