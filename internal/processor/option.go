package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// PipelineOption 评分流水线配置选项
type PipelineOption func(*ScoringPipeline)

// WithLogger 设置日志记录器
func WithLogger(logger *zerolog.Logger) PipelineOption {
	return func(p *ScoringPipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTipThreshold 设置生成改进建议的分数阈值
func WithTipThreshold(threshold float64) PipelineOption {
	return func(p *ScoringPipeline) {
		if threshold > 0 {
			p.tipThreshold = threshold
		}
	}
}

// WithMaxTips 设置关键词建议条数上限 (不超过 5)
func WithMaxTips(n int) PipelineOption {
	return func(p *ScoringPipeline) {
		if n > 0 {
			p.maxTips = n
		}
	}
}

// WithPublisher 设置评分完成事件的发布者
func WithPublisher(publisher ResultPublisher) PipelineOption {
	return func(p *ScoringPipeline) {
		p.publisher = publisher
	}
}

// WithClock 替换时间源, 用于事件时间戳
func WithClock(now func() time.Time) PipelineOption {
	return func(p *ScoringPipeline) {
		if now != nil {
			p.now = now
		}
	}
}
