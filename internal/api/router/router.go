package router

import (
	"context"
	"errors"
	"strings"

	"ats-scorer/internal/api/handler"
	"ats-scorer/internal/tracing"
	"ats-scorer/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MsgUnauthorized 缺少或错误的 API Key
const MsgUnauthorized = "Invalid or missing API key."

var errInvalidAPIKey = errors.New("invalid API key")

// RegisterRoutes 注册 API 路由; apiKeys 非空时评分接口需要 Authorization: Bearer <key>
func RegisterRoutes(h *server.Hertz, scoreHandler *handler.ScoreHandler, apiKeys []string) {
	var guarded []app.HandlerFunc
	if auth := apiKeyMiddleware(apiKeys); auth != nil {
		guarded = append(guarded, auth)
	}

	// 兼容原有的根路径
	h.POST("/ats_score", append(guarded, scoreHandler.HandleScore)...)

	api := h.Group("/api/v1")
	api.POST("/ats_score", append(guarded, scoreHandler.HandleScore)...)

	// 添加健康检查
	api.GET("/health", scoreHandler.HandleHealth)
}

func apiKeyMiddleware(apiKeys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			allowed[k] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			if _, ok := allowed[key]; !ok {
				return false, errInvalidAPIKey
			}
			return true, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			span := trace.SpanFromContext(c)
			// 被拒绝的令牌只记录掩码
			if token := strings.TrimSpace(strings.TrimPrefix(string(ctx.GetHeader("Authorization")), "Bearer")); token != "" {
				span.SetAttributes(attribute.String("auth.token",
					tracing.SafeAttributeValue("auth.token", token, tracing.DefaultMaxLength)))
			}
			tracing.RecordHTTPError(span, err, consts.StatusUnauthorized)
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, types.ErrorResponse{Error: MsgUnauthorized})
		}),
	)
}
