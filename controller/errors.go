package controller

import (
	"errors"
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/myErrors"
)

// 共享错误码之外，审核场景需要区分的业务码
const (
	ErrCodeClientConflict       = 40901 // 并发修改或存储约束冲突
	ErrCodeClientAlreadyHandled = 40902 // 已被其他管理员处理
	ErrCodeServerUnavailable    = 50301 // 存储或消息通道暂不可用，可重试
)

// respondServiceError 按错误分类选择状态码，提示语来自 myErrors.UserMessage，不暴露内部错误
func respondServiceError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	_ = c.Error(err)
	response.RespondError(c, status, code, myErrors.UserMessage(err))
}

// errorStatus 错误分类到 HTTP 状态码和业务码的映射
func errorStatus(err error) (int, int) {
	if errors.Is(err, myErrors.ErrCacheMiss) {
		return http.StatusNotFound, response.ErrCodeClientResourceNotFound
	}
	switch myErrors.Classify(err) {
	case myErrors.KindValidation:
		return http.StatusBadRequest, response.ErrCodeClientInvalidInput
	case myErrors.KindNotFound:
		return http.StatusNotFound, response.ErrCodeClientResourceNotFound
	case myErrors.KindAlreadyTransitioned:
		return http.StatusConflict, ErrCodeClientAlreadyHandled
	case myErrors.KindConflict, myErrors.KindConstraint:
		return http.StatusConflict, ErrCodeClientConflict
	case myErrors.KindConnectivity, myErrors.KindLockContention:
		return http.StatusServiceUnavailable, ErrCodeServerUnavailable
	}
	return http.StatusInternalServerError, response.ErrCodeServerInternal
}
