package controller

import (
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/confession_service/models/dto"
)

// uintParam 解析路径中的正整数 ID，失败时已写入 400 响应
func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的 "+name+": "+c.Param(name))
		return 0, false
	}
	return id, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的 "+name+": "+c.Param(name))
		return 0, false
	}
	return id, true
}

// bindJSON 绑定请求体，失败时已写入 400 响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求负载: "+err.Error())
		return false
	}
	return true
}

// bindActor 管理员 ID 优先取查询参数 admin_id（DELETE 请求），否则取 JSON 请求体
func bindActor(c *gin.Context) (int64, bool) {
	if raw := c.Query("admin_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id == 0 {
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的 admin_id: "+raw)
			return 0, false
		}
		return id, true
	}
	var req dto.AdminActor
	if !bindJSON(c, &req) {
		return 0, false
	}
	return req.AdminID, true
}
