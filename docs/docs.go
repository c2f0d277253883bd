// Package docs 注册 Swagger 文档。接口注释变更后执行 swag init 重新生成。
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/confession/admin/posts/{id}/approve": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "通过投稿", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "审核结果"}, "400": {"description": "无效的请求"}, "404": {"description": "投稿不存在"}, "409": {"description": "并发冲突或已被处理"}, "500": {"description": "服务器内部错误"}}}
        },
        "/api/v1/confession/admin/posts/{id}/reject": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "拒绝投稿", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "审核结果"}, "400": {"description": "无效的请求"}, "404": {"description": "投稿不存在"}, "409": {"description": "并发冲突或已被处理"}, "500": {"description": "服务器内部错误"}}}
        },
        "/api/v1/confession/admin/posts/{id}/reject/custom": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "开始自定义拒绝", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "提示信息"}}}
        },
        "/api/v1/confession/admin/posts/{id}/flag": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "标记投稿", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "成功"}}}
        },
        "/api/v1/confession/admin/posts/bulk-approve": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "批量通过", "responses": {"200": {"description": "批量结果"}}}
        },
        "/api/v1/confession/admin/rejections/submit": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "提交自定义拒绝原因", "responses": {"200": {"description": "审核结果"}}}
        },
        "/api/v1/confession/admin/rejections/cancel": {
            "post": {"tags": ["admin-moderation (管理员-审核)"], "summary": "取消拒绝", "responses": {"200": {"description": "成功"}}}
        },
        "/api/v1/confession/admin/rejection-reasons": {
            "get": {"tags": ["admin-moderation (管理员-审核)"], "summary": "预设拒绝原因", "responses": {"200": {"description": "原因列表"}}}
        },
        "/api/v1/confession/admin/users/{id}/block": {
            "put": {"tags": ["admin-moderation (管理员-审核)"], "summary": "封禁用户", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "成功"}}},
            "delete": {"tags": ["admin-moderation (管理员-审核)"], "summary": "解除封禁", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "admin_id", "in": "query", "required": true}], "responses": {"200": {"description": "成功"}}}
        },
        "/api/v1/confession/admin/posts/{id}": {
            "delete": {"tags": ["admin-deletion (管理员-删除)"], "summary": "删除帖子", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "admin_id", "in": "query", "required": true}], "responses": {"200": {"description": "删除统计"}, "404": {"description": "帖子不存在"}}}
        },
        "/api/v1/confession/admin/posts/{id}/deletion-preview": {
            "get": {"tags": ["admin-deletion (管理员-删除)"], "summary": "帖子删除预览", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "预览信息"}}}
        },
        "/api/v1/confession/admin/comments/{id}": {
            "delete": {"tags": ["admin-deletion (管理员-删除)"], "summary": "删除评论", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "admin_id", "in": "query", "required": true}], "responses": {"200": {"description": "删除统计"}}}
        },
        "/api/v1/confession/admin/comments/{id}/replace": {
            "post": {"tags": ["admin-deletion (管理员-删除)"], "summary": "替换评论内容", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "替换统计"}}}
        },
        "/api/v1/confession/admin/comments/{id}/deletion-preview": {
            "get": {"tags": ["admin-deletion (管理员-删除)"], "summary": "评论删除预览", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "预览信息"}}}
        },
        "/api/v1/confession/admin/reports": {
            "delete": {"tags": ["admin-deletion (管理员-删除)"], "summary": "清除举报", "responses": {"200": {"description": "清除数量"}}}
        },
        "/api/v1/confession/messages": {
            "post": {"tags": ["messages (私信)"], "summary": "提交私信", "responses": {"200": {"description": "已保存"}, "400": {"description": "内容为空或过长"}}}
        },
        "/api/v1/confession/admin/messages/pending": {
            "get": {"tags": ["admin-messages (管理员-私信)"], "summary": "未处理私信", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "私信列表"}}}
        },
        "/api/v1/confession/admin/messages/{id}": {
            "get": {"tags": ["admin-messages (管理员-私信)"], "summary": "查看私信", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "私信及处理状态"}, "404": {"description": "私信不存在"}}}
        },
        "/api/v1/confession/admin/messages/{id}/reply": {
            "post": {"tags": ["admin-messages (管理员-私信)"], "summary": "回复私信", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "回复结果"}, "400": {"description": "回复为空或过长"}, "404": {"description": "私信不存在"}, "409": {"description": "已被处理"}}}
        },
        "/api/v1/confession/admin/messages/{id}/read": {
            "post": {"tags": ["admin-messages (管理员-私信)"], "summary": "标记私信已读", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "已标记"}, "404": {"description": "私信不存在"}, "409": {"description": "已被处理"}}}
        },
        "/api/v1/confession/admin/users/{id}/ignore-messages": {
            "post": {"tags": ["admin-messages (管理员-私信)"], "summary": "忽略用户私信", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "忽略的条数"}}}
        },
        "/api/v1/confession/admin/users/{id}/messages": {
            "get": {"tags": ["admin-messages (管理员-私信)"], "summary": "私信历史", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "私信列表"}}}
        },
        "/api/v1/confession/admin/search/users": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "搜索用户", "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "用户列表"}, "400": {"description": "关键字为空"}}}
        },
        "/api/v1/confession/admin/search/content": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "搜索内容", "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}, {"type": "string", "name": "type", "in": "query"}, {"type": "string", "name": "date_from", "in": "query"}, {"type": "string", "name": "date_to", "in": "query"}, {"type": "integer", "name": "user_id", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "搜索结果"}, "400": {"description": "参数无效"}}}
        },
        "/api/v1/confession/admin/users/{id}": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "用户详情", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "资料、统计和最近的内容"}, "404": {"description": "用户不存在"}}}
        },
        "/api/v1/confession/admin/users/{id}/posts": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "用户投稿", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "page", "in": "query"}], "responses": {"200": {"description": "每页 5 条"}}}
        },
        "/api/v1/confession/admin/users/{id}/comments": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "用户评论", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "page", "in": "query"}], "responses": {"200": {"description": "每页 5 条"}}}
        },
        "/api/v1/confession/admin/users/{id}/analytics": {
            "get": {"tags": ["admin-tools (管理员-查询)"], "summary": "用户活跃度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "活跃度分析"}}}
        },
        "/api/v1/confession/ranking/award": {
            "post": {"tags": ["ranking (积分)"], "summary": "记录积分", "responses": {"200": {"description": "记账结果"}}}
        },
        "/api/v1/confession/ranking/users/{id}": {
            "get": {"tags": ["ranking (积分)"], "summary": "用户等级", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "等级快照"}, "404": {"description": "没有积分记录"}}}
        },
        "/api/v1/confession/ranking/users/{id}/achievements": {
            "get": {"tags": ["ranking (积分)"], "summary": "用户成就", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "成就列表"}}}
        },
        "/api/v1/confession/ranking/users/{id}/achievements/check": {
            "post": {"tags": ["ranking (积分)"], "summary": "检查成就", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "新获得的成就"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8086",
	BasePath:         "",
	Schemes:          []string{"http", "https"},
	Title:            "Confession Service API",
	Description:      "匿名投稿机器人后台：审核、级联删除、积分与等级、用户私信和管理员查询。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
