// Package bot 管理员在聊天界面里的操作入口：解析内联按钮回调、处理自定义拒绝原因和私信回复的文本输入。
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Xushengqwer/confession_service/models/enums"
)

// ActionKind 回调动作类型
type ActionKind string

const (
	ActionApprove       ActionKind = "approve"
	ActionReject        ActionKind = "reject" // 打开原因菜单
	ActionRejectReason  ActionKind = "reject_reason"
	ActionRejectCustom  ActionKind = "reject_custom"
	ActionRejectCancel  ActionKind = "reject_cancel"
	ActionFlag          ActionKind = "flag"
	ActionDeletePost    ActionKind = "delete_post"
	ActionDeleteComment ActionKind = "delete_comment"
	ActionBlock         ActionKind = "block"
	ActionUnblock       ActionKind = "unblock"

	// 用户私信
	ActionMessageReply       ActionKind = "admin_reply"
	ActionMessageReplyCancel ActionKind = "admin_reply_cancel"
	ActionMessageHistory     ActionKind = "admin_history"
	ActionMessageRead        ActionKind = "admin_read"
	ActionMessageIgnore      ActionKind = "admin_ignore"
)

// CallbackAction 解析后的回调数据
type CallbackAction struct {
	Kind   ActionKind
	PostID uint64 // 帖子相关动作
	// TargetID 评论 ID 或用户 ID，取决于 Kind
	TargetID  int64
	MessageID uint64 // 私信 ID
	Reason    enums.RejectionReason
}

// 前缀按最长优先排列，reject_ 必须排在 reject_reason_ 等之后
var callbackPrefixes = []struct {
	prefix string
	kind   ActionKind
}{
	{"reject_reason_", ActionRejectReason},
	{"reject_custom_", ActionRejectCustom},
	{"reject_cancel_", ActionRejectCancel},
	{"reject_", ActionReject},
	{"approve_", ActionApprove},
	{"flag_", ActionFlag},
	{"delete_post_", ActionDeletePost},
	{"delete_comment_", ActionDeleteComment},
	{"unblock_", ActionUnblock},
	{"block_", ActionBlock},
	{"admin_reply_cancel_", ActionMessageReplyCancel},
	{"admin_reply_", ActionMessageReply},
	{"admin_history_", ActionMessageHistory},
	{"admin_read_", ActionMessageRead},
	{"admin_ignore_", ActionMessageIgnore},
}

// ParseCallback 解析按钮的 callback data，例如 approve_12、reject_reason_12_low_quality
func ParseCallback(data string) (*CallbackAction, error) {
	for _, p := range callbackPrefixes {
		if !strings.HasPrefix(data, p.prefix) {
			continue
		}
		rest := strings.TrimPrefix(data, p.prefix)
		action := &CallbackAction{Kind: p.kind}

		switch p.kind {
		case ActionRejectReason:
			idPart, code, ok := strings.Cut(rest, "_")
			if !ok || code == "" {
				return nil, fmt.Errorf("回调数据缺少拒绝原因: %q", data)
			}
			reason := enums.RejectionReason(code)
			if _, known := reason.Label(); !known || reason == enums.ReasonCustom {
				return nil, fmt.Errorf("未知的拒绝原因 %q", code)
			}
			id, err := parsePositive(idPart)
			if err != nil {
				return nil, fmt.Errorf("回调数据 %q: %w", data, err)
			}
			action.PostID = uint64(id)
			action.Reason = reason
		case ActionMessageReply, ActionMessageReplyCancel, ActionMessageRead:
			id, err := parsePositive(rest)
			if err != nil {
				return nil, fmt.Errorf("回调数据 %q: %w", data, err)
			}
			action.MessageID = uint64(id)
		case ActionDeleteComment, ActionBlock, ActionUnblock, ActionMessageHistory, ActionMessageIgnore:
			id, err := parsePositive(rest)
			if err != nil {
				return nil, fmt.Errorf("回调数据 %q: %w", data, err)
			}
			action.TargetID = id
		default:
			id, err := parsePositive(rest)
			if err != nil {
				return nil, fmt.Errorf("回调数据 %q: %w", data, err)
			}
			action.PostID = uint64(id)
		}
		return action, nil
	}
	return nil, fmt.Errorf("无法识别的回调数据 %q", data)
}

func parsePositive(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("无效的 ID %q", s)
	}
	return id, nil
}
