package bot

import (
	"fmt"
	"strings"

	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
)

// ReviewKeyboard 待审核投稿下的管理员按钮
func ReviewKeyboard(postID uint64, submitterID int64) [][]messaging.Button {
	return [][]messaging.Button{
		{
			{Text: "✅ Approve", Data: fmt.Sprintf("approve_%d", postID)},
			{Text: "❌ Reject", Data: fmt.Sprintf("reject_%d", postID)},
		},
		{
			{Text: "🚩 Flag", Data: fmt.Sprintf("flag_%d", postID)},
			{Text: "⛔ Block User", Data: fmt.Sprintf("block_%d", submitterID)},
		},
	}
}

// RejectionMenu 预设原因两个一行，自定义原因和取消各占一行
func RejectionMenu(postID uint64) [][]messaging.Button {
	var rows [][]messaging.Button
	var row []messaging.Button
	for _, opt := range enums.RejectionReasonOptions() {
		if opt.Code == enums.ReasonCustom {
			continue
		}
		row = append(row, messaging.Button{Text: opt.Label, Data: fmt.Sprintf("reject_reason_%d_%s", postID, opt.Code)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows,
		[]messaging.Button{{Text: "✏️ Custom Reason...", Data: fmt.Sprintf("reject_custom_%d", postID)}},
		[]messaging.Button{{Text: "🔙 Cancel", Data: fmt.Sprintf("reject_cancel_%d", postID)}},
	)
	return rows
}

// CustomReasonKeyboard 等待输入自定义原因时只保留取消按钮
func CustomReasonKeyboard(postID uint64) [][]messaging.Button {
	return [][]messaging.Button{{{Text: "🚫 Cancel", Data: fmt.Sprintf("reject_cancel_%d", postID)}}}
}

func replyCancelKeyboard(messageID uint64) [][]messaging.Button {
	return [][]messaging.Button{{{Text: "🚫 Cancel", Data: fmt.Sprintf("admin_reply_cancel_%d", messageID)}}}
}

func rejectionMenuText(postID uint64) string {
	return fmt.Sprintf("❌ Rejecting Post #%d\n\nPlease select a reason for rejection:\n\n"+
		"This will help the user understand why their confession was not approved.", postID)
}

// ReviewCardText 发给管理员的待审核卡片
func ReviewCardText(post *entities.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 New confession #%d\n\n%s", post.ID, post.Content)
	if post.Category != "" {
		fmt.Fprintf(&b, "\n\nCategory: %s", post.Category)
	}
	if post.Flagged {
		b.WriteString("\n\n🚩 Flagged")
	}
	return b.String()
}
