package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
)

// 频道消息说明文字的长度上限
const maxCaptionRunes = 1024

// CategoryHashtags "Love, Campus Life" -> "#Love #CampusLife"
func CategoryHashtags(category string) string {
	var tags []string
	for _, part := range strings.Split(category, ",") {
		tag := strings.ReplaceAll(strings.TrimSpace(part), " ", "")
		if tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	return strings.Join(tags, " ")
}

// FormatChannelPost 频道中展示的正文
func FormatChannelPost(postNumber int64, post *entities.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Confess # %d\n\n", postNumber)
	body := post.Content
	if body == "" && post.HasMedia() {
		body = post.MediaCaption
	}
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString(CategoryHashtags(post.Category))
	text := strings.TrimRight(b.String(), "\n")
	if post.HasMedia() {
		text = truncateRunes(text, maxCaptionRunes)
	}
	return text
}

// ChannelButtons 频道消息下方的评论入口，机器人用户名未配置时不带按钮
func ChannelButtons(botUsername string, postID uint64, commentCount int64) [][]messaging.Button {
	username := strings.TrimPrefix(botUsername, "@")
	if username == "" {
		return nil
	}
	return [][]messaging.Button{
		{{Text: "💬 Add Comment", URL: fmt.Sprintf("https://t.me/%s?start=comment_%d", username, postID)}},
		{{Text: fmt.Sprintf("👀 See Comments (%d)", commentCount), URL: fmt.Sprintf("https://t.me/%s?start=view_%d", username, postID)}},
	}
}

func approvalAdminMessage(postNumber int64, channel *vo.PublishResult) string {
	switch channel.Status {
	case vo.PublishPosted:
		return fmt.Sprintf("✅ Approved and posted to channel as Post #%d.", postNumber)
	case vo.PublishUnreachable:
		return fmt.Sprintf("✅ Approved as Post #%d. (Channel not accessible - post saved locally)", postNumber)
	default:
		return fmt.Sprintf("✅ Approved as Post #%d, but failed to post to channel.", postNumber)
	}
}

func approvalUserMessage(postNumber int64) string {
	return fmt.Sprintf("✅ Your confession has been approved!\n\n🔢 Post Number: #%d\n\n🌟 Thank you for sharing with us!", postNumber)
}

func rejectionAdminMessage(reason string, notify vo.NotifyResult) string {
	msg := fmt.Sprintf("❌ Submission rejected\n\nReason: %s\n\n", reason)
	if notify.Delivered {
		return msg + "The user has been notified with this explanation."
	}
	return msg + "The user could not be notified."
}

func rejectionUserMessage(reason string) string {
	return fmt.Sprintf("❌ Your confession was not approved.\n\nReason: %s\n\n"+
		"You're welcome to submit a new confession that follows our community guidelines.", reason)
}

// AlreadyHandledMessage 帖子已被其他管理员处理时的提示
func AlreadyHandledMessage(post *entities.Post) string {
	by := "another admin"
	if handler := post.HandledBy(); handler != nil {
		by = fmt.Sprintf("another admin (%d)", *handler)
	}
	number := "unknown"
	if post.PostNumber != nil {
		number = fmt.Sprintf("%d", *post.PostNumber)
	}
	if post.Status == enums.StatusApproved {
		return fmt.Sprintf("✅ Already approved by %s!\n\nThis post was already approved as post #%s.", by, number)
	}
	return fmt.Sprintf("❌ This post has already been rejected by %s.", by)
}

// truncateRunes 按字符截断，超长时以省略号结尾
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
