package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
)

func TestCategoryHashtags(t *testing.T) {
	assert.Equal(t, "#Love #CampusLife", CategoryHashtags("Love, Campus Life"))
	assert.Equal(t, "#Work", CategoryHashtags(" Work ,, "))
	assert.Equal(t, "", CategoryHashtags(""))
}

func TestFormatChannelPost(t *testing.T) {
	post := &entities.Post{Content: "I ate my roommate's cereal", Category: "Roommates"}
	assert.Equal(t, "Confess # 7\n\nI ate my roommate's cereal\n\n#Roommates", FormatChannelPost(7, post))

	media := &entities.Post{
		MediaType:    "photo",
		MediaFileID:  "AgAD",
		MediaCaption: strings.Repeat("x", 2000),
		Category:     "Art",
	}
	text := FormatChannelPost(8, media)
	assert.Equal(t, 1024, utf8.RuneCountInString(text))
	assert.True(t, strings.HasPrefix(text, "Confess # 8\n\nxxx"))
	assert.True(t, strings.HasSuffix(text, "..."))
}

func TestChannelButtons(t *testing.T) {
	rows := ChannelButtons("@confess_bot", 42, 3)
	require.Len(t, rows, 2)
	assert.Equal(t, "https://t.me/confess_bot?start=comment_42", rows[0][0].URL)
	assert.Equal(t, "👀 See Comments (3)", rows[1][0].Text)
	assert.Equal(t, "https://t.me/confess_bot?start=view_42", rows[1][0].URL)

	assert.Nil(t, ChannelButtons("", 42, 0))
}

func TestAlreadyHandledMessage(t *testing.T) {
	admin := int64(5)
	number := int64(42)
	approved := &entities.Post{Status: enums.StatusApproved, ApprovedBy: &admin, PostNumber: &number}
	assert.Equal(t, "✅ Already approved by another admin (5)!\n\nThis post was already approved as post #42.",
		AlreadyHandledMessage(approved))

	rejected := &entities.Post{Status: enums.StatusRejected}
	assert.Equal(t, "❌ This post has already been rejected by another admin.", AlreadyHandledMessage(rejected))
}

func TestApprovalAdminMessage(t *testing.T) {
	assert.Contains(t, approvalAdminMessage(3, &vo.PublishResult{Status: vo.PublishPosted}), "posted to channel as Post #3")
	assert.Contains(t, approvalAdminMessage(3, &vo.PublishResult{Status: vo.PublishUnreachable}), "Channel not accessible")
	assert.Contains(t, approvalAdminMessage(3, &vo.PublishResult{Status: vo.PublishFailed}), "failed to post")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 5))
	assert.Equal(t, "hé...", truncateRunes("héllo world", 5))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
}
