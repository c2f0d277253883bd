package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/messaging"
	"github.com/Xushengqwer/confession_service/messaging/mocks"
	"github.com/Xushengqwer/confession_service/models/entities"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/vo"
	"github.com/Xushengqwer/confession_service/myErrors"
	"github.com/Xushengqwer/confession_service/repo/redis"
	"github.com/Xushengqwer/confession_service/service"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want CallbackAction
	}{
		{"approve_12", CallbackAction{Kind: ActionApprove, PostID: 12}},
		{"reject_12", CallbackAction{Kind: ActionReject, PostID: 12}},
		{"reject_reason_12_spam", CallbackAction{Kind: ActionRejectReason, PostID: 12, Reason: enums.ReasonSpam}},
		{"reject_reason_12_low_quality", CallbackAction{Kind: ActionRejectReason, PostID: 12, Reason: enums.ReasonLowQuality}},
		{"reject_custom_12", CallbackAction{Kind: ActionRejectCustom, PostID: 12}},
		{"reject_cancel_12", CallbackAction{Kind: ActionRejectCancel, PostID: 12}},
		{"flag_3", CallbackAction{Kind: ActionFlag, PostID: 3}},
		{"delete_post_3", CallbackAction{Kind: ActionDeletePost, PostID: 3}},
		{"delete_comment_8", CallbackAction{Kind: ActionDeleteComment, TargetID: 8}},
		{"block_555", CallbackAction{Kind: ActionBlock, TargetID: 555}},
		{"unblock_555", CallbackAction{Kind: ActionUnblock, TargetID: 555}},
		{"admin_reply_7", CallbackAction{Kind: ActionMessageReply, MessageID: 7}},
		{"admin_reply_cancel_7", CallbackAction{Kind: ActionMessageReplyCancel, MessageID: 7}},
		{"admin_read_7", CallbackAction{Kind: ActionMessageRead, MessageID: 7}},
		{"admin_history_555", CallbackAction{Kind: ActionMessageHistory, TargetID: 555}},
		{"admin_ignore_555", CallbackAction{Kind: ActionMessageIgnore, TargetID: 555}},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	for _, bad := range []string{"", "approve_", "approve_x", "approve_-1", "reject_reason_12", "reject_reason_12_custom", "reject_reason_12_nope", "menu", "admin_reply_", "admin_read_x"} {
		_, err := ParseCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestRejectionMenuLayout(t *testing.T) {
	rows := RejectionMenu(9)
	// 7 个预设原因两两一行，加自定义和取消
	require.Len(t, rows, 6)
	assert.Len(t, rows[3], 1)
	assert.Equal(t, "reject_reason_9_inappropriate", rows[0][0].Data)
	assert.Equal(t, "reject_custom_9", rows[4][0].Data)
	assert.Equal(t, "reject_cancel_9", rows[5][0].Data)

	for _, row := range rows {
		for _, b := range row {
			_, err := ParseCallback(b.Data)
			assert.NoError(t, err, b.Data)
		}
	}
}

type fakeModeration struct {
	service.ModerationService
	mock.Mock
}

func (f *fakeModeration) Approve(ctx context.Context, postID uint64, adminID int64) (*vo.ModerationResult, error) {
	args := f.Called(postID, adminID)
	res, _ := args.Get(0).(*vo.ModerationResult)
	return res, args.Error(1)
}

func (f *fakeModeration) GetPost(ctx context.Context, postID uint64) (*entities.Post, error) {
	args := f.Called(postID)
	res, _ := args.Get(0).(*entities.Post)
	return res, args.Error(1)
}

func (f *fakeModeration) PendingCustomRejection(ctx context.Context, adminID int64) (*redis.RejectionDraft, error) {
	args := f.Called(adminID)
	res, _ := args.Get(0).(*redis.RejectionDraft)
	return res, args.Error(1)
}

func (f *fakeModeration) SubmitCustomRejection(ctx context.Context, adminID int64, text string) (*vo.ModerationResult, error) {
	args := f.Called(adminID, text)
	res, _ := args.Get(0).(*vo.ModerationResult)
	return res, args.Error(1)
}

const adminID = int64(1001)

func newHandler(t *testing.T, m *fakeModeration, messenger *mocks.MockMessenger) *AdminHandler {
	return NewAdminHandler(m, nil, nil, messenger, config.TelegramConfig{AdminIDs: []int64{adminID}}, testlog.New(t))
}

func TestHandleCallbackApproveEditsOrigin(t *testing.T) {
	m := &fakeModeration{}
	m.On("Approve", uint64(4), adminID).Return(&vo.ModerationResult{PostID: 4, Message: "✅ Approved and posted as #17\nChannel: posted"}, nil).Once()
	messenger := &mocks.MockMessenger{}
	origin := messaging.MessageRef{ChatID: adminID, MessageID: 70}
	messenger.On("Edit", mock.Anything, origin, "✅ Approved and posted as #17\nChannel: posted", [][]messaging.Button(nil)).Return(nil).Once()

	answer := newHandler(t, m, messenger).HandleCallback(context.Background(), adminID, "approve_4", origin)

	assert.Equal(t, "✅ Approved and posted as #17", answer)
	m.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestHandleCallbackRejectShowsMenuOnlyWhilePending(t *testing.T) {
	m := &fakeModeration{}
	m.On("GetPost", uint64(5)).Return(&entities.Post{ID: 5, Status: enums.StatusPending}, nil).Once()
	m.On("GetPost", uint64(6)).Return(&entities.Post{ID: 6, Status: enums.StatusRejected}, nil).Once()
	messenger := &mocks.MockMessenger{}
	origin := messaging.MessageRef{ChatID: adminID, MessageID: 71}
	messenger.On("Edit", mock.Anything, origin, rejectionMenuText(5), RejectionMenu(5)).Return(nil).Once()
	messenger.On("Edit", mock.Anything, origin, mock.MatchedBy(func(text string) bool {
		return text != "" && text != rejectionMenuText(6)
	}), [][]messaging.Button(nil)).Return(nil).Once()

	h := newHandler(t, m, messenger)
	h.HandleCallback(context.Background(), adminID, "reject_5", origin)
	h.HandleCallback(context.Background(), adminID, "reject_6", origin)

	messenger.AssertExpectations(t)
}

func TestHandleCallbackRejectsNonAdmin(t *testing.T) {
	m := &fakeModeration{}
	messenger := &mocks.MockMessenger{}

	answer := newHandler(t, m, messenger).HandleCallback(context.Background(), 42, "approve_4", messaging.MessageRef{ChatID: 42, MessageID: 1})

	assert.Equal(t, "❗ Not authorized.", answer)
	m.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
	messenger.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTextSubmitsCustomReason(t *testing.T) {
	m := &fakeModeration{}
	m.On("PendingCustomRejection", adminID).Return(&redis.RejectionDraft{AdminID: adminID, PostID: 8, ChatID: adminID, MessageID: 90}, nil).Once()
	m.On("SubmitCustomRejection", adminID, "duplicate of #3").Return(&vo.ModerationResult{PostID: 8, Message: "❌ Rejected"}, nil).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: adminID, Text: "❌ Rejected"}).Return(messaging.MessageRef{}, nil).Once()
	messenger.On("Edit", mock.Anything, messaging.MessageRef{ChatID: adminID, MessageID: 90}, "❌ Rejected", [][]messaging.Button(nil)).Return(nil).Once()

	handled := newHandler(t, m, messenger).HandleText(context.Background(), adminID, adminID, "duplicate of #3")

	assert.True(t, handled)
	m.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestHandleTextWithoutDraftIsIgnored(t *testing.T) {
	m := &fakeModeration{}
	m.On("PendingCustomRejection", adminID).Return(nil, myErrors.ErrCacheMiss).Once()

	handled := newHandler(t, m, &mocks.MockMessenger{}).HandleText(context.Background(), adminID, adminID, "hello")

	assert.False(t, handled)
}

func TestHandleTextValidationKeepsPrompting(t *testing.T) {
	m := &fakeModeration{}
	m.On("PendingCustomRejection", adminID).Return(&redis.RejectionDraft{AdminID: adminID, PostID: 8}, nil).Once()
	m.On("SubmitCustomRejection", adminID, "  ").Return(nil, myErrors.Validation("Rejection reason cannot be empty.")).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, mock.MatchedBy(func(msg messaging.OutgoingMessage) bool {
		return msg.ChatID == adminID && msg.Text == "❗ Rejection reason cannot be empty.\n\nPlease type the reason again or press Cancel."
	})).Return(messaging.MessageRef{}, nil).Once()

	handled := newHandler(t, m, messenger).HandleText(context.Background(), adminID, adminID, "  ")

	assert.True(t, handled)
	messenger.AssertExpectations(t)
}

type fakeMessages struct {
	service.AdminMessagingService
	mock.Mock
}

func (f *fakeMessages) SubmitUserMessage(ctx context.Context, userID int64, text string) (*vo.UserMessageReceipt, error) {
	args := f.Called(userID, text)
	res, _ := args.Get(0).(*vo.UserMessageReceipt)
	return res, args.Error(1)
}

func (f *fakeMessages) ReplyToUser(ctx context.Context, messageID uint64, adminID int64, reply string) (*vo.AdminReplyResult, error) {
	args := f.Called(messageID, adminID, reply)
	res, _ := args.Get(0).(*vo.AdminReplyResult)
	return res, args.Error(1)
}

func (f *fakeMessages) StartReply(ctx context.Context, adminID int64, messageID uint64, prompt *messaging.MessageRef) (*vo.ReplyPrompt, error) {
	args := f.Called(adminID, messageID, *prompt)
	res, _ := args.Get(0).(*vo.ReplyPrompt)
	return res, args.Error(1)
}

func (f *fakeMessages) PendingReply(ctx context.Context, adminID int64) (*redis.ReplyDraft, error) {
	args := f.Called(adminID)
	res, _ := args.Get(0).(*redis.ReplyDraft)
	return res, args.Error(1)
}

func (f *fakeMessages) SubmitReplyDraft(ctx context.Context, adminID int64, text string) (*vo.AdminReplyResult, error) {
	args := f.Called(adminID, text)
	res, _ := args.Get(0).(*vo.AdminReplyResult)
	return res, args.Error(1)
}

func (f *fakeMessages) MarkRead(ctx context.Context, messageID uint64, adminID int64) error {
	return f.Called(messageID, adminID).Error(0)
}

func (f *fakeMessages) History(ctx context.Context, userID int64, limit int) ([]*vo.AdminMessageVO, error) {
	args := f.Called(userID, limit)
	res, _ := args.Get(0).([]*vo.AdminMessageVO)
	return res, args.Error(1)
}

func newMessagingHandler(t *testing.T, m *fakeModeration, msgs *fakeMessages, messenger *mocks.MockMessenger) *AdminHandler {
	return NewAdminHandler(m, nil, msgs, messenger, config.TelegramConfig{AdminIDs: []int64{adminID}}, testlog.New(t))
}

func TestHandleCallbackStartsReply(t *testing.T) {
	msgs := &fakeMessages{}
	origin := messaging.MessageRef{ChatID: adminID, MessageID: 33}
	msgs.On("StartReply", adminID, uint64(7), origin).Return(&vo.ReplyPrompt{MessageID: 7, Message: "💬 Replying to message #7"}, nil).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Edit", mock.Anything, origin, "💬 Replying to message #7", replyCancelKeyboard(7)).Return(nil).Once()

	answer := newMessagingHandler(t, &fakeModeration{}, msgs, messenger).HandleCallback(context.Background(), adminID, "admin_reply_7", origin)

	assert.Equal(t, "💬 Replying to message #7", answer)
	msgs.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestHandleCallbackMarkReadAlreadyHandled(t *testing.T) {
	msgs := &fakeMessages{}
	msgs.On("MarkRead", uint64(7), adminID).Return(myErrors.AlreadyTransitioned("Message #7 was already handled.")).Once()
	messenger := &mocks.MockMessenger{}
	origin := messaging.MessageRef{ChatID: adminID, MessageID: 34}
	messenger.On("Edit", mock.Anything, origin, "❗ Message #7 was already handled.", [][]messaging.Button(nil)).Return(nil).Once()

	answer := newMessagingHandler(t, &fakeModeration{}, msgs, messenger).HandleCallback(context.Background(), adminID, "admin_read_7", origin)

	assert.Equal(t, "❗ Message #7 was already handled.", answer)
	messenger.AssertExpectations(t)
}

func TestHandleCallbackHistorySendsNewMessage(t *testing.T) {
	msgs := &fakeMessages{}
	msgs.On("History", int64(555), 0).Return([]*vo.AdminMessageVO{}, nil).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: adminID, Text: "📋 No messages from user 555."}).Return(messaging.MessageRef{}, nil).Once()
	origin := messaging.MessageRef{ChatID: adminID, MessageID: 35}

	answer := newMessagingHandler(t, &fakeModeration{}, msgs, messenger).HandleCallback(context.Background(), adminID, "admin_history_555", origin)

	assert.Equal(t, "📋 History sent.", answer)
	messenger.AssertExpectations(t)
	messenger.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTextRejectionDraftTakesPrecedence(t *testing.T) {
	m := &fakeModeration{}
	m.On("PendingCustomRejection", adminID).Return(&redis.RejectionDraft{AdminID: adminID, PostID: 8}, nil).Once()
	m.On("SubmitCustomRejection", adminID, "off topic").Return(&vo.ModerationResult{PostID: 8, Message: "❌ Rejected"}, nil).Once()
	msgs := &fakeMessages{}
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, mock.Anything).Return(messaging.MessageRef{}, nil)

	handled := newMessagingHandler(t, m, msgs, messenger).HandleText(context.Background(), adminID, adminID, "off topic")

	assert.True(t, handled)
	msgs.AssertNotCalled(t, "PendingReply", mock.Anything)
}

func TestHandleTextSubmitsReplyDraft(t *testing.T) {
	m := &fakeModeration{}
	m.On("PendingCustomRejection", adminID).Return(nil, myErrors.ErrCacheMiss)
	msgs := &fakeMessages{}
	msgs.On("PendingReply", adminID).Return(&redis.ReplyDraft{AdminID: adminID, MessageID: 7, ChatID: adminID, PromptID: 33}, nil).Once()
	msgs.On("SubmitReplyDraft", adminID, "we fixed it").Return(&vo.AdminReplyResult{MessageID: 7, Message: "✅ Reply to message #7 sent."}, nil).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: adminID, Text: "✅ Reply to message #7 sent."}).Return(messaging.MessageRef{}, nil).Once()
	messenger.On("Edit", mock.Anything, messaging.MessageRef{ChatID: adminID, MessageID: 33}, "✅ Reply to message #7 sent.", [][]messaging.Button(nil)).Return(nil).Once()

	handled := newMessagingHandler(t, m, msgs, messenger).HandleText(context.Background(), adminID, adminID, "we fixed it")

	assert.True(t, handled)
	msgs.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestHandleCommandContact(t *testing.T) {
	msgs := &fakeMessages{}
	msgs.On("SubmitUserMessage", int64(42), "please help").Return(&vo.UserMessageReceipt{MessageID: 3, Forwarded: 1, Message: "✅ sent"}, nil).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: 42, Text: "✅ sent"}).Return(messaging.MessageRef{}, nil).Once()
	messenger.On("Send", mock.Anything, mock.MatchedBy(func(msg messaging.OutgoingMessage) bool {
		return msg.ChatID == 42 && strings.HasPrefix(msg.Text, "📝 Usage: /contact")
	})).Return(messaging.MessageRef{}, nil).Once()
	h := newMessagingHandler(t, &fakeModeration{}, msgs, messenger)

	assert.True(t, h.HandleCommand(context.Background(), 42, 42, "contact", "please help"))
	assert.True(t, h.HandleCommand(context.Background(), 42, 42, "contact", "  "))
	assert.False(t, h.HandleCommand(context.Background(), 42, 42, "start", ""))

	msgs.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestHandleCommandReplyAdminOnly(t *testing.T) {
	msgs := &fakeMessages{}
	msgs.On("ReplyToUser", uint64(7), adminID, "thanks for writing").Return(nil,
		myErrors.AlreadyTransitioned("You have already replied to this message.")).Once()
	messenger := &mocks.MockMessenger{}
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: adminID, Text: "❗ You have already replied to this message."}).Return(messaging.MessageRef{}, nil).Once()
	messenger.On("Send", mock.Anything, messaging.OutgoingMessage{ChatID: adminID, Text: "📝 Usage: /reply <message_id> <your response>"}).Return(messaging.MessageRef{}, nil).Once()
	h := newMessagingHandler(t, &fakeModeration{}, msgs, messenger)

	assert.False(t, h.HandleCommand(context.Background(), 42, 42, "reply", "7 hi"))
	assert.True(t, h.HandleCommand(context.Background(), adminID, adminID, "reply", "7 thanks for writing"))
	assert.True(t, h.HandleCommand(context.Background(), adminID, adminID, "reply", "seven"))

	msgs.AssertExpectations(t)
	messenger.AssertExpectations(t)
}
