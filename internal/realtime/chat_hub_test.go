package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream-live-public/internal/chat"
)

// fakeChatService records persistence calls and returns canned results.
type fakeChatService struct {
	historyPage     int
	historyPageSize int
	historyErr      error

	savedMessages  []chat.MessageRequest
	savedReactions []chat.ReactionType
	votes          [][]int64
	poll           *chat.Poll
}

func (f *fakeChatService) History(_ context.Context, streamID int64, page, pageSize int) ([]chat.Message, error) {
	f.historyPage = page
	f.historyPageSize = pageSize
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []chat.Message{{ID: 1, StreamID: streamID, Content: "welcome"}}, nil
}

func (f *fakeChatService) SaveMessage(_ context.Context, req chat.MessageRequest) (*chat.Message, error) {
	f.savedMessages = append(f.savedMessages, req)
	return &chat.Message{ID: 10, StreamID: req.StreamID, UserID: req.UserID, Content: req.Content, Type: req.Type}, nil
}

func (f *fakeChatService) SaveReaction(_ context.Context, streamID, userID int64, reaction chat.ReactionType) (*chat.Reaction, error) {
	f.savedReactions = append(f.savedReactions, reaction)
	return &chat.Reaction{ID: 11, StreamID: streamID, UserID: userID, Type: reaction}, nil
}

func (f *fakeChatService) CreatePoll(_ context.Context, req chat.PollRequest) (*chat.Poll, error) {
	return &chat.Poll{ID: 12, StreamID: req.StreamID, Question: req.Question}, nil
}

func (f *fakeChatService) Vote(_ context.Context, pollID, userID int64, optionIDs []int64) error {
	f.votes = append(f.votes, optionIDs)
	return nil
}

func (f *fakeChatService) Poll(_ context.Context, pollID int64) (*chat.Poll, error) {
	if f.poll == nil {
		return nil, chat.ErrNotFound
	}
	return f.poll, nil
}

func (f *fakeChatService) PinMessage(_ context.Context, messageID int64) (*chat.Message, error) {
	return &chat.Message{ID: messageID, StreamID: 42, Pinned: true}, nil
}

func (f *fakeChatService) DeleteMessage(_ context.Context, messageID int64) (*chat.Message, error) {
	return &chat.Message{ID: messageID, StreamID: 42, Deleted: true}, nil
}

func newChatHubForTest(t *testing.T) (*ChatHub, *fakeChatService) {
	t.Helper()
	svc := &fakeChatService{}
	return NewChatHub(NewRegistry(), svc, testLogger()), svc
}

func TestJoinChatReplaysHistoryAndNotifiesGroup(t *testing.T) {
	h, svc := newChatHubForTest(t)
	joiner := &fakeConn{}
	member := &fakeConn{}

	memberCaller := h.Connect("conn-member", 2, member)
	h.JoinGroup(memberCaller, ChatGroup(42))

	c := h.Connect("conn-joiner", 1, joiner)
	h.Dispatch(context.Background(), c, "JoinChat", mustPayload(t, map[string]any{"streamId": 42}))

	assert.Equal(t, 1, svc.historyPage)
	assert.Equal(t, 50, svc.historyPageSize)

	history := joiner.received(EventChatHistory)
	require.Len(t, history, 1, "history goes to the caller")
	assert.Empty(t, member.received(EventChatHistory), "history is not broadcast")

	require.Len(t, member.received(EventUserJoinedChat), 1)
	notice, ok := member.received(EventUserJoinedChat)[0].Payload.(chatPresenceNotice)
	require.True(t, ok)
	assert.Equal(t, int64(1), notice.UserID)
	assert.Equal(t, int64(42), notice.StreamID)
	assert.False(t, notice.Timestamp.IsZero())
}

func TestJoinChatUnauthenticated(t *testing.T) {
	h, svc := newChatHubForTest(t)
	anon := &fakeConn{}
	member := &fakeConn{}

	memberCaller := h.Connect("conn-member", 2, member)
	h.JoinGroup(memberCaller, ChatGroup(7))

	c := h.Connect("conn-anon", 0, anon)
	h.Dispatch(context.Background(), c, "JoinChat", mustPayload(t, map[string]any{"streamId": 7}))

	assert.Equal(t, "User not authenticated", anon.lastError(t).Message)
	assert.Zero(t, svc.historyPage, "persistence untouched")
	assert.Empty(t, member.received(EventUserJoinedChat), "no join broadcast")

	// The anonymous caller was never added to the group.
	h.SendToGroup(ChatGroup(7), Event{Event: "Probe"})
	assert.Empty(t, anon.received("Probe"))
}

func TestJoinChatHistoryFailureDoesNotRollBackJoin(t *testing.T) {
	h, svc := newChatHubForTest(t)
	svc.historyErr = errors.New("chat service down")
	joiner := &fakeConn{}

	c := h.Connect("conn-joiner", 1, joiner)
	h.Dispatch(context.Background(), c, "JoinChat", mustPayload(t, map[string]any{"streamId": 42}))

	assert.Equal(t, "Failed to join chat", joiner.lastError(t).Message)

	// Still a member despite the failure.
	h.SendToGroup(ChatGroup(42), Event{Event: "Probe"})
	assert.Len(t, joiner.received("Probe"), 1)
}

func TestSendMessageBroadcastsToMembersOnly(t *testing.T) {
	h, svc := newChatHubForTest(t)
	a := &fakeConn{}
	b := &fakeConn{}

	callerA := h.Connect("conn-a", 1, a)
	h.Connect("conn-b", 2, b) // b never joins chat_42
	h.JoinGroup(callerA, ChatGroup(42))

	h.Dispatch(context.Background(), callerA, "SendMessage", mustPayload(t, map[string]any{
		"streamId": 42,
		"message":  "hi",
	}))

	require.Len(t, svc.savedMessages, 1)
	assert.Equal(t, chat.MessageTypeText, svc.savedMessages[0].Type, "messageType defaults to Text")

	require.Len(t, a.received(EventMessageReceived), 1)
	msg, ok := a.received(EventMessageReceived)[0].Payload.(*chat.Message)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Content)
	assert.Empty(t, b.received(EventMessageReceived))
}

func TestSendMessageEmptyMessageRejected(t *testing.T) {
	h, svc := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	h.Dispatch(context.Background(), c, "SendMessage", mustPayload(t, map[string]any{
		"streamId": 42,
		"message":  "",
	}))

	errPayload := fc.lastError(t)
	assert.Equal(t, "message", errPayload.Field)
	assert.Empty(t, svc.savedMessages)
}

func TestSendMessageUnknownTypeSurfacesField(t *testing.T) {
	h, svc := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	h.Dispatch(context.Background(), c, "SendMessage", mustPayload(t, map[string]any{
		"streamId":    42,
		"message":     "hi",
		"messageType": "Hologram",
	}))

	errPayload := fc.lastError(t)
	assert.Equal(t, "messageType", errPayload.Field)
	assert.Contains(t, errPayload.Reason, "Hologram")
	assert.Empty(t, svc.savedMessages)
}

func TestSendReaction(t *testing.T) {
	h, svc := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)
	h.JoinGroup(c, ChatGroup(42))

	h.Dispatch(context.Background(), c, "SendReaction", mustPayload(t, map[string]any{
		"streamId":     42,
		"reactionType": "Love",
	}))

	require.Len(t, svc.savedReactions, 1)
	assert.Equal(t, chat.ReactionLove, svc.savedReactions[0])
	assert.Len(t, fc.received(EventReactionReceived), 1)
}

func TestSendReactionEmptyTypeRejected(t *testing.T) {
	h, svc := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	h.Dispatch(context.Background(), c, "SendReaction", mustPayload(t, map[string]any{
		"streamId":     42,
		"reactionType": "",
	}))

	assert.Equal(t, "reactionType", fc.lastError(t).Field)
	assert.Empty(t, svc.savedReactions)
}

func TestVotePollBroadcastsToOwningStream(t *testing.T) {
	h, svc := newChatHubForTest(t)
	svc.poll = &chat.Poll{ID: 5, StreamID: 99, Question: "best codec?"}

	voter := &fakeConn{}
	watcher := &fakeConn{}

	watcherCaller := h.Connect("conn-watch", 2, watcher)
	h.JoinGroup(watcherCaller, ChatGroup(99)) // the poll's owning stream, not poll id 5

	c := h.Connect("conn-voter", 1, voter)
	h.Dispatch(context.Background(), c, "VotePoll", mustPayload(t, map[string]any{
		"pollId":    5,
		"optionIds": []int64{2},
	}))

	require.Len(t, svc.votes, 1)
	require.Len(t, watcher.received(EventPollUpdated), 1)
	poll, ok := watcher.received(EventPollUpdated)[0].Payload.(*chat.Poll)
	require.True(t, ok)
	assert.Equal(t, int64(99), poll.StreamID)
}

func TestCreatePollRequiresTwoOptions(t *testing.T) {
	h, _ := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	h.Dispatch(context.Background(), c, "CreatePoll", mustPayload(t, map[string]any{
		"streamId": 42,
		"question": "only one?",
		"options":  []string{"yes"},
	}))

	assert.Equal(t, "options", fc.lastError(t).Field)
}

func TestPinAndDeleteMessageTargetOwningStream(t *testing.T) {
	h, _ := newChatHubForTest(t)
	member := &fakeConn{}
	memberCaller := h.Connect("conn-member", 2, member)
	h.JoinGroup(memberCaller, ChatGroup(42))

	moderator := &fakeConn{}
	c := h.Connect("conn-mod", 1, moderator)

	h.Dispatch(context.Background(), c, "PinMessage", mustPayload(t, map[string]any{"messageId": 10}))
	require.Len(t, member.received(EventMessagePinned), 1)

	h.Dispatch(context.Background(), c, "DeleteMessage", mustPayload(t, map[string]any{"messageId": 10}))
	require.Len(t, member.received(EventMessageDeleted), 1)
}

func TestLeaveChatIsSilentOnFailure(t *testing.T) {
	h, _ := newChatHubForTest(t)
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	// Malformed stream id: logged, never surfaced.
	h.Dispatch(context.Background(), c, "LeaveChat", mustPayload(t, map[string]any{"streamId": 0}))
	assert.Empty(t, fc.received(EventError))
}
