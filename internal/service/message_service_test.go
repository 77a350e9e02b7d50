package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlink/foodlink-api/internal/bus"
	"github.com/foodlink/foodlink-api/internal/model"
)

type mockMessageRepository struct {
	insertFn               func(ctx context.Context, msg *model.Message) error
	listConversationFn     func(ctx context.Context, donationID, userID int64) ([]model.Message, error)
	listChatMessagesFn     func(ctx context.Context, userID int64) ([]model.ChatMessageRow, error)
	listClaimedDonationsFn func(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error)
}

func (m *mockMessageRepository) Insert(ctx context.Context, msg *model.Message) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) ListConversation(ctx context.Context, donationID, userID int64) ([]model.Message, error) {
	if m.listConversationFn != nil {
		return m.listConversationFn(ctx, donationID, userID)
	}
	return nil, nil
}

func (m *mockMessageRepository) ListChatMessages(ctx context.Context, userID int64) ([]model.ChatMessageRow, error) {
	if m.listChatMessagesFn != nil {
		return m.listChatMessagesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMessageRepository) ListClaimedDonations(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error) {
	if m.listClaimedDonationsFn != nil {
		return m.listClaimedDonationsFn(ctx, userID)
	}
	return nil, nil
}

func TestMessageService_Send_PublishesEvent(t *testing.T) {
	events := bus.NewMemoryBus()
	var got bus.Event
	_, err := events.Subscribe(bus.TopicMessageCreated, func(ctx context.Context, e bus.Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	repo := &mockMessageRepository{
		insertFn: func(ctx context.Context, msg *model.Message) error {
			msg.ID = 77
			msg.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			return nil
		},
	}

	msg, err := NewMessageService(repo, events).Send(context.Background(), &model.SendMessageRequest{
		FromUserID: 1, ToUserID: 2, DonationID: 3, Text: " still available? ",
	})

	require.NoError(t, err)
	assert.Equal(t, "still available?", msg.Text)
	assert.Equal(t, "3", got.Key)
	assert.Equal(t, bus.TopicMessageCreated, got.Topic)

	var decoded model.Message
	require.NoError(t, json.Unmarshal(got.Payload, &decoded))
	assert.Equal(t, int64(77), decoded.ID)
}

type failingBus struct{ bus.Bus }

func (failingBus) Publish(ctx context.Context, topic string, e bus.Event) error {
	return errors.New("broker down")
}

func TestMessageService_Send_PublishFailureIsNotFatal(t *testing.T) {
	msg, err := NewMessageService(&mockMessageRepository{}, failingBus{}).Send(context.Background(), &model.SendMessageRequest{
		FromUserID: 1, ToUserID: 2, DonationID: 3, Text: "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
}

func TestMessageService_Send_Errors(t *testing.T) {
	repo := &mockMessageRepository{
		insertFn: func(ctx context.Context, msg *model.Message) error { return ErrDonationNotFound },
	}
	svc := NewMessageService(repo, nil)

	_, err := svc.Send(context.Background(), &model.SendMessageRequest{FromUserID: 1, ToUserID: 2, DonationID: 99, Text: "hi"})
	assert.ErrorIs(t, err, ErrDonationNotFound)

	_, err = svc.Send(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMessageService_Conversation_EmptyIsNotNil(t *testing.T) {
	msgs, err := NewMessageService(&mockMessageRepository{}, nil).Conversation(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestMessageService_Chats(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	img := "https://img/b.png"
	repo := &mockMessageRepository{
		listChatMessagesFn: func(ctx context.Context, userID int64) ([]model.ChatMessageRow, error) {
			return []model.ChatMessageRow{
				{DonationID: 10, OtherUserID: 2, OtherUserName: "Ben", OtherUserImage: &img, Text: "see you at 5", CreatedAt: t0.Add(3 * time.Hour)},
				{DonationID: 11, OtherUserID: 3, OtherUserName: "Cy", Text: "thanks", CreatedAt: t0.Add(2 * time.Hour)},
				{DonationID: 10, OtherUserID: 2, OtherUserName: "Ben", OtherUserImage: &img, Text: "hello", CreatedAt: t0},
			}, nil
		},
		listClaimedDonationsFn: func(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error) {
			return []model.ClaimedDonationRow{
				{DonationID: 10, OwnerID: 2, OwnerName: "Ben", UpdatedAt: t0.Add(5 * time.Hour)},
				{DonationID: 12, OwnerID: 4, OwnerName: "Dee", UpdatedAt: t0.Add(4 * time.Hour)},
			}, nil
		},
	}

	chats, err := NewMessageService(repo, nil).Chats(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, chats, 3)

	assert.Equal(t, int64(12), chats[0].DonationID)
	assert.Equal(t, model.ClaimedChatPrompt, chats[0].LastMessage)

	assert.Equal(t, int64(10), chats[1].DonationID)
	assert.Equal(t, "see you at 5", chats[1].LastMessage, "latest message wins and the claimed prompt is suppressed")
	assert.Equal(t, &img, chats[1].OtherUserImage)

	assert.Equal(t, int64(11), chats[2].DonationID)
}

func TestMessageService_Chats_Empty(t *testing.T) {
	chats, err := NewMessageService(&mockMessageRepository{}, nil).Chats(context.Background(), 1)

	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestMessageService_Chats_RepositoryError(t *testing.T) {
	repo := &mockMessageRepository{
		listClaimedDonationsFn: func(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error) {
			return nil, errors.New("timeout")
		},
	}

	_, err := NewMessageService(repo, nil).Chats(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list claimed donations")
}
