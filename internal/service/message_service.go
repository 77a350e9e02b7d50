package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/foodlink/foodlink-api/internal/bus"
	"github.com/foodlink/foodlink-api/internal/model"
)

// MessageRepositoryInterface defines the interface for chat message data access.
type MessageRepositoryInterface interface {
	Insert(ctx context.Context, msg *model.Message) error
	ListConversation(ctx context.Context, donationID, userID int64) ([]model.Message, error)
	ListChatMessages(ctx context.Context, userID int64) ([]model.ChatMessageRow, error)
	ListClaimedDonations(ctx context.Context, userID int64) ([]model.ClaimedDonationRow, error)
}

// MessageService stores chat messages and builds users' chat lists.
type MessageService struct {
	messageRepo MessageRepositoryInterface
	events      bus.Bus
}

// NewMessageService creates a new MessageService. events may be nil.
func NewMessageService(messageRepo MessageRepositoryInterface, events bus.Bus) *MessageService {
	return &MessageService{messageRepo: messageRepo, events: events}
}

// Send stores a message and announces it on bus.TopicMessageCreated. A failed publish is
// logged; the message stays stored.
func (s *MessageService) Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	msg := &model.Message{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		DonationID: req.DonationID,
		Text:       strings.TrimSpace(req.Text),
	}
	if err := s.messageRepo.Insert(ctx, msg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("insert message: %w", err)
	}

	s.publish(ctx, msg)
	return msg, nil
}

func (s *MessageService) publish(ctx context.Context, msg *model.Message) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Int64("message_id", msg.ID).Msg("encoding message event")
		return
	}

	err = s.events.Publish(ctx, bus.TopicMessageCreated, bus.Event{
		Key:     strconv.FormatInt(msg.DonationID, 10),
		Payload: payload,
		Time:    msg.CreatedAt,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Int64("message_id", msg.ID).
			Str("topic", bus.TopicMessageCreated).
			Msg("publishing message event")
	}
}

// Conversation returns the messages about donationID that userID sent or received, oldest first.
func (s *MessageService) Conversation(ctx context.Context, donationID, userID int64) ([]model.Message, error) {
	msgs, err := s.messageRepo.ListConversation(ctx, donationID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

type chatKey struct {
	donationID  int64
	otherUserID int64
}

// Chats returns one entry per (donation, other user) pair the user has talked about, holding the
// latest message, plus a prompt entry for each donation the user claimed but never discussed
// with its owner. Entries are ordered newest first.
func (s *MessageService) Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error) {
	rows, err := s.messageRepo.ListChatMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	claimed, err := s.messageRepo.ListClaimedDonations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list claimed donations: %w", err)
	}

	seen := make(map[chatKey]struct{}, len(rows)+len(claimed))
	chats := make([]model.ChatSummary, 0, len(rows)+len(claimed))

	// rows are newest first, so the first hit per key is the latest message.
	for _, r := range rows {
		key := chatKey{r.DonationID, r.OtherUserID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		chats = append(chats, model.ChatSummary{
			DonationID:      r.DonationID,
			OtherUserID:     r.OtherUserID,
			OtherUserName:   r.OtherUserName,
			OtherUserImage:  r.OtherUserImage,
			LastMessage:     r.Text,
			LastMessageTime: r.CreatedAt,
		})
	}

	for _, d := range claimed {
		key := chatKey{d.DonationID, d.OwnerID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		chats = append(chats, model.ChatSummary{
			DonationID:      d.DonationID,
			OtherUserID:     d.OwnerID,
			OtherUserName:   d.OwnerName,
			OtherUserImage:  d.OwnerImage,
			LastMessage:     model.ClaimedChatPrompt,
			LastMessageTime: d.UpdatedAt,
		})
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMessageTime.After(chats[j].LastMessageTime)
	})
	return chats, nil
}
