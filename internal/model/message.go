package model

import "time"

// Message is a chat line between two users about one donation.
type Message struct {
	ID         int64     `json:"id" db:"id"`
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	DonationID int64     `json:"donation_id" db:"donation_id"`
	Text       string    `json:"text" db:"text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SendMessageRequest is the DTO for POST /messages.
type SendMessageRequest struct {
	FromUserID int64  `json:"from_user_id" validate:"required,gte=1"`
	ToUserID   int64  `json:"to_user_id" validate:"required,gte=1,nefield=FromUserID"`
	DonationID int64  `json:"donation_id" validate:"required,gte=1"`
	Text       string `json:"text" validate:"required,notblank,max=4000"`
}

// ChatSummary is one row of GET /user-chats/:userId.
type ChatSummary struct {
	DonationID      int64     `json:"donationId"`
	OtherUserID     int64     `json:"otherUserId"`
	OtherUserName   string    `json:"otherUserName"`
	OtherUserImage  *string   `json:"otherUserImage"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}

// ChatMessageRow is a message joined with the counterpart's profile, as loaded for the chat list.
type ChatMessageRow struct {
	DonationID     int64     `db:"donation_id"`
	OtherUserID    int64     `db:"other_user_id"`
	OtherUserName  string    `db:"other_user_name"`
	OtherUserImage *string   `db:"other_user_image"`
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
}

// ClaimedDonationRow is a donation the user claimed, joined with its owner's profile.
type ClaimedDonationRow struct {
	DonationID int64     `db:"donation_id"`
	OwnerID    int64     `db:"owner_id"`
	OwnerName  string    `db:"owner_name"`
	OwnerImage *string   `db:"owner_image"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ClaimedChatPrompt is shown for claimed donations that have no conversation yet.
const ClaimedChatPrompt = "You claimed this donation. Start a conversation!"
