package model

import "time"

const ChatKindPrivate = "private"

type Chat struct {
	ID        int64
	Kind      string
	CreatedAt time.Time
}

type ChatParticipant struct {
	ChatID int64
	UserID int64
	Role   string
}

type CreatePMRequest struct {
	PeerUsername string `json:"peer_username"`
}

type CreatePMResponse struct {
	ChatID int64 `json:"chat_id"`
}
