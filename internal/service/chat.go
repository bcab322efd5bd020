package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nyat/backend/internal/db"
)

var (
	ErrPeerNotFound = errors.New("peer user not found")
	ErrSelfChat     = errors.New("cannot open a private chat with yourself")
)

// ChatRepository is the storage contract for the private-chat resolver.
// FindPrivateChat must observe a chat committed by a concurrent creator
// once that creator's unique-constraint conflict has surfaced.
type ChatRepository interface {
	FindPrivateChat(ctx context.Context, userA, userB int64) (int64, error)
	CreatePrivateChat(ctx context.Context, userA, userB int64) (int64, error)
}

type ChatService struct {
	users UserRepository
	chats ChatRepository
}

func NewChatService(users UserRepository, chats ChatRepository) *ChatService {
	return &ChatService{users: users, chats: chats}
}

// ResolvePrivateChat returns the id of the private chat between the
// caller and the named peer, creating it if it does not exist yet.
// Idempotent: every call for the same pair settles on the same chat id.
func (s *ChatService) ResolvePrivateChat(ctx context.Context, userID int64, peerUsername string) (int64, error) {
	peer, err := s.users.GetUserByUsername(ctx, peerUsername)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrPeerNotFound
		}
		return 0, fmt.Errorf("loading peer user: %w", err)
	}

	if peer.ID == userID {
		return 0, ErrSelfChat
	}

	return s.resolveOrCreate(ctx, userID, peer.ID)
}

// resolveOrCreate is the race-safe get-or-create protocol. Two callers
// can both miss the read and both attempt the insert; the pair key's
// unique constraint fails the loser, which then re-reads the winner's
// committed row. At most one retry is needed.
func (s *ChatService) resolveOrCreate(ctx context.Context, userA, userB int64) (int64, error) {
	chatID, err := s.chats.FindPrivateChat(ctx, userA, userB)
	if err == nil {
		return chatID, nil
	}
	if !db.IsNoRows(err) {
		return 0, fmt.Errorf("querying existing chat: %w", err)
	}

	chatID, err = s.chats.CreatePrivateChat(ctx, userA, userB)
	if err == nil {
		slog.Info("private chat created",
			slog.Int64("chat_id", chatID),
			slog.Int64("user_a", userA),
			slog.Int64("user_b", userB),
		)
		return chatID, nil
	}
	if !db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("creating chat: %w", err)
	}

	chatID, err = s.chats.FindPrivateChat(ctx, userA, userB)
	if err != nil {
		return 0, fmt.Errorf("reloading chat after conflict: %w", err)
	}
	return chatID, nil
}
