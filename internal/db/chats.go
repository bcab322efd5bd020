package db

import (
	"context"

	"github.com/nyat/backend/internal/model"
)

// FindPrivateChat returns the id of the private chat whose participant
// set is exactly {userA, userB}, or pgx.ErrNoRows if none exists.
func (db *Postgres) FindPrivateChat(ctx context.Context, userA, userB int64) (int64, error) {
	query := `
		SELECT cp.chat_id
		FROM chat_participants AS cp
		JOIN chats AS c ON cp.chat_id = c.id
		WHERE c.kind = $1
		  AND cp.user_id IN ($2, $3)
		GROUP BY cp.chat_id
		HAVING COUNT(DISTINCT cp.user_id) = 2
		LIMIT 1
	`
	var chatID int64
	err := db.Pool.QueryRow(ctx, query, model.ChatKindPrivate, userA, userB).Scan(&chatID)
	if err != nil {
		return 0, err
	}
	return chatID, nil
}

// CreatePrivateChat inserts a private chat, both participant rows, and the
// normalized (lo, hi) pair key in one transaction. Either all four rows
// become visible together or none do. A second creator for the same pair
// fails the pair key's primary key with a unique violation; callers catch
// that with IsUniqueViolation and re-read.
func (db *Postgres) CreatePrivateChat(ctx context.Context, userA, userB int64) (int64, error) {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var chatID int64
	if err = tx.QueryRow(ctx, `
		INSERT INTO chats (kind) VALUES ($1) RETURNING id
	`, model.ChatKindPrivate).Scan(&chatID); err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO chat_participants (chat_id, user_id, role)
		VALUES ($1, $2, 'member'), ($1, $3, 'member')
	`, chatID, userA, userB); err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO private_chat_pairs (user_lo, user_hi, chat_id)
		VALUES ($1, $2, $3)
	`, lo, hi, chatID); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return chatID, nil
}
