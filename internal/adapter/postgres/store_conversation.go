package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bonsai-todo/bonsai/internal/domain"
	"github.com/bonsai-todo/bonsai/internal/domain/conversation"
)

func (s *Store) CreateConversation(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	var created conversation.Conversation
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, created_at, updated_at`,
		c.UserID, c.Title,
	).Scan(&created.ID, &created.UserID, &created.Title, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &created, nil
}

func (s *Store) GetConversation(ctx context.Context, id, userID string) (*conversation.Conversation, error) {
	var c conversation.Conversation
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM conversations WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context, userID string) ([]conversation.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var result []conversation.Conversation
	for rows.Next() {
		var c conversation.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteConversation removes a conversation and its messages (CASCADE).
func (s *Store) DeleteConversation(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete conversation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, m *conversation.Message) (*conversation.Message, error) {
	var created conversation.Message
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, role, content, generated_command, confidence_score)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING id, conversation_id, role, content, COALESCE(generated_command, ''), confidence_score, created_at`,
		m.ConversationID, m.Role, m.Content, m.GeneratedCommand, m.ConfidenceScore,
	).Scan(&created.ID, &created.ConversationID, &created.Role, &created.Content,
		&created.GeneratedCommand, &created.ConfidenceScore, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	// Bump the conversation's updated_at so listing orders by activity.
	_, _ = s.pool.Exec(ctx, `UPDATE conversations SET updated_at = now() WHERE id = $1`, m.ConversationID)
	return &created, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(generated_command, ''), confidence_score, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var result []conversation.Message
	for rows.Next() {
		var m conversation.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content,
			&m.GeneratedCommand, &m.ConfidenceScore, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
