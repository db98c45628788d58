package sql

import (
	"database/sql"
	"errors"
	"time"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// ========== Message Repository ==========

// CreateMessage 在收件箱内创建消息。
func (s *Store) CreateMessage(message *domain.Message) error {
	query := s.rebind(`
		INSERT INTO messages (id, subject, body, is_read, inbox_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		message.ID,
		message.Subject,
		message.Body,
		message.IsRead,
		message.InboxID,
		message.CreatedAt,
		message.UpdatedAt,
	)
	return err
}

// GetMessage 获取指定收件箱内的消息。
func (s *Store) GetMessage(inboxID, messageID string) (*domain.Message, error) {
	query := s.rebind(`
		SELECT id, subject, body, is_read, inbox_id, created_at, updated_at
		FROM messages
		WHERE id = ? AND inbox_id = ?
	`)
	var message domain.Message
	err := s.db.QueryRow(query, messageID, inboxID).Scan(
		&message.ID,
		&message.Subject,
		&message.Body,
		&message.IsRead,
		&message.InboxID,
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessagesByInboxID 按收件箱 ID 列出消息，按创建时间升序。
// 收件箱不存在时返回 ErrInboxNotFound，而不是空列表。
func (s *Store) ListMessagesByInboxID(inboxID string) ([]domain.Message, error) {
	var exists int
	err := s.db.QueryRow(s.rebind(`SELECT 1 FROM inboxes WHERE id = ?`), inboxID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrInboxNotFound
	}
	if err != nil {
		return nil, err
	}

	query := s.rebind(`
		SELECT id, subject, body, is_read, inbox_id, created_at, updated_at
		FROM messages
		WHERE inbox_id = ?
		ORDER BY created_at ASC
	`)
	rows, err := s.db.Query(query, inboxID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.Subject,
			&message.Body,
			&message.IsRead,
			&message.InboxID,
			&message.CreatedAt,
			&message.UpdatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// MarkMessageRead 将消息标记为已读。
func (s *Store) MarkMessageRead(inboxID, messageID string) error {
	query := s.rebind(`
		UPDATE messages SET is_read = ?, updated_at = ? WHERE id = ? AND inbox_id = ?
	`)
	result, err := s.db.Exec(query, true, time.Now().UTC(), messageID, inboxID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// DeleteMessage 删除指定收件箱内的消息。
func (s *Store) DeleteMessage(inboxID, messageID string) error {
	query := s.rebind(`DELETE FROM messages WHERE id = ? AND inbox_id = ?`)
	result, err := s.db.Exec(query, messageID, inboxID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}
