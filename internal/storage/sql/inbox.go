package sql

import (
	"database/sql"
	"errors"
	"time"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// ========== Inbox Repository ==========

// CreateInbox 创建收件箱。
// 名称冲突由 (user_id, name) 复合唯一索引裁决。
func (s *Store) CreateInbox(inbox *domain.Inbox) error {
	query := s.rebind(`
		INSERT INTO inboxes (id, name, user_id, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		inbox.ID,
		inbox.Name,
		inbox.UserID,
		inbox.URL,
		inbox.CreatedAt,
		inbox.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateInboxName
	}
	return err
}

// GetInbox 根据 ID 获取收件箱。
func (s *Store) GetInbox(id string) (*domain.Inbox, error) {
	query := s.rebind(`
		SELECT id, name, user_id, url, created_at, updated_at
		FROM inboxes
		WHERE id = ?
	`)
	return scanInbox(s.db.QueryRow(query, id))
}

// ListInboxesByUserID 按用户 ID 列出收件箱，按创建时间升序。
// 用户不存在时返回 ErrUserNotFound，而不是空列表。
func (s *Store) ListInboxesByUserID(userID string) ([]domain.Inbox, error) {
	var exists int
	err := s.db.QueryRow(s.rebind(`SELECT 1 FROM users WHERE id = ?`), userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	query := s.rebind(`
		SELECT id, name, user_id, url, created_at, updated_at
		FROM inboxes
		WHERE user_id = ?
		ORDER BY created_at ASC
	`)
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inboxes := make([]domain.Inbox, 0)
	for rows.Next() {
		var inbox domain.Inbox
		if err := rows.Scan(
			&inbox.ID,
			&inbox.Name,
			&inbox.UserID,
			&inbox.URL,
			&inbox.CreatedAt,
			&inbox.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inboxes = append(inboxes, inbox)
	}
	return inboxes, rows.Err()
}

// UpdateInbox 在单个事务内部分更新收件箱字段，返回更新后的实体。
func (s *Store) UpdateInbox(id string, update domain.InboxUpdate) (*domain.Inbox, error) {
	var updated *domain.Inbox

	err := s.inTx(func(tx *sql.Tx) error {
		if update.Name != nil {
			result, err := tx.Exec(s.rebind(`
				UPDATE inboxes SET name = ?, updated_at = ? WHERE id = ?
			`), *update.Name, time.Now().UTC(), id)
			if err != nil {
				if isUniqueViolation(err) {
					return storage.ErrDuplicateInboxName
				}
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return storage.ErrInboxNotFound
			}
		}

		row := tx.QueryRow(s.rebind(`
			SELECT id, name, user_id, url, created_at, updated_at
			FROM inboxes
			WHERE id = ?
		`), id)
		var err error
		updated, err = scanInbox(row)
		return err
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteInbox 在单个事务内删除收件箱，并级联删除其消息。
func (s *Store) DeleteInbox(id string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.rebind(`DELETE FROM messages WHERE inbox_id = ?`), id); err != nil {
			return err
		}

		result, err := tx.Exec(s.rebind(`DELETE FROM inboxes WHERE id = ?`), id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return storage.ErrInboxNotFound
		}
		return nil
	})
}

// scanInbox 从查询结果读取单个收件箱。
func scanInbox(row *sql.Row) (*domain.Inbox, error) {
	var inbox domain.Inbox
	err := row.Scan(
		&inbox.ID,
		&inbox.Name,
		&inbox.UserID,
		&inbox.URL,
		&inbox.CreatedAt,
		&inbox.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrInboxNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inbox, nil
}
