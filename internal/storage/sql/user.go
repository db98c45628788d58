package sql

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// ========== User Repository ==========

// CreateUser 创建新用户。
func (s *Store) CreateUser(user *domain.User) error {
	query := s.rebind(`
		INSERT INTO users (id, username, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateEmail
	}
	return err
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	query := s.rebind(`
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = ?
	`)
	return s.scanUser(s.db.QueryRow(query, id))
}

// GetUserByEmail 根据邮箱获取用户（不区分大小写）。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	query := s.rebind(`
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower(?)
	`)
	return s.scanUser(s.db.QueryRow(query, email))
}

// UpdateUser 在单个事务内部分更新用户字段，返回更新后的实体。
func (s *Store) UpdateUser(id string, update domain.UserUpdate) (*domain.User, error) {
	var updated *domain.User

	err := s.inTx(func(tx *sql.Tx) error {
		sets := make([]string, 0, 4)
		args := make([]interface{}, 0, 5)

		if update.Username != nil {
			sets = append(sets, "username = ?")
			args = append(args, *update.Username)
		}
		if update.Email != nil {
			sets = append(sets, "email = ?")
			args = append(args, *update.Email)
		}
		if update.PasswordHash != nil {
			sets = append(sets, "password_hash = ?")
			args = append(args, *update.PasswordHash)
		}
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC())
		args = append(args, id)

		query := s.rebind("UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?")
		result, err := tx.Exec(query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateEmail
			}
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return storage.ErrUserNotFound
		}

		row := tx.QueryRow(s.rebind(`
			SELECT id, username, email, password_hash, is_active, created_at, updated_at
			FROM users
			WHERE id = ?
		`), id)
		updated, err = s.scanUser(row)
		return err
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser 在单个事务内删除用户，并级联删除其收件箱及消息。
func (s *Store) DeleteUser(id string) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.rebind(`
			DELETE FROM messages
			WHERE inbox_id IN (SELECT id FROM inboxes WHERE user_id = ?)
		`), id); err != nil {
			return err
		}
		if _, err := tx.Exec(s.rebind(`DELETE FROM inboxes WHERE user_id = ?`), id); err != nil {
			return err
		}

		result, err := tx.Exec(s.rebind(`DELETE FROM users WHERE id = ?`), id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return storage.ErrUserNotFound
		}
		return nil
	})
}

// scanUser 从查询结果读取单个用户。
func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
