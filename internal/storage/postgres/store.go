package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"inboxhub/backend/internal/config"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// 单个存储操作的超时上限。
const opTimeout = 5 * time.Second

// Store 基于 pgx 的 PostgreSQL 原生存储实现。
// 与 sql 包的通用实现相比走 pgx 二进制协议，事务使用原生 pgx.Tx。
type Store struct {
	pool *pgxpool.Pool
}

// NewStore 创建 PostgreSQL 存储并初始化表结构。
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	pool, err := newPool(cfg)
	if err != nil {
		return nil, err
	}

	store := &Store{pool: pool}
	if err := store.migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate 建表并声明唯一约束。
func (s *Store) migrate() error {
	ctx, cancel := s.ctx()
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            varchar(36) PRIMARY KEY,
			username      varchar(64)  NOT NULL,
			email         varchar(120) NOT NULL,
			password_hash varchar(128) NOT NULL,
			is_active     boolean      NOT NULL DEFAULT true,
			created_at    timestamptz  NOT NULL,
			updated_at    timestamptz  NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
		`CREATE TABLE IF NOT EXISTS inboxes (
			id         varchar(36) PRIMARY KEY,
			name       varchar(64)  NOT NULL,
			user_id    varchar(36)  NOT NULL REFERENCES users (id),
			url        varchar(128) NOT NULL DEFAULT '',
			created_at timestamptz  NOT NULL,
			updated_at timestamptz  NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_inboxes_user_name ON inboxes (user_id, name)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id         varchar(36) PRIMARY KEY,
			subject    varchar(255) NOT NULL DEFAULT '',
			body       text         NOT NULL,
			is_read    boolean      NOT NULL DEFAULT false,
			inbox_id   varchar(36)  NOT NULL REFERENCES inboxes (id),
			created_at timestamptz  NOT NULL,
			updated_at timestamptz  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_inbox ON messages (inbox_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// isUniqueViolation 判断是否为唯一约束冲突（SQLSTATE 23505）。
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ========== User Repository ==========

// CreateUser 创建新用户。
func (s *Store) CreateUser(user *domain.User) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateEmail
	}
	return err
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	return scanUser(s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

// GetUserByEmail 根据邮箱获取用户（不区分大小写）。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	return scanUser(s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, is_active, created_at, updated_at
		FROM users WHERE lower(email) = lower($1)
	`, email))
}

// UpdateUser 在单个事务内部分更新用户字段，返回更新后的实体。
func (s *Store) UpdateUser(id string, update domain.UserUpdate) (*domain.User, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var updated *domain.User
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET
				username      = COALESCE($2, username),
				email         = COALESCE($3, email),
				password_hash = COALESCE($4, password_hash),
				updated_at    = $5
			WHERE id = $1
		`, id, update.Username, update.Email, update.PasswordHash, time.Now().UTC())
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateEmail
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrUserNotFound
		}

		updated, err = scanUser(tx.QueryRow(ctx, `
			SELECT id, username, email, password_hash, is_active, created_at, updated_at
			FROM users WHERE id = $1
		`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser 在单个事务内删除用户，并级联删除其收件箱及消息。
func (s *Store) DeleteUser(id string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM messages
			WHERE inbox_id IN (SELECT id FROM inboxes WHERE user_id = $1)
		`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM inboxes WHERE user_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrUserNotFound
		}
		return nil
	})
}

// ========== Inbox Repository ==========

// CreateInbox 创建收件箱，名称冲突由复合唯一索引裁决。
func (s *Store) CreateInbox(inbox *domain.Inbox) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO inboxes (id, name, user_id, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, inbox.ID, inbox.Name, inbox.UserID, inbox.URL, inbox.CreatedAt, inbox.UpdatedAt)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateInboxName
	}
	return err
}

// GetInbox 根据 ID 获取收件箱。
func (s *Store) GetInbox(id string) (*domain.Inbox, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	return scanInbox(s.pool.QueryRow(ctx, `
		SELECT id, name, user_id, url, created_at, updated_at
		FROM inboxes WHERE id = $1
	`, id))
}

// ListInboxesByUserID 按用户 ID 列出收件箱，按创建时间升序。
// 用户不存在时返回 ErrUserNotFound，而不是空列表。
func (s *Store) ListInboxesByUserID(userID string) ([]domain.Inbox, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var exists int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, user_id, url, created_at, updated_at
		FROM inboxes WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inboxes := make([]domain.Inbox, 0)
	for rows.Next() {
		var inbox domain.Inbox
		if err := rows.Scan(&inbox.ID, &inbox.Name, &inbox.UserID, &inbox.URL,
			&inbox.CreatedAt, &inbox.UpdatedAt); err != nil {
			return nil, err
		}
		inboxes = append(inboxes, inbox)
	}
	return inboxes, rows.Err()
}

// UpdateInbox 在单个事务内部分更新收件箱字段，返回更新后的实体。
func (s *Store) UpdateInbox(id string, update domain.InboxUpdate) (*domain.Inbox, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var updated *domain.Inbox
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE inboxes SET
				name       = COALESCE($2, name),
				updated_at = $3
			WHERE id = $1
		`, id, update.Name, time.Now().UTC())
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateInboxName
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrInboxNotFound
		}

		updated, err = scanInbox(tx.QueryRow(ctx, `
			SELECT id, name, user_id, url, created_at, updated_at
			FROM inboxes WHERE id = $1
		`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteInbox 在单个事务内删除收件箱，并级联删除其消息。
func (s *Store) DeleteInbox(id string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE inbox_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM inboxes WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrInboxNotFound
		}
		return nil
	})
}

// ========== Message Repository ==========

// CreateMessage 在收件箱内创建消息。
func (s *Store) CreateMessage(message *domain.Message) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, subject, body, is_read, inbox_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, message.ID, message.Subject, message.Body, message.IsRead, message.InboxID,
		message.CreatedAt, message.UpdatedAt)
	return err
}

// GetMessage 获取指定收件箱内的消息。
func (s *Store) GetMessage(inboxID, messageID string) (*domain.Message, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var message domain.Message
	err := s.pool.QueryRow(ctx, `
		SELECT id, subject, body, is_read, inbox_id, created_at, updated_at
		FROM messages WHERE id = $1 AND inbox_id = $2
	`, messageID, inboxID).Scan(&message.ID, &message.Subject, &message.Body,
		&message.IsRead, &message.InboxID, &message.CreatedAt, &message.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
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
	ctx, cancel := s.ctx()
	defer cancel()

	var exists int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM inboxes WHERE id = $1`, inboxID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrInboxNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, subject, body, is_read, inbox_id, created_at, updated_at
		FROM messages WHERE inbox_id = $1
		ORDER BY created_at ASC
	`, inboxID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(&message.ID, &message.Subject, &message.Body,
			&message.IsRead, &message.InboxID, &message.CreatedAt, &message.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// MarkMessageRead 将消息标记为已读。
func (s *Store) MarkMessageRead(inboxID, messageID string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = true, updated_at = $3
		WHERE id = $1 AND inbox_id = $2
	`, messageID, inboxID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// DeleteMessage 删除指定收件箱内的消息。
func (s *Store) DeleteMessage(inboxID, messageID string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1 AND inbox_id = $2`, messageID, inboxID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// Health 检查数据库健康状态。
func (s *Store) Health() error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close 关闭连接池。
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanUser 从查询结果读取单个用户。
func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// scanInbox 从查询结果读取单个收件箱。
func scanInbox(row pgx.Row) (*domain.Inbox, error) {
	var inbox domain.Inbox
	err := row.Scan(&inbox.ID, &inbox.Name, &inbox.UserID, &inbox.URL,
		&inbox.CreatedAt, &inbox.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrInboxNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inbox, nil
}
