package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// UserService 封装用户相关业务操作。
type UserService struct {
	store storage.Store
}

// NewUserService 创建用户业务服务。
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// CreateUserInput 定义创建用户所需的输入。
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// Create 创建新用户。
// 邮箱统一转为小写存储；重复邮箱由存储层唯一索引裁决。
func (s *UserService) Create(input CreateUserInput) (*domain.User, error) {
	if !auth.ValidateEmail(input.Email) {
		return nil, auth.ErrInvalidEmail
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get 根据 ID 获取用户。
func (s *UserService) Get(id string) (*domain.User, error) {
	return s.store.GetUserByID(id)
}

// UpdateUserInput 定义更新用户的输入，nil 字段不修改。
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// Update 更新用户字段，返回更新后的实体。
func (s *UserService) Update(id string, input UpdateUserInput) (*domain.User, error) {
	update := domain.UserUpdate{
		Username: input.Username,
	}

	if input.Email != nil {
		if !auth.ValidateEmail(*input.Email) {
			return nil, auth.ErrInvalidEmail
		}
		lowered := strings.ToLower(*input.Email)
		update.Email = &lowered
	}

	if input.Password != nil {
		passwordHash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = &passwordHash
	}

	return s.store.UpdateUser(id, update)
}

// Delete 删除用户，级联删除其收件箱及消息。
func (s *UserService) Delete(id string) error {
	return s.store.DeleteUser(id)
}
