package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
	"inboxhub/backend/internal/storage/memory"
)

func seedServiceUser(t *testing.T, store *memory.Store) *domain.User {
	t.Helper()
	user, err := NewUserService(store).Create(CreateUserInput{
		Username: "bob",
		Email:    "bob@x.com",
		Password: "pw",
	})
	require.NoError(t, err)
	return user
}

func TestInboxService_Create(t *testing.T) {
	store := memory.NewStore()
	user := seedServiceUser(t, store)
	inboxes := NewInboxService(store, "http://localhost:8080/")

	inbox, err := inboxes.Create(user.ID, "work")
	require.NoError(t, err)

	assert.NotEmpty(t, inbox.ID)
	assert.Equal(t, "work", inbox.Name)
	assert.Equal(t, user.ID, inbox.UserID)
	// URL 由服务端派生，末尾斜杠已规整
	assert.Equal(t, fmt.Sprintf("http://localhost:8080/inboxes/%s", inbox.ID), inbox.URL)
}

func TestInboxService_Create_DuplicateName(t *testing.T) {
	store := memory.NewStore()
	user := seedServiceUser(t, store)
	inboxes := NewInboxService(store, "http://localhost:8080")

	_, err := inboxes.Create(user.ID, "work")
	require.NoError(t, err)

	_, err = inboxes.Create(user.ID, "work")
	assert.ErrorIs(t, err, storage.ErrDuplicateInboxName)
}

func TestInboxService_Create_UnknownUser(t *testing.T) {
	inboxes := NewInboxService(memory.NewStore(), "http://localhost:8080")

	_, err := inboxes.Create("missing", "work")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestInboxService_UpdateAndDelete(t *testing.T) {
	store := memory.NewStore()
	user := seedServiceUser(t, store)
	inboxes := NewInboxService(store, "http://localhost:8080")
	messages := NewMessageService(store)

	inbox, err := inboxes.Create(user.ID, "work")
	require.NoError(t, err)
	message, err := messages.Create(inbox.ID, "hi", "body")
	require.NoError(t, err)

	name := "archive"
	updated, err := inboxes.Update(inbox.ID, &name)
	require.NoError(t, err)
	assert.Equal(t, "archive", updated.Name)

	require.NoError(t, inboxes.Delete(inbox.ID))
	_, err = inboxes.Get(inbox.ID)
	assert.ErrorIs(t, err, storage.ErrInboxNotFound)
	_, err = messages.Get(inbox.ID, message.ID)
	assert.ErrorIs(t, err, storage.ErrMessageNotFound)
}

func TestInboxService_ListByUser(t *testing.T) {
	store := memory.NewStore()
	user := seedServiceUser(t, store)
	inboxes := NewInboxService(store, "http://localhost:8080")

	_, err := inboxes.Create(user.ID, "work")
	require.NoError(t, err)
	_, err = inboxes.Create(user.ID, "personal")
	require.NoError(t, err)

	list, err := inboxes.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
