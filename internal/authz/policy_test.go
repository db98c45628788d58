package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inboxhub/backend/internal/domain"
)

func TestPolicy_AuthorizeInbox(t *testing.T) {
	policy := NewPolicy()

	owner := &domain.Identity{UserID: "user-a"}
	stranger := &domain.Identity{UserID: "user-b"}
	inbox := &domain.Inbox{ID: "inbox-1", UserID: "user-a"}

	assert.NoError(t, policy.AuthorizeInbox(owner, inbox))
	assert.ErrorIs(t, policy.AuthorizeInbox(stranger, inbox), ErrUnauthorized)
}

func TestPolicy_AuthorizeInbox_NilInputs(t *testing.T) {
	policy := NewPolicy()
	inbox := &domain.Inbox{ID: "inbox-1", UserID: "user-a"}

	assert.ErrorIs(t, policy.AuthorizeInbox(nil, inbox), ErrUnauthorized)
	assert.ErrorIs(t, policy.AuthorizeInbox(&domain.Identity{UserID: "user-a"}, nil), ErrUnauthorized)
}
