package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelessons-backend-go/internal/models"
)

func TestCreateComment_SnapshotsAuthor(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	id := svc.store.PutLesson(publicLesson("a@example.com", "lesson"))
	svc.store.PutUser(models.User{Email: "named@example.com", DisplayName: "Named", PhotoURL: "n.png"})

	named, err := svc.comments.Create(ctx, identity("named@example.com"), id, "  thoughtful  ")
	require.NoError(t, err)
	assert.Equal(t, "Named", named.UserName)
	assert.Equal(t, "n.png", named.UserImg)
	assert.Equal(t, "thoughtful", named.Content)
	assert.NotEmpty(t, named.ID)

	anon, err := svc.comments.Create(ctx, identity("anon@example.com"), id, "hello")
	require.NoError(t, err)
	assert.Equal(t, models.AnonymousName, anon.UserName)

	comments, err := svc.comments.List(ctx, id)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestCreateComment_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(nil, 0)
	id := svc.store.PutLesson(publicLesson("a@example.com", "lesson"))

	_, err := svc.comments.Create(ctx, identity("a@example.com"), id, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.comments.Create(ctx, identity("a@example.com"), id, strings.Repeat("x", maxCommentLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.comments.Create(ctx, identity("a@example.com"), "missing", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, svc.store.Calls("comments.Create"))

	empty, err := svc.comments.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
