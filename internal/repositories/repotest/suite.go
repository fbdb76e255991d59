// Package repotest - общий набор тестов для всех драйверов хранилища
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc возвращает чистое хранилище для одного подтеста
type NewStoreFunc func(t *testing.T) *repositories.Store

// Run прогоняет контракт репозиториев на хранилище
func Run(t *testing.T, newStore NewStoreFunc) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("PasswordReset", func(t *testing.T) { testPasswordReset(t, newStore(t)) })
	t.Run("ConsumeResetOnce", func(t *testing.T) { testConsumeResetOnce(t, newStore(t)) })
	t.Run("ResetTokenUnique", func(t *testing.T) { testResetTokenUnique(t, newStore(t)) })
	t.Run("Posts", func(t *testing.T) { testPosts(t, newStore(t)) })
	t.Run("Likes", func(t *testing.T) { testLikes(t, newStore(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
}

func newUser(email string) *models.User {
	return &models.User{
		Username:     "user",
		Email:        email,
		PasswordHash: "hash",
		ProfilePhoto: models.Image{URL: models.DefaultProfilePhotoURL},
	}
}

func testUsers(t *testing.T, s *repositories.Store) {
	ctx := context.Background()

	u := newUser("alice@example.com")
	require.NoError(t, s.Users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	err := s.Users.Create(ctx, newUser("alice@example.com"))
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)

	got, err := s.Users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, models.DefaultProfilePhotoURL, got.ProfilePhoto.URL)
	assert.False(t, got.IsAdmin)

	_, err = s.Users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	_, err = s.Users.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	name, bio := "alice2", "hello"
	updated, err := s.Users.UpdateProfile(ctx, u.ID, models.UserUpdate{Username: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "hash", updated.PasswordHash)

	photo := models.Image{URL: "http://cdn/x.jpg", PublicID: "images/x.jpg"}
	updated, err = s.Users.UpdatePhoto(ctx, u.ID, photo)
	require.NoError(t, err)
	assert.Equal(t, photo, updated.ProfilePhoto)

	require.NoError(t, s.Users.Create(ctx, newUser("bob@example.com")))
	count, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := s.Users.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Users.Delete(ctx, u.ID))
	_, err = s.Users.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	assert.ErrorIs(t, s.Users.Delete(ctx, u.ID), repositories.ErrUserNotFound)
}

func testPasswordReset(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	u := newUser("reset@example.com")
	require.NoError(t, s.Users.Create(ctx, u))

	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "hash-1", now.Add(10*time.Minute)))
	got, err := s.Users.FindByResetTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.True(t, got.HasPendingReset())
	assert.WithinDuration(t, now.Add(10*time.Minute), *got.PasswordResetTokenExpiresAt, time.Second)

	// новый запрос перезаписывает прежний код
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "hash-2", now.Add(10*time.Minute)))
	_, err = s.Users.FindByResetTokenHash(ctx, "hash-1")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	require.NoError(t, s.Users.ClearPasswordResetToken(ctx, u.ID))
	got, err = s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PasswordResetTokenHash)
	assert.Nil(t, got.PasswordResetTokenExpiresAt)

	// истекший код не принимается
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "hash-3", now.Add(-time.Second)))
	_, err = s.Users.ConsumePasswordResetToken(ctx, "hash-3", now, "new-hash")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	// смена пароля очищает pending reset
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "hash-4", now.Add(time.Minute)))
	require.NoError(t, s.Users.UpdatePassword(ctx, u.ID, "changed"))
	got, err = s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.PasswordHash)
	assert.False(t, got.HasPendingReset())

	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "hash-5", now.Add(time.Minute)))
	pw := "via-profile"
	got, err = s.Users.UpdateProfile(ctx, u.ID, models.UserUpdate{PasswordHash: &pw})
	require.NoError(t, err)
	assert.False(t, got.HasPendingReset())
}

func testConsumeResetOnce(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	u := newUser("once@example.com")
	require.NoError(t, s.Users.Create(ctx, u))
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, u.ID, "once", now.Add(10*time.Minute)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Users.ConsumePasswordResetToken(ctx, "once", now, "new-hash"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)

	got, err := s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.False(t, got.HasPendingReset())
}

func testResetTokenUnique(t *testing.T, s *repositories.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	alice := newUser("alice@example.com")
	bob := newUser("bob@example.com")
	require.NoError(t, s.Users.Create(ctx, alice))
	require.NoError(t, s.Users.Create(ctx, bob))

	require.NoError(t, s.Users.SetPasswordResetToken(ctx, alice.ID, "shared", now.Add(10*time.Minute)))
	err := s.Users.SetPasswordResetToken(ctx, bob.ID, "shared", now.Add(10*time.Minute))
	assert.ErrorIs(t, err, repositories.ErrResetTokenTaken)

	got, err := s.Users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPendingReset())

	// повторная запись того же хеша тем же пользователем допустима
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, alice.ID, "shared", now.Add(5*time.Minute)))

	// несколько пользователей без кода не конфликтуют
	require.NoError(t, s.Users.ClearPasswordResetToken(ctx, alice.ID))
	require.NoError(t, s.Users.SetPasswordResetToken(ctx, bob.ID, "shared", now.Add(10*time.Minute)))

	consumed, err := s.Users.ConsumePasswordResetToken(ctx, "shared", now, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, consumed.ID)

	got, err = s.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
}

func testPosts(t *testing.T, s *repositories.Store) {
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for i, cat := range []string{"go", "go", "rust", "go"} {
		p := &models.Post{
			Title:       "title",
			Description: "a long description",
			Category:    cat,
			UserID:      "owner-1",
			Image:       models.Image{URL: "u", PublicID: "p"},
		}
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Posts.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	count, err := s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	all, err := s.Posts.List(ctx, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[3].ID)

	page2, err := s.Posts.List(ctx, models.PostFilter{Page: 2, PerPage: 3})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, ids[0], page2[0].ID)

	goPosts, err := s.Posts.List(ctx, models.PostFilter{Category: "go"})
	require.NoError(t, err)
	assert.Len(t, goPosts, 3)

	title := "new title"
	updated, err := s.Posts.Update(ctx, ids[0], models.PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "go", updated.Category)

	img := models.Image{URL: "new-url", PublicID: "new-id"}
	updated, err = s.Posts.UpdateImage(ctx, ids[0], img)
	require.NoError(t, err)
	assert.Equal(t, img, updated.Image)

	_, err = s.Posts.Update(ctx, "00000000-0000-0000-0000-000000000000", models.PostUpdate{Title: &title})
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)

	require.NoError(t, s.Posts.Delete(ctx, ids[0]))
	_, err = s.Posts.FindByID(ctx, ids[0])
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)

	n, err := s.Posts.DeleteByUser(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func testLikes(t *testing.T, s *repositories.Store) {
	ctx := context.Background()

	p := &models.Post{Title: "t", Description: "description", Category: "c", UserID: "owner"}
	require.NoError(t, s.Posts.Create(ctx, p))

	got, err := s.Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	got, err = s.Posts.ToggleLike(ctx, p.ID, "liker")
	require.NoError(t, err)
	assert.Equal(t, []string{"liker"}, got.Likes)

	got, err = s.Posts.ToggleLike(ctx, p.ID, "other")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"liker", "other"}, got.Likes)

	got, err = s.Posts.ToggleLike(ctx, p.ID, "liker")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, got.Likes)

	_, err = s.Posts.ToggleLike(ctx, "00000000-0000-0000-0000-000000000000", "liker")
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
}

func testComments(t *testing.T, s *repositories.Store) {
	ctx := context.Background()

	c1 := &models.Comment{PostID: "post-1", UserID: "user-1", Text: "first", Username: "u1"}
	c2 := &models.Comment{PostID: "post-1", UserID: "user-2", Text: "second", Username: "u2"}
	c3 := &models.Comment{PostID: "post-2", UserID: "user-1", Text: "third", Username: "u1"}
	for _, c := range []*models.Comment{c1, c2, c3} {
		require.NoError(t, s.Comments.Create(ctx, c))
	}

	byPost, err := s.Comments.FindByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Len(t, byPost, 2)

	all, err := s.Comments.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	updated, err := s.Comments.UpdateText(ctx, c1.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	n, err := s.Comments.DeleteByPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Comments.DeleteByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Comments.FindByID(ctx, c3.ID)
	assert.ErrorIs(t, err, repositories.ErrCommentNotFound)
	assert.ErrorIs(t, s.Comments.Delete(ctx, c3.ID), repositories.ErrCommentNotFound)
}

func testCategories(t *testing.T, s *repositories.Store) {
	ctx := context.Background()

	c := &models.Category{UserID: "admin", Title: "golang"}
	require.NoError(t, s.Categories.Create(ctx, c))

	got, err := s.Categories.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang", got.Title)

	all, err := s.Categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Categories.Delete(ctx, c.ID))
	assert.ErrorIs(t, s.Categories.Delete(ctx, c.ID), repositories.ErrCategoryNotFound)
}
