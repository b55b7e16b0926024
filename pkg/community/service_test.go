package community

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/database"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type mockUploader struct {
	uploadErr error
	lastKey   string
	lastType  string
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	m.lastKey = key
	m.lastType = contentType
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return "https://cdn.example.com/" + key, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         "Poster",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateAndGetPost(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "First session done!"}, "")
	require.NoError(t, err)

	got, comments, err := service.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First session done!", got.Body)
	assert.Empty(t, comments)
}

func TestUploadMedia(t *testing.T) {
	db := setupTestDB(t)
	uploader := &mockUploader{}
	service := NewService(db, uploader)

	url, err := service.UploadMedia(context.Background(), "image/png", "photo.png", strings.NewReader("bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uploader.lastKey, "posts/"))
	assert.True(t, strings.HasSuffix(uploader.lastKey, ".png"))
	assert.Equal(t, "image/png", uploader.lastType)
	assert.Contains(t, url, uploader.lastKey)
}

func TestUploadMediaStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{uploadErr: errors.New("bucket unavailable")})

	_, err := service.UploadMedia(context.Background(), "image/png", "photo.png", strings.NewReader("bytes"))
	require.Error(t, err)
	assert.True(t, domain.IsExternalService(err))
}

func TestListPostsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)

	for i := 0; i < 3; i++ {
		_, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: fmt.Sprintf("post %d", i)}, "")
		require.NoError(t, err)
	}

	posts, err := service.ListPosts(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, err = service.ListPosts(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)
	other := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "mine"}, "")
	require.NoError(t, err)

	err = service.DeletePost(context.Background(), post.ID, other.ID)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	require.NoError(t, service.DeletePost(context.Background(), post.ID, author.ID))

	_, _, err = service.GetPost(context.Background(), post.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)
	fan := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "cascade"}, "")
	require.NoError(t, err)

	_, err = service.React(context.Background(), post.ID, fan.ID, "fire")
	require.NoError(t, err)
	_, err = service.Comment(context.Background(), post.ID, fan.ID, models.CreateCommentRequest{Body: "nice"})
	require.NoError(t, err)

	require.NoError(t, service.DeletePost(context.Background(), post.ID, author.ID))

	var reactions, comments int64
	require.NoError(t, db.Model(&models.Reaction{}).Where("post_id = ?", post.ID).Count(&reactions).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, reactions)
	assert.Zero(t, comments)
}

func TestReactReplaceAndToggle(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)
	fan := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "react to me"}, "")
	require.NoError(t, err)

	// First reaction creates a row
	reaction, err := service.React(context.Background(), post.ID, fan.ID, "like")
	require.NoError(t, err)
	require.NotNil(t, reaction)
	assert.Equal(t, "like", reaction.Kind)

	// A different kind replaces it, never adds a second row
	reaction, err = service.React(context.Background(), post.ID, fan.ID, "fire")
	require.NoError(t, err)
	require.NotNil(t, reaction)
	assert.Equal(t, "fire", reaction.Kind)

	counts, err := service.Reactions(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"fire": 1}, counts)

	// Repeating the same kind removes the reaction
	reaction, err = service.React(context.Background(), post.ID, fan.ID, "fire")
	require.NoError(t, err)
	assert.Nil(t, reaction)

	counts, err = service.Reactions(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestReactUnknownPost(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	fan := createTestUser(t, db)

	_, err := service.React(context.Background(), uuid.New(), fan.ID, "like")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestReactionCountsPerKind(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "popular"}, "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		fan := createTestUser(t, db)
		_, err = service.React(context.Background(), post.ID, fan.ID, "like")
		require.NoError(t, err)
	}
	fan := createTestUser(t, db)
	_, err = service.React(context.Background(), post.ID, fan.ID, "muscle")
	require.NoError(t, err)

	counts, err := service.Reactions(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"like": 2, "muscle": 1}, counts)
}

func TestCommentAndDelete(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	author := createTestUser(t, db)
	commenter := createTestUser(t, db)

	post, err := service.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Body: "discuss"}, "")
	require.NoError(t, err)

	comment, err := service.Comment(context.Background(), post.ID, commenter.ID, models.CreateCommentRequest{Body: "great work"})
	require.NoError(t, err)

	// Only the comment author may delete it
	err = service.DeleteComment(context.Background(), comment.ID, author.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, service.DeleteComment(context.Background(), comment.ID, commenter.ID))

	_, comments, err := service.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentUnknownPost(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, &mockUploader{})
	commenter := createTestUser(t, db)

	_, err := service.Comment(context.Background(), uuid.New(), commenter.ID, models.CreateCommentRequest{Body: "hello?"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
