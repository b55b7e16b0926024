package community

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/jordanlanch/trainhub/pkg/storage"
	"gorm.io/gorm"
)

// Service handles community posts, reactions and comments
type Service struct {
	db       *gorm.DB
	uploader storage.Uploader
}

// NewService creates a new community service
func NewService(db *gorm.DB, uploader storage.Uploader) *Service {
	return &Service{db: db, uploader: uploader}
}

// UploadMedia stores a post attachment and returns its public URL
func (s *Service) UploadMedia(ctx context.Context, contentType, filename string, body io.Reader) (string, error) {
	key := fmt.Sprintf("posts/%s%s", uuid.NewString(), path.Ext(filename))
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", domain.NewExternalServiceError("storage", err)
	}
	return url, nil
}

// CreatePost publishes a post, optionally with an uploaded media URL
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, req models.CreatePostRequest, mediaURL string) (*models.Post, error) {
	post := &models.Post{
		AuthorID: authorID,
		Body:     req.Body,
		MediaURL: mediaURL,
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return post, nil
}

// ListPosts returns the community feed, newest first
func (s *Service) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var posts []models.Post
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return posts, nil
}

// GetPost retrieves a single post with its comments
func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, []models.Comment, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.NewNotFoundError("post")
		}
		return nil, nil, domain.NewInternalError(err)
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at").
		Find(&comments).Error; err != nil {
		return nil, nil, domain.NewInternalError(err)
	}

	return &post, comments, nil
}

// DeletePost removes a post and its reactions and comments. Author only.
func (s *Service) DeletePost(ctx context.Context, postID, callerID uuid.UUID) error {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("post")
		}
		return domain.NewInternalError(err)
	}
	if post.AuthorID != callerID {
		return domain.NewForbiddenError("only the author can delete this post")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Reaction{}).Error; err != nil {
			return domain.NewInternalError(err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return domain.NewInternalError(err)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return domain.NewInternalError(err)
		}
		return nil
	})
}

// React records the user's reaction on a post. A user holds at most one
// reaction per post; reacting again with a different kind replaces the
// previous one, and repeating the same kind removes it.
func (s *Service) React(ctx context.Context, postID, userID uuid.UUID, kind string) (*models.Reaction, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if count == 0 {
		return nil, domain.NewNotFoundError("post")
	}

	var existing models.Reaction
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.Kind == kind {
			if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
				return nil, domain.NewInternalError(err)
			}
			return nil, nil
		}
		if err := s.db.WithContext(ctx).Model(&existing).Update("kind", kind).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
		existing.Kind = kind
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := &models.Reaction{
			PostID: postID,
			UserID: userID,
			Kind:   kind,
		}
		if err := s.db.WithContext(ctx).Create(reaction).Error; err != nil {
			return nil, domain.NewInternalError(err)
		}
		return reaction, nil
	default:
		return nil, domain.NewInternalError(err)
	}
}

// Reactions returns the per-kind reaction counts for a post
func (s *Service) Reactions(ctx context.Context, postID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Kind  string
		Total int64
	}

	var rows []row
	if err := s.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("kind, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Total
	}
	return counts, nil
}

// Comment adds a comment to a post
func (s *Service) Comment(ctx context.Context, postID, authorID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if count == 0 {
		return nil, domain.NewNotFoundError("post")
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: authorID,
		Body:   req.Body,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	return comment, nil
}

// DeleteComment removes a comment. Author only.
func (s *Service) DeleteComment(ctx context.Context, commentID, callerID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, callerID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return domain.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("comment")
	}
	return nil
}
