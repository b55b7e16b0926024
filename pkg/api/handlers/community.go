package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/trainhub/pkg/api/errors"
	"github.com/jordanlanch/trainhub/pkg/community"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
)

// CommunityHandler handles posts, reactions and comments
type CommunityHandler struct {
	posts     *community.Service
	validator *validator.Validate
	errs      *errors.Mapper
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(posts *community.Service, errs *errors.Mapper) *CommunityHandler {
	return &CommunityHandler{
		posts:     posts,
		validator: validator.New(),
		errs:      errs,
	}
}

// CreatePost publishes a post. Accepts multipart form data with an
// optional media file.
func (h *CommunityHandler) CreatePost(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	media, mediaType, mediaName, err := formUpload(c, "media")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	var mediaURL string
	if media != nil {
		defer media.Close()
		mediaURL, err = h.posts.UploadMedia(c.Request().Context(), mediaType, mediaName, media)
		if err != nil {
			return h.errs.Respond(c, err)
		}
	}

	post, err := h.posts.CreatePost(c.Request().Context(), userID, req, mediaURL)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, post)
}

// ListPosts returns the community feed
func (h *CommunityHandler) ListPosts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	posts, err := h.posts.ListPosts(c.Request().Context(), limit, offset)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post with its comments and reaction counts
func (h *CommunityHandler) GetPost(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	post, comments, err := h.posts.GetPost(c.Request().Context(), id)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	reactions, err := h.posts.Reactions(c.Request().Context(), id)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"post":      post,
		"comments":  comments,
		"reactions": reactions,
	})
}

// DeletePost removes a post
func (h *CommunityHandler) DeletePost(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.posts.DeletePost(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// React sets, replaces or removes the caller's reaction on a post
func (h *CommunityHandler) React(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	reaction, err := h.posts.React(c.Request().Context(), id, userID, req.Kind)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	if reaction == nil {
		return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "reaction removed"})
	}

	return c.JSON(http.StatusOK, reaction)
}

// Comment adds a comment to a post
func (h *CommunityHandler) Comment(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return h.errs.Validation(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errs.Validation(c, err)
	}

	comment, err := h.posts.Comment(c.Request().Context(), id, userID, req)
	if err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment
func (h *CommunityHandler) DeleteComment(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseUUIDParam(c, "commentId")
	if err != nil {
		return h.errs.Validation(c, err)
	}

	if err := h.posts.DeleteComment(c.Request().Context(), id, userID); err != nil {
		return h.errs.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
