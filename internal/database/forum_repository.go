package database

import (
	"context"
	"fmt"

	"github.com/example/learnpath/pkg/models"
)

// ForumRepository handles forum posts and replies
type ForumRepository struct{}

// NewForumRepository creates a new repository instance
func NewForumRepository() *ForumRepository {
	return &ForumRepository{}
}

// CreatePost inserts a new post
func (r *ForumRepository) CreatePost(ctx context.Context, post *models.ForumPost) error {
	post.CreatedAt = now()
	id, err := insert(ctx,
		"INSERT INTO forum_posts (title, content, user_id, course_id, created_at) VALUES (?, ?, ?, ?, ?)",
		post.Title, post.Content, post.UserID, post.CourseID, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create forum post: %w", err)
	}
	post.ID = id
	return nil
}

// GetPost returns a post with its author name
func (r *ForumRepository) GetPost(ctx context.Context, id int64) (*models.ForumPost, error) {
	var post models.ForumPost
	err := DB.GetContext(ctx, &post, DB.Rebind(`
		SELECT p.id, p.title, p.content, p.user_id, u.username AS author, p.course_id, p.created_at
		FROM forum_posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ?`), id)
	if err != nil {
		return nil, notFound(err, "forum post")
	}
	return &post, nil
}

// ListPosts returns posts newest first
func (r *ForumRepository) ListPosts(ctx context.Context) ([]models.ForumPost, error) {
	posts := []models.ForumPost{}
	err := DB.SelectContext(ctx, &posts, `
		SELECT p.id, p.title, p.content, p.user_id, u.username AS author, p.course_id, p.created_at
		FROM forum_posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get forum posts: %w", err)
	}
	return posts, nil
}

// CreateReply inserts a reply to a post
func (r *ForumRepository) CreateReply(ctx context.Context, reply *models.ForumReply) error {
	reply.CreatedAt = now()
	id, err := insert(ctx,
		"INSERT INTO forum_replies (content, user_id, post_id, created_at) VALUES (?, ?, ?, ?)",
		reply.Content, reply.UserID, reply.PostID, reply.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create forum reply: %w", err)
	}
	reply.ID = id
	return nil
}

// Replies returns the replies of a post oldest first
func (r *ForumRepository) Replies(ctx context.Context, postID int64) ([]models.ForumReply, error) {
	replies := []models.ForumReply{}
	err := DB.SelectContext(ctx, &replies, DB.Rebind(`
		SELECT r.id, r.content, r.user_id, u.username AS author, r.post_id, r.created_at
		FROM forum_replies r
		JOIN users u ON u.id = r.user_id
		WHERE r.post_id = ?
		ORDER BY r.created_at, r.id`), postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get forum replies: %w", err)
	}
	return replies, nil
}
