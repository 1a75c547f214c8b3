package blogservice

import (
	"context"
	"database/sql"
	"errors"
)

// likeBlog records a like, reviving a previously removed one. Idempotent: a
// second like by the same user is a no-op.
func (m *BlogModel) likeBlog(ctx context.Context, userID, blogID int64) error {
	if err := m.checkActiveApprovedBlog(ctx, blogID); err != nil {
		return err
	}

	query := `
		INSERT INTO blog_likes (user_id, blog_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, blog_id) DO UPDATE SET deleted = false`

	_, err := m.db.ExecContext(ctx, query, userID, blogID)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blog_likes_user_id_fkey"):
			return ErrAuthorNotFound
		case ForeignKeyError(err, "blog_likes_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) unlikeBlog(ctx context.Context, userID, blogID int64) error {
	query := `
		UPDATE blog_likes
		SET deleted = true
		WHERE user_id = $1 AND blog_id = $2 AND NOT deleted`

	_, err := m.db.ExecContext(ctx, query, userID, blogID)
	return err
}

func (m *BlogModel) isBlogLiked(ctx context.Context, userID, blogID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blog_likes
			WHERE user_id = $1 AND blog_id = $2 AND NOT deleted
		)`

	var liked bool
	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&liked)
	return liked, err
}

// countBlogLikes counts active likes on an active blog. Likes on a removed
// blog do not count toward anything.
func (m *BlogModel) countBlogLikes(ctx context.Context, blogID int64) (int64, error) {
	query := `
		SELECT COUNT(bl.id)
		FROM blog_likes bl
		JOIN blogs b ON b.id = bl.blog_id AND NOT b.deleted
		WHERE bl.blog_id = $1 AND NOT bl.deleted`

	var count int64
	err := m.db.QueryRowContext(ctx, query, blogID).Scan(&count)
	return count, err
}

// checkActiveApprovedBlog verifies the blog can receive likes or favorites.
func (m *BlogModel) checkActiveApprovedBlog(ctx context.Context, blogID int64) error {
	query := `
		SELECT status FROM blogs
		WHERE id = $1 AND NOT deleted`

	var status BlogStatus
	err := m.db.QueryRowContext(ctx, query, blogID).Scan(&status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	if status != StatusApproved {
		return ErrRecordNotFound
	}

	return nil
}
