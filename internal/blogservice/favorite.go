package blogservice

import (
	"context"
	"fmt"
)

func (m *BlogModel) favoriteBlog(ctx context.Context, userID, blogID int64) error {
	if err := m.checkActiveApprovedBlog(ctx, blogID); err != nil {
		return err
	}

	query := `
		INSERT INTO favorite_blogs (user_id, blog_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, blog_id) DO UPDATE SET deleted = false`

	_, err := m.db.ExecContext(ctx, query, userID, blogID)
	if err != nil {
		switch {
		case ForeignKeyError(err, "favorite_blogs_user_id_fkey"):
			return ErrAuthorNotFound
		case ForeignKeyError(err, "favorite_blogs_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) unfavoriteBlog(ctx context.Context, userID, blogID int64) error {
	query := `
		UPDATE favorite_blogs
		SET deleted = true
		WHERE user_id = $1 AND blog_id = $2 AND NOT deleted`

	_, err := m.db.ExecContext(ctx, query, userID, blogID)
	return err
}

func (m *BlogModel) isBlogFavorited(ctx context.Context, userID, blogID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM favorite_blogs
			WHERE user_id = $1 AND blog_id = $2 AND NOT deleted
		)`

	var favorited bool
	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&favorited)
	return favorited, err
}

// getFavoriteBlogs lists a user's active favorites whose blogs are still
// approved and active, most recently favorited first.
func (m *BlogModel) getFavoriteBlogs(ctx context.Context, userID int64) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM favorite_blogs f
		JOIN blogs b ON b.id = f.blog_id
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		WHERE f.user_id = $1 AND NOT f.deleted
			AND b.status = 'APPROVED' AND NOT b.deleted
		ORDER BY f.updated_at DESC, f.id DESC`, blogColumns)

	return m.queryBlogs(ctx, query, userID)
}
