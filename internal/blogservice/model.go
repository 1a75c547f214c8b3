package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrAuthorNotFound = errors.New("author does not exist")
	ErrCityNotFound   = errors.New("city does not exist")
	ErrNotOwner       = errors.New("not the blog author")
	ErrEditConflict   = errors.New("edit conflict")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// blogColumns is the select list shared by every blog query. Keep it in sync
// with scanBlog.
const blogColumns = `
	b.id, b.title, b.main_photo_url, b.paragraph1, b.paragraph2, b.paragraph3,
	b.mid_photo1_url, b.mid_photo2_url, b.mid_photo3_url, b.side_photo_url,
	b.city_id, c.name, b.author_id, u.name, b.status, b.review_note,
	b.best_time_start_month, b.best_time_end_month,
	b.created_at, b.updated_at, b.version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (*Blog, error) {
	var b Blog
	err := row.Scan(
		&b.ID, &b.Title, &b.MainPhotoURL, &b.Paragraph1, &b.Paragraph2, &b.Paragraph3,
		&b.MidPhoto1URL, &b.MidPhoto2URL, &b.MidPhoto3URL, &b.SidePhotoURL,
		&b.CityID, &b.CityName, &b.AuthorID, &b.AuthorName, &b.Status, &b.ReviewNote,
		&b.BestTimeStartMonth, &b.BestTimeEndMonth,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (m *BlogModel) insert(ctx context.Context, b *Blog, categoryIDs []int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO blogs (title, main_photo_url, paragraph1, paragraph2, paragraph3,
			mid_photo1_url, mid_photo2_url, mid_photo3_url, side_photo_url,
			city_id, author_id, best_time_start_month, best_time_end_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, status, created_at, updated_at, version`

	args := []any{
		b.Title, b.MainPhotoURL, b.Paragraph1, b.Paragraph2, b.Paragraph3,
		b.MidPhoto1URL, b.MidPhoto2URL, b.MidPhoto3URL, b.SidePhotoURL,
		b.CityID, b.AuthorID, b.BestTimeStartMonth, b.BestTimeEndMonth,
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case ForeignKeyError(err, "blogs_author_id_fkey"):
			return ErrAuthorNotFound
		case ForeignKeyError(err, "blogs_city_id_fkey"):
			return ErrCityNotFound
		default:
			return err
		}
	}

	if err := m.setCategories(tx, ctx, b.ID, categoryIDs); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (m *BlogModel) setCategories(tx *sql.Tx, ctx context.Context, blogID int64, categoryIDs []int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM blog_categories WHERE blog_id = $1`, blogID)
	if err != nil {
		return err
	}

	for _, id := range categoryIDs {
		_, err := tx.ExecContext(ctx, `INSERT INTO blog_categories (blog_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, blogID, id)
		if err != nil {
			return err
		}
	}

	return nil
}

// getBlogByID returns an active blog regardless of status. Callers decide
// whether non-approved blogs may be shown.
func (m *BlogModel) getBlogByID(ctx context.Context, id int64) (*Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		WHERE b.id = $1 AND NOT b.deleted`, blogColumns)

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, b *Blog, categoryIDs []int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		UPDATE blogs
		SET title = $1, main_photo_url = $2, paragraph1 = $3, paragraph2 = $4,
			paragraph3 = $5, mid_photo1_url = $6, mid_photo2_url = $7,
			mid_photo3_url = $8, side_photo_url = $9, city_id = $10,
			best_time_start_month = $11, best_time_end_month = $12,
			version = version + 1
		WHERE id = $13 AND author_id = $14 AND version = $15 AND NOT deleted
		RETURNING version, updated_at`

	args := []any{
		b.Title, b.MainPhotoURL, b.Paragraph1, b.Paragraph2, b.Paragraph3,
		b.MidPhoto1URL, b.MidPhoto2URL, b.MidPhoto3URL, b.SidePhotoURL,
		b.CityID, b.BestTimeStartMonth, b.BestTimeEndMonth,
		b.ID, b.AuthorID, b.Version,
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&b.Version, &b.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		case ForeignKeyError(err, "blogs_city_id_fkey"):
			return ErrCityNotFound
		default:
			return err
		}
	}

	if categoryIDs != nil {
		if err := m.setCategories(tx, ctx, b.ID, categoryIDs); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (m *BlogModel) softDeleteBlog(ctx context.Context, id int64) error {
	query := `
		UPDATE blogs
		SET deleted = true
		WHERE id = $1 AND NOT deleted`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *BlogModel) getBlogsByAuthor(ctx context.Context, authorID int64) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		WHERE b.author_id = $1 AND NOT b.deleted
		ORDER BY b.created_at DESC`, blogColumns)

	return m.queryBlogs(ctx, query, authorID)
}

func (m *BlogModel) getApprovedBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		WHERE b.status = 'APPROVED' AND NOT b.deleted
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`, blogColumns)

	return m.queryBlogs(ctx, query, limit, offset)
}

func (m *BlogModel) getPendingBlogs(ctx context.Context) ([]Blog, error) {
	// oldest first: review queue order
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		WHERE b.status = 'PENDING' AND NOT b.deleted
		ORDER BY b.created_at ASC, b.id ASC`, blogColumns)

	return m.queryBlogs(ctx, query)
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) getBlogCategories(ctx context.Context, blogID int64) ([]Category, error) {
	query := `
		SELECT c.id, c.name
		FROM categories c
		JOIN blog_categories bc ON bc.category_id = c.id
		WHERE bc.blog_id = $1
		ORDER BY c.name`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (m *BlogModel) getCities(ctx context.Context) ([]City, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name FROM cities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}

func (m *BlogModel) getCategories(ctx context.Context) ([]Category, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
