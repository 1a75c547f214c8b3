package blogservice

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// getFeaturedBlogs returns approved blogs ordered by active like count, ties
// broken by newest id. afterID is the exclusive lower bound on id from the
// previous page; nil means start from the top. One extra row is fetched so the
// caller can tell whether another page exists.
func (m *BlogModel) getFeaturedBlogs(ctx context.Context, afterID *int64, limit int) ([]Blog, []int64, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(bl.id) AS like_count
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		LEFT JOIN cities c ON c.id = b.city_id
		LEFT JOIN blog_likes bl ON bl.blog_id = b.id AND NOT bl.deleted
		WHERE b.status = 'APPROVED' AND NOT b.deleted
			AND ($1::bigint IS NULL OR b.id < $1)
		GROUP BY b.id, c.name, u.name
		ORDER BY like_count DESC, b.id DESC
		LIMIT $2`, blogColumns)

	var cursor sql.NullInt64
	if afterID != nil {
		cursor = sql.NullInt64{Int64: *afterID, Valid: true}
	}

	rows, err := m.db.QueryContext(ctx, query, cursor, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var blogs []Blog
	var likeCounts []int64
	for rows.Next() {
		var b Blog
		var likes int64
		err := rows.Scan(
			&b.ID, &b.Title, &b.MainPhotoURL, &b.Paragraph1, &b.Paragraph2, &b.Paragraph3,
			&b.MidPhoto1URL, &b.MidPhoto2URL, &b.MidPhoto3URL, &b.SidePhotoURL,
			&b.CityID, &b.CityName, &b.AuthorID, &b.AuthorName, &b.Status, &b.ReviewNote,
			&b.BestTimeStartMonth, &b.BestTimeEndMonth,
			&b.CreatedAt, &b.UpdatedAt, &b.Version,
			&likes,
		)
		if err != nil {
			return nil, nil, err
		}
		blogs = append(blogs, b)
		likeCounts = append(likeCounts, likes)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return blogs, likeCounts, nil
}

// parseCursor decodes an opaque feed cursor. Anything that does not parse as a
// positive integer is treated the same as no cursor at all.
func parseCursor(cursor string) *int64 {
	if cursor == "" {
		return nil
	}

	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	return &id
}

func encodeCursor(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}
