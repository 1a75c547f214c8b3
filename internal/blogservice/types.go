package blogservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/minthway/wayfarer/internal/common"
)

// BlogStatus is the moderation state of a blog. New blogs always start
// PENDING; only admins move them on.
type BlogStatus string

const (
	StatusPending  BlogStatus = "PENDING"
	StatusApproved BlogStatus = "APPROVED"
	StatusRejected BlogStatus = "REJECTED"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ImageStore is the image-hosting collaborator: content in, public URL out.
// Deletion is best effort and must never block the primary operation.
type ImageStore interface {
	Upload(ctx context.Context, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

type Blog struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	MainPhotoURL       *string    `json:"main_photo_url"`
	Paragraph1         string     `json:"paragraph1"`
	Paragraph2         *string    `json:"paragraph2,omitempty"`
	Paragraph3         *string    `json:"paragraph3,omitempty"`
	MidPhoto1URL       *string    `json:"mid_photo1_url,omitempty"`
	MidPhoto2URL       *string    `json:"mid_photo2_url,omitempty"`
	MidPhoto3URL       *string    `json:"mid_photo3_url,omitempty"`
	SidePhotoURL       *string    `json:"side_photo_url,omitempty"`
	CityID             *int64     `json:"city_id,omitempty"`
	CityName           *string    `json:"city_name,omitempty"`
	AuthorID           int64      `json:"author_id"`
	AuthorName         string     `json:"author_name"`
	Status             BlogStatus `json:"status"`
	ReviewNote         *string    `json:"review_note,omitempty"`
	BestTimeStartMonth *int       `json:"best_time_start_month,omitempty"`
	BestTimeEndMonth   *int       `json:"best_time_end_month,omitempty"`
	Categories         []Category `json:"categories"`
	LikeCount          int64      `json:"like_count"`

	// Liked and Favorited are tri-state: nil means the caller was
	// anonymous, which is distinct from a known non-interaction.
	Liked     *bool `json:"liked,omitempty"`
	Favorited *bool `json:"favorited,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FeaturedPage is one cursor page of the featured feed. NextCursor is the id
// of the last blog in Content and is only set when HasNext.
type FeaturedPage struct {
	Content    []Blog  `json:"content"`
	NextCursor *string `json:"next_cursor"`
	HasNext    bool    `json:"has_next"`
	PageSize   int     `json:"page_size"`
}

type LikeStatus struct {
	BlogID    int64 `json:"blog_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type FavoriteStatus struct {
	BlogID    int64  `json:"blog_id"`
	Favorited bool   `json:"favorited"`
	Message   string `json:"message"`
}

type Photo struct {
	Content     []byte
	ContentType string
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	c      *common.Cache
	images ImageStore
}
