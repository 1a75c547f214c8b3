package blogservice

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/minthway/wayfarer/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache, images ImageStore) *BlogService {
	return &BlogService{
		m:      newBlogModel(db),
		c:      c,
		images: images,
	}
}

type CreateBlogInput struct {
	Title              string
	Paragraph1         string
	Paragraph2         *string
	Paragraph3         *string
	CityID             *int64
	CategoryIDs        []int64
	BestTimeStartMonth *int
	BestTimeEndMonth   *int
	MainPhoto          *Photo
	MidPhoto1          *Photo
	MidPhoto2          *Photo
	MidPhoto3          *Photo
	SidePhoto          *Photo
}

// CreateBlog uploads the attached photos and stores a new blog in PENDING
// state. The author must already be allowed to write blogs; callers enforce
// that before getting here.
func (s *BlogService) CreateBlog(ctx context.Context, authorID int64, input CreateBlogInput) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, input.Title)
	validateParagraph(v, input.Paragraph1)
	validateBestTime(v, input.BestTimeStartMonth, input.BestTimeEndMonth)
	validateCategoryIDs(v, input.CategoryIDs)
	if input.CityID != nil {
		validateID(v, *input.CityID, "city_id")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	uploaded := []string{}
	uploadPhoto := func(p *Photo) (*string, error) {
		if p == nil {
			return nil, nil
		}
		url, err := s.images.Upload(ctx, p.Content, p.ContentType)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, url)
		return &url, nil
	}

	cleanup := func() {
		for _, url := range uploaded {
			if err := s.images.Delete(context.WithoutCancel(ctx), url); err != nil {
				slog.Warn("could not remove uploaded photo", slog.String("url", url), slog.Any("error", err))
			}
		}
	}

	blog := &Blog{
		Title:              sanitizeText(input.Title),
		Paragraph1:         sanitizeText(input.Paragraph1),
		Paragraph2:         sanitizeTextPtr(input.Paragraph2),
		Paragraph3:         sanitizeTextPtr(input.Paragraph3),
		CityID:             input.CityID,
		AuthorID:           authorID,
		BestTimeStartMonth: input.BestTimeStartMonth,
		BestTimeEndMonth:   input.BestTimeEndMonth,
	}

	var err error
	if blog.MainPhotoURL, err = uploadPhoto(input.MainPhoto); err != nil {
		cleanup()
		return nil, err
	}
	if blog.MidPhoto1URL, err = uploadPhoto(input.MidPhoto1); err != nil {
		cleanup()
		return nil, err
	}
	if blog.MidPhoto2URL, err = uploadPhoto(input.MidPhoto2); err != nil {
		cleanup()
		return nil, err
	}
	if blog.MidPhoto3URL, err = uploadPhoto(input.MidPhoto3); err != nil {
		cleanup()
		return nil, err
	}
	if blog.SidePhotoURL, err = uploadPhoto(input.SidePhoto); err != nil {
		cleanup()
		return nil, err
	}

	if err := s.m.insert(ctx, blog, input.CategoryIDs); err != nil {
		cleanup()
		return nil, err
	}

	return s.decorate(ctx, blog, &authorID)
}

// GetBlog returns a single active blog. Non-approved blogs are only visible
// to their author and to admins.
func (s *BlogService) GetBlog(ctx context.Context, id int64, requesterID *int64, requesterIsAdmin bool) (*Blog, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.Status != StatusApproved {
		isAuthor := requesterID != nil && *requesterID == blog.AuthorID
		if !isAuthor && !requesterIsAdmin {
			return nil, ErrRecordNotFound
		}
	}

	return s.decorate(ctx, blog, requesterID)
}

type UpdateBlogInput struct {
	Title              *string
	Paragraph1         *string
	Paragraph2         *string
	Paragraph3         *string
	CityID             *int64
	CategoryIDs        []int64
	BestTimeStartMonth *int
	BestTimeEndMonth   *int
}

// UpdateBlog applies a partial update on behalf of the blog's author.
func (s *BlogService) UpdateBlog(ctx context.Context, authorID, id int64, input UpdateBlogInput) (*Blog, error) {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.AuthorID != authorID {
		return nil, ErrNotOwner
	}

	if input.Title != nil {
		blog.Title = sanitizeText(*input.Title)
	}
	if input.Paragraph1 != nil {
		blog.Paragraph1 = sanitizeText(*input.Paragraph1)
	}
	if input.Paragraph2 != nil {
		blog.Paragraph2 = sanitizeTextPtr(input.Paragraph2)
	}
	if input.Paragraph3 != nil {
		blog.Paragraph3 = sanitizeTextPtr(input.Paragraph3)
	}
	if input.CityID != nil {
		blog.CityID = input.CityID
	}
	if input.BestTimeStartMonth != nil {
		blog.BestTimeStartMonth = input.BestTimeStartMonth
	}
	if input.BestTimeEndMonth != nil {
		blog.BestTimeEndMonth = input.BestTimeEndMonth
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateParagraph(v, blog.Paragraph1)
	validateBestTime(v, blog.BestTimeStartMonth, blog.BestTimeEndMonth)
	validateCategoryIDs(v, input.CategoryIDs)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updateBlog(ctx, blog, input.CategoryIDs); err != nil {
		return nil, err
	}

	return s.decorate(ctx, blog, &authorID)
}

// DeleteBlog soft deletes a blog. The author may remove their own blog;
// admins may remove any.
func (s *BlogService) DeleteBlog(ctx context.Context, requesterID, id int64, requesterIsAdmin bool) error {
	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.AuthorID != requesterID && !requesterIsAdmin {
		return ErrNotOwner
	}

	if err := s.m.softDeleteBlog(ctx, id); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyLikeCount(id))

	// remote photos are cleaned up best effort; the blog row is already gone
	for _, url := range []*string{blog.MainPhotoURL, blog.MidPhoto1URL, blog.MidPhoto2URL, blog.MidPhoto3URL, blog.SidePhotoURL} {
		if url == nil {
			continue
		}
		if err := s.images.Delete(context.WithoutCancel(ctx), *url); err != nil {
			slog.Warn("could not remove blog photo", slog.String("url", *url), slog.Any("error", err))
		}
	}

	return nil
}

func (s *BlogService) GetBlogsByAuthor(ctx context.Context, authorID int64, requesterID *int64) ([]Blog, error) {
	blogs, err := s.m.getBlogsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	// author listings hide other people's unpublished drafts
	isAuthor := requesterID != nil && *requesterID == authorID
	visible := blogs[:0]
	for _, b := range blogs {
		if b.Status == StatusApproved || isAuthor {
			visible = append(visible, b)
		}
	}

	return s.decorateAll(ctx, visible, requesterID)
}

// GetNewBlogs lists approved blogs newest first.
func (s *BlogService) GetNewBlogs(ctx context.Context, limit, offset int, requesterID *int64) ([]Blog, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	blogs, err := s.m.getApprovedBlogs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return s.decorateAll(ctx, blogs, requesterID)
}

// ListPendingBlogs returns the moderation queue, oldest submission first.
func (s *BlogService) ListPendingBlogs(ctx context.Context) ([]Blog, error) {
	blogs, err := s.m.getPendingBlogs(ctx)
	if err != nil {
		return nil, err
	}

	return s.decorateAll(ctx, blogs, nil)
}

// GetFeaturedBlogs returns one page of the featured feed: approved blogs
// ordered by like count, ties broken by newest id. An unparsable cursor is
// treated as absent rather than rejected.
func (s *BlogService) GetFeaturedBlogs(ctx context.Context, cursor string, pageSize int, requesterID *int64) (*FeaturedPage, error) {
	pageSize = clampPageSize(pageSize)
	afterID := parseCursor(cursor)

	// one extra row tells us whether a next page exists
	blogs, likeCounts, err := s.m.getFeaturedBlogs(ctx, afterID, pageSize+1)
	if err != nil {
		return nil, err
	}

	hasNext := len(blogs) > pageSize
	if hasNext {
		blogs = blogs[:pageSize]
		likeCounts = likeCounts[:pageSize]
	}

	page := &FeaturedPage{
		Content:  []Blog{},
		HasNext:  hasNext,
		PageSize: pageSize,
	}

	for i := range blogs {
		blogs[i].LikeCount = likeCounts[i]
		decorated, err := s.decorateInteractions(ctx, &blogs[i], requesterID)
		if err != nil {
			return nil, err
		}
		page.Content = append(page.Content, *decorated)
	}

	if hasNext && len(page.Content) > 0 {
		page.NextCursor = encodeCursor(page.Content[len(page.Content)-1].ID)
	}

	return page, nil
}

// LikeBlog records a like on an approved blog. Liking twice is a no-op.
func (s *BlogService) LikeBlog(ctx context.Context, userID, blogID int64) (*LikeStatus, error) {
	if err := s.m.likeBlog(ctx, userID, blogID); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyLikeCount(blogID))
	count, err := s.likeCount(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return &LikeStatus{BlogID: blogID, Liked: true, LikeCount: count}, nil
}

func (s *BlogService) UnlikeBlog(ctx context.Context, userID, blogID int64) (*LikeStatus, error) {
	if err := s.m.unlikeBlog(ctx, userID, blogID); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyLikeCount(blogID))
	count, err := s.likeCount(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return &LikeStatus{BlogID: blogID, Liked: false, LikeCount: count}, nil
}

func (s *BlogService) FavoriteBlog(ctx context.Context, userID, blogID int64) (*FavoriteStatus, error) {
	if err := s.m.favoriteBlog(ctx, userID, blogID); err != nil {
		return nil, err
	}

	return &FavoriteStatus{BlogID: blogID, Favorited: true, Message: "blog added to favorites"}, nil
}

func (s *BlogService) UnfavoriteBlog(ctx context.Context, userID, blogID int64) (*FavoriteStatus, error) {
	if err := s.m.unfavoriteBlog(ctx, userID, blogID); err != nil {
		return nil, err
	}

	return &FavoriteStatus{BlogID: blogID, Favorited: false, Message: "blog removed from favorites"}, nil
}

func (s *BlogService) GetFavoriteBlogs(ctx context.Context, userID int64) ([]Blog, error) {
	blogs, err := s.m.getFavoriteBlogs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.decorateAll(ctx, blogs, &userID)
}

func (s *BlogService) GetCities(ctx context.Context) ([]City, error) {
	if cached, ok := s.c.Get(common.CacheKeyCities()); ok {
		if cities, ok := cached.([]City); ok {
			return cities, nil
		}
	}

	cities, err := s.m.getCities(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyCities(), cities)
	return cities, nil
}

func (s *BlogService) GetCategories(ctx context.Context) ([]Category, error) {
	if cached, ok := s.c.Get(common.CacheKeyCategories()); ok {
		if categories, ok := cached.([]Category); ok {
			return categories, nil
		}
	}

	categories, err := s.m.getCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyCategories(), categories)
	return categories, nil
}

func (s *BlogService) likeCount(ctx context.Context, blogID int64) (int64, error) {
	if cached, ok := s.c.Get(common.CacheKeyLikeCount(blogID)); ok {
		if count, ok := cached.(int64); ok {
			return count, nil
		}
	}

	count, err := s.m.countBlogLikes(ctx, blogID)
	if err != nil {
		return 0, err
	}

	s.c.Set(common.CacheKeyLikeCount(blogID), count)
	return count, nil
}

// decorate fills in categories, the like count and the requester's own
// interaction flags.
func (s *BlogService) decorate(ctx context.Context, blog *Blog, requesterID *int64) (*Blog, error) {
	categories, err := s.m.getBlogCategories(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.Categories = categories

	count, err := s.likeCount(ctx, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.LikeCount = count

	return s.decorateInteractions(ctx, blog, requesterID)
}

func (s *BlogService) decorateInteractions(ctx context.Context, blog *Blog, requesterID *int64) (*Blog, error) {
	if blog.Categories == nil {
		categories, err := s.m.getBlogCategories(ctx, blog.ID)
		if err != nil {
			return nil, err
		}
		blog.Categories = categories
	}

	if requesterID == nil {
		return blog, nil
	}

	liked, err := s.m.isBlogLiked(ctx, *requesterID, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.Liked = &liked

	favorited, err := s.m.isBlogFavorited(ctx, *requesterID, blog.ID)
	if err != nil {
		return nil, err
	}
	blog.Favorited = &favorited

	return blog, nil
}

func (s *BlogService) decorateAll(ctx context.Context, blogs []Blog, requesterID *int64) ([]Blog, error) {
	out := make([]Blog, 0, len(blogs))
	for i := range blogs {
		count, err := s.likeCount(ctx, blogs[i].ID)
		if err != nil {
			return nil, err
		}
		blogs[i].LikeCount = count

		decorated, err := s.decorateInteractions(ctx, &blogs[i], requesterID)
		if err != nil {
			return nil, err
		}
		out = append(out, *decorated)
	}

	return out, nil
}
