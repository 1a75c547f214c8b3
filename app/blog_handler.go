package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/minthway/wayfarer/internal/blogservice"
	"github.com/minthway/wayfarer/internal/common"
	"github.com/minthway/wayfarer/internal/imageservice"
)

func (app *application) getFeaturedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	pageSize := app.readIntQuery(r, "page_size", blogservice.DefaultPageSize)

	page, err := app.blogService.GetFeaturedBlogs(r.Context(), cursor, pageSize, app.requesterID(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"feed": page}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getNewBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit := app.readIntQuery(r, "limit", blogservice.DefaultPageSize)
	offset := app.readIntQuery(r, "offset", 0)

	blogs, err := app.blogService.GetNewBlogs(r.Context(), limit, offset, app.requesterID(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

const maxBlogFormBytes = 32 << 20

// createBlogHandler accepts a multipart form so the photos ride along with
// the text fields in a single request.
func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxBlogFormBytes)
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("request body must be a valid multipart form"))
		return
	}
	form := r.MultipartForm
	defer form.RemoveAll()

	input := blogservice.CreateBlogInput{
		Title:      formValue(form, "title"),
		Paragraph1: formValue(form, "paragraph1"),
		Paragraph2: formStringPtr(form, "paragraph2"),
		Paragraph3: formStringPtr(form, "paragraph3"),
	}

	if input.CityID, err = formInt64Ptr(form, "city_id"); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	if input.CategoryIDs, err = formInt64List(form, "category_ids"); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	if input.BestTimeStartMonth, err = formIntPtr(form, "best_time_start_month"); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	if input.BestTimeEndMonth, err = formIntPtr(form, "best_time_end_month"); err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	photos := []struct {
		field string
		dst   **blogservice.Photo
	}{
		{"main_photo", &input.MainPhoto},
		{"mid_photo1", &input.MidPhoto1},
		{"mid_photo2", &input.MidPhoto2},
		{"mid_photo3", &input.MidPhoto3},
		{"side_photo", &input.SidePhoto},
	}
	for _, p := range photos {
		photo, err := readPhoto(form, p.field)
		if err != nil {
			app.badRequestErrorResponse(w, r, err)
			return
		}
		*p.dst = photo
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.CreateBlog(r.Context(), user.ID, input)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.Is(err, blogservice.ErrCityNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"city_id": "this city does not exist"})
		case errors.Is(err, imageservice.ErrUnsupportedType):
			app.failedValidationErrorResponse(w, r, map[string]string{"photo": "images must be jpeg, png, webp or gif"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlog(r.Context(), id, app.requesterID(r), app.requesterIsAdmin(r))
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type updateBlogRequest struct {
	Title              *string `json:"title"`
	Paragraph1         *string `json:"paragraph1"`
	Paragraph2         *string `json:"paragraph2"`
	Paragraph3         *string `json:"paragraph3"`
	CityID             *int64  `json:"city_id"`
	CategoryIDs        []int64 `json:"category_ids"`
	BestTimeStartMonth *int    `json:"best_time_start_month"`
	BestTimeEndMonth   *int    `json:"best_time_end_month"`
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input updateBlogRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.UpdateBlog(r.Context(), user.ID, id, blogservice.UpdateBlogInput{
		Title:              input.Title,
		Paragraph1:         input.Paragraph1,
		Paragraph2:         input.Paragraph2,
		Paragraph3:         input.Paragraph3,
		CityID:             input.CityID,
		CategoryIDs:        input.CategoryIDs,
		BestTimeStartMonth: input.BestTimeStartMonth,
		BestTimeEndMonth:   input.BestTimeEndMonth,
	})
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrEditConflict):
			app.editConflictErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrCityNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"city_id": "this city does not exist"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.blogService.DeleteBlog(r.Context(), user.ID, id, user.Role.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, blogservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogsByUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogsByAuthor(r.Context(), id, app.requesterID(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) likeBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.blogInteraction(w, r, app.blogService.LikeBlog)
}

func (app *application) unlikeBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.blogInteraction(w, r, app.blogService.UnlikeBlog)
}

// blogInteraction runs a like toggle and writes the resulting status.
func (app *application) blogInteraction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, blogID int64) (*blogservice.LikeStatus, error)) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	status, err := fn(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"like": status}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) favoriteBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.favoriteInteraction(w, r, app.blogService.FavoriteBlog)
}

func (app *application) unfavoriteBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.favoriteInteraction(w, r, app.blogService.UnfavoriteBlog)
}

func (app *application) favoriteInteraction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, blogID int64) (*blogservice.FavoriteStatus, error)) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	status, err := fn(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"favorite": status}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getFavoriteBlogsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	blogs, err := app.blogService.GetFavoriteBlogs(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCitiesHandler(w http.ResponseWriter, r *http.Request) {
	cities, err := app.blogService.GetCities(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"cities": cities}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.blogService.GetCategories(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
