package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/me", app.requireAuthUser(app.currentUserHandler))

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getNewBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/blogs/featured", app.getFeaturedBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs/new", app.requireAuthor(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/favorites", app.requireAuthUser(app.getFavoriteBlogsHandler))

	// parameterized blog routes live under the singular prefix because the
	// router cannot mix a wildcard with the static segments above
	router.HandlerFunc(http.MethodGet, "/v1/blog/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blog/:id", app.requireAuthor(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blog/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blog/:id/like", app.requireAuthUser(app.likeBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blog/:id/like", app.requireAuthUser(app.unlikeBlogHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blog/:id/favorite", app.requireAuthUser(app.favoriteBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blog/:id/favorite", app.requireAuthUser(app.unfavoriteBlogHandler))

	router.HandlerFunc(http.MethodGet, "/v1/user/:id/blogs", app.getBlogsByUserHandler)

	router.HandlerFunc(http.MethodGet, "/v1/cities", app.getCitiesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.getCategoriesHandler)

	// certification service
	router.HandlerFunc(http.MethodPost, "/v1/certifications", app.requireAuthUser(app.requestCertificationHandler))
	router.HandlerFunc(http.MethodGet, "/v1/certifications/me", app.requireAuthUser(app.getOwnCertificationHandler))

	// admin service
	router.HandlerFunc(http.MethodGet, "/v1/admin/certifications", app.requireAdmin(app.listPendingCertificationsHandler))
	router.HandlerFunc(http.MethodPut, "/v1/admin/certifications/:id", app.requireAdmin(app.decideCertificationHandler))
	router.HandlerFunc(http.MethodGet, "/v1/admin/blogs", app.requireAdmin(app.listPendingBlogsHandler))
	router.HandlerFunc(http.MethodPut, "/v1/admin/blogs/:id", app.requireAdmin(app.decideBlogHandler))

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
