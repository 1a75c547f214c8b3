package main

import (
	"errors"
	"net/http"

	"github.com/minthway/wayfarer/internal/adminservice"
)

func (app *application) listPendingCertificationsHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := app.certService.ListPendingRequests(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"certification_requests": requests}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type decisionRequest struct {
	Action string  `json:"action"`
	Reason *string `json:"reason"`
}

func (app *application) decideCertificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input decisionRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	action, err := adminservice.ParseAction(input.Action)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	admin := app.getUserContext(r)

	decision, err := app.adminService.DecideCertification(r.Context(), admin.ID, id, action, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, adminservice.ErrRequestNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, adminservice.ErrAlreadyDecided):
			app.conflictErrorResponse(w, r, "this certification request has already been decided")
		case errors.Is(err, adminservice.ErrAdminNotFound):
			app.forbiddenErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"decision": decision}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPendingBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.ListPendingBlogs(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) decideBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input decisionRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	action, err := adminservice.ParseAction(input.Action)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	admin := app.getUserContext(r)

	decision, err := app.adminService.DecideBlog(r.Context(), admin.ID, id, action, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, adminservice.ErrBlogNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, adminservice.ErrAlreadyDecided):
			app.conflictErrorResponse(w, r, "this blog has already been decided")
		case errors.Is(err, adminservice.ErrAdminNotFound):
			app.forbiddenErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"decision": decision}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
