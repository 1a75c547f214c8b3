package main

import (
	"errors"
	"net/http"

	"github.com/minthway/wayfarer/internal/certservice"
)

func (app *application) requestCertificationHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	request, err := app.certService.RequestCertification(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, certservice.ErrPendingRequestExists):
			app.conflictErrorResponse(w, r, "a pending certification request already exists")
		case errors.Is(err, certservice.ErrUserNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"certification_request": request}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getOwnCertificationHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	request, err := app.certService.GetRequestByUser(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, certservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"certification_request": request}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
