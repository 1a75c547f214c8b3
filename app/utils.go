package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/minthway/wayfarer/internal/blogservice"
	"github.com/minthway/wayfarer/internal/userservice"
)

type envelope map[string]any

func (e envelope) JSON() string {
	json, err := json.MarshalIndent(e, "", "\t")
	if err != nil {
		return ""
	}

	return string(json)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}
	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}
	return nil
}

func (app *application) readIDParam(r *http.Request, key string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName(key), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid ID parameter")
	}

	return id, nil
}

// setAccessTokenCookie mirrors the issued token in a cookie that expires
// together with the token itself.
func (app *application) setAccessTokenCookie(w http.ResponseWriter, token *userservice.AuthToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token.AccessTokenPlain,
		Path:     "/",
		Expires:  token.AccessTokenExpiry,
		HttpOnly: true,
		Secure:   app.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func (app *application) extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// readIntQuery returns the named query parameter as an int, or the fallback
// when it is absent or malformed.
func (app *application) readIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}

const maxPhotoBytes = 5 << 20

// readPhoto pulls an optional image out of a multipart form. A missing file
// is not an error.
func readPhoto(form *multipart.Form, field string) (*blogservice.Photo, error) {
	files, ok := form.File[field]
	if !ok || len(files) == 0 {
		return nil, nil
	}

	header := files[0]
	if header.Size > maxPhotoBytes {
		return nil, fmt.Errorf("%s must not be larger than %d bytes", field, maxPhotoBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxPhotoBytes {
		return nil, fmt.Errorf("%s must not be larger than %d bytes", field, maxPhotoBytes)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return &blogservice.Photo{Content: content, ContentType: contentType}, nil
}

func formValue(form *multipart.Form, field string) string {
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}

func formInt64Ptr(form *multipart.Form, field string) (*int64, error) {
	value := formValue(form, field)
	if value == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter", field)
	}

	return &n, nil
}

func formIntPtr(form *multipart.Form, field string) (*int, error) {
	value := formValue(form, field)
	if value == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter", field)
	}

	return &n, nil
}

func formStringPtr(form *multipart.Form, field string) *string {
	value := formValue(form, field)
	if value == "" {
		return nil
	}
	return &value
}

// formInt64List parses a comma separated list of ids, e.g. "1,4,7".
func formInt64List(form *multipart.Form, field string) ([]int64, error) {
	value := formValue(form, field)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter", field)
		}
		ids = append(ids, n)
	}

	return ids, nil
}
