package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"vgate-backend/internal/validate"
)

// maxImageSize caps uploaded profile photos at 5MB.
const maxImageSize = 5 << 20

// isMultipart reports whether the request carries a multipart form (the
// registration forms post multipart when a photo is attached, JSON otherwise).
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readImageFile extracts an optional photo upload. Returns nil with no error
// when the field is absent.
func readImageFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, validate.Errors{"invalid photo upload"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, validate.Errors{"photo must be 5MB or smaller"}
	}
	return data, nil
}

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(r.FormValue(field))
	return n
}
