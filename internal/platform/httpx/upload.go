package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxUploadBytes bounds a single uploaded file.
const MaxUploadBytes = 5 << 20

// ErrUploadTooLarge is returned when a file exceeds MaxUploadBytes.
var ErrUploadTooLarge = fmt.Errorf("%w: file too large", ErrValidation)

// FormFile reads an optional uploaded file. A missing part yields empty
// results and no error.
func FormFile(r *http.Request, field string) (filename string, data []byte, err error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				return "", nil, nil
			}
			return "", nil, err
		}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, nil
		}
		return "", nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	if header.Size > MaxUploadBytes {
		return "", nil, ErrUploadTooLarge
	}
	data, err = io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return "", nil, err
	}
	if len(data) > MaxUploadBytes {
		return "", nil, ErrUploadTooLarge
	}
	return header.Filename, data, nil
}
