package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

var (
	// ErrMissingFile is returned when the multipart field is absent.
	ErrMissingFile = errors.New("missing form file")
	// ErrTooLarge is returned when the request body exceeds the upload limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// multipartMemory is the in-memory threshold before parts spill to disk.
const multipartMemory = 8 << 20

// ParseUpload limits the body to limit bytes and parses it as a multipart
// form. Exceeding the limit yields ErrTooLarge.
func ParseUpload(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: %d bytes", ErrTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return ErrMissingFile
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// FormFile reads the named file from an already parsed multipart form.
func FormFile(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, ErrMissingFile
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", field, err)
	}
	return data, header, nil
}

// CleanupUpload removes temporary files created while parsing the form.
func CleanupUpload(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

// UploadStatus maps ParseUpload and FormFile errors to HTTP status codes.
func UploadStatus(err error) int {
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
