package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagevault/internal/errs"

	"github.com/gin-gonic/gin"
)

func recordWriteError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, err)
	return w
}

func TestWriteErrorMapsNotFoundTo404(t *testing.T) {
	w := recordWriteError(errs.New(errs.NotFound, "upload not found"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestWriteErrorMapsValidationKindsTo422(t *testing.T) {
	for _, kind := range []errs.Kind{
		errs.ValidationFailed, errs.ChunkChecksumMismatch, errs.FileChecksumMismatch,
		errs.NoChunks, errs.MissingChunks, errs.NotAcceptingChunks, errs.NotReady,
	} {
		w := recordWriteError(errs.New(kind, "bad input"))
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("kind %q: status = %d, want %d", kind, w.Code, http.StatusUnprocessableEntity)
		}
	}
}

func TestWriteErrorMapsInternalKindsTo500(t *testing.T) {
	for _, kind := range []errs.Kind{
		errs.InconsistentState, errs.ProcessingFailed, errs.ProcessingTimeout, errs.InternalIO,
	} {
		w := recordWriteError(errs.New(kind, "boom"))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("kind %q: status = %d, want %d", kind, w.Code, http.StatusInternalServerError)
		}
	}
}

func TestWriteErrorUnclassifiedErrorIs500(t *testing.T) {
	w := recordWriteError(errors.New("plain error"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
