package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gogpu/overlaycam"
	"github.com/gogpu/overlaycam/internal/logging"
)

// Codes for failures that happen before a request reaches the Camera.
const (
	CodeBadRequest       = "BadRequest"
	CodeNotFound         = "NotFound"
	CodeMethodNotAllowed = "MethodNotAllowed"
)

var (
	errBadRequest = errors.New("api: bad request")
	errNotFound   = errors.New("api: no such route")
	errMethod     = errors.New("api: method not allowed")
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

var statuses = map[string]int{
	overlaycam.CodePermissionDenied:    http.StatusForbidden,
	overlaycam.CodeDeviceUnavailable:   http.StatusServiceUnavailable,
	overlaycam.CodeSessionNotActive:    http.StatusConflict,
	overlaycam.CodeCaptureInProgress:   http.StatusConflict,
	overlaycam.CodeInvalidLayerData:    http.StatusBadRequest,
	overlaycam.CodeLayerNotFound:       http.StatusNotFound,
	overlaycam.CodeInvalidColor:        http.StatusBadRequest,
	overlaycam.CodeResourceLoadFailure: http.StatusBadGateway,
	overlaycam.CodeEncodeFailure:       http.StatusInternalServerError,
	CodeBadRequest:                     http.StatusBadRequest,
	CodeNotFound:                       http.StatusNotFound,
	CodeMethodNotAllowed:               http.StatusMethodNotAllowed,
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return CodeBadRequest
	case errors.Is(err, errNotFound):
		return CodeNotFound
	case errors.Is(err, errMethod):
		return CodeMethodNotAllowed
	}
	return overlaycam.ErrorCode(err)
}

func writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status, ok := statuses[code]
	if !ok {
		status = http.StatusInternalServerError
		logging.Logger().Error("api: internal error", "err", err)
	}
	writeJSON(w, status, ErrorBody{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger().Debug("api: write response", "err", err)
	}
}
