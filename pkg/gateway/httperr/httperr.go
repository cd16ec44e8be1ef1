// Package httperr maps errors to the gateway's JSON error body. Every
// failure surfaces as {"error": {"code", "message", "status"}} with an
// HTTP status mirroring the upstream error taxonomy. Messages are fixed
// per code; vendor bodies and credential values never pass through.
package httperr

import (
	"encoding/json"
	"net/http"

	"seamark-hq/meridian/pkg/upstream"
)

// Body is the JSON error envelope.
type Body struct {
	Error Detail `json:"error"`
}

// Detail carries the taxonomy code, a human-readable message category,
// and the HTTP status.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// messages maps each taxonomy code to its fixed response message.
var messages = map[string]string{
	"no_credential":    "No credential is available. Connect to the host platform first.",
	"network_error":    "The upstream host could not be reached.",
	"auth_error":       "The upstream rejected the credential.",
	"not_found":        "The requested resource does not exist.",
	"rate_limited":     "The upstream is rate limiting requests.",
	"server_error":     "The upstream reported a server error.",
	"http_error":       "The upstream returned an unexpected response.",
	"validation_error": "The request is malformed.",
	"internal_error":   "An internal error occurred.",
}

// From classifies err into its response body.
func From(err error) Body {
	code := upstream.Kind(err)

	status := upstream.StatusOf(err)
	if status == 0 {
		switch code {
		case "no_credential":
			status = http.StatusUnauthorized
		case "network_error":
			status = http.StatusBadGateway
		case "validation_error":
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}
	}

	message, ok := messages[code]
	if !ok {
		message = messages["internal_error"]
	}

	return Body{Error: Detail{
		Code:    code,
		Message: message,
		Status:  status,
	}}
}

// Write classifies err and writes its JSON body and status.
func Write(w http.ResponseWriter, err error) {
	body := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Error.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteStatus writes an explicit error body, bypassing classification.
func WriteStatus(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: Detail{
		Code:    code,
		Message: message,
		Status:  status,
	}})
}
