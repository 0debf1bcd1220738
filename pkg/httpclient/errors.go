package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// NoRowsCode is the PostgREST error code for a single-object request that
// matched no row.
const NoRowsCode = "PGRST116"

// upstreamError covers the two error bodies seen from the hosted backend:
// PostgREST's flat object and the {error:{code,message}} envelope.
type upstreamError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details"`
	Envelope *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an AppError:
//
//   - 404, or 406 with PGRST116: NotFound
//   - other 4xx except 401/403/429: InvalidInput
//   - 401, 403, 429 and 5xx: Unavailable (our credentials or the upstream are at fault)
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Unavailable(upstream+" unreadable error response", err)
	}

	var body upstreamError
	code, message := "", string(raw)
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Envelope != nil:
			code, message = body.Envelope.Code, body.Envelope.Message
		case body.Code != "" || body.Message != "":
			code, message = body.Code, body.Message
		}
	}

	return mapUpstreamError(resp.StatusCode, code, message, upstream)
}

func mapUpstreamError(status int, code, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)
	cause := fmt.Errorf("%s returned %d (%s): %s", upstream, status, code, message)

	switch {
	case status == http.StatusNotFound, code == NoRowsCode:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: qualified,
			Status:  http.StatusNotFound,
			Err:     errors.Join(apperrors.ErrNotFound, cause),
		}
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return apperrors.Unavailable(upstream+" rejected the request", cause)
	case status >= 500:
		return apperrors.Unavailable(upstream+" is unavailable", cause)
	case status >= 400:
		return apperrors.InvalidInput(qualified)
	default:
		return apperrors.Internal(cause)
	}
}
