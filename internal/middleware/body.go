package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/errs"
)

// ParsedBodyKey is the echo context key holding the decoded request body.
const ParsedBodyKey = "parsed_body"

const (
	mimeJSON = "application/json"
	mimeForm = "application/x-www-form-urlencoded"
)

type bodyKind int

const (
	bodyOther bodyKind = iota
	bodyJSON
	bodyForm
)

// BodyStage decodes JSON and urlencoded request bodies of at most limit bytes.
//
// The decoded value is stored under ParsedBodyKey and the raw bytes are put
// back on the request so handlers can still bind it. Bodies of any other
// content type are left untouched.
//
// Errors: 413 when the body is larger than limit, 400 when it cannot be decoded.
func BodyStage(limit int64) Stage {
	return Stage{
		Name: StageBody,
		Run: func(c echo.Context) Result {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return Next()
			}

			kind := classifyBody(req.Header.Get(echo.HeaderContentType))
			if kind == bodyOther {
				return Next()
			}

			if req.ContentLength > limit {
				return Fail(errs.NewPayloadTooLargeError())
			}

			raw, err := io.ReadAll(io.LimitReader(req.Body, limit+1))
			_ = req.Body.Close()
			if err != nil {
				return Fail(errs.NewBadRequestError("could not read request body").WithCause(err))
			}
			if int64(len(raw)) > limit {
				return Fail(errs.NewPayloadTooLargeError())
			}

			req.Body = io.NopCloser(bytes.NewReader(raw))
			req.ContentLength = int64(len(raw))

			if len(bytes.TrimSpace(raw)) == 0 {
				return Next()
			}

			parsed, err := decodeBody(kind, raw)
			if err != nil {
				return Fail(err)
			}

			c.Set(ParsedBodyKey, parsed)
			return Next()
		},
	}
}

// ParsedBody returns the body decoded by BodyStage.
//
// JSON bodies come back as map[string]any or []any, form bodies as url.Values.
func ParsedBody(c echo.Context) (any, bool) {
	parsed := c.Get(ParsedBodyKey)
	return parsed, parsed != nil
}

func classifyBody(contentType string) bodyKind {
	if contentType == "" {
		return bodyOther
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return bodyOther
	}

	switch {
	case mediaType == mimeJSON, strings.HasSuffix(mediaType, "+json"):
		return bodyJSON
	case mediaType == mimeForm:
		return bodyForm
	default:
		return bodyOther
	}
}

func decodeBody(kind bodyKind, raw []byte) (any, error) {
	if kind == bodyForm {
		// ParseQuery keeps every well-formed pair and skips the rest, so a
		// broken escape only drops its own pair.
		values, _ := url.ParseQuery(string(raw))
		return values, nil
	}

	// Only objects and arrays are accepted at the top level.
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, errs.NewBadRequestError("Malformed JSON body")
	}

	var value any
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, errs.NewBadRequestError("Malformed JSON body").WithCause(err)
	}
	return value, nil
}
