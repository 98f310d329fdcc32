package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/lib/utils"
)

// Stage names, in the order the standard pipeline runs them.
const (
	StageSecure = "secure"
	StageCORS   = "cors"
	StageBody   = "body"
	StageLog    = "log"
)

// contentSecurityPolicy is the default policy of the helmet middleware.
const contentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
	"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
	"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

// isolationHeaders are set on every response next to the echo Secure headers.
var isolationHeaders = map[string]string{
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
}

// SecureStage sets the standard security response headers.
// HSTS is only sent for TLS requests (directly or through X-Forwarded-Proto).
func SecureStage() Stage {
	secure := middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            15552000,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	})

	return FromEcho(StageSecure, func(next echo.HandlerFunc) echo.HandlerFunc {
		return secure(func(c echo.Context) error {
			header := c.Response().Header()
			for name, value := range isolationHeaders {
				header.Set(name, value)
			}
			return next(c)
		})
	})
}

// CORSStage applies the startup CORS policy.
//
// Preflight requests are answered here and stop the chain. Requests from
// origins outside the policy are not rejected; they just get no
// Access-Control-Allow-Origin header and the browser enforces the rest.
func CORSStage(policy config.CORSPolicy) Stage {
	return FromEcho(StageCORS, middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     policy.AllowOrigins,
		AllowMethods:     policy.AllowMethods,
		AllowHeaders:     policy.AllowHeaders,
		AllowCredentials: policy.AllowCredentials,
	}))
}

// LogStage writes one line per request as it enters the handlers.
//
// The request-scoped logger is used when the context enhancer ran,
// otherwise fallback.
func LogStage(fallback *zerolog.Logger) Stage {
	if fallback == nil {
		nop := zerolog.Nop()
		fallback = &nop
	}

	return Stage{
		Name: StageLog,
		Run: func(c echo.Context) Result {
			log := fallback
			if scoped, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
				log = scoped
			}

			req := c.Request()
			timestamp := utils.ISOTimestamp(time.Now())

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("timestamp", timestamp).
				Msgf("%s - %s %s", timestamp, req.Method, req.URL.Path)

			return Next()
		},
	}
}
