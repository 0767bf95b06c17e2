package middleware

import (
	"strings"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/gin-gonic/gin"
)

// TokenExtractor pulls a token from one carrier. It returns "" when the
// carrier is absent or empty.
type TokenExtractor func(c *gin.Context) string

// ExtractFromHeader reads "<scheme> <token>" from the given header.
func ExtractFromHeader(header, scheme string) TokenExtractor {
	return func(c *gin.Context) string {
		auth := c.GetHeader(header)
		if auth == "" {
			return ""
		}

		prefix := scheme + " "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
		return ""
	}
}

// ExtractFromCookie reads the named cookie.
func ExtractFromCookie(name string) TokenExtractor {
	return func(c *gin.Context) string {
		cookie, err := c.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie
	}
}

// ExtractFromQuery reads a query parameter. Kept for old links only.
func ExtractFromQuery(param string) TokenExtractor {
	return func(c *gin.Context) string {
		return c.Query(param)
	}
}

// ChainExtractors tries each extractor in order and returns the first
// non-empty token. Later carriers are not consulted once one matches.
func ChainExtractors(extractors ...TokenExtractor) TokenExtractor {
	return func(c *gin.Context) string {
		for _, extract := range extractors {
			if token := extract(c); token != "" {
				return token
			}
		}
		return ""
	}
}

// DefaultExtractor checks the bearer header, then the session cookie, then
// the token query parameter.
func DefaultExtractor(cookieName string) TokenExtractor {
	return ChainExtractors(
		ExtractFromHeader(constants.HeaderAuthorization, constants.BearerScheme),
		ExtractFromCookie(cookieName),
		ExtractFromQuery(constants.QueryParamToken),
	)
}
