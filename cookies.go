package auth

import (
	"net/http"
	"strings"
)

// CookieOptions are the attributes written after name=value. A negative
// MaxAge renders Max-Age=0, which tells the browser to drop the cookie.
type CookieOptions struct {
	Path     string
	HTTPOnly bool
	Secure   bool
	MaxAge   int
}

// BuildCookie renders a Set-Cookie header value, for example
// "token=abc; Path=/; HttpOnly; Secure".
func BuildCookie(name, value string, opts CookieOptions) string {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		MaxAge:   opts.MaxAge,
	}
	return c.String()
}

// ExpiredCookie renders a Set-Cookie value that blanks the named cookie
// and asks the browser to delete it.
func ExpiredCookie(name string, opts CookieOptions) string {
	opts.MaxAge = -1
	return BuildCookie(name, "", opts)
}

// ExtractCookieValue returns the value of the first cookie named name in
// a raw Cookie request header. Segments without "=" are skipped.
func ExtractCookieValue(header, name string) (string, bool) {
	if header == "" || name == "" {
		return "", false
	}

	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == name {
			return strings.TrimSpace(v), true
		}
	}

	return "", false
}
