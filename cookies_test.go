package auth_test

import (
	"testing"

	"github.com/ahp-web/auth"
	"github.com/stretchr/testify/assert"
)

func TestExtractCookieValue(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		value  string
		found  bool
	}{
		{name: "single cookie", header: "token=abc", cookie: "token", value: "abc", found: true},
		{name: "among others", header: "theme=dark; token=abc; lang=en", cookie: "token", value: "abc", found: true},
		{name: "no spaces", header: "theme=dark;token=abc", cookie: "token", value: "abc", found: true},
		{name: "first match wins", header: "token=first; token=second", cookie: "token", value: "first", found: true},
		{name: "value keeps equals", header: "token=a=b", cookie: "token", value: "a=b", found: true},
		{name: "empty value", header: "token=", cookie: "token", value: "", found: true},
		{name: "missing cookie", header: "other=abc", cookie: "token", found: false},
		{name: "prefix is not a match", header: "tokens=abc; xtoken=def", cookie: "token", found: false},
		{name: "case sensitive", header: "Token=abc", cookie: "token", found: false},
		{name: "empty header", header: "", cookie: "token", found: false},
		{name: "malformed segments skipped", header: "garbage; ;token=abc", cookie: "token", value: "abc", found: true},
		{name: "only malformed", header: "garbage;;", cookie: "token", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := auth.ExtractCookieValue(tt.header, tt.cookie)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestBuildCookie(t *testing.T) {
	assert.Equal(t, "token=abc; Path=/; HttpOnly",
		auth.BuildCookie("token", "abc", auth.CookieOptions{Path: "/", HTTPOnly: true}))

	assert.Equal(t, "token=abc; Path=/; HttpOnly; Secure",
		auth.BuildCookie("token", "abc", auth.CookieOptions{Path: "/", HTTPOnly: true, Secure: true}))

	assert.Equal(t, "token=; Path=/; Max-Age=0; HttpOnly",
		auth.ExpiredCookie("token", auth.CookieOptions{Path: "/", HTTPOnly: true}))

	assert.Equal(t, "token=; Path=/; Max-Age=0; HttpOnly; Secure",
		auth.ExpiredCookie("token", auth.CookieOptions{Path: "/", HTTPOnly: true, Secure: true, MaxAge: 3600}))
}
