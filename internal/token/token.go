package token

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultCookieName is the cookie holding the CSRF token for mutating requests.
const DefaultCookieName = "csrftoken"

// Accessor returns the security token attached to mutating requests.
type Accessor interface {
	Token() (string, bool)
}

// AccessorFunc adapts a function to Accessor.
type AccessorFunc func() (string, bool)

func (f AccessorFunc) Token() (string, bool) {
	if f == nil {
		return "", false
	}
	return f()
}

// FromHeader finds the cookie called name in a Cookie header value and
// returns its percent-decoded value.
func FromHeader(header, name string) (string, bool) {
	if header == "" || name == "" {
		return "", false
	}
	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		raw := part[len(prefix):]
		value, err := url.PathUnescape(raw)
		if err != nil {
			return raw, true
		}
		return value, true
	}
	return "", false
}

// CookieAccessor reads the token from a Cookie header supplied on demand.
type CookieAccessor struct {
	name   string
	header func() string
}

func NewCookieAccessor(name string, header func() string) *CookieAccessor {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieAccessor{name: name, header: header}
}

func (a *CookieAccessor) Token() (string, bool) {
	if a.header == nil {
		return "", false
	}
	return FromHeader(a.header(), a.name)
}

// JarAccessor reads the token from a cookie jar, as a browser session would.
type JarAccessor struct {
	name string
	jar  http.CookieJar
	url  *url.URL
}

func NewJarAccessor(name string, jar http.CookieJar, u *url.URL) *JarAccessor {
	if name == "" {
		name = DefaultCookieName
	}
	return &JarAccessor{name: name, jar: jar, url: u}
}

func (a *JarAccessor) Token() (string, bool) {
	if a.jar == nil || a.url == nil {
		return "", false
	}
	parts := make([]string, 0, 4)
	for _, c := range a.jar.Cookies(a.url) {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return FromHeader(strings.Join(parts, "; "), a.name)
}
