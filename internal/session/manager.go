package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const tokenKey = "sid"

type Options struct {
	Name   string
	Secret string
	TTL    time.Duration
	Secure bool
}

// Manager ties the signed gorilla cookie to a server-side Store.
type Manager struct {
	cookies *sessions.CookieStore
	store   Store
	name    string
	ttl     time.Duration
	secure  bool
}

func NewManager(store Store, opts Options) *Manager {
	if opts.Name == "" {
		opts.Name = "elimufund_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	return &Manager{
		cookies: sessions.NewCookieStore([]byte(opts.Secret)),
		store:   store,
		name:    opts.Name,
		ttl:     opts.TTL,
		secure:  opts.Secure,
	}
}

func (m *Manager) cookieOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Start binds a fresh token to userID and writes the cookie. A token the
// client already held is revoked.
func (m *Manager) Start(c *gin.Context, userID uint) error {
	ctx := c.Request.Context()

	// A cookie that fails to decode still yields a usable empty session.
	sess, _ := m.cookies.Get(c.Request, m.name)
	if old, ok := sess.Values[tokenKey].(string); ok && old != "" {
		_ = m.store.Delete(ctx, old)
	}

	token, err := m.store.Create(ctx, userID, m.ttl)
	if err != nil {
		return err
	}

	sess.Values[tokenKey] = token
	sess.Options = m.cookieOptions(int(m.ttl.Seconds()))
	return sess.Save(c.Request, c.Writer)
}

// Current resolves the caller's user id, or ErrSessionNotFound when the
// request has no live session.
func (m *Manager) Current(c *gin.Context) (uint, error) {
	token := m.token(c)
	if token == "" {
		return 0, ErrSessionNotFound
	}
	return m.store.Lookup(c.Request.Context(), token)
}

// End revokes the server-side session and expires the cookie.
func (m *Manager) End(c *gin.Context) error {
	sess, _ := m.cookies.Get(c.Request, m.name)
	if token, ok := sess.Values[tokenKey].(string); ok && token != "" {
		if err := m.store.Delete(c.Request.Context(), token); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}

	delete(sess.Values, tokenKey)
	sess.Options = m.cookieOptions(-1)
	return sess.Save(c.Request, c.Writer)
}

func (m *Manager) token(c *gin.Context) string {
	sess, err := m.cookies.Get(c.Request, m.name)
	if err != nil || sess.IsNew {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}
