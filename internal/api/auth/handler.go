package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/domain/access"
	"newsdesk/internal/domain/users"
	"newsdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var errDisabled = errors.New("account disabled")

// IDTokenVerifier checks a Google ID token and returns its claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error)
}

type Handler struct {
	Users    store.Collection[users.User]
	OAuth    *oauth2.Config
	Verifier IDTokenVerifier
	Log      zerolog.Logger
	Now      func() time.Time

	JWTSecret []byte
	TokenTTL  time.Duration
	// FrontendRedirect receives ?token= after the browser flow; empty means respond with JSON.
	FrontendRedirect string
	SecureCookies    bool
}

func NewHandler(col store.Collection[users.User], oauth *oauth2.Config, verifier IDTokenVerifier, secret string, ttl time.Duration, log zerolog.Logger) *Handler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handler{
		Users:     col,
		OAuth:     oauth,
		Verifier:  verifier,
		Log:       log.With().Str("handler", "auth").Logger(),
		Now:       time.Now,
		JWTSecret: []byte(secret),
		TokenTTL:  ttl,
	}
}

// IssueToken signs the session JWT the auth middleware accepts.
func IssueToken(secret []byte, u *users.User, ttl time.Duration, now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"name":    u.DisplayName,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return t.SignedString(secret)
}

type TokenRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type TokenResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// ------------------------------
// POST /api/auth/token
// ------------------------------
// Token trades a Google ID token obtained client-side for a session JWT.
func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token is required"})
		return
	}
	claims, err := h.Verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		h.Log.Info().Err(err).Msg("rejected id token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id_token"})
		return
	}
	u, token, ok := h.signIn(c, claims)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, User: u})
}

// signIn finds or creates the user and issues a token, writing the error response itself.
func (h *Handler) signIn(c *gin.Context, claims *GoogleClaims) (*users.User, string, bool) {
	u, err := h.findOrCreateGoogleUser(c.Request.Context(), claims)
	if errors.Is(err, errDisabled) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account disabled"})
		return nil, "", false
	}
	if err != nil {
		h.Log.Error().Err(err).Str("email", claims.Email).Msg("sign-in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return nil, "", false
	}
	token, err := IssueToken(h.JWTSecret, u, h.TokenTTL, h.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return nil, "", false
	}
	return u, token, true
}

// findOrCreateGoogleUser keys accounts by the Google subject. Rows created before the
// subject was known are matched by email. New accounts start as readers.
func (h *Handler) findOrCreateGoogleUser(ctx context.Context, gc *GoogleClaims) (*users.User, error) {
	now := h.Now()
	touch := func(u *users.User) error {
		if u.Disabled {
			return errDisabled
		}
		u.ProviderSub = gc.Sub
		u.Provider = users.ProviderGoogle
		if gc.Name != "" {
			u.DisplayName = gc.Name
		}
		if gc.Picture != "" {
			u.PhotoURL = gc.Picture
		}
		u.LastLoginAt = &now
		return nil
	}

	u, err := h.Users.GetByID(ctx, gc.Sub)
	if err == nil {
		return h.Users.Mutate(ctx, u.ID, touch)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(gc.Email))
	u, err = h.Users.FindOne(ctx, store.Query{}.Where("email", store.Eq, email))
	if err == nil {
		return h.Users.Mutate(ctx, u.ID, touch)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	nu := users.User{
		Base:        store.Base{ID: gc.Sub},
		Email:       email,
		DisplayName: firstNonEmpty(gc.Name, gc.GivenName, email),
		PhotoURL:    gc.Picture,
		Role:        string(access.RoleReader),
		Provider:    users.ProviderGoogle,
		ProviderSub: gc.Sub,
		LastLoginAt: &now,
	}
	if _, err := h.Users.Create(ctx, &nu); err != nil {
		return nil, err
	}
	h.Log.Info().Str("user_id", nu.ID).Msg("created user")
	return &nu, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
