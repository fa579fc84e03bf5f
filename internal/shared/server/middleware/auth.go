package middleware

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"career-backend/internal/shared/auth"
	"career-backend/internal/shared/server/respond"
)

const maxGuestIDLen = 64

// Auth resolves the actor from a bearer token or, failing that, the
// X-Guest-Id header. Guests always hold the user role.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	if verifier == nil {
		verifier = auth.NewVerifier("", nil)
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/api/v1/health" {
			c.Next()
			return
		}

		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(c, "missing or invalid token")
				return
			}
			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				unauthorized(c, "missing or invalid token")
				return
			}
			setIdentity(c, Identity{
				UserID: claims.Sub,
				Email:  claims.Email,
				Name:   claims.Name,
				Role:   claims.Role,
			})
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if !validGuestID(guestID) {
			unauthorized(c, "Missing identity")
			return
		}
		setIdentity(c, Identity{UserID: "guest:" + guestID, Role: auth.RoleUser, IsGuest: true})
		c.Next()
	}
}

// RequireRole rejects requests whose actor does not hold role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserRoleFromContext(c) != role {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", nil)
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	respond.Error(c, http.StatusUnauthorized, "unauthorized", msg, nil)
}

// validGuestID accepts the ids browsers generate: short, printable, no
// separators that would collide with the "guest:" namespace.
func validGuestID(id string) bool {
	if id == "" || len(id) > maxGuestIDLen {
		return false
	}
	for _, r := range id {
		if r == ':' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
