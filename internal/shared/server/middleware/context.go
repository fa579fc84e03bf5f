package middleware

import "github.com/gin-gonic/gin"

// Context keys shared by the middleware chain and the handlers.
const (
	UserIDKey           = "userId"
	JobIDKey            = "jobId"
	StatusTransitionKey = "statusTransition"
	identityKey         = "identity"
	requestIDKey        = "requestId"
	rateLimitGroupKey   = "rateLimitGroup"
)

// Identity is the actor a request runs as.
type Identity struct {
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	IsGuest bool   `json:"isGuest"`
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
	c.Set(UserIDKey, id.UserID)
}

// IdentityFromContext returns the actor set by Auth. Handlers mounted without
// Auth (tests) may set only UserIDKey.
func IdentityFromContext(c *gin.Context) Identity {
	if c == nil {
		return Identity{}
	}
	if raw, ok := c.Get(identityKey); ok {
		if id, ok := raw.(Identity); ok {
			return id
		}
	}
	return Identity{UserID: c.GetString(UserIDKey)}
}

// UserIDFromContext returns the actor's user id, or "".
func UserIDFromContext(c *gin.Context) string {
	return IdentityFromContext(c).UserID
}

// UserRoleFromContext returns the actor's role, or "".
func UserRoleFromContext(c *gin.Context) string {
	return IdentityFromContext(c).Role
}

// SetJobID records the job a request acted on for the request log.
func SetJobID(c *gin.Context, jobID string) {
	if jobID != "" {
		c.Set(JobIDKey, jobID)
	}
}

// SetStatusTransition records a workspace status change for the request log.
func SetStatusTransition(c *gin.Context, from, to string) {
	if from != to {
		c.Set(StatusTransitionKey, from+"->"+to)
	}
}
