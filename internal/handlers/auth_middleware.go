package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/services"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
)

const principalKey = "principal"

// AuthMiddleware resolves HTTP Basic credentials against the dataset on every
// request and checks role grants with the casbin policy.
type AuthMiddleware struct {
	authService services.AuthService
	policy      *auth.Policy
	logger      utils.Logger
}

func NewAuthMiddleware(authService services.AuthService, policy *auth.Policy, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, policy: policy, logger: logger}
}

// Authenticate requires valid Basic credentials and stores the principal in
// the context.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		nationalID, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="skill-tracker"`)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header missing",
			})
			c.Abort()
			return
		}

		principal, err := am.authService.Login(c.Request.Context(), nationalID, password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid national id or password",
			})
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_role", principal.Role)
		c.Next()
	}
}

// Authorize checks the role grant for obj/act and that the hospital,
// department, staff and patient named in the path lie in the principal's
// scope. Routes without path ids are checked against the principal's own
// scope.
func (am *AuthMiddleware) Authorize(obj auth.Resource, act auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "not authenticated",
			})
			c.Abort()
			return
		}

		target := scopeFromPath(c)
		if target.HospitalID == "" {
			target = principal.Scope()
		}
		if err := am.policy.Authorize(principal, obj, act, target); err != nil {
			utils.FromContext(c.Request.Context(), am.logger).Info("Request forbidden",
				"role", principal.Role,
				"resource", obj,
				"action", act)
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "insufficient permissions",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole admits only the listed roles.
func (am *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if ok {
			for _, r := range roles {
				if principal.Role == r {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "insufficient permissions",
		})
		c.Abort()
	}
}

func scopeFromPath(c *gin.Context) models.Scope {
	return models.Scope{
		HospitalID:   c.Param("hospitalId"),
		DepartmentID: c.Param("departmentId"),
		StaffID:      c.Param("staffId"),
		PatientID:    c.Param("patientId"),
	}
}

func GetPrincipal(c *gin.Context) (*models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*models.Principal)
	return p, ok
}
