package middleware

import (
	"backend/pkg/response"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// Identity is the authenticated caller extracted from the JWT. It travels on
// the request context so services can stamp audit entries and scope queries.
type Identity struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
	Plan      string
}

type identityKey struct{}

// IdentityFrom returns the authenticated identity, if any, from a context.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}

// authenticate parses the JWT from cookie or Authorization header and
// resolves the caller's identity. Returns nil after writing the error reply.
func authenticate(c *gin.Context) *Identity {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil
	}

	sub, _ := claims["sub"].(string)
	companyClaim, _ := claims["company_id"].(string)
	role, ok := claims["role"].(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return nil
	}
	plan, _ := claims["plan"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid subject claim"))
		return nil
	}
	companyID, err := uuid.Parse(companyClaim)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid company claim"))
		return nil
	}

	identity := &Identity{UserID: userID, CompanyID: companyID, Role: role, Plan: plan}

	c.Set("userID", sub)
	c.Set("userRole", role)
	c.Set("companyID", companyClaim)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityKey{}, identity))

	return identity
}

// RequireRole validates the JWT and checks if the caller's role exists in the allowedRoles list
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := authenticate(c)
		if identity == nil {
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if identity.Role == role {
				roleAllowed = true
				break
			}
		}

		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Next()
	}
}

// --- Plan-feature middleware ---

// featureCacheEntry stores cached feature codes for a plan with TTL
type featureCacheEntry struct {
	codes     []string
	expiresAt time.Time
}

var (
	featureCache    sync.Map // planName -> featureCacheEntry
	featureCacheTTL = 5 * time.Minute
)

// featureDB holds the database reference for feature queries, set via InitFeatureMiddleware
var featureDB *gorm.DB

// InitFeatureMiddleware sets the DB reference for RequireFeature middleware
func InitFeatureMiddleware(db *gorm.DB) {
	featureDB = db
}

// RequireFeature validates the JWT and checks that the caller's subscription
// plan includes every required feature code.
func RequireFeature(requiredFeatures ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := authenticate(c)
		if identity == nil {
			return
		}

		if identity.Plan == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: no subscription plan"))
			return
		}

		planFeatures, err := getFeaturesForPlan(identity.Plan)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify plan features"))
			return
		}

		featureSet := make(map[string]bool, len(planFeatures))
		for _, f := range planFeatures {
			featureSet[f] = true
		}

		for _, required := range requiredFeatures {
			if !featureSet[required] {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: plan does not include '"+required+"'"))
				return
			}
		}

		c.Next()
	}
}

// getFeaturesForPlan returns cached or DB-fetched feature codes for a plan name
func getFeaturesForPlan(planName string) ([]string, error) {
	// Check cache
	if entry, ok := featureCache.Load(planName); ok {
		cached := entry.(featureCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.codes, nil
		}
	}

	if featureDB == nil {
		return nil, fmt.Errorf("feature middleware not initialized")
	}

	// Query: plan → plan_features → features
	var codes []string
	err := featureDB.Raw(`
		SELECT f.code FROM features f
		INNER JOIN plan_features pf ON pf.feature_id = f.id
		INNER JOIN plans p ON p.id = pf.plan_id
		WHERE p.name = ?
	`, planName).Pluck("code", &codes).Error

	if err != nil {
		return nil, err
	}

	// Cache result
	featureCache.Store(planName, featureCacheEntry{
		codes:     codes,
		expiresAt: time.Now().Add(featureCacheTTL),
	})

	return codes, nil
}

// GetFeaturesForPlanFromDB exposes feature fetching for handlers (e.g., /me endpoint)
func GetFeaturesForPlanFromDB(planName string) ([]string, error) {
	return getFeaturesForPlan(planName)
}

// ClearFeatureCache removes cached features for a specific plan (or all plans if empty)
func ClearFeatureCache(planName string) {
	if planName == "" {
		featureCache.Range(func(key, _ interface{}) bool {
			featureCache.Delete(key)
			return true
		})
	} else {
		featureCache.Delete(planName)
	}
}
