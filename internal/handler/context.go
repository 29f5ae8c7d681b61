package handler

import "github.com/gin-gonic/gin"

// companyID returns the tenant id stored by the auth middleware. Empty only
// on unauthenticated routes, which never call it.
func companyID(c *gin.Context) string {
	v, _ := c.Get("companyID")
	s, _ := v.(string)
	return s
}
