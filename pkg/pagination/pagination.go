// Package pagination parses the page window shared by every list endpoint.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20

	// MaxLimit caps a single page so dashboard polling cannot request
	// unbounded result sets.
	MaxLimit = 100
)

// Params is the validated page window.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads the page and limit query parameters, substituting defaults for
// missing or non-positive values and clamping limit to MaxLimit.
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
