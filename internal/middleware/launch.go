package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/models"
)

// ContextKeyLaunch holds the launch loaded by RequireLaunch.
const ContextKeyLaunch = "launch"

// LaunchFinder looks a launch up by id.
type LaunchFinder interface {
	GetLaunch(id string) (*models.Launch, error)
}

// RequireLaunch loads the launch named by the :id parameter into the
// context, or aborts with 404.
func RequireLaunch(finder LaunchFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		launch, err := finder.GetLaunch(c.Param("id"))
		if err != nil {
			apierrors.NotFound(c, "Launch not found")
			c.Abort()
			return
		}

		c.Set(ContextKeyLaunch, *launch)
		c.Next()
	}
}

// GetLaunch returns the launch stored by RequireLaunch.
func GetLaunch(c *gin.Context) (models.Launch, bool) {
	v, exists := c.Get(ContextKeyLaunch)
	if !exists {
		return models.Launch{}, false
	}
	launch, ok := v.(models.Launch)
	return launch, ok
}
