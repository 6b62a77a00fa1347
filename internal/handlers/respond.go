package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/release-planner/internal/constants"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/export"
	"github.com/yukikurage/release-planner/internal/services"
)

// respond writes value with status. When the service reports an error the
// mapped API error is written instead; a change that only failed to reach
// the remote store still carries value in the error details.
func respond(c *gin.Context, status int, value any, err error) {
	if err != nil {
		respondServiceError(c, err, value)
		return
	}
	c.JSON(status, value)
}

func respondServiceError(c *gin.Context, err error, details any) {
	var openaiErr *openai.APIError
	var requestErr *openai.RequestError

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrKPINotFound),
		errors.Is(err, services.ErrLaunchNotFound),
		errors.Is(err, services.ErrActionNotFound),
		errors.Is(err, services.ErrPublicationNotFound),
		errors.Is(err, services.ErrIdeaNotFound),
		errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrPerspectiveNotFound),
		errors.Is(err, services.ErrSubtaskNotFound),
		errors.Is(err, services.ErrAccountNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrPerspectiveExists),
		errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, export.ErrNoRecords):
		apierrors.NoData(c, err.Error())
	case errors.Is(err, services.ErrRemoteUnavailable):
		apierrors.RemoteUnavailable(c, details)
	case errors.Is(err, services.ErrAssistantDisabled):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.As(err, &openaiErr), errors.As(err, &requestErr):
		apierrors.BadGateway(c, "Content assistant request failed")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

// deleted answers a successful delete.
func deleted(c *gin.Context, err error) {
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}
