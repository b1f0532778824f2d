package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"startup-os-backend/internal/middleware"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/services"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *schemas.ValidationError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPremiumRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMissingContext):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := models.ErrorResponse{Error: http.StatusText(status), Message: err.Error()}
	if status == http.StatusInternalServerError && !errors.Is(err, services.ErrPersistence) {
		// Keep unexpected internals out of the response; they are logged.
		resp.Message = services.ErrUnexpected.Error()
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}

// requireUser reads the authenticated user and answers 401 when it is absent.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	return userID, true
}

func projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return uuid.Nil, false
	}
	return id, true
}

// isFormPost reports whether the request came from an HTML form rather than
// a JSON client. Form posts are answered with redirects.
func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEPOSTForm || ct == gin.MIMEMultipartPOSTForm
}

// redirectBack sends a form post back to path, carrying msg as an error banner.
func redirectBack(c *gin.Context, path, msg string) {
	if msg != "" {
		path += "?error=" + url.QueryEscape(msg)
	}
	c.Redirect(http.StatusSeeOther, path)
}
