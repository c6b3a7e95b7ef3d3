package api

import (
	"errors"
	"net/http"

	"tokenengine/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps typed domain errors onto HTTP statuses. Anything
// unrecognized is a 500 and gets logged; domain rejections are the caller's
// problem and stay at warn-free request level.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrInsufficientTokens):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrGrantAlreadyActive),
		errors.Is(err, entities.ErrMilestoneNotEligible),
		errors.Is(err, entities.ErrStoreConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrInvalidWindow),
		errors.Is(err, entities.ErrInvalidWinnerSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
