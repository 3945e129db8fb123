package controllers

import (
	"errors"
	"net/http"

	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
)

// fail maps service error kinds onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	}
}
