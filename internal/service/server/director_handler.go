package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Agurato/filmbase/internal/model"
)

type DirectorManager interface {
	GetDirectors(ctx context.Context) ([]model.Director, error)
	CreateDirector(ctx context.Context, director model.Director) (*model.Director, error)
	UpdateDirector(ctx context.Context, id int64, director model.Director) (*model.Director, error)
	DeleteDirector(ctx context.Context, id int64) error
}

type DirectorHandler struct {
	DirectorManager
}

func NewDirectorHandler(dm DirectorManager) *DirectorHandler {
	return &DirectorHandler{
		DirectorManager: dm,
	}
}

// GETDirectors returns every director with their films
func (dh DirectorHandler) GETDirectors(c *gin.Context) {
	directors, err := dh.DirectorManager.GetDirectors(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, directors)
}

// POSTDirector creates a director
func (dh DirectorHandler) POSTDirector(c *gin.Context) {
	var director model.Director
	if !bindJSON(c, &director) {
		return
	}
	created, err := dh.DirectorManager.CreateDirector(c.Request.Context(), director)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// PUTDirector renames a director
func (dh DirectorHandler) PUTDirector(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var director model.Director
	if !bindJSON(c, &director) {
		return
	}
	updated, err := dh.DirectorManager.UpdateDirector(c.Request.Context(), id, director)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETEDirector deletes a director and their films
func (dh DirectorHandler) DELETEDirector(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := dh.DirectorManager.DeleteDirector(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, "Director deleted successfully: %d", id)
}
