package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer initializes the router of the API
func NewServer(filmHandler *FilmHandler, directorHandler *DirectorHandler) (*gin.Engine, error) {
	if err := registerValidations(); err != nil {
		return nil, fmt.Errorf("could not register validations: %w", err)
	}

	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), requestLogger, prometheusMetrics)

	router.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	api.Group("/directors").
		GET("", directorHandler.GETDirectors).
		POST("", directorHandler.POSTDirector).
		PUT("/:id", directorHandler.PUTDirector).
		DELETE("/:id", directorHandler.DELETEDirector)

	api.Group("/films").
		POST("", filmHandler.POSTFilm).
		POST("/_list", filmHandler.POSTFilmList).
		POST("/_report", filmHandler.POSTFilmReport).
		POST("/upload", filmHandler.POSTFilmUpload).
		GET("/:id", filmHandler.GETFilm).
		PUT("/:id", filmHandler.PUTFilm).
		DELETE("/:id", filmHandler.DELETEFilm)

	return router, nil
}
