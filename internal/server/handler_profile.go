package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/muhammadolammi/resumereview/internal/profiles"
)

func (s *Server) handlerGetProfile(c *gin.Context) {
	id, _ := auth.FromGin(c)
	p, err := s.profiles.GetOrCreate(c.Request.Context(), id.ID, id.Email)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handlerUpdateProfile(c *gin.Context) {
	id, _ := auth.FromGin(c)
	var body struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	p, err := s.profiles.Update(c.Request.Context(), id.ID, profiles.UpdateInput{
		Name:      body.Name,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
