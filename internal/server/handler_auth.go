package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handlerSignUp(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	sess, err := s.auth.SignUp(c.Request.Context(), body.Email, body.Password, body.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) handlerLogin(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	sess, err := s.auth.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handlerRefresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperr.Validation("Invalid request body"))
		return
	}
	sess, err := s.auth.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handlerMe(c *gin.Context) {
	id, ok := auth.FromGin(c)
	if !ok {
		s.respondError(c, apperr.Unauthorized("Unauthorized"))
		return
	}
	c.JSON(http.StatusOK, id)
}
