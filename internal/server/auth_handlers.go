package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/auth"
	"nutriplan/internal/user"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// loginRequest deliberately skips the registration length rule: rejecting a
// short password up front would reveal that no account can have one, and
// every bad credential must look the same to a caller.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *user.User `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to register")
		return
	}

	u := &user.User{Email: req.Email, PasswordHash: hash, FullName: req.FullName}
	if err := s.users.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			abortError(c, http.StatusConflict, "email already registered")
			return
		}
		abortError(c, http.StatusInternalServerError, "failed to register")
		return
	}

	s.respondTokens(c, http.StatusCreated, u)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := s.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		abortError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.respondTokens(c, http.StatusOK, u)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := s.jwt.ValidateRefresh(req.RefreshToken)
	if err != nil {
		abortError(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := s.jwt.GenerateAccess(claims.UserID, claims.Email)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (s *Server) handleMe(c *gin.Context) {
	u, err := s.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) respondTokens(c *gin.Context, status int, u *user.User) {
	access, err := s.jwt.GenerateAccess(u.ID, u.Email)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refresh, err := s.jwt.GenerateRefresh(u.ID, u.Email)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(status, tokenResponse{AccessToken: access, RefreshToken: refresh, User: u})
}
