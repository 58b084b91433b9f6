package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/server"
	"github.com/stockwatch/stockwatch/store"
	"github.com/stockwatch/stockwatch/validation"
)

// AuthHandler serves login and self-service registration.
type AuthHandler struct {
	auth   *auth.Service
	users  *store.UserStore
	hasher password.Hasher
	log    *logger.Logger
}

func NewAuthHandler(svc *auth.Service, users *store.UserStore, hasher password.Hasher, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		users:  users,
		hasher: hasher,
		log:    log.WithComponent("auth_handler"),
	}
}

// Login exchanges a username-or-email plus password for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, model.AuthResponse{Token: token})
}

// Register creates a user and its credential record in one transaction.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondError(c, err)
		return
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		server.RespondError(c, errors.Validation("password cannot be hashed"))
		return
	}

	user := model.User{
		FirstName:  req.FirstName,
		SecondName: req.SecondName,
		Birthday:   birthday,
	}
	info := model.SecurityInfo{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := h.users.Register(c.Request.Context(), &user, &info); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondCreated(c, user)
}

func parseBirthday(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return nil, errors.Validation("birthday must use format " + model.DateLayout)
	}
	return &t, nil
}
