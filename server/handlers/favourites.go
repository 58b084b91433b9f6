package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/authz"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/server"
	"github.com/stockwatch/stockwatch/store"
	"github.com/stockwatch/stockwatch/validation"
)

// FavouriteHandler serves the favourite-stock list. Every operation
// targets a user id and is limited to admins or the user themselves.
type FavouriteHandler struct {
	users  *store.UserStore
	policy *authz.Policy
	log    *logger.Logger
}

func NewFavouriteHandler(users *store.UserStore, policy *authz.Policy, log *logger.Logger) *FavouriteHandler {
	return &FavouriteHandler{
		users:  users,
		policy: policy,
		log:    log.WithComponent("favourite_handler"),
	}
}

// List returns the favourites of the target user. The userId query
// parameter defaults to the caller.
func (h *FavouriteHandler) List(c *gin.Context) {
	principal := authctx.MustGet(c.Request.Context())

	target := principal.UserID
	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			server.RespondError(c, errors.Validation("userId must be a positive integer"))
			return
		}
		target = uint(parsed)
	}
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, target) {
		server.RespondError(c, errors.Forbidden())
		return
	}

	metas, err := h.users.Favourites(c.Request.Context(), target)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, metas)
}

// Add puts a symbol on the target user's favourite list.
func (h *FavouriteHandler) Add(c *gin.Context) {
	req, ok := h.bindTarget(c)
	if !ok {
		return
	}
	if err := h.users.AddFavourite(c.Request.Context(), req.UserID, req.Symbol); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondCreated(c, nil)
}

// Remove takes a symbol off the target user's favourite list.
func (h *FavouriteHandler) Remove(c *gin.Context) {
	req, ok := h.bindTarget(c)
	if !ok {
		return
	}
	if err := h.users.RemoveFavourite(c.Request.Context(), req.UserID, req.Symbol); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *FavouriteHandler) bindTarget(c *gin.Context) (model.FavouriteStockRequest, bool) {
	var req model.FavouriteStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return req, false
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondError(c, err)
		return req, false
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, req.UserID) {
		server.RespondError(c, errors.Forbidden())
		return req, false
	}
	return req, true
}
