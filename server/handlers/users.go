package handlers

import (
	"strconv"
	"time"

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

// UserHandler serves the user profile CRUD surface. Ownership checks
// answer 403 before revealing whether the target exists.
type UserHandler struct {
	users  *store.UserStore
	policy *authz.Policy
	log    *logger.Logger
}

func NewUserHandler(users *store.UserStore, policy *authz.Policy, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		policy: policy,
		log:    log.WithComponent("user_handler"),
	}
}

// List returns every non-deleted user.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, users)
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	principal := authctx.MustGet(c.Request.Context())
	user, err := h.users.Get(c.Request.Context(), principal.UserID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, user)
}

// Get returns one user by id, admin or the user themselves only.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, id) {
		server.RespondError(c, errors.Forbidden())
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, user)
}

// Create adds a user profile without credentials, admin only.
func (h *UserHandler) Create(c *gin.Context) {
	var req model.UserCreateRequest
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

	user := model.User{
		FirstName:  req.FirstName,
		SecondName: req.SecondName,
		Birthday:   birthday,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondCreated(c, user)
}

// Update modifies a profile. Omitted fields keep their previous values.
func (h *UserHandler) Update(c *gin.Context) {
	var req model.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondError(c, err)
		return
	}

	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, req.ID) {
		server.RespondError(c, errors.Forbidden())
		return
	}

	var birthday *time.Time
	if req.Birthday != nil {
		parsed, err := parseBirthday(*req.Birthday)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		birthday = parsed
	}

	user, err := h.users.Update(c.Request.Context(), req.ID, req.FirstName, req.SecondName, birthday)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, user)
}

// Delete removes a user. Deleting yourself soft-deletes the account so
// the identifiers stay reserved; an admin deleting someone else purges
// the profile, credentials and favourites for good.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, id) {
		server.RespondError(c, errors.Forbidden())
		return
	}

	var err error
	if principal.IsAdmin() && principal.UserID != id {
		err = h.users.HardDelete(c.Request.Context(), id)
	} else {
		err = h.users.SoftDelete(c.Request.Context(), id)
	}
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}

// pathID parses the :id path segment, responding with a validation
// error itself when the segment is not a positive integer.
func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		server.RespondError(c, errors.Validation("id must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
