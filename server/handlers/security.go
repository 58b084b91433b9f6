package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/authz"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/server"
	"github.com/stockwatch/stockwatch/store"
)

// SecurityHandler serves the credential-record CRUD surface.
type SecurityHandler struct {
	users  *store.UserStore
	policy *authz.Policy
	hasher password.Hasher
	log    *logger.Logger
}

func NewSecurityHandler(users *store.UserStore, policy *authz.Policy, hasher password.Hasher, log *logger.Logger) *SecurityHandler {
	return &SecurityHandler{
		users:  users,
		policy: policy,
		hasher: hasher,
		log:    log.WithComponent("security_handler"),
	}
}

// List returns every credential record, admin only.
func (h *SecurityHandler) List(c *gin.Context) {
	infos, err := h.users.ListSecurityInfo(c.Request.Context())
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, infos)
}

// Get returns the credential record of one user, admin or self only.
func (h *SecurityHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, id) {
		server.RespondError(c, errors.Forbidden())
		return
	}
	info, err := h.users.GetSecurityInfo(c.Request.Context(), id)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, info)
}

// Create attaches credentials to an existing user, admin only.
func (h *SecurityHandler) Create(c *gin.Context) {
	var req model.SecurityInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return
	}
	if req.UserID == 0 || req.Username == "" || req.Email == "" || req.Password == "" {
		server.RespondError(c, errors.IncompleteData())
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		server.RespondError(c, errors.Validation("password cannot be hashed"))
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		server.RespondError(c, errors.Validation("role must be one of: ADMIN USER"))
		return
	}

	info := model.SecurityInfo{
		UserID:       req.UserID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.users.CreateSecurityInfo(c.Request.Context(), &info); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondCreated(c, info)
}

// Update modifies a credential record, admin or self only. Role changes
// are admin only; a provided password is re-hashed before storage.
func (h *SecurityHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, id) {
		server.RespondError(c, errors.Forbidden())
		return
	}

	var req model.SecurityInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.IncompleteData())
		return
	}
	if req.Role != "" && !principal.IsAdmin() {
		server.RespondError(c, errors.Forbidden())
		return
	}

	hash := ""
	if req.Password != "" {
		var err error
		hash, err = h.hasher.Hash(req.Password)
		if err != nil {
			server.RespondError(c, errors.Validation("password cannot be hashed"))
			return
		}
	}

	info, err := h.users.UpdateSecurityInfo(c.Request.Context(), id, req.Username, req.Email, hash, req.Role)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, info)
}

// Delete removes a credential record, admin or self only.
func (h *SecurityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	principal := authctx.MustGet(c.Request.Context())
	if !h.policy.CanAccess(c.Request.Context(), principal.Login, id) {
		server.RespondError(c, errors.Forbidden())
		return
	}
	if err := h.users.DeleteSecurityInfo(c.Request.Context(), id); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}
