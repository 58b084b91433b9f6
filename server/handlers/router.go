package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/authz"
	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/jobs"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/observability"
	"github.com/stockwatch/stockwatch/server/middleware"
	"github.com/stockwatch/stockwatch/store"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Users   *store.UserStore
	Stocks  *store.StockStore
	Auth    *auth.Service
	Policy  *authz.Policy
	Hasher  password.Hasher
	Market  *market.Client
	Refresh *jobs.RefreshJob
	Digest  *jobs.DigestJob
	DB      *database.DB
	Metrics *observability.Metrics
	CORS    middleware.CORSConfig
	Log     *logger.Logger
}

// Register installs the middleware chain and the full route table on
// the engine. The guard enforces per-route access; handlers only add
// ownership checks on top.
func Register(engine *gin.Engine, d Deps) {
	engine.Use(
		middleware.Recovery(d.Log),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.CORS),
		middleware.Metrics(d.Metrics),
		middleware.Authenticate(d.Auth, d.Log),
		middleware.Guard(),
	)

	authH := NewAuthHandler(d.Auth, d.Users, d.Hasher, d.Log)
	userH := NewUserHandler(d.Users, d.Policy, d.Log)
	secH := NewSecurityHandler(d.Users, d.Policy, d.Hasher, d.Log)
	stockH := NewStockHandler(d.Stocks, d.Market, d.Refresh, d.Digest, d.Log)
	favH := NewFavouriteHandler(d.Users, d.Policy, d.Log)
	healthH := NewHealthHandler(d.DB)

	engine.GET("/health", healthH.Check)

	engine.POST("/authentication", authH.Login)
	engine.POST("/register", authH.Register)

	engine.GET("/users", userH.List)
	engine.GET("/users/me", userH.Me)
	engine.GET("/users/:id", userH.Get)
	engine.POST("/users", userH.Create)
	engine.PUT("/users", userH.Update)
	engine.DELETE("/users/:id", userH.Delete)

	engine.GET("/security-info", secH.List)
	engine.GET("/security-info/:id", secH.Get)
	engine.POST("/security-info", secH.Create)
	engine.PUT("/security-info/:id", secH.Update)
	engine.DELETE("/security-info/:id", secH.Delete)

	engine.GET("/stocks", stockH.List)
	engine.GET("/stocks/:symbol", stockH.Get)
	engine.POST("/stocks/update", stockH.Update)
	engine.POST("/stocks/send-emails", stockH.SendEmails)

	engine.GET("/fav-stocks", favH.List)
	engine.POST("/fav-stocks", favH.Add)
	engine.DELETE("/fav-stocks", favH.Remove)
}
