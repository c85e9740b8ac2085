package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/api/handler"
	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/service"
)

type Router struct {
	authHandler     *handler.AuthHandler
	pageHandler     *handler.PageHandler
	paymentHandler  *handler.PaymentHandler
	accountHandler  *handler.AccountHandler
	generateHandler *handler.GenerateHandler
	accountService  *service.AccountService
	sessions        *middleware.Sessions
	cfg             *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	pageHandler *handler.PageHandler,
	paymentHandler *handler.PaymentHandler,
	accountHandler *handler.AccountHandler,
	generateHandler *handler.GenerateHandler,
	accountService *service.AccountService,
	sessions *middleware.Sessions,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     authHandler,
		pageHandler:     pageHandler,
		paymentHandler:  paymentHandler,
		accountHandler:  accountHandler,
		generateHandler: generateHandler,
		accountService:  accountService,
		sessions:        sessions,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))
	engine.Use(r.sessions.Load())

	// 页面
	engine.GET("/", r.pageHandler.Home)
	engine.GET("/pricing", r.pageHandler.Pricing)
	engine.GET("/checkout", r.pageHandler.Checkout)

	// 认证
	engine.POST("/signup", r.authHandler.Signup)
	engine.POST("/login", r.authHandler.Login)
	engine.GET("/logout", r.authHandler.Logout)

	// 支付
	engine.POST("/confirm-payment", r.paymentHandler.Confirm)
	paypal := engine.Group("/paypal")
	{
		paypal.POST("/create-order", r.paymentHandler.CreateOrder)
		paypal.POST("/capture-order", r.paymentHandler.CaptureOrder)
		paypal.POST("/activate", r.paymentHandler.Activate)
	}

	// 账户，需要登录
	engine.GET("/account",
		middleware.LoadAccount(r.accountService, r.sessions, "/", ""),
		r.accountHandler.Show)
	engine.POST("/cancel-membership",
		middleware.LoadAccount(r.accountService, r.sessions, "/", "Please login first"),
		r.accountHandler.Cancel)

	// 生成
	engine.GET("/generate",
		middleware.LoadAccount(r.accountService, r.sessions, "/", "please login first"),
		middleware.RequirePaid("/pricing", "Upgrade to access"),
		r.generateHandler.Page)
	engine.POST("/generate", r.generateHandler.Create)
	engine.POST("/generate-video", r.generateHandler.Create)

	return engine
}
