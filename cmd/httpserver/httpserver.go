// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/accountrepo"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/carddelivery"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/cardservice"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/familydelivery"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/familyservice"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/middleware"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/sessiondelivery"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/sessionservice"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/transferdelivery"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/transferservice"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/configpkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
)

// Server holds the store handle, handlers router and configuration.
type Server struct {
	DB     *bolt.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(db *bolt.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	repo, err := accountrepo.NewRepoBolt(db)
	if err != nil {
		return nil, errors.New("cannot initialize account repository")
	}

	if err := repo.Reconcile(logger.WithContext(context.Background())); err != nil {
		return nil, errors.New("cannot reconcile account store")
	}

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	sessionService := sessionservice.New(repo, config, tokenMaker)
	cardService := cardservice.New(repo)
	transferService := transferservice.New(repo)
	familyService := familyservice.New(repo)

	sessionHandler := sessiondelivery.NewHandler(sessionService)
	cardHandler := carddelivery.NewHandler(cardService)
	transferHandler := transferdelivery.NewHandler(transferService)
	familyHandler := familydelivery.NewHandler(familyService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/login", sessionHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/logout", sessionHandler.Logout)
	authRoutes.GET("/account", sessionHandler.Get)
	authRoutes.PATCH("/account", sessionHandler.Update)
	authRoutes.DELETE("/account", sessionHandler.Delete)
	authRoutes.POST("/account/premium", sessionHandler.Premium)

	authRoutes.POST("/cards", cardHandler.Issue)
	authRoutes.PATCH("/cards/:id/name", cardHandler.Rename)
	authRoutes.PATCH("/cards/:id/limit", cardHandler.SetLimit)
	authRoutes.POST("/cards/:id/block", cardHandler.ToggleBlock)
	authRoutes.DELETE("/cards/:id", cardHandler.Delete)

	authRoutes.POST("/transfers", transferHandler.Create)

	authRoutes.POST("/family", familyHandler.Create)
	authRoutes.POST("/family/join", familyHandler.Join)
	authRoutes.GET("/family", familyHandler.View)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("transfertype", transferdelivery.ValidTransferType)
		if err != nil {
			return nil, errors.New("cannot register transfer type validator")
		}
	}

	server := &Server{
		DB:     db,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
