// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/transactiondelivery"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/internal/transactionservice"
	"github.com/go-petr/pet-ledger/internal/transferdelivery"
	"github.com/go-petr/pet-ledger/internal/transferservice"
	"github.com/go-petr/pet-ledger/internal/webui"
	"github.com/go-petr/pet-ledger/pkg/cachepkg"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/ibanpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Repos holds the storage backends of all domains.
type Repos struct {
	Accounts     accountservice.Repo
	Transfers    transferservice.Repo
	Transactions transactionservice.Repo
}

// NewPGSRepos returns PostgreSQL backed repositories.
func NewPGSRepos(conn *sql.DB) Repos {
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	return Repos{
		Accounts:     accountrepo.NewRepoPGS(conn),
		Transfers:    transactionRepo,
		Transactions: transactionRepo,
	}
}

// NewMemRepos returns repositories backed by the in-process store.
func NewMemRepos(store *memstore.Store) Repos {
	return Repos{
		Accounts:     store,
		Transfers:    store,
		Transactions: store,
	}
}

// Server holds db connection, handlers router and configuration.
type Server struct {
	// DB is nil when the server runs on the in-process store.
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, repos Repos, cache cachepkg.Cache, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	ids, err := ibanpkg.NewGenerator(config.BankCountryCode, config.BankCode)
	if err != nil {
		return nil, err
	}

	accountService := accountservice.New(repos.Accounts, ids, cache)
	transferService := transferservice.New(repos.Transfers, cache, config.TransferTimeout)
	transactionService := transactionservice.New(repos.Transactions, cache)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	webui.Register(engine)

	api := engine.Group("/api")

	api.POST("/accounts/create", accountHandler.Create)
	api.GET("/accounts", accountHandler.List)
	api.POST("/transfer", transferHandler.Create)
	api.GET("/transactions", transactionHandler.List)

	engine.NoRoute(func(gctx *gin.Context) {
		gctx.JSON(http.StatusNotFound, web.Response{Error: "route not found", Code: errorspkg.CodeNotFound})
	})

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("notblank", accountdelivery.NotBlank)
		if err != nil {
			return nil, errors.New("cannot register notblank validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
