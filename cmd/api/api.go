package api

import (
	"net/http"
	"os"

	"github.com/andreyv-dev/ledger-service/cmd/logger"
	"github.com/andreyv-dev/ledger-service/service/ledger"
	"github.com/andreyv-dev/ledger-service/service/user"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

// Router builds the full route table. Tests mount it directly.
func (s *APIServer) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(router)

	ledgerHandler := ledger.NewHandler(s.db)
	ledgerHandler.RegisterRoutes(router)

	return router
}

func (s *APIServer) Run() error {
	router := s.Router()

	chain := handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, router))

	logger.Log.Info("server running", zap.String("addr", s.address))
	return http.ListenAndServe(s.address, chain)
}
