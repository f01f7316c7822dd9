package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter configures the HTTP routes for the locker admin/read server.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	// middleware
	r.Use(RequestLogger)
	r.Use(JSONHeaders)

	// transfer reads
	r.HandleFunc("/api/transfers/{chain}/{nonce}", s.GetTransfer).Methods(http.MethodGet)
	r.HandleFunc("/api/transfers/{chain}/{nonce}/finalised", s.IsTransferFinalised).Methods(http.MethodGet)
	r.HandleFunc("/api/transfers", s.InitTransfer).Methods(http.MethodPost)

	// token registry reads
	r.HandleFunc("/api/tokens/{chain}/{tokenID}", s.GetTokenAddress).Methods(http.MethodGet)
	r.HandleFunc("/api/nonces/{chain}", s.GetDestinationNonce).Methods(http.MethodGet)

	// admin
	r.HandleFunc("/api/admin/factories", s.AddFactory).Methods(http.MethodPost)

	// storage accounting
	r.HandleFunc("/api/storage/deposit", s.StorageDeposit).Methods(http.MethodPost)
	r.HandleFunc("/api/storage/{account}", s.StorageBalance).Methods(http.MethodGet)

	return r
}
