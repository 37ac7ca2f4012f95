package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/convoflow/convoflow/config"
	"github.com/convoflow/convoflow/dispatch"
	"github.com/convoflow/convoflow/engine"
	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/persistence"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port        int
	verifyToken string
	eng         *engine.Engine
	flows       *flow.Service
	runs        persistence.RunStore
	tenants     persistence.TenantStore
	contacts    persistence.ContactStore
	products    persistence.ProductStore
	dispatcher  *dispatch.Dispatcher
}

func NewServer(conf config.Config, eng *engine.Engine, flows *flow.Service, runs persistence.RunStore, tenants persistence.TenantStore, contacts persistence.ContactStore, products persistence.ProductStore, dispatcher *dispatch.Dispatcher) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", conf.HttpPort),
		},
		Port:        conf.HttpPort,
		verifyToken: conf.WhatsApp.VerifyToken,
		eng:         eng,
		flows:       flows,
		runs:        runs,
		tenants:     tenants,
		contacts:    contacts,
		products:    products,
		dispatcher:  dispatcher,
	}

	router := mux.NewRouter()
	router.HandleFunc("/flow", s.HandleSaveFlow).Methods(http.MethodPost)
	router.HandleFunc("/flow/{tenantId}/{flowId}", s.HandleGetFlow).Methods(http.MethodGet)
	router.HandleFunc("/flow/{tenantId}/{flowId}", s.HandleDeleteFlow).Methods(http.MethodDelete)
	router.HandleFunc("/flow/execute", s.HandleExecuteFlow).Methods(http.MethodPost)
	router.HandleFunc("/run/{tenantId}/{runId}", s.HandleGetRun).Methods(http.MethodGet)
	router.HandleFunc("/tenant", s.HandleSaveTenant).Methods(http.MethodPost)
	router.HandleFunc("/contact", s.HandleSaveContact).Methods(http.MethodPost)
	router.HandleFunc("/product", s.HandleSaveProduct).Methods(http.MethodPost)
	router.HandleFunc("/webhook", s.HandleVerifyWebhook).Methods(http.MethodGet)
	router.HandleFunc("/webhook", s.HandleWebhook).Methods(http.MethodPost)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, payload interface{}) {
	respondWithJSON(w, http.StatusOK, payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
