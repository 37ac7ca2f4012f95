package rest

import (
	"io"
	"net/http"

	"github.com/convoflow/convoflow/logger"
	"go.uber.org/zap"
)

// HandleVerifyWebhook answers the provider's subscription handshake:
// echo hub.challenge when the verify token matches.
func (s *Server) HandleVerifyWebhook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("hub.mode") == "subscribe" && query.Get("hub.verify_token") == s.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(query.Get("hub.challenge")))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

// HandleWebhook always acknowledges; the provider retries on non-200
// and a malformed payload will not get better on retry.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := s.dispatcher.HandleWebhook(payload); err != nil {
		logger.Error("error dispatching webhook", zap.Error(err))
	}
	w.WriteHeader(http.StatusOK)
}
