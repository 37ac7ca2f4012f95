package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleVerifyWebhook(t *testing.T) {
	s := &Server{verifyToken: "secret-token"}
	for scenario, tc := range map[string]struct {
		query    string
		status   int
		response string
	}{
		"valid handshake echoes challenge": {
			"hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345",
			http.StatusOK, "12345",
		},
		"wrong token rejected": {
			"hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345",
			http.StatusForbidden, "",
		},
		"wrong mode rejected": {
			"hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345",
			http.StatusForbidden, "",
		},
	} {
		t.Run(scenario, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tc.query, nil)
			rec := httptest.NewRecorder()
			s.HandleVerifyWebhook(rec, req)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.response, rec.Body.String())
		})
	}
}
