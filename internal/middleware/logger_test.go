package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/pkg/configpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(configpkg.Config{Environement: "production"}, &buf)
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger.Debug().Msg("hidden")
	logger.Info().Str("k", "v").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Equal(t, "v", entry["k"])

	dev := newLogger(configpkg.Config{Environement: "development"}, &buf)
	require.Equal(t, zerolog.TraceLevel, dev.GetLevel())
}

func TestRequestLogger(t *testing.T) {
	testCases := []struct {
		name       string
		requestID  string
		handler    gin.HandlerFunc
		wantLevel  string
		wantStatus int
		wantSameID bool
	}{
		{
			name:       "GeneratesRequestID",
			handler:    func(c *gin.Context) { c.Status(http.StatusOK) },
			wantLevel:  "info",
			wantStatus: http.StatusOK,
		},
		{
			name:       "PropagatesRequestID",
			requestID:  "req-123",
			handler:    func(c *gin.Context) { c.Status(http.StatusOK) },
			wantLevel:  "info",
			wantStatus: http.StatusOK,
			wantSameID: true,
		},
		{
			name:       "ServerErrorLoggedAsError",
			handler:    func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) },
			wantLevel:  "error",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := zerolog.New(&buf)

			server := gin.New()
			server.Use(RequestLogger(logger))
			server.GET("/ping", func(c *gin.Context) {
				zerolog.Ctx(c.Request.Context()).Info().Msg("handler")
				tc.handler(c)
			})

			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			require.NoError(t, err)

			if tc.requestID != "" {
				req.Header.Set(RequestIDHeader, tc.requestID)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatus, recorder.Code)

			gotID := recorder.Header().Get(RequestIDHeader)
			require.NotEmpty(t, gotID)

			if tc.wantSameID {
				require.Equal(t, tc.requestID, gotID)
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 2)

			var handlerEntry map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &handlerEntry))
			require.Equal(t, "handler", handlerEntry["message"])
			require.Equal(t, gotID, handlerEntry["request_id"])

			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
			require.Equal(t, tc.wantLevel, entry["level"])
			require.Equal(t, gotID, entry["request_id"])
			require.Equal(t, "GET", entry["method"])
			require.Equal(t, "/ping", entry["path"])
			require.EqualValues(t, tc.wantStatus, entry["status_code"])
		})
	}
}
