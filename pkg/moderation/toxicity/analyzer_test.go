package toxicity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modguard/pipeline/pkg/moderation"
	"github.com/modguard/pipeline/pkg/moderation/toxicity"
)

func newAnalyzer(baseURL string, threshold float64) *toxicity.HTTPAnalyzer {
	return toxicity.NewHTTPAnalyzer(logrus.New(), nil, toxicity.Config{
		BaseURL:   baseURL,
		Token:     "tok",
		Timeout:   time.Second,
		Threshold: threshold,
	})
}

func TestHTTPAnalyzer_Analyze(t *testing.T) {
	t.Run("score over threshold blocks with top category", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/toxicity", r.URL.Path)
			assert.Equal(t, "tok", r.Header.Get("Token"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"category_scores": map[string]float64{
					"harassment": 0.30,
					"toxicity":   0.92,
				},
			})
		}))
		defer server.Close()

		res, err := newAnalyzer(server.URL, 0.75).Analyze(context.Background(), "borderline text")

		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, "toxicity", res.Category)
	})

	t.Run("score under threshold allows", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"category_scores": map[string]float64{"toxicity": 0.12},
			})
		}))
		defer server.Close()

		res, err := newAnalyzer(server.URL, 0.75).Analyze(context.Background(), "fine text")

		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("missing token is a layer-unavailable error", func(t *testing.T) {
		analyzer := toxicity.NewHTTPAnalyzer(logrus.New(), nil, toxicity.Config{
			BaseURL: "http://unused",
			Timeout: time.Second,
		})

		_, err := analyzer.Analyze(context.Background(), "anything")

		var unavailable *moderation.LayerUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, moderation.LayerSecondary, unavailable.Layer)
	})

	t.Run("non-200 is a layer-transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newAnalyzer(server.URL, 0.75).Analyze(context.Background(), "anything")

		var transport *moderation.LayerTransportError
		require.ErrorAs(t, err, &transport)
		assert.Equal(t, moderation.LayerSecondary, transport.Layer)
	})

	t.Run("slow upstream is a layer-timeout error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		analyzer := toxicity.NewHTTPAnalyzer(logrus.New(), nil, toxicity.Config{
			BaseURL:   server.URL,
			Token:     "tok",
			Timeout:   20 * time.Millisecond,
			Threshold: 0.75,
		})

		_, err := analyzer.Analyze(context.Background(), "anything")

		var timeout *moderation.LayerTimeoutError
		require.ErrorAs(t, err, &timeout)
	})
}
