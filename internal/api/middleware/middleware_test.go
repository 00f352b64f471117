package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/monitoring"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func requestsTotal(t *testing.T, method, route, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, monitoring.HttpRequestsTotal.WithLabelValues(method, route, status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecovery_KeepsServingAfterPanic(t *testing.T) {
	r := newEngine(RequestID(), Metrics(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	before := requestsTotal(t, http.MethodGet, "/boom", "500")

	w := do(r, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/ok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	// panic 请求也计入指标
	assert.Equal(t, before+1, requestsTotal(t, http.MethodGet, "/boom", "500"))
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	r := newEngine(RateLimit(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/").Code)
}

func TestRequireLogin_NextKeepsQuery(t *testing.T) {
	r := newEngine()
	r.GET("/secret", RequireLogin("/login"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/secret?tab=1&sort=new")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/secret?tab=1&sort=new"), w.Header().Get("Location"))
}

func TestRequireLogin_AuthenticatedPasses(t *testing.T) {
	alice := identity.Identity{UserID: 1, Username: "alice"}
	r := newEngine(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), alice))
		c.Next()
	})
	r.GET("/secret", RequireLogin("/login"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentIdentity(c).Username)
	})

	w := do(r, http.MethodGet, "/secret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}
