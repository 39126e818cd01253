package validation

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(rules *Rules) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/items/:id", Middleware(rules), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return r
}

func serve(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_NoRules(t *testing.T) {
	rec := serve(newEngine(nil), "/items/abc", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_Params(t *testing.T) {
	r := newEngine(&Rules{Params: Schema{"id": "required,numeric"}})

	assert.Equal(t, http.StatusOK, serve(r, "/items/42", "").Code)

	rec := serve(r, "/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"id"`)
	assert.Contains(t, rec.Body.String(), `"rule":"numeric"`)
}

func TestMiddleware_Query(t *testing.T) {
	r := newEngine(&Rules{Query: Schema{"limit": "required,numeric"}})

	assert.Equal(t, http.StatusOK, serve(r, "/items/1?limit=10", "").Code)

	rec := serve(r, "/items/1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"query"`)
	assert.Contains(t, rec.Body.String(), `"rule":"required"`)
}

func TestMiddleware_AbsentOptionalField(t *testing.T) {
	r := newEngine(&Rules{
		Params: Schema{"slug": "alpha"},
		Query:  Schema{"limit": "numeric"},
	})

	assert.Equal(t, http.StatusOK, serve(r, "/items/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, "/items/1?limit=ten", "").Code)
}

func TestMiddleware_PayloadIsRestored(t *testing.T) {
	r := newEngine(&Rules{Payload: Schema{"email": "required,email"}})

	rec := serve(r, "/items/1", `{"email":"a@b.co"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"a@b.co"}`, rec.Body.String())

	rec = serve(r, "/items/1", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"payload"`)
}

func TestMiddleware_PayloadNotJSON(t *testing.T) {
	r := newEngine(&Rules{Payload: Schema{"email": "required"}})

	rec := serve(r, "/items/1", `not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request payload")
}

func TestRulesClone(t *testing.T) {
	orig := &Rules{Params: Schema{"id": "uuid4"}}
	cp := orig.Clone()
	cp.Params["id"] = "numeric"

	assert.Equal(t, "uuid4", orig.Params["id"])
	assert.Nil(t, (*Rules)(nil).Clone())
	assert.True(t, (&Rules{}).IsEmpty())
}
