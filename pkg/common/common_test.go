package common

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matst80/slask-catalog/pkg/types"
)

func TestQueueHandlerFlushesOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	batches := [][]int{}
	q := NewQueueHandler(func(items []int) {
		mu.Lock()
		batches = append(batches, append([]int(nil), items...))
		mu.Unlock()
	}, 2, time.Hour)
	q.Add(1, 2, 3)
	q.Close()
	q.Close()

	assert.Equal(t, [][]int{{1, 2}, {3}}, batches)
	assert.Equal(t, 0, q.Len())
}

func TestSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://portal.local:8080/api/course/search", nil)
	id, isNew := HandleSessionCookie(w, r)
	require.True(t, isNew)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, id, cookies[0].Value)
	assert.Equal(t, "portal.local", cookies[0].Domain)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	again, isNew := HandleSessionCookie(httptest.NewRecorder(), r)
	assert.False(t, isNew)
	assert.Equal(t, id, again)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "12345"})
	replaced, isNew := HandleSessionCookie(httptest.NewRecorder(), r)
	assert.True(t, isNew)
	assert.NotEqual(t, "12345", replaced)
}

func TestAccessPolicyFromBearer(t *testing.T) {
	p := NewAccessPolicyParser("secret")
	token, err := p.Sign(types.AccessPolicy{Subject: "u1", Departments: []string{"Finance"}})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	policy := p.FromRequest(r)
	assert.Equal(t, "u1", policy.Subject)
	assert.Equal(t, []string{"public", "internal", "Finance"}, policy.Visibility())

	other := NewAccessPolicyParser("other")
	assert.Equal(t, types.AccessPolicy{}, other.FromRequest(r), "bad signature is anonymous")
	assert.Equal(t, types.AccessPolicy{}, p.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestJsonHandlerStatus(t *testing.T) {
	h := JsonHandler(func(w http.ResponseWriter, r *http.Request, sessionId string) error {
		return WithStatus(http.StatusNotFound, assert.AnError)
	})
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/", nil)
	r.Header.Set("Origin", "https://portal")
	h(w, r)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "https://portal", w.Header().Get("Access-Control-Allow-Origin"))
}
