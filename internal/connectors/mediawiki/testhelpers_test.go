package mediawiki

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeWiki is a scripted api.php. Handlers are keyed by action, or by
// "query:<meta|prop>" for queries.
type fakeWiki struct {
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]func(r *http.Request) (int, any)
	requests []*http.Request
	forms    []map[string]string
}

func newFakeWiki(t *testing.T) (*fakeWiki, *httptest.Server) {
	t.Helper()
	w := &fakeWiki{t: t, handlers: make(map[string]func(r *http.Request) (int, any))}
	srv := httptest.NewServer(http.HandlerFunc(w.serve))
	t.Cleanup(srv.Close)
	return w, srv
}

func (w *fakeWiki) handle(key string, fn func(r *http.Request) (int, any)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[key] = fn
}

func (w *fakeWiki) reply(key string, body any) {
	w.handle(key, func(*http.Request) (int, any) { return http.StatusOK, body })
}

func (w *fakeWiki) serve(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	form := make(map[string]string, len(r.Form))
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}

	key := form["action"]
	if key == "query" {
		switch {
		case form["meta"] != "":
			key += ":" + form["meta"]
		case form["prop"] != "":
			key += ":" + form["prop"]
		}
	}

	w.mu.Lock()
	w.requests = append(w.requests, r)
	w.forms = append(w.forms, form)
	fn, ok := w.handlers[key]
	w.mu.Unlock()

	if !ok {
		w.t.Errorf("unexpected request %q", key)
		http.Error(rw, "unexpected", http.StatusNotImplemented)
		return
	}
	status, body := fn(r)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(rw).Encode(body)
	}
}

// count returns how many requests carried the given action.
func (w *fakeWiki) count(action string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, f := range w.forms {
		if f["action"] == action {
			n++
		}
	}
	return n
}

func (w *fakeWiki) lastForm(action string) map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.forms) - 1; i >= 0; i-- {
		if w.forms[i]["action"] == action {
			return w.forms[i]
		}
	}
	return nil
}

func (w *fakeWiki) lastRequest() *http.Request {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.requests) == 0 {
		return nil
	}
	return w.requests[len(w.requests)-1]
}

// loginFlow scripts a successful bot-password login.
func (w *fakeWiki) loginFlow() {
	w.reply("query:tokens", map[string]any{
		"query": map[string]any{"tokens": map[string]any{
			"logintoken": "login+\\",
			"csrftoken":  "csrf+\\",
		}},
	})
	w.handle("login", func(r *http.Request) (int, any) {
		if r.Method != http.MethodPost || r.Form.Get("lgpassword") != "secret" {
			return http.StatusOK, map[string]any{"login": map[string]any{"result": "Failed", "reason": "Incorrect password"}}
		}
		return http.StatusOK, map[string]any{"login": map[string]any{"result": "Success", "lgusername": "StatsBot"}}
	})
}

func fastConfig() ClientConfig {
	return ClientConfig{
		UserAgent:     "wikistats-test",
		Retries:       2,
		RetryInterval: time.Millisecond,
		Username:      "StatsBot@stats",
		Password:      "secret",
	}
}
