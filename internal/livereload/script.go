package livereload

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/whatisjasongoldstein/beagle/internal/logfields"
)

// Script returns the client snippet connecting to the SSE endpoint at baseURL.
func Script(baseURL string) string {
	return fmt.Sprintf(`(() => {
  if (window.__BEAGLE_LR__) return;
  window.__BEAGLE_LR__ = true;
  function connect() {
    const es = new EventSource(%q);
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.hash; return; }
        if (p.hash && p.hash !== current) { console.log('[beagle] rebuilt, reloading'); location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();`, baseURL+"/livereload")
}

// Tag is the <script> element injected into preview HTML.
func Tag(baseURL string) string {
	return fmt.Sprintf(`<script src="%s/livereload.js"></script>`, baseURL)
}

// Handler serves the SSE endpoint and the client script for a dedicated listener.
func Handler(hub *Hub, baseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livereload", cors(hub))
	script := []byte(Script(baseURL))
	mux.Handle("/livereload.js", cors(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(script); err != nil {
			slog.Error("failed to write livereload script", logfields.Error(err))
		}
	})))
	return mux
}

// cors lets the preview origin reach the livereload port.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
