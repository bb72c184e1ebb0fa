// Command backend is a local stand-in for the drama backend. It serves the
// client's endpoints from an embedded fixture.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"
)

//go:embed data.json
var jsonData []byte

func main() {
	addr := flag.String("addr", ":3001", "listen address")
	latency := flag.Duration("latency", 0, "extra delay added to every response")
	flag.Parse()

	var fx fixture
	if err := json.Unmarshal(jsonData, &fx); err != nil {
		log.Fatalf("[Mock Backend] invalid fixture: %v", err)
	}

	srv := newServer(&fx, []byte("mock-backend-secret"), time.Hour)

	log.Printf("Mock backend running on %s", *addr)
	server := &http.Server{
		Addr:         *addr,
		Handler:      withLatency(srv.routes(), *latency),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func withLatency(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d > 0 {
			time.Sleep(d)
		}
		next.ServeHTTP(w, r)
		log.Printf("[Mock Backend] %s %s", r.Method, r.URL.RequestURI())
	})
}
