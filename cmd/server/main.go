// Command server exposes the rolling backtest over HTTP, per SPEC_FULL
// §2.2's gin-gonic/gin + rs/cors wiring. Replaces the donor's cmd/api,
// which served a Grid-Status-specific battery/strategy/dataset catalog that
// has no equivalent in this domain.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"battery-arbitrage/internal/httpserver"
)

func main() {
	port := os.Getenv("ARBITRAGE_PORT")
	if port == "" {
		port = "8080"
	}

	log := logrus.New()
	entry := logrus.NewEntry(log)

	router := httpserver.New(entry)
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	addr := fmt.Sprintf(":%s", port)
	log.WithField("addr", addr).Info("starting arbitrage server")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
