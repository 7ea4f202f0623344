package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/buildbarn/bb-ed2k/pkg/clock"
	bb_http "github.com/buildbarn/bb-ed2k/pkg/http"
	"github.com/buildbarn/bb-ed2k/pkg/util"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP hashing service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	router := mux.NewRouter()
	api := router.NewRoute().Subrouter()
	if keyFiles := applicationConfiguration.JWTVerificationKeyFiles; len(keyFiles) > 0 {
		keys := make([]bb_http.JWTKeyConfig, 0, len(keyFiles))
		for _, keyFile := range keyFiles {
			data, err := os.ReadFile(keyFile)
			if err != nil {
				return util.StatusWrapf(err, "Failed to read JWT verification key file %#v", keyFile)
			}
			key, err := bb_http.LoadJWTVerificationKey(data)
			if err != nil {
				return util.StatusWrapf(err, "Invalid JWT verification key file %#v", keyFile)
			}
			keys = append(keys, key)
		}
		api.Use(bb_http.NewAuthenticationMiddleware(
			bb_http.NewJWTAuthenticator(keys, clock.SystemClock),
			log.StandardLogger()))
	}
	bb_http.NewHashHandler(
		api,
		log.StandardLogger(),
		newBlockDigestFunc(),
		applicationConfiguration.ReadChunkSizeBytes,
		applicationConfiguration.MaximumRequestSizeBytes)
	bb_http.NewMetricsHandler(router)

	server := &http.Server{
		Addr:    applicationConfiguration.HTTPListenAddress,
		Handler: router,
	}
	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down HTTP server")
		}
	}()

	log.WithField("address", server.Addr).Info("Starting HTTP server")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
