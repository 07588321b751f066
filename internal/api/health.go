// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thachln/userbase/internal/platform/ctxutil"
	"github.com/thachln/userbase/internal/platform/respond"
)

// # Health Probes

const probeTimeout = 2 * time.Second

// Liveness reports whether the process is running.
//
// It performs no dependency checks, so orchestrators never restart a pod
// just because the database is briefly unreachable.
func Liveness() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.Success(writer, http.StatusOK, "alive")
	}
}

// Readiness reports whether the service can handle traffic.
//
// It pings the database with a short deadline. A failing probe removes the
// instance from the load balancer without killing the process.
func Readiness(pool *pgxpool.Pool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			ctxutil.GetLogger(request.Context()).Error("readiness probe failed", "error", err)
			respond.Failure(writer, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		respond.Success(writer, http.StatusOK, "ready")
	}
}
