package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/skillbazaar/marketplace-backend/api/middleware"
	"github.com/skillbazaar/marketplace-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func authedRequest(t *testing.T, req *http.Request, userID int64) *http.Request {
	t.Helper()
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}
