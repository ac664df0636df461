// Package server wires the HTTP surface and background runners.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/soleshop/soleshop/internal/profile"
	apiv1 "github.com/soleshop/soleshop/server/router/api/v1"
	"github.com/soleshop/soleshop/server/runner/taste"
	"github.com/soleshop/soleshop/server/service/catalog"
	"github.com/soleshop/soleshop/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer  *echo.Echo
	apiService  *apiv1.APIV1Service
	tasteRunner *taste.Runner
}

// NewServer builds the server: the API surface plus, when AI is enabled,
// the background taste refresh runner.
func NewServer(ctx context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	apiService, err := apiv1.NewAPIV1Service(prof, st)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create API service")
	}
	apiService.RegisterRoutes(e)

	s := &Server{
		Profile:    prof,
		Store:      st,
		echoServer: e,
		apiService: apiService,
	}
	if analyzer := apiService.Analyzer(); analyzer != nil {
		s.tasteRunner = taste.NewRunner(st, analyzer, catalog.NewPreferences(st))
	}
	return s, nil
}

// Start runs the HTTP listener and the background runners until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if s.tasteRunner != nil {
		group.Go(func() error {
			s.tasteRunner.Run(groupCtx)
			return nil
		})
	}

	group.Go(func() error {
		address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
		slog.Info("server started", "address", address, "mode", s.Profile.Mode, "version", s.Profile.Version)
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down http server", "error", err)
		}
		return nil
	})

	return group.Wait()
}
