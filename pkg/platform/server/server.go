/*
Copyright 2022 The KubeVela Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubevela/platform/pkg/platform/app"
	"github.com/kubevela/platform/pkg/platform/utils/log"
	"github.com/kubevela/platform/pkg/platform/version"
)

// DocsPath the path of the openapi document
const DocsPath = "/apidocs.json"

// MetricsPath the path of the prometheus metrics
const MetricsPath = "/metrics"

// Server serves the dashboard routes
type Server struct {
	app          *app.Application
	webContainer *restful.Container
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New builds the web container of the booted application
func New(a *app.Application) (*Server, error) {
	if err := a.Populate(); err != nil {
		return nil, err
	}
	s := &Server{
		app:          a,
		webContainer: restful.NewContainer(),
		registry:     prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Name:      "http_requests_total",
			Help:      "The handled requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "platform",
			Name:      "http_request_duration_seconds",
			Help:      "The time spent handling the requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	s.registry.MustRegister(s.requests, s.duration, collectors.NewGoCollector())
	s.registerRoutes()
	return s, nil
}

// Handler returns the http handler of the dashboard
func (s *Server) Handler() http.Handler {
	return s.webContainer
}

func (s *Server) registerRoutes() restfulspec.Config {
	// Add container filter to enable CORS
	cors := restful.CrossOriginResourceSharing{
		ExposeHeaders:  []string{},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		CookiesAllowed: true,
		Container:      s.webContainer}
	s.webContainer.Filter(cors.Filter)

	// Add container filter to respond to OPTIONS
	s.webContainer.Filter(s.webContainer.OPTIONSFilter)

	// Add request log
	s.webContainer.Filter(s.requestLog)

	s.webContainer.Add(s.app.Router().WebService())
	s.webContainer.Handle(MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	config := restfulspec.Config{
		WebServices:                   s.webContainer.RegisteredWebServices(),
		APIPath:                       DocsPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject}
	s.webContainer.Add(restfulspec.NewOpenAPIService(config))
	return config
}

func (s *Server) requestLog(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	c := newResponseCapture(resp.ResponseWriter)
	resp.ResponseWriter = c
	chain.ProcessFilter(req, resp)
	takeTime := time.Since(start)
	route := req.SelectedRoutePath()
	if route == "" {
		route = "unmatched"
	}
	s.requests.WithLabelValues(req.Request.Method, route, strconv.Itoa(c.status)).Inc()
	s.duration.WithLabelValues(req.Request.Method, route).Observe(takeTime.Seconds())
	log.Logger.With(
		"clientIP", sanitize(ClientIP(req.Request)),
		"path", sanitize(req.Request.URL.Path),
		"method", req.Request.Method,
		"status", c.status,
		"time", takeTime.String(),
		"responseSize", c.size,
	).Infof("request log")
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Platform dashboard api doc",
			Description: "The api of the platform dashboard",
			License: &spec.License{
				LicenseProps: spec.LicenseProps{
					Name: "Apache License 2.0",
					URL:  "https://www.apache.org/licenses/LICENSE-2.0",
				},
			},
			Version: version.Info(),
		},
	}
}

// Run serves the http APIs and starts the event worker until the context is done
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go s.app.Events().Start(ctx, errChan)

	cfg := s.app.Config()
	log.Logger.Infof("HTTP APIs are being served on: %s%s", cfg.BindAddr, s.app.Router().Prefix())
	server := &http.Server{Addr: cfg.BindAddr, Handler: s.webContainer, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("serve http failure %w", err)
	}
}
