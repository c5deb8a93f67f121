package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	health "github.com/hellofresh/health-go/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sebastienferry/site-purge/internal/pkg/metrics"
)

// Pinger checks the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	JwtSecret string
	AdminRole string
	Version   string
	Driver    string
}

func NewRouter(opts Options, store Pinger, cmdsApi *CommandApi) (*gin.Engine, error) {

	healthHandler, err := CreateHealthCheckHandler(opts, store)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/status", gin.WrapH(healthHandler))

	// Commands api, only when enabled
	if cmdsApi != nil {
		cmds := router.Group("/command", RequireRole(opts.JwtSecret, opts.AdminRole))
		cmds.POST("/purge/intent", cmdsApi.PurgeIntent)
		cmds.POST("/purge", cmdsApi.RunPurge)
		cmds.GET("/purge/status", cmdsApi.PurgeStatus)
	}

	return router, nil
}

func CreateHealthCheckHandler(opts Options, store Pinger) (http.Handler, error) {

	h, err := health.New(health.WithComponent(health.Component{
		Name:    "site-purge",
		Version: opts.Version,
	}), health.WithChecks(
		health.Config{
			Name:    "store-" + opts.Driver,
			Timeout: time.Second * 5,
			Check:   store.Ping,
		},
	))
	if err != nil {
		return nil, err
	}
	return h.Handler(), nil
}
