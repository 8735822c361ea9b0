package http_api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.POST("/api/v1/wallet", s.createWallet)
	s.router.GET("/api/v1/wallet/:address/balances", s.walletBalances)
	s.router.GET("/api/v1/master-wallet", s.masterWallet)
	s.router.POST("/api/v1/renewals/run", s.runRenewals)
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
