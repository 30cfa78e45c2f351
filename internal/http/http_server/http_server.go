package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"auctionhouse/internal/http/adminhandler"
	"auctionhouse/internal/http/authhandler"
	"auctionhouse/internal/http/bidhandler"
	"auctionhouse/internal/services/auth"
	"auctionhouse/internal/services/bidding"
	"auctionhouse/internal/services/winner"
	"auctionhouse/internal/ws"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	engine     bidding.IBiddingEngine
	authSvc    auth.IAuthService
	resolver   *winner.Resolver
	wsSrv      *ws.WsServer
}

func NewHttpServer(
	listenPort uint16,
	wsSrv *ws.WsServer,
	engine bidding.IBiddingEngine,
	authSvc auth.IAuthService,
	resolver *winner.Resolver,
) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		wsSrv:      wsSrv,
		engine:     engine,
		authSvc:    authSvc,
		resolver:   resolver,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// REST API
	authhandler.New(h.authSvc).Register(routerEngine)
	bidhandler.New(h.engine, h.authSvc).Register(routerEngine)
	adminhandler.New(h.resolver, h.authSvc).Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish. The timeout stands
// on its own: by the time a shutdown runs, the signal context that started
// the server is already canceled.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
	}

	return nil
}
