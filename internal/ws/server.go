package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"auctionhouse/internal/services/bidding"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 12 * time.Second
	pingPeriod = 3 * time.Second // must be < pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
}

// ConnContext is the per-connection state handed to event handlers.
type ConnContext struct {
	ItemID string
	UserID string
	Origin string
	Server *WsServer
}

type WsServer struct {
	hub    *Hub
	subMgr *subscriptionManager
	router *Router
	rdc    *redis.Client
	engine bidding.IBiddingEngine
}

func NewWsServer(h *Hub, rdc *redis.Client, engine bidding.IBiddingEngine) *WsServer {
	router := NewRouter()
	srv := &WsServer{
		hub:    h,
		subMgr: newSubscriptionManager(rdc, h),
		router: router,
		rdc:    rdc,
		engine: engine,
	}
	srv.registerHandlers() // all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	itemID := ginCtx.Query("item_id")
	userID := ginCtx.Query("user_id")
	if itemID == "" || userID == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "item_id and user_id are required"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(512)

	wsConn := &clientConn{rawConn: rawConn}
	s.hub.Join(itemID, wsConn)
	s.subMgr.Subscribe(itemID) // may be a no-op (already subscribed)

	// Initial snapshot.
	if err := s.pushInitialSnapshot(ginCtx.Request.Context(), itemID, wsConn); err != nil &&
		!errors.Is(err, bidding.ErrItemNotFound) {
		zap.L().Warn("ws.snapshot", zap.Error(err))
	}

	go s.reader(itemID, userID, ginCtx.ClientIP(), wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	Register(
		s.router,
		"items/bid",
		func(ctx context.Context, cc *ConnContext, req BidRequest) (bidding.BidResult, error) {
			res, err := s.engine.PlaceBid(ctx, cc.ItemID, cc.UserID, cc.Origin, req.Amount)
			if err != nil {
				return bidding.BidResult{}, err
			}
			return *res, nil
		},
	)
}

func (s *WsServer) pushInitialSnapshot(ctx context.Context, id string, conn *clientConn) error {
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	item, err := s.engine.GetItem(ctx, id)
	if err != nil {
		return err
	}
	return conn.writeJSON(gin.H{
		"event": "items/snapshot",
		"body":  item,
	})
}

func (s *WsServer) reader(itemID, userID, origin string, conn *clientConn) {
	defer func() {
		s.hub.Leave(itemID, conn)
		s.subMgr.Unsubscribe(itemID)
	}()

	cc := &ConnContext{ItemID: itemID, UserID: userID, Origin: origin, Server: s}

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := conn.rawConn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: err.Error()},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			conn.rawConn.Close()
			return
		}
	}
}
