package web

import (
	"context"
	_ "embed"
	"errors"
	"lifegrid/src/universe"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

//go:embed index.html
var indexPage []byte

//Server is the browser host: it serves the page and a websocket per browser
type Server struct {
	u        universe.Universe
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewServer(u universe.Universe) *Server {
	return &Server{
		u:   u,
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

//Start runs the hub until ctx is done and subscribes it to the universe
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	s.u.RegisterViewer(s.hub)
}

//Handler routes "/" to the page and "/ws" to the websocket endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

//ListenAndServe starts the server on addr and shuts it down when ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("serving on %v", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	c := newClient(conn)
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump(s.u, s.hub)
}
