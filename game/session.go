package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

const writeWait = time.Second * 10

type websocketConnection struct {
	socket *websocket.Conn
}

func NewWebsocketConnection(conn *websocket.Conn) websocketConnection {
	conn.SetReadDeadline(time.Now().Add(time.Minute))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return websocketConnection{conn}
}

func (wc *websocketConnection) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	wc.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(errCode string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, errCode))
	wc.socket.Close()
}

// session is one live connection. roomCode and playerID are set once the
// connection creates or joins a room; both are touched only from the read
// pump goroutine.
type session struct {
	id          string
	socket      NetworkSession
	gateway     *Gateway
	rateLimiter *rate.Limiter

	outbox   chan []byte
	pingChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	roomCode string
	playerID string
}

func newSession(socket NetworkSession, gateway *Gateway) *session {
	return &session{
		id:          uuid.NewString(),
		socket:      socket,
		gateway:     gateway,
		rateLimiter: rate.NewLimiter(25, 50),
		outbox:      make(chan []byte, 256),
		pingChan:    make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

func (s *session) ReadPump() {
	defer s.gateway.dropSession(s)
	for {
		data, err := s.socket.Read()
		if err != nil {
			return
		}
		if !s.rateLimiter.Allow() {
			continue
		}
		s.gateway.dispatch(s, data)
	}
}

func (s *session) WritePump() {
loop:
	for {
		select {
		case data := <-s.outbox:
			if err := s.socket.Write(data); err != nil {
				break loop
			}
		case <-s.pingChan:
			if err := s.socket.Ping(); err != nil {
				break loop
			}
		case <-s.done:
			break loop
		}
	}
	s.socket.Close("")
}

// send queues data for the write pump. A subscriber with a full outbox is
// skipped rather than allowed to stall delivery to the rest of the room.
func (s *session) send(data []byte) {
	select {
	case s.outbox <- data:
	default:
	}
}

func (s *session) ping() {
	select {
	case s.pingChan <- struct{}{}:
	default:
	}
}

func (s *session) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *session) bind(roomCode, playerID string) {
	s.roomCode = roomCode
	s.playerID = playerID
}
