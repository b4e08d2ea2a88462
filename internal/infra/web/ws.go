package web

import (
	"net/http"
	"time"

	"ai-showcase-client/internal/store"
)

const wsWriteWait = 10 * time.Second

// stateWS streams the store: one snapshot on connect, then one per mutation.
// A slow client only ever gets the newest snapshot; intermediate ones are
// dropped and versions never go backwards.
func (s *Server) stateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	latest := make(chan store.State, 1)
	push := func(st store.State) {
		for {
			select {
			case latest <- st:
				return
			default:
			}
			select {
			case old := <-latest:
				if old.Version > st.Version {
					st = old
				}
			default:
			}
		}
	}
	unsubscribe := s.store.Subscribe(push)
	defer unsubscribe()
	push(s.store.Snapshot())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var (
		sent    uint64
		started bool
	)
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case st := <-latest:
			if started && st.Version <= sent {
				continue
			}
			sent, started = st.Version, true
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(st); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
