package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/scythe504/spywords-backend/internal"
	"github.com/scythe504/spywords-backend/internal/game"
)

const qrSize = 320

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.RecentRoomsHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}/qr", s.RoomQRHandler).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws", s.hub.HandleWebSocket(s.dispatcher, game.SocketOptions{
		CheckOrigin: s.cfg.AllowsOrigin,
		EventRate:   s.cfg.EventRate,
		EventBurst:  s.cfg.EventBurst,
	}))

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.cfg.AllowsOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, the origin check happens in the upgrader
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"rooms":       s.registry.Len(),
		"connections": s.hub.Len(),
	}
	if s.db == nil {
		resp["database"] = "persistence disabled"
	} else {
		resp["database"] = s.db.Health(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecentRoomsHandler lists the most recently created durable room records as
// a bare JSON array.
func (s *Server) RecentRoomsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Persistence disabled"})
		return
	}

	rooms, err := s.db.RecentRooms(r.Context(), internal.RecentRoomsListCap)
	if err != nil {
		log.Error().Err(err).Msg("[RecentRoomsHandler] failed to load rooms")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}
	if rooms == nil {
		rooms = []internal.RoomRecord{}
	}

	log.Debug().Int("rooms", len(rooms)).Int64("net_resp_time_ms", time.Since(startTime).Milliseconds()).
		Msg("[RecentRoomsHandler] served")
	writeJSON(w, http.StatusOK, rooms)
}

// RoomQRHandler renders a PNG QR code pointing players at a live room.
func (s *Server) RoomQRHandler(w http.ResponseWriter, r *http.Request) {
	roomId := mux.Vars(r)["roomId"]
	if _, ok := s.registry.Get(roomId); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}

	png, err := qrcode.Encode(RoomURL(s.cfg.PublicURL, roomId), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("room", roomId).Msg("[RoomQRHandler] qr generation failed")
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// RoomURL is the link a client opens to join roomId.
func RoomURL(publicURL, roomId string) string {
	return fmt.Sprintf("%s/?room=%s", strings.TrimRight(publicURL, "/"), url.QueryEscape(roomId))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}
