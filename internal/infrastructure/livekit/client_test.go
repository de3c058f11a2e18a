package livekit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bidding-system/internal/config"
	"bidding-system/pkg/logger"

	"github.com/golang-jwt/jwt"
	lkproto "github.com/livekit/protocol/livekit"
	"google.golang.org/protobuf/proto"
)

const (
	testKey    = "APIkey"
	testSecret = "secret-secret-secret"

	createRoomPath = "/twirp/livekit.RoomService/CreateRoom"
)

type videoClaim struct {
	RoomCreate     bool   `json:"roomCreate"`
	RoomJoin       bool   `json:"roomJoin"`
	RoomAdmin      bool   `json:"roomAdmin"`
	Room           string `json:"room"`
	CanPublish     *bool  `json:"canPublish"`
	CanSubscribe   *bool  `json:"canSubscribe"`
	CanPublishData *bool  `json:"canPublishData"`
}

type accessClaims struct {
	jwt.StandardClaims
	Name  string      `json:"name"`
	Video *videoClaim `json:"video"`
}

func parseClaims(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(testSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func TestViewerTokenGrants(t *testing.T) {
	client := NewClient(config.LiveKitConfig{
		URL:       "wss://live.example.com",
		APIKey:    testKey,
		APISecret: testSecret,
		TokenTTL:  time.Hour,
	}, logger.NewNop())

	token, err := client.ViewerToken("bob", "Room-Product-1-Owner-alice")
	if err != nil {
		t.Fatalf("ViewerToken: %v", err)
	}

	claims, err := parseClaims(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "user-bob" || claims.Name != "user-bob" || claims.Issuer != testKey {
		t.Fatalf("unexpected identity claims %+v", claims.StandardClaims)
	}
	if remaining := time.Until(time.Unix(claims.ExpiresAt, 0)); remaining <= 0 || remaining > time.Hour {
		t.Fatalf("unexpected expiry in %s", remaining)
	}

	video := claims.Video
	if video == nil || !video.RoomJoin || video.Room != "Room-Product-1-Owner-alice" {
		t.Fatalf("unexpected video grant %+v", video)
	}
	if video.CanSubscribe == nil || !*video.CanSubscribe {
		t.Fatal("viewer must be able to subscribe")
	}
	if video.CanPublish == nil || *video.CanPublish || video.CanPublishData == nil || *video.CanPublishData {
		t.Fatal("viewer must not publish")
	}
	if video.RoomAdmin || video.RoomCreate {
		t.Fatal("viewer must not administer rooms")
	}
}

func TestViewerTokenRequiresCredentials(t *testing.T) {
	client := NewClient(config.LiveKitConfig{}, logger.NewNop())
	if _, err := client.ViewerToken("bob", "room"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCreateRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != createRoomPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		claims, err := parseClaims(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if err != nil {
			t.Errorf("parse token: %v", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if claims.Video == nil || !claims.Video.RoomCreate {
			t.Errorf("expected roomCreate grant, got %+v", claims.Video)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var req lkproto.CreateRoomRequest
		if err := proto.Unmarshal(body, &req); err != nil {
			t.Errorf("decode body: %v", err)
		}

		payload, err := proto.Marshal(&lkproto.Room{Sid: "RM_123", Name: req.GetName()})
		if err != nil {
			t.Errorf("encode room: %v", err)
		}
		w.Header().Set("Content-Type", "application/protobuf")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(config.LiveKitConfig{
		URL:       "ws" + strings.TrimPrefix(server.URL, "http"),
		APIKey:    testKey,
		APISecret: testSecret,
	}, logger.NewNop())

	name, err := client.CreateRoom(context.Background(), "Room-Product-1-Owner-alice")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if name != "Room-Product-1-Owner-alice" {
		t.Fatalf("unexpected room name %q", name)
	}
}

func TestCreateRoomServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthenticated","msg":"invalid token"}`))
	}))
	defer server.Close()

	client := NewClient(config.LiveKitConfig{URL: server.URL, APIKey: testKey, APISecret: testSecret}, logger.NewNop())

	_, err := client.CreateRoom(context.Background(), "room")
	if err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestCreateRoomNotConfigured(t *testing.T) {
	client := NewClient(config.LiveKitConfig{APIKey: testKey}, logger.NewNop())
	if _, err := client.CreateRoom(context.Background(), "room"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
