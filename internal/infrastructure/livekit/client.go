// Package livekit talks to a LiveKit server: it creates rooms through the
// RoomService API and signs access tokens for viewers.
package livekit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidding-system/internal/config"
	"bidding-system/pkg/logger"

	"github.com/livekit/protocol/auth"
	lkproto "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

const (
	defaultTokenTTL   = 6 * time.Hour
	requestTimeout    = 10 * time.Second
	viewerIdentityFmt = "user-%s"
)

var ErrNotConfigured = errors.New("livekit is not configured")

type Client struct {
	apiKey    string
	apiSecret string
	tokenTTL  time.Duration
	rooms     *lksdk.RoomServiceClient
	log       logger.Logger
}

func NewClient(cfg config.LiveKitConfig, log logger.Logger) *Client {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	c := &Client{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		tokenTTL:  ttl,
		log:       log,
	}
	if cfg.URL != "" && c.hasCredentials() {
		c.rooms = lksdk.NewRoomServiceClient(cfg.URL, cfg.APIKey, cfg.APISecret)
	}
	return c
}

func (c *Client) hasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// ViewerToken grants subscribe-only access to roomName.
func (c *Client) ViewerToken(username, roomName string) (string, error) {
	if !c.hasCredentials() {
		return "", ErrNotConfigured
	}

	identity := fmt.Sprintf(viewerIdentityFmt, username)
	canSubscribe, canPublish := true, false

	token, err := auth.NewAccessToken(c.apiKey, c.apiSecret).
		SetIdentity(identity).
		SetName(identity).
		SetValidFor(c.tokenTTL).
		AddGrant(&auth.VideoGrant{
			RoomJoin:       true,
			Room:           roomName,
			CanSubscribe:   &canSubscribe,
			CanPublish:     &canPublish,
			CanPublishData: &canPublish,
		}).
		ToJWT()
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// CreateRoom creates name on the server and returns the server's room name.
// Creating an existing room returns that room.
func (c *Client) CreateRoom(ctx context.Context, name string) (string, error) {
	if c.rooms == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	created, err := c.rooms.CreateRoom(ctx, &lkproto.CreateRoomRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("create room %s: %w", name, err)
	}

	c.log.Info("LiveKit room created", "room_name", created.GetName(), "sid", created.GetSid())
	return created.GetName(), nil
}
