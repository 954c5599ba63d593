package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"trashnet-backend/internal/fleet"
)

// alertTopic is the FCM topic fleet managers' devices subscribe to.
const alertTopic = "bin-alerts"

// FCMService pushes bin-full alerts to fleet managers through Firebase
// Cloud Messaging. It implements fleet.Notifier; a nil *FCMService is a
// valid no-op notifier so the server runs fine without credentials.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates the service from a credentials file.
func NewFCMService(credentialsFile string) (*FCMService, error) {
	return newFCMService(option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 creates the service from base64-encoded
// credentials, for cloud deployments where uploading files is awkward.
func NewFCMServiceFromBase64(credentialsBase64 string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(opt option.ClientOption) (*FCMService, error) {
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// BinUpdated implements fleet.Notifier. Routine updates are not pushed;
// dashboards get those over the websocket.
func (s *FCMService) BinUpdated(fleet.AdminBinData) {}

// BinBecameFull implements fleet.Notifier.
func (s *FCMService) BinBecameFull(bin fleet.AdminBinData) {
	if s == nil {
		return
	}

	message := &messaging.Message{
		Topic: alertTopic,
		Notification: &messaging.Notification{
			Title: "Bin Full!",
			Body:  fmt.Sprintf("%s (%s) has reached %d%% and needs collection.", bin.Name, bin.ID, bin.FillLevel),
		},
		Data: map[string]string{
			"type":       "bin_full",
			"bin_id":     bin.ID,
			"fill_level": strconv.Itoa(bin.FillLevel),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.client.Send(context.Background(), message); err != nil {
		log.Printf("⚠️  Failed to send bin-full notification for %s: %v", bin.ID, err)
		return
	}
	log.Printf("📲 Bin-full notification sent for %s", bin.ID)
}
