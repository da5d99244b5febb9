package whatsapp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// MessageHandler is a callback function for handling messages
type MessageHandler func(*events.Message) error

type Config struct {
	DataDir string
}

// WeddingDetails fills the invitation and confirmation texts.
type WeddingDetails struct {
	Date      string
	Location  string
	BrideName string
	GroomName string
}

type Service struct {
	client         *whatsmeow.Client
	cfg            *Config
	log            zerolog.Logger
	messageHandler MessageHandler
}

// NewService creates a new WhatsApp service. The device session is kept in
// whatsmeow.db under cfg.DataDir.
func NewService(ctx context.Context, cfg *Config, log zerolog.Logger) (*Service, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsmeow.db"))

	// nil logger: sqlstore and whatsmeow fall back to a no-op logger
	container, err := sqlstore.New(ctx, "sqlite3", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "WhatsApp").Logger(),
	}

	client.AddEventHandler(func(evt interface{}) {
		service.eventHandler(evt)
	})

	return service, nil
}

// NormalizePhoneNumber normalizes phone numbers to international format
// Handles Israeli numbers that start with 0 by converting to +972 format
func NormalizePhoneNumber(phoneNumber string) string {
	phoneNumber = strings.Map(func(r rune) rune {
		switch r {
		case '+', ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phoneNumber))

	// Israeli format: 05XXXXXXXX -> 9725XXXXXXXX
	if strings.HasPrefix(phoneNumber, "0") && len(phoneNumber) == 10 {
		phoneNumber = "972" + phoneNumber[1:]
	}

	// country code followed by the local trunk 0
	if strings.HasPrefix(phoneNumber, "9720") {
		phoneNumber = "972" + phoneNumber[4:]
	}

	return phoneNumber
}

// Connect connects to WhatsApp, printing a pairing QR code on first use.
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, _ := s.client.GetQRChannel(ctx)
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			fmt.Printf("Login event: %s\n", evt.Event)
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Printf("QR Code: %s\n", evt.Code)
			fmt.Println("Please scan this QR code with WhatsApp to connect.")
			continue
		}
		fmt.Println("\n" + q.ToSmallString(false))
		fmt.Println("📱 Please scan the QR code above with WhatsApp:")
		fmt.Println("   1. Open WhatsApp on your phone")
		fmt.Println("   2. Go to Settings > Linked Devices")
		fmt.Println("   3. Tap 'Link a Device'")
		fmt.Println("   4. Scan the QR code shown above")
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// InvitationText is the invitation sent to a guest.
func InvitationText(name string, d WeddingDetails) string {
	return fmt.Sprintf(
		"🎉 *Wedding Invitation*\n\n"+
			"Dear %s,\n\n"+
			"You are cordially invited to celebrate the wedding of\n\n"+
			"*%s* & *%s*\n\n"+
			"📅 Date: %s\n"+
			"📍 Location: %s\n\n"+
			"Please confirm your attendance by replying:\n"+
			"✅ *YES* (or *YES 2* for two guests) to accept\n"+
			"❌ *NO* to decline",
		name, d.BrideName, d.GroomName, d.Date, d.Location,
	)
}

// SeatingNoticeText tells a seated guest their table.
func SeatingNoticeText(name string, table int, d WeddingDetails) string {
	return fmt.Sprintf(
		"💐 Hi %s!\n\n"+
			"Your seat for the wedding of %s & %s is ready.\n\n"+
			"🪑 Table: *%d*\n"+
			"📅 %s\n"+
			"📍 %s\n\n"+
			"See you there! 💕",
		name, d.BrideName, d.GroomName, table, d.Date, d.Location,
	)
}

// SendInvitation sends a wedding invitation with RSVP instructions
func (s *Service) SendInvitation(phoneNumber, name string, details WeddingDetails) error {
	return s.SendMessage(phoneNumber, InvitationText(name, details))
}

// SendSeatingNotice tells a guest which table they are at.
func (s *Service) SendSeatingNotice(phoneNumber, name string, table int, details WeddingDetails) error {
	return s.SendMessage(phoneNumber, SeatingNoticeText(name, table, details))
}

// SendMessage sends a simple text message
func (s *Service) SendMessage(phoneNumber, message string) error {
	ctx := context.Background()
	phoneNumber = NormalizePhoneNumber(phoneNumber)

	// the recipient must be on WhatsApp; use the JID it reports
	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}
	jid := resp[0].JID

	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Attempting to send message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unknown server") || strings.Contains(err.Error(), "can't send message") {
			return fmt.Errorf("failed to send message to %s (JID: %s): %w. The recipient must be in your WhatsApp contacts", phoneNumber, jid.String(), err)
		}
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info().Str("jid", jid.String()).Str("message_id", string(sent.ID)).Msg("Message sent")
	return nil
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}

// handleMessage processes incoming messages
func (s *Service) handleMessage(msg *events.Message) {
	if msg.Info.IsFromMe {
		return
	}
	// group chats are never RSVPs
	if msg.Info.Chat.Server == types.GroupServer {
		return
	}

	if s.messageHandler == nil {
		s.log.Info().
			Str("sender", msg.Info.Sender.String()).
			Str("message", msg.Message.GetConversation()).
			Msg("Received message")
		return
	}
	if err := s.messageHandler(msg); err != nil {
		s.log.Error().Err(err).Str("sender", msg.Info.Sender.String()).Msg("Error handling message")
	}
}

// SetMessageHandler sets a custom handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}
