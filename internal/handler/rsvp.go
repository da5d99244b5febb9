package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-seating/internal/models"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
	"wedding-seating/internal/whatsapp"
)

// Sender delivers text messages to a phone number.
type Sender interface {
	SendMessage(phoneNumber, message string) error
	SendInvitation(phoneNumber, name string, details whatsapp.WeddingDetails) error
}

// RSVPService is the part of the guest service the handler drives.
type RSVPService interface {
	SubmitRSVP(ctx context.Context, req service.RSVPRequest) (*service.RSVPResult, error)
}

// GuestFinder resolves a sender's phone number to an invited guest.
type GuestFinder interface {
	FindInvitedGuestByPhone(ctx context.Context, phone string) (*models.InvitedGuest, error)
}

// RSVPReplyHandler turns WhatsApp replies from invited guests into RSVPs.
type RSVPReplyHandler struct {
	sender  Sender
	rsvps   RSVPService
	guests  GuestFinder
	details whatsapp.WeddingDetails
	log     zerolog.Logger
}

// NewRSVPReplyHandler creates a new RSVP reply handler
func NewRSVPReplyHandler(sender Sender, rsvps RSVPService, guests GuestFinder, details whatsapp.WeddingDetails, log zerolog.Logger) *RSVPReplyHandler {
	return &RSVPReplyHandler{
		sender:  sender,
		rsvps:   rsvps,
		guests:  guests,
		details: details,
		log:     log.With().Str("component", "rsvp-reply").Logger(),
	}
}

// HandleMessage processes incoming WhatsApp messages for RSVP responses
func (h *RSVPReplyHandler) HandleMessage(msg *events.Message) error {
	if msg.Message == nil {
		return nil
	}

	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		return nil
	}

	return h.HandleReply(context.Background(), msg.Info.Sender.User, text)
}

// HandleReply applies one reply from phone. Senders that are not on the
// guest list and texts that are neither a yes nor a no are ignored.
func (h *RSVPReplyHandler) HandleReply(ctx context.Context, phone, text string) error {
	phone = whatsapp.NormalizePhoneNumber(phone)

	// only process RSVP if guest was previously invited
	guest, err := h.guests.FindInvitedGuestByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.log.Debug().Str("phone", phone).Msg("Ignoring message from unknown sender")
			return nil
		}
		return fmt.Errorf("failed to find guest: %w", err)
	}

	attendance, count, ok := ParseReply(text)
	if !ok {
		return nil
	}
	if attendance == models.AttendanceYes && count == 0 {
		count = guest.PartySize()
	}

	email := guest.Email
	result, err := h.rsvps.SubmitRSVP(ctx, service.RSVPRequest{
		GuestName:  guest.GuestName,
		Email:      email,
		Attendance: attendance,
		GuestCount: count,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			reply := fmt.Sprintf("Sorry, we couldn't record that: %s", strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
			return h.send(phone, reply)
		}
		return fmt.Errorf("failed to save RSVP: %w", err)
	}

	h.log.Info().Int64("guest_id", guest.ID).Str("attendance", string(attendance)).
		Int("guest_count", result.RSVP.GuestCount).Bool("created", result.Created).Msg("RSVP received over WhatsApp")

	return h.send(phone, h.confirmation(guest, result.RSVP))
}

func (h *RSVPReplyHandler) confirmation(guest *models.InvitedGuest, rsvp *models.RSVP) string {
	if rsvp.Attendance == models.AttendanceNo {
		return fmt.Sprintf(
			"Thank you for letting us know, %s. We're sorry you won't be able to join us for the wedding of %s & %s.\n\n"+
				"We'll miss you! 💕",
			guest.GuestName, h.details.BrideName, h.details.GroomName,
		)
	}

	seats := "1 guest"
	if rsvp.GuestCount != 1 {
		seats = fmt.Sprintf("%d guests", rsvp.GuestCount)
	}
	msg := fmt.Sprintf(
		"🎉 Wonderful! We're so excited to celebrate with you!\n\n"+
			"We've confirmed %s for the wedding of %s & %s on %s.\n\n"+
			"See you there! 💕",
		seats, h.details.BrideName, h.details.GroomName, h.details.Date,
	)
	if rsvp.GuestCount > guest.PartySize() {
		msg += fmt.Sprintf("\n\nNote: your invitation covers %d. We'll be in touch about the extra seats.", guest.PartySize())
	}
	return msg
}

func (h *RSVPReplyHandler) send(phone, message string) error {
	if err := h.sender.SendMessage(phone, message); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

// SendInvitation sends a wedding invitation to an invited guest's phone.
func (h *RSVPReplyHandler) SendInvitation(guest models.InvitedGuest) error {
	if guest.Phone == "" {
		return fmt.Errorf("guest %q has no phone number", guest.GuestName)
	}
	if err := h.sender.SendInvitation(guest.Phone, guest.GuestName, h.details); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}
	return nil
}

var (
	yesKeywords = []string{"yes", "yep", "yeah", "accept", "accepting", "attending", "coming", "will come", "will be there", "✅"}
	noKeywords  = []string{"no", "nope", "decline", "declining", "not coming", "can't come", "won't come", "can't make it", "❌"}
)

// ParseReply reads an RSVP out of a free-text reply. "yes 3" accepts for
// three; a bare "yes" returns count 0. Negative phrases are checked first
// so "not coming" is a no.
func ParseReply(text string) (attendance models.Attendance, count int, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", 0, false
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '\n' || r == '\t'
	})

	if hasPhrase(text, words, noKeywords...) {
		return models.AttendanceNo, 1, true
	}
	if !hasPhrase(text, words, yesKeywords...) {
		return "", 0, false
	}
	for _, w := range words {
		if n, err := strconv.Atoi(w); err == nil {
			return models.AttendanceYes, n, true
		}
	}
	return models.AttendanceYes, 0, true
}

// hasPhrase matches single-word keywords against whole words, so "no"
// does not fire on "know", and multi-word keywords as substrings.
func hasPhrase(text string, words []string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") || !isASCIIWord(keyword) {
			if strings.Contains(text, keyword) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == keyword {
				return true
			}
		}
	}
	return false
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '\'' {
			return false
		}
	}
	return true
}
