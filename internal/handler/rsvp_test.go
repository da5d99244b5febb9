package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
	"wedding-seating/internal/whatsapp"
)

type sentMessage struct {
	phone, text string
}

type fakeSender struct {
	sent        []sentMessage
	invitations []string
	err         error
}

func (f *fakeSender) SendMessage(phone, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{phone, message})
	return nil
}

func (f *fakeSender) SendInvitation(phone, name string, _ whatsapp.WeddingDetails) error {
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, phone+":"+name)
	return nil
}

type fakeRSVPs struct {
	requests []service.RSVPRequest
	err      error
}

func (f *fakeRSVPs) SubmitRSVP(_ context.Context, req service.RSVPRequest) (*service.RSVPResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	count := req.GuestCount
	if count == 0 {
		count = 1
	}
	return &service.RSVPResult{
		RSVP: &models.RSVP{
			ID:         1,
			GuestName:  req.GuestName,
			Attendance: req.Attendance,
			GuestCount: count,
		},
		Created: len(f.requests) == 1,
	}, nil
}

type fakeGuests map[string]models.InvitedGuest

func (f fakeGuests) FindInvitedGuestByPhone(_ context.Context, phone string) (*models.InvitedGuest, error) {
	g, ok := f[phone]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &g, nil
}

var details = whatsapp.WeddingDetails{Date: "June 6", Location: "The Barn", BrideName: "Ann", GroomName: "Ben"}

func newTestHandler() (*RSVPReplyHandler, *fakeSender, *fakeRSVPs) {
	sender := &fakeSender{}
	rsvps := &fakeRSVPs{}
	guests := fakeGuests{
		"972521234567": {ID: 7, GuestName: "Carol Smith", Email: "carol@example.com", AllowedPartySize: 2, Phone: "972521234567"},
	}
	return NewRSVPReplyHandler(sender, rsvps, guests, details, zerolog.Nop()), sender, rsvps
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		text       string
		attendance models.Attendance
		count      int
		ok         bool
	}{
		{"YES", models.AttendanceYes, 0, true},
		{"yes 3", models.AttendanceYes, 3, true},
		{"Yes, we'll be 2!", models.AttendanceYes, 2, true},
		{"we will be there", models.AttendanceYes, 0, true},
		{"✅", models.AttendanceYes, 0, true},
		{"no", models.AttendanceNo, 1, true},
		{"Sorry, not coming", models.AttendanceNo, 1, true},
		{"❌", models.AttendanceNo, 1, true},
		{"do you know the address?", "", 0, false},
		{"hello", "", 0, false},
		{"  ", "", 0, false},
	}
	for _, tt := range tests {
		attendance, count, ok := ParseReply(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.attendance, attendance, tt.text)
		assert.Equal(t, tt.count, count, tt.text)
	}
}

func TestHandleReply_AcceptsWithPartySize(t *testing.T) {
	h, sender, rsvps := newTestHandler()

	require.NoError(t, h.HandleReply(context.Background(), "052-123-4567", "yes"))

	require.Len(t, rsvps.requests, 1)
	req := rsvps.requests[0]
	assert.Equal(t, "Carol Smith", req.GuestName)
	assert.Equal(t, "carol@example.com", req.Email)
	assert.Equal(t, models.AttendanceYes, req.Attendance)
	assert.Equal(t, 2, req.GuestCount)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "972521234567", sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].text, "2 guests")
	assert.Contains(t, sender.sent[0].text, "Ann & Ben")
}

func TestHandleReply_ExplicitCountOverAllowance(t *testing.T) {
	h, sender, rsvps := newTestHandler()

	require.NoError(t, h.HandleReply(context.Background(), "972521234567", "yes 4"))

	require.Len(t, rsvps.requests, 1)
	assert.Equal(t, 4, rsvps.requests[0].GuestCount)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "covers 2")
}

func TestHandleReply_Declines(t *testing.T) {
	h, sender, rsvps := newTestHandler()

	require.NoError(t, h.HandleReply(context.Background(), "972521234567", "Sorry, can't make it"))

	require.Len(t, rsvps.requests, 1)
	assert.Equal(t, models.AttendanceNo, rsvps.requests[0].Attendance)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "We'll miss you")
}

func TestHandleReply_IgnoresUnknownSenderAndChatter(t *testing.T) {
	h, sender, rsvps := newTestHandler()

	require.NoError(t, h.HandleReply(context.Background(), "15550000000", "yes"))
	require.NoError(t, h.HandleReply(context.Background(), "972521234567", "what time does it start?"))

	assert.Empty(t, rsvps.requests)
	assert.Empty(t, sender.sent)
}

func TestHandleReply_ValidationErrorIsRepliedTo(t *testing.T) {
	h, sender, rsvps := newTestHandler()
	rsvps.err = errors.Join(service.ErrValidation, errors.New("guest_count must be between 1 and 20"))

	require.NoError(t, h.HandleReply(context.Background(), "972521234567", "yes 40"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "couldn't record")
}

func TestHandleReply_StoreFailure(t *testing.T) {
	h, sender, rsvps := newTestHandler()
	rsvps.err = errors.New("database is locked")

	err := h.HandleReply(context.Background(), "972521234567", "yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save RSVP")
	assert.Empty(t, sender.sent)
}

func TestSendInvitation(t *testing.T) {
	h, sender, _ := newTestHandler()

	require.NoError(t, h.SendInvitation(models.InvitedGuest{GuestName: "Carol Smith", Phone: "972521234567"}))
	assert.Equal(t, []string{"972521234567:Carol Smith"}, sender.invitations)

	err := h.SendInvitation(models.InvitedGuest{GuestName: "Dan"})
	require.Error(t, err)
}
