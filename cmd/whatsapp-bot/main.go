package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"wedding-seating/internal/config"
	"wedding-seating/internal/handler"
	"wedding-seating/internal/logging"
	"wedding-seating/internal/models"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
	"wedding-seating/internal/whatsapp"
)

func main() {
	fmt.Println("🎉 Wedding WhatsApp RSVP Bot")
	fmt.Println("============================")

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL}, log)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		fmt.Printf("Error migrating storage: %v\n", err)
		os.Exit(1)
	}

	svc := service.New(store, service.Options{MaxTables: cfg.MaxTables}, log)

	whatsappService, err := whatsapp.NewService(ctx, &whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
	if err != nil {
		fmt.Printf("Error initializing WhatsApp service: %v\n", err)
		os.Exit(1)
	}

	details := whatsapp.WeddingDetails{
		Date:      cfg.WeddingDate,
		Location:  cfg.WeddingLocation,
		BrideName: cfg.BrideName,
		GroomName: cfg.GroomName,
	}
	rsvpHandler := handler.NewRSVPReplyHandler(whatsappService, svc, store, details, log)
	whatsappService.SetMessageHandler(rsvpHandler.HandleMessage)

	fmt.Println("Connecting to WhatsApp...")
	if err := whatsappService.Connect(ctx); err != nil {
		fmt.Printf("Error connecting to WhatsApp: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Connected to WhatsApp!")
	fmt.Println("The bot is now listening for RSVP responses.")

	console := &cli{handler: rsvpHandler, store: store, svc: svc}
	go func() {
		console.run(ctx)
		stop()
	}()

	<-ctx.Done()

	fmt.Println("\n\nShutting down...")
	whatsappService.Disconnect()
	fmt.Println("Goodbye! 👋")
}

type cli struct {
	handler *handler.RSVPReplyHandler
	store   *storage.Store
	svc     *service.Service
	scanner *bufio.Scanner
}

func (c *cli) run(ctx context.Context) {
	c.scanner = bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Send invitation")
		fmt.Println("  2. View all guests")
		fmt.Println("  3. View guests by status")
		fmt.Println("  4. Exit")
		fmt.Print("\nEnter command (1-4): ")

		if !c.scanner.Scan() {
			return
		}

		switch strings.TrimSpace(c.scanner.Text()) {
		case "1":
			c.sendInvitation(ctx)
		case "2":
			c.viewGuests(ctx, "")
		case "3":
			c.viewGuestsByStatus(ctx)
		case "4":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func (c *cli) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

// sendInvitation invites a guest already on the list, saving the phone
// number first so replies from it can be matched.
func (c *cli) sendInvitation(ctx context.Context) {
	name, ok := c.prompt("Enter guest name: ")
	if !ok {
		return
	}
	guest, err := c.store.FindInvitedGuestByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("❌ %q is not on the guest list. Import or add them first.\n", name)
		return
	}
	if err != nil {
		fmt.Printf("❌ Error finding guest: %v\n", err)
		return
	}

	phone := guest.Phone
	if entered, ok := c.prompt(fmt.Sprintf("Enter phone number [%s]: ", phone)); !ok {
		return
	} else if entered != "" {
		phone = whatsapp.NormalizePhoneNumber(entered)
	}
	if phone == "" {
		fmt.Println("❌ A phone number is required.")
		return
	}
	if phone != guest.Phone {
		guest.Phone = phone
		if err := c.store.UpdateInvitedGuest(ctx, *guest); err != nil {
			fmt.Printf("❌ Error saving phone number: %v\n", err)
			return
		}
	}

	fmt.Printf("\nSending invitation to %s (%s)...\n", guest.GuestName, phone)
	if err := c.handler.SendInvitation(*guest); err != nil {
		fmt.Printf("❌ Error sending invitation: %v\n", err)
		return
	}
	fmt.Println("✅ Invitation sent successfully!")
}

func (c *cli) viewGuests(ctx context.Context, status models.RSVPStatus) {
	listing, err := c.svc.Guests(ctx)
	if err != nil {
		fmt.Printf("❌ Error loading guests: %v\n", err)
		return
	}

	var rows []models.ReconciledGuest
	for _, g := range listing.Guests {
		if status == "" || g.RSVPStatus == status {
			rows = append(rows, g)
		}
	}
	if len(rows) == 0 {
		fmt.Println("\nNo guests found.")
		return
	}

	fmt.Printf("\n📋 Guests (%d total):\n", len(rows))
	fmt.Println(strings.Repeat("-", 60))
	for _, g := range rows {
		fmt.Printf("Name: %s\n", g.GuestName)
		fmt.Printf("Status: %s\n", g.RSVPStatus)
		if g.IsAttending {
			fmt.Printf("Party: %d of %d\n", g.ActualGuestCount, g.AllowedPartySize)
		}
		if g.TableNumber > models.Unassigned {
			fmt.Printf("Table: %d\n", g.TableNumber)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}

func (c *cli) viewGuestsByStatus(ctx context.Context) {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Pending")
	fmt.Println("  2. Accepted")
	fmt.Println("  3. Declined")
	choice, ok := c.prompt("Enter choice (1-3): ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		c.viewGuests(ctx, models.RSVPPending)
	case "2":
		c.viewGuests(ctx, models.RSVPAccepted)
	case "3":
		c.viewGuests(ctx, models.RSVPDeclined)
	default:
		fmt.Println("Invalid choice.")
	}
}
