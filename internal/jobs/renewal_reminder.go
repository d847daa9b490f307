package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"cetracker/internal/models"
)

const (
	// batchSize caps how many renewals are handled per pass.
	batchSize = 200

	// markTimeout bounds recording a sent reminder. Marks outlive the pass
	// context so a shutdown mid-pass cannot cause a duplicate email.
	markTimeout = 5 * time.Second
)

// ReminderStore finds renewals that need a reminder and records sent ones.
type ReminderStore interface {
	GetRenewalsDue(ctx context.Context, windowDays int, cooldown time.Duration, limit int) ([]models.RenewalReminder, error)
	MarkReminded(ctx context.Context, userID uuid.UUID, stateCode string) error
}

// Mailer delivers a rendered email.
type Mailer interface {
	SendEmail(to []string, subject, htmlBody, textBody string) error
}

// Renderer builds the reminder for one user.
type Renderer interface {
	RenewalReminder(fullName string, due []models.RenewalReminder, now time.Time) (subject, htmlBody, textBody string)
}

// RenewalReminder periodically emails users whose license renewal is near
// and who still have outstanding CE hours.
type RenewalReminder struct {
	store      ReminderStore
	mailer     Mailer
	renderer   Renderer
	interval   time.Duration
	windowDays int
	cooldown   time.Duration
	now        func() time.Time
}

// NewRenewalReminder creates a new renewal reminder job.
func NewRenewalReminder(store ReminderStore, mailer Mailer, renderer Renderer, interval time.Duration, windowDays int, cooldown time.Duration) *RenewalReminder {
	return &RenewalReminder{
		store:      store,
		mailer:     mailer,
		renderer:   renderer,
		interval:   interval,
		windowDays: windowDays,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// Start runs the reminder loop until ctx is cancelled.
func (r *RenewalReminder) Start(ctx context.Context) {
	log.Printf("Renewal reminders started (interval: %v, window: %d days)", r.interval, r.windowDays)

	// Run immediately on start
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Renewal reminders stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce sends one email per user with due renewals and returns how many
// emails were sent.
func (r *RenewalReminder) RunOnce(ctx context.Context) int {
	due, err := r.store.GetRenewalsDue(ctx, r.windowDays, r.cooldown, batchSize)
	if err != nil {
		log.Printf("Renewal reminders: failed to load renewals: %v", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	sent := 0
	for _, group := range groupByUser(due) {
		select {
		case <-ctx.Done():
			return sent
		default:
		}

		first := group[0]
		subject, htmlBody, textBody := r.renderer.RenewalReminder(first.FullName, group, r.now())
		if err := r.mailer.SendEmail([]string{first.Email}, subject, htmlBody, textBody); err != nil {
			log.Printf("Renewal reminders: failed to email %s: %v", first.UserID, err)
			continue
		}
		sent++
		r.markGroup(ctx, group)
	}

	log.Printf("Renewal reminders: sent %d emails covering %d states", sent, len(due))
	return sent
}

func (r *RenewalReminder) markGroup(ctx context.Context, group []models.RenewalReminder) {
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	for _, item := range group {
		if err := r.store.MarkReminded(markCtx, item.UserID, item.StateCode); err != nil {
			log.Printf("Renewal reminders: failed to mark %s/%s: %v", item.UserID, item.StateCode, err)
		}
	}
}

// groupByUser groups renewals per user, keeping first-seen order.
func groupByUser(due []models.RenewalReminder) [][]models.RenewalReminder {
	index := make(map[uuid.UUID]int)
	var groups [][]models.RenewalReminder
	for _, r := range due {
		i, ok := index[r.UserID]
		if !ok {
			i = len(groups)
			index[r.UserID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}
