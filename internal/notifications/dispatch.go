package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/outbox"

	"github.com/google/uuid"
)

// ErrPoison marks a message that can never be turned into a notification.
// Handlers drop these instead of retrying.
var ErrPoison = errors.New("unprocessable notification message")

type UserLookup interface {
	LookupUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]auth.UserSummary, error)
}

// Dispatcher routes outbox messages to the admin or user inbox
type Dispatcher struct {
	users UserLookup
	now   func() time.Time
}

func NewDispatcher(users UserLookup) *Dispatcher {
	return &Dispatcher{users: users, now: time.Now}
}

func (d *Dispatcher) Route(ctx context.Context, msg outbox.Message) (*Delivery, error) {
	switch msg.Type {
	case outbox.EventRegistrationCreated:
		var p outbox.RegistrationCreatedPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		info, err := d.applicant(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		return d.admin(msg, Notification{
			Type:           TypeTripRegistration,
			Title:          "New Trip Registration",
			Message:        fmt.Sprintf("New registration request for trip: %s", p.TripTitle),
			UserID:         p.UserID.String(),
			TripID:         p.TripID.String(),
			RegistrationID: p.RegistrationID.String(),
			UserInfo:       info,
			ActionRequired: true,
			Metadata: map[string]interface{}{
				"num_guests": p.NumGuests,
				"notes":      p.Notes,
				"amount":     p.Amount,
			},
		}), nil

	case outbox.EventTicketBooked:
		var p outbox.TicketBookedPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		info, err := d.applicant(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		return d.admin(msg, Notification{
			Type:     TypeTicketBooking,
			Title:    "New Ticket Booking",
			Message:  fmt.Sprintf("Seat %s booked on %s for %s", p.SeatNumber, p.TripTitle, p.PassengerName),
			UserID:   p.UserID.String(),
			TripID:   p.TripID.String(),
			UserInfo: info,
			Metadata: map[string]interface{}{
				"ticket_number": p.TicketNumber,
				"seat_number":   p.SeatNumber,
				"seat_class":    p.SeatClass,
			},
		}), nil

	case outbox.EventRegistrationApproved, outbox.EventRegistrationRejected:
		var p outbox.RegistrationDecisionPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		n := Notification{
			UserID:         p.UserID.String(),
			TripID:         p.TripID.String(),
			RegistrationID: p.RegistrationID.String(),
		}
		if msg.Type == outbox.EventRegistrationApproved {
			n.Type = TypeTripApproved
			n.Title = "Trip Registration Approved!"
			n.Message = fmt.Sprintf("Your registration for %q has been approved. Get ready for your adventure!", p.TripTitle)
		} else {
			n.Type = TypeTripRejected
			n.Title = "Trip Registration Update"
			n.Message = fmt.Sprintf("Your registration for %q was not approved. Reason: %s", p.TripTitle, p.Reason)
			n.Metadata = map[string]interface{}{"rejection_reason": p.Reason}
		}
		return d.user(msg, n), nil

	case outbox.EventTicketConfirmed, outbox.EventTicketCancelled:
		var p outbox.TicketStatusPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		n := Notification{
			UserID:   p.UserID.String(),
			TripID:   p.TripID.String(),
			Metadata: map[string]interface{}{"ticket_number": p.TicketNumber, "seat_number": p.SeatNumber},
		}
		if msg.Type == outbox.EventTicketConfirmed {
			n.Type = TypeTicketConfirmed
			n.Title = "Ticket Confirmed"
			n.Message = fmt.Sprintf("Your ticket %s for %q (seat %s) is confirmed.", p.TicketNumber, p.TripTitle, p.SeatNumber)
		} else {
			n.Type = TypeTicketCancelled
			n.Title = "Ticket Cancelled"
			n.Message = fmt.Sprintf("Your ticket %s for %q has been cancelled.", p.TicketNumber, p.TripTitle)
			if p.Reason != "" {
				n.Message += " Reason: " + p.Reason
				n.Metadata["reason"] = p.Reason
			}
		}
		return d.user(msg, n), nil

	case outbox.EventTripReminder:
		var p outbox.TripReminderPayload
		if err := decode(msg, &p); err != nil {
			return nil, err
		}
		return d.user(msg, Notification{
			Type:           TypeTripReminder,
			Title:          "Trip Reminder",
			Message:        reminderText(p.TripTitle, p.DaysUntil),
			UserID:         p.UserID.String(),
			TripID:         p.TripID.String(),
			RegistrationID: p.RegistrationID.String(),
			Metadata: map[string]interface{}{
				"days_until":  p.DaysUntil,
				"destination": p.Destination,
				"start_date":  p.StartDate,
			},
		}), nil
	}

	return nil, fmt.Errorf("%w: unknown event type %q", ErrPoison, msg.Type)
}

func (d *Dispatcher) admin(msg outbox.Message, n Notification) *Delivery {
	d.stamp(msg, &n)
	return &Delivery{Audience: AudienceAdmin, Notification: n}
}

func (d *Dispatcher) user(msg outbox.Message, n Notification) *Delivery {
	d.stamp(msg, &n)
	return &Delivery{Audience: AudienceUser, Notification: n}
}

func (d *Dispatcher) stamp(msg outbox.Message, n *Notification) {
	n.ID = msg.ID.String()
	n.CreatedAt = msg.OccurredAt
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
}

// applicant returns nil info for users that no longer exist
func (d *Dispatcher) applicant(ctx context.Context, userID uuid.UUID) (*ApplicantInfo, error) {
	found, err := d.users.LookupUsers(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	u, ok := found[userID]
	if !ok {
		return nil, nil
	}
	return &ApplicantInfo{FullName: u.Name, Email: u.Email, Phone: u.Phone}, nil
}

func decode(msg outbox.Message, dst interface{}) error {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrPoison, msg.Type, err)
	}
	return nil
}

func reminderText(title string, days int) string {
	switch days {
	case 0:
		return fmt.Sprintf("Your trip %q starts today! Have a great journey.", title)
	case 1:
		return fmt.Sprintf("Your trip %q starts tomorrow! Don't forget to prepare.", title)
	default:
		return fmt.Sprintf("Your trip %q starts in %d days! Don't forget to prepare.", title, days)
	}
}
