package memoryRepo

import (
	"context"
	"sort"
	"time"

	"prepbook/database/repository"
	bookingRepo "prepbook/database/repository/booking"
	"prepbook/models"
)

type bookingStore struct{ *Store }

// Bookings returns the store's BookingRepository.
func (s *Store) Bookings() bookingRepo.BookingRepository { return bookingStore{s} }

func (r bookingStore) Create(ctx context.Context, b *models.Booking) error {
	return r.write(ctx, func() error {
		if err := r.fault("booking.create"); err != nil {
			return err
		}
		if _, exists := r.bookings[b.ID]; exists {
			return repository.ErrDuplicate
		}
		if r.paymentTaken(b.ID, b.PaymentID) {
			return repository.ErrDuplicate
		}
		b.Active = b.Status != models.BookingCancelled
		if b.Active {
			for _, other := range r.bookings {
				if other.Active && other.ProviderID == b.ProviderID && other.Date == b.Date &&
					other.StartTime == b.StartTime && other.EndTime == b.EndTime {
					return repository.ErrDuplicate
				}
			}
		}
		r.bookings[b.ID] = *b
		return nil
	})
}

// paymentTaken reports whether another booking already carries paymentID. Callers hold r.mu.
func (r bookingStore) paymentTaken(bookingID, paymentID string) bool {
	if paymentID == "" {
		return false
	}
	for _, other := range r.bookings {
		if other.ID != bookingID && other.PaymentID == paymentID {
			return true
		}
	}
	return false
}

func (r bookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func isActiveStatus(status string) bool {
	for _, s := range models.ActiveBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r bookingStore) ExistsActiveSlot(_ context.Context, providerID, date, start, end string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Date == date && b.StartTime == start && b.EndTime == end && isActiveStatus(b.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (r bookingStore) ListActiveByProviderDate(_ context.Context, providerID, date string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.ProviderID == providerID && b.Date == date && isActiveStatus(b.Status)
	}, byStart), nil
}

func (r bookingStore) TransitionStatus(ctx context.Context, id string, from []string, u bookingRepo.StatusUpdate) (*models.Booking, error) {
	var updated models.Booking
	err := r.write(ctx, func() error {
		if err := r.fault("booking.transition"); err != nil {
			return err
		}
		b, ok := r.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		allowed := false
		for _, s := range from {
			if b.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return repository.ErrStateChanged
		}
		if r.paymentTaken(id, u.PaymentID) {
			return repository.ErrDuplicate
		}

		b.Status = u.Status
		b.Active = u.Status != models.BookingCancelled
		b.UpdatedAt = u.At
		if u.PaymentID != "" {
			b.PaymentID = u.PaymentID
		}
		if u.CancellationReason != "" {
			b.CancellationReason = u.CancellationReason
		}
		if u.Settled != nil {
			b.Settled = *u.Settled
		}
		r.bookings[id] = b
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r bookingStore) ListPendingCreatedBefore(_ context.Context, before time.Time) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.Status == models.BookingPending && b.CreatedAt.Before(before)
	}, byCreated), nil
}

func (r bookingStore) ListByStatusOnDate(_ context.Context, status, date string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.Status == status && b.Date == date
	}, byStart), nil
}

func (r bookingStore) MarkReminderSent(ctx context.Context, id string, offset int) (bool, error) {
	flipped := false
	err := r.write(ctx, func() error {
		b, ok := r.bookings[id]
		if !ok {
			return nil
		}
		if offset == 5 {
			if b.Reminder5Sent {
				return nil
			}
			b.Reminder5Sent = true
		} else {
			if b.Reminder15Sent {
				return nil
			}
			b.Reminder15Sent = true
		}
		r.bookings[id] = b
		flipped = true
		return nil
	})
	return flipped, err
}

func (r bookingStore) List(_ context.Context, f models.BookingFilter) ([]models.Booking, int64, error) {
	all := r.filter(func(b models.Booking) bool {
		if f.UserID != "" && b.UserID != f.UserID {
			return false
		}
		if f.ProviderID != "" && b.ProviderID != f.ProviderID {
			return false
		}
		return f.Status == "" || b.Status == f.Status
	}, func(a, b models.Booking) bool {
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.StartTime > b.StartTime
	})
	start, end := paginate(f.Page, f.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func byStart(a, b models.Booking) bool   { return a.StartTime < b.StartTime }
func byCreated(a, b models.Booking) bool { return a.CreatedAt.Before(b.CreatedAt) }

func (r bookingStore) filter(keep func(models.Booking) bool, less func(a, b models.Booking) bool) []models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
