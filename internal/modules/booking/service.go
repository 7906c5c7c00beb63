package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hrdesk/internal/domain"
	"hrdesk/internal/pkg/validator"
	"hrdesk/internal/repository"
)

const (
	workdayOpen  = 9 * time.Hour
	workdayClose = 21 * time.Hour

	bookingsLink = "/meeting-rooms"
)

type Service struct {
	bookings  BookingRepository
	rooms     RoomReader
	reviewers ReviewerLookup
	notifs    NotificationSender
	loc       *time.Location
}

func NewService(
	bookings BookingRepository,
	rooms RoomReader,
	reviewers ReviewerLookup,
	notifs NotificationSender,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		bookings:  bookings,
		rooms:     rooms,
		reviewers: reviewers,
		notifs:    notifs,
		loc:       loc,
	}
}

// CreateBooking validates the request and inserts a pending booking when the
// interval is free. Reviewers are notified after the commit.
func (s *Service) CreateBooking(ctx context.Context, in BookingInput) (*domain.Booking, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	in = in.trimmed()
	start, end, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	room, err := s.activeRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		RoomID:      room.ID,
		RequesterID: actor.ID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   start,
		EndTime:     end,
		Status:      domain.BookingPending,
	}

	err = s.bookings.RunInTx(ctx, func(tx repository.BookingStore) error {
		if err := ensureFree(ctx, tx, room.ID, start, end, ""); err != nil {
			return err
		}
		return tx.Create(ctx, b)
	})
	if err != nil {
		return nil, storageError(ctx, err)
	}

	log.Printf("booking_created booking_id=%s room_id=%s requester_id=%s start=%s end=%s",
		b.ID, b.RoomID, b.RequesterID, b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))

	s.notifyReviewers(ctx, b, room)
	return b, nil
}

// UpdateBooking edits a pending booking in place. The overlap check ignores
// the booking itself, as if it were removed and inserted again.
func (s *Service) UpdateBooking(ctx context.Context, id string, in BookingInput) (*domain.Booking, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	in = in.trimmed()
	start, end, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	// resolved up front; reported only after the booking itself checks out
	room, roomErr := s.activeRoom(ctx, in.RoomID)

	var updated *domain.Booking
	err = s.bookings.RunInTx(ctx, func(tx repository.BookingStore) error {
		current, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, current) {
			return fmt.Errorf("%w: only the requester or a reviewer may edit this booking", ErrForbidden)
		}
		if current.Status != domain.BookingPending {
			return fmt.Errorf("%w: only pending bookings may be edited", ErrInvalidState)
		}
		if roomErr != nil {
			return roomErr
		}
		if err := ensureFree(ctx, tx, room.ID, start, end, current.ID); err != nil {
			return err
		}

		current.RoomID = room.ID
		current.Title = in.Title
		current.Description = in.Description
		current.StartTime = start
		current.EndTime = end
		if err := tx.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err)
	}

	log.Printf("booking_updated booking_id=%s room_id=%s actor_id=%s start=%s end=%s",
		updated.ID, updated.RoomID, actor.ID, updated.StartTime.Format(time.RFC3339), updated.EndTime.Format(time.RFC3339))
	return updated, nil
}

// CancelBooking frees the interval. Cancelling twice is a no-op.
func (s *Service) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, _, err := s.transition(ctx, id, transition{
		to:   domain.BookingCancelled,
		from: []domain.BookingStatus{domain.BookingPending, domain.BookingApproved},
		verb: "cancel",
	})
	return b, err
}

// RejectBooking is reviewer-only and also frees the interval.
func (s *Service) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, changed, err := s.transition(ctx, id, transition{
		to:           domain.BookingRejected,
		from:         []domain.BookingStatus{domain.BookingPending, domain.BookingApproved},
		verb:         "reject",
		reviewerOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifyRequester(ctx, b, domain.NotifBookingRejected, "Room Booking Rejected",
			fmt.Sprintf("Your booking \"%s\" was rejected", b.Title))
	}
	return b, nil
}

func (s *Service) ApproveBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, changed, err := s.transition(ctx, id, transition{
		to:           domain.BookingApproved,
		from:         []domain.BookingStatus{domain.BookingPending},
		verb:         "approve",
		reviewerOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifyRequester(ctx, b, domain.NotifBookingApproved, "Room Booking Approved",
			fmt.Sprintf("Your booking \"%s\" was approved", b.Title))
	}
	return b, nil
}

// CheckConflict is the advisory pre-submit check. It takes no locks.
func (s *Service) CheckConflict(ctx context.Context, in CheckConflictInput) (bool, error) {
	if _, err := requireActor(ctx); err != nil {
		return false, err
	}

	in.RoomID = strings.TrimSpace(in.RoomID)
	in.ExcludeBookingID = strings.TrimSpace(in.ExcludeBookingID)
	fields := validator.Validate(in)
	start, end, err := in.IntervalInput.resolve(s.loc)
	if err := mergeValidation(fields, err); err != nil {
		return false, err
	}
	if _, err := s.room(ctx, in.RoomID); err != nil {
		return false, err
	}

	conflict, err := NewChecker(s.bookings).check(ctx, in.RoomID, start, end, in.ExcludeBookingID)
	if err != nil && ctx.Err() != nil {
		return false, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return conflict, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return b, nil
}

// ListBookings filters by room, requester, status and a range of civil dates.
func (s *Service) ListBookings(ctx context.Context, q ListBookingsQuery) (*BookingList, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	f := repository.BookingFilter{
		RoomID:      strings.TrimSpace(q.RoomID),
		RequesterID: strings.TrimSpace(q.RequesterID),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}

	fields := map[string]string{}
	if q.Status != "" {
		st := domain.BookingStatus(q.Status)
		if !st.Valid() {
			fields["status"] = "must be one of pending, approved, rejected, cancelled"
		}
		f.Status = st
	}
	if q.From != "" {
		from, _, err := dayBounds(q.From, s.loc)
		if err != nil {
			fields["from"] = "must be a date in YYYY-MM-DD format"
		}
		f.From = from
	}
	if q.To != "" {
		_, to, err := dayBounds(q.To, s.loc)
		if err != nil {
			fields["to"] = "must be a date in YYYY-MM-DD format"
		}
		f.To = to
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	items, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return &BookingList{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// MyBookings lists the caller's own bookings.
func (s *Service) MyBookings(ctx context.Context, q ListBookingsQuery) (*BookingList, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	q.RequesterID = actor.ID
	return s.ListBookings(ctx, q)
}

// GetBusySlots returns the bookings holding the room on a civil date.
func (s *Service) GetBusySlots(ctx context.Context, roomID, date string) ([]BusySlot, error) {
	from, to, err := dayBounds(date, s.loc)
	if err != nil {
		return nil, err
	}
	if _, err := s.room(ctx, roomID); err != nil {
		return nil, err
	}
	return s.busyBetween(ctx, roomID, from, to)
}

// GetRoomAvailability returns busy and free slots inside the working window
// of a civil date.
func (s *Service) GetRoomAvailability(ctx context.Context, roomID, date string) (*Availability, error) {
	dayStart, dayEnd, err := dayBounds(date, s.loc)
	if err != nil {
		return nil, err
	}
	if _, err := s.room(ctx, roomID); err != nil {
		return nil, err
	}

	day := dayStart.In(s.loc)
	open, _ := atClock(day, workdayOpen, s.loc)
	close, _ := atClock(day, workdayClose, s.loc)
	open, close = open.UTC(), close.UTC()

	busy, err := s.busyBetween(ctx, roomID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0, len(busy))
	for _, b := range busy {
		slots = append(slots, TimeSlot{Start: b.Start, End: b.End})
	}

	return &Availability{
		RoomID:   roomID,
		Date:     day.Format(dateLayout),
		Timezone: s.loc.String(),
		WorkingHours: WorkingHours{
			Open:  open.In(s.loc).Format(clockLayout),
			Close: close.In(s.loc).Format(clockLayout),
		},
		BusySlots: busy,
		FreeSlots: subtractBusy(open, close, slots),
	}, nil
}

func (s *Service) busyBetween(ctx context.Context, roomID string, from, to time.Time) ([]BusySlot, error) {
	rows, err := s.bookings.FindOverlapping(ctx, roomID, from, to)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	out := make([]BusySlot, 0, len(rows))
	for _, b := range rows {
		if !b.Status.HoldsInterval() {
			continue
		}
		out = append(out, BusySlot{
			BookingID: b.ID,
			Title:     b.Title,
			Status:    b.Status,
			Start:     b.StartTime,
			End:       b.EndTime,
		})
	}
	return out, nil
}

type transition struct {
	to           domain.BookingStatus
	from         []domain.BookingStatus
	verb         string
	reviewerOnly bool
}

// transition moves a booking to t.to. Reaching a status the booking already
// has succeeds without a write and reports changed=false.
func (s *Service) transition(ctx context.Context, id string, t transition) (*domain.Booking, bool, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, false, err
	}
	if t.reviewerOnly && !actor.Role.IsReviewer() {
		return nil, false, fmt.Errorf("%w: only reviewers may %s bookings", ErrForbidden, t.verb)
	}

	var (
		result  *domain.Booking
		changed bool
	)
	err = s.bookings.RunInTx(ctx, func(tx repository.BookingStore) error {
		changed = false

		current, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, current) {
			return fmt.Errorf("%w: only the requester or a reviewer may %s this booking", ErrForbidden, t.verb)
		}
		if current.Status == t.to {
			result = current
			return nil
		}
		if !statusIn(current.Status, t.from) {
			return fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidState, t.verb, current.Status)
		}

		err = tx.UpdateStatus(ctx, id, repository.StatusChange{
			Status:  t.to,
			ActorID: actor.ID,
			At:      time.Now(),
		})
		if err != nil {
			return err
		}

		result, err = tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, storageError(ctx, err)
	}

	if changed {
		log.Printf("booking_status_changed booking_id=%s status=%s actor_id=%s", result.ID, result.Status, actor.ID)
	}
	return result, changed, nil
}

func (s *Service) validateInput(in BookingInput) (time.Time, time.Time, error) {
	fields := validator.Validate(in)
	start, end, err := in.IntervalInput.resolve(s.loc)
	if err := mergeValidation(fields, err); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *Service) room(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return room, nil
}

func (s *Service) activeRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: room %s does not exist", ErrRoomUnavailable, id)
	}
	if err != nil {
		return nil, storageError(ctx, err)
	}
	if !room.IsActive {
		return nil, fmt.Errorf("%w: room %s is inactive", ErrRoomUnavailable, id)
	}
	return room, nil
}

func (s *Service) notifyReviewers(ctx context.Context, b *domain.Booking, room *domain.Room) {
	if s.notifs == nil || s.reviewers == nil {
		return
	}

	reviewers, err := s.reviewers.ListReviewers(ctx, b.RequesterID)
	if err != nil {
		log.Printf("booking_notify_failed booking_id=%s stage=list_reviewers error=%q", b.ID, err.Error())
		return
	}

	msg := fmt.Sprintf("New booking created: \"%s\" in %s", b.Title, room.Name)
	for _, reviewerID := range reviewers {
		err := s.notifs.Notify(ctx, domain.Notification{
			RecipientID: reviewerID,
			Type:        domain.NotifBooking,
			Title:       "New Room Booking",
			Message:     msg,
			Link:        bookingsLink,
		})
		if err != nil {
			log.Printf("booking_notify_failed booking_id=%s recipient_id=%s error=%q", b.ID, reviewerID, err.Error())
		}
	}
}

func (s *Service) notifyRequester(ctx context.Context, b *domain.Booking, typ domain.NotificationType, title, msg string) {
	if s.notifs == nil {
		return
	}
	err := s.notifs.Notify(ctx, domain.Notification{
		RecipientID: b.RequesterID,
		Type:        typ,
		Title:       title,
		Message:     msg,
		Link:        bookingsLink,
	})
	if err != nil {
		log.Printf("booking_notify_failed booking_id=%s recipient_id=%s error=%q", b.ID, b.RequesterID, err.Error())
	}
}

func (in BookingInput) trimmed() BookingInput {
	in.RoomID = strings.TrimSpace(in.RoomID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ensureFree runs the overlap check inside a unit of work.
func ensureFree(ctx context.Context, store repository.BookingStore, roomID string, start, end time.Time, excludeID string) error {
	conflict, err := NewChecker(store).check(ctx, roomID, start, end, excludeID)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if conflict {
		return ErrConflict
	}
	return nil
}

func requireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, ErrUnauthenticated
	}
	return actor, nil
}

func canManage(actor domain.Actor, b *domain.Booking) bool {
	return actor.ID == b.RequesterID || actor.Role.IsReviewer()
}

func statusIn(st domain.BookingStatus, set []domain.BookingStatus) bool {
	for _, s := range set {
		if st == s {
			return true
		}
	}
	return false
}

func mergeValidation(fields map[string]string, err error) error {
	var vErr *ValidationError
	if err != nil && !errors.As(err, &vErr) {
		return err
	}
	if len(fields) == 0 && vErr == nil {
		return nil
	}

	merged := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if vErr != nil {
		for k, v := range vErr.Fields {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return &ValidationError{Fields: merged}
}

var serviceErrors = []error{
	ErrValidation, ErrRoomUnavailable, ErrConflict, ErrInvalidState,
	ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrTransient,
}

// storageError maps repository and context failures onto the service errors.
func storageError(ctx context.Context, err error) error {
	for _, known := range serviceErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	switch {
	case errors.Is(err, repository.ErrOverlap):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrRetryExhausted),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// subtractBusy returns the gaps of [open,close) not covered by busy.
func subtractBusy(open, close time.Time, busy []TimeSlot) []TimeSlot {
	if len(busy) == 0 {
		return []TimeSlot{{Start: open, End: close}}
	}

	sorted := append([]TimeSlot(nil), busy...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := make([]TimeSlot, 0, len(sorted))
	for _, s := range sorted {
		if !s.End.After(open) || !s.Start.Before(close) {
			continue
		}
		if s.Start.Before(open) {
			s.Start = open
		}
		if s.End.After(close) {
			s.End = close
		}

		if len(merged) == 0 {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}

	cur := open
	out := make([]TimeSlot, 0, len(merged)+1)
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, TimeSlot{Start: cur, End: b.Start})
		}
		if b.End.After(cur) {
			cur = b.End
		}
	}
	if cur.Before(close) {
		out = append(out, TimeSlot{Start: cur, End: close})
	}
	return out
}
