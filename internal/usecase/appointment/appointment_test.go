package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	"github.com/chasmapasal/chasmapasal-api/internal/notify"
	"github.com/chasmapasal/chasmapasal-api/internal/timezone"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Dispatch(ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type fixture struct {
	repo     *memory.Appointments
	notifier *recordingNotifier
	book     *BookAppointment
	doctor   models.User
	patient  models.User
	log      *logrus.Logger
}

func setup(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	users := memory.NewUsers(store)

	doctor := models.User{FirstName: "Sita", LastName: "Rai", Email: "sita@clinic.np", Role: models.RoleDoctor}
	patient := models.User{FirstName: "Ram", LastName: "Thapa", Email: "ram@mail.np", Role: models.RoleUser}
	for _, u := range []*models.User{&doctor, &patient} {
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	repo := memory.NewAppointments(store)
	notifier := &recordingNotifier{}

	return &fixture{
		repo:     repo,
		notifier: notifier,
		book:     NewBookAppointment(repo, notifier, log),
		doctor:   doctor,
		patient:  patient,
		log:      log,
	}
}

func (f *fixture) bookAt(date, clock string) (*models.Appointment, error) {
	return f.book.Execute(context.Background(), BookAppointmentInput{
		Date:      date,
		Time:      clock,
		DoctorID:  f.doctor.ID,
		PatientID: f.patient.ID,
		Contact:   "9801234567",
	})
}

func TestBookRejectsBookingsWithinOneHour(t *testing.T) {
	f := setup(t)

	if _, err := f.bookAt("2025-03-10", "12:00"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.bookAt("2025-03-10", "12:30")
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("expected time_conflict, got %v", err)
	}

	if _, err := f.bookAt("2025-03-10", "13:00"); err != nil {
		t.Fatalf("booking exactly one hour later must succeed: %v", err)
	}
	if _, err := f.bookAt("2025-03-11", "12:30"); err != nil {
		t.Fatalf("another day must not conflict: %v", err)
	}
}

func TestBookConflictIgnoresSubmissionOrder(t *testing.T) {
	cases := []struct {
		name          string
		first, second string
	}{
		{name: "earlier first", first: "12:00", second: "12:30"},
		{name: "later first", first: "12:30", second: "12:00"},
		{name: "later first, close gap", first: "14:00", second: "13:01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)

			if _, err := f.bookAt("2025-03-10", tc.first); err != nil {
				t.Fatalf("first booking: %v", err)
			}
			_, err := f.bookAt("2025-03-10", tc.second)
			if !httperr.IsBusiness(err, "time_conflict") {
				t.Fatalf("booking %s after %s: expected time_conflict, got %v", tc.second, tc.first, err)
			}
		})
	}

	f := setup(t)
	if _, err := f.bookAt("2025-03-10", "13:00"); err != nil {
		t.Fatalf("book 13:00: %v", err)
	}
	if _, err := f.bookAt("2025-03-10", "12:00"); err != nil {
		t.Fatalf("exactly one hour earlier must succeed: %v", err)
	}
}

func TestBookNotifiesDoctor(t *testing.T) {
	f := setup(t)

	ap, err := f.bookAt("2025-03-10", "9:00")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if ap.Time != "09:00" || ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("unexpected appointment %+v", ap)
	}

	want := []notify.Event{{
		UserID:  f.doctor.ID,
		Message: "New appointment scheduled with Ram Thapa on 2025-03-10 at 09:00.",
	}}
	if diff := cmp.Diff(want, f.notifier.events); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestBookValidatesParties(t *testing.T) {
	f := setup(t)

	_, err := f.book.Execute(context.Background(), BookAppointmentInput{
		Date: "2025-03-10", Time: "10:00", DoctorID: 999, PatientID: f.patient.ID, Contact: "x",
	})
	if kind, _ := httperr.KindOf(err); kind != httperr.KindNotFound {
		t.Fatalf("expected not found for unknown doctor, got %v", err)
	}

	_, err = f.book.Execute(context.Background(), BookAppointmentInput{
		Date: "2025-03-10", Time: "10:00", DoctorID: f.patient.ID, PatientID: f.patient.ID, Contact: "x",
	})
	if !httperr.IsBusiness(err, "doctor_not_found") {
		t.Fatalf("expected doctor_not_found for non doctor, got %v", err)
	}

	_, err = f.book.Execute(context.Background(), BookAppointmentInput{
		Date: "10/03/2025", Time: "10:00", DoctorID: f.doctor.ID, PatientID: f.patient.ID, Contact: "x",
	})
	if !httperr.IsBusiness(err, "invalid_date") {
		t.Fatalf("expected invalid_date, got %v", err)
	}

	if len(f.notifier.events) != 0 {
		t.Fatalf("failed bookings must not notify")
	}
}

func TestConcurrentBookingsOfOneSlot(t *testing.T) {
	f := setup(t)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.bookAt("2025-03-10", "14:00"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Fatalf("expected exactly one booking to win, got %d", success)
	}
}

func TestAvailabilityAroundExistingBooking(t *testing.T) {
	f := setup(t)

	if _, err := f.bookAt("2025-03-10", "12:00"); err != nil {
		t.Fatalf("book: %v", err)
	}

	got, err := NewGetAvailability(f.repo).Execute(context.Background(), f.doctor.ID, "2025-03-10")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	want := &domain.Availability{
		AvailableSlots: []string{"10:00", "11:00", "13:00", "14:00", "15:00", "16:00"},
		AllSlots:       []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("availability mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	f := setup(t)

	ap, err := f.bookAt("2025-03-10", "12:00")
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	cancelled := string(domain.StatusCancelled)
	_, err = NewUpdateAppointment(f.repo, f.log).Execute(context.Background(), UpdateAppointmentInput{
		Actor:  auth.Identity{UserID: f.patient.ID, Role: models.RoleUser},
		ID:     ap.ID,
		Status: &cancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.bookAt("2025-03-10", "12:00"); err != nil {
		t.Fatalf("slot of a cancelled booking must be bookable: %v", err)
	}
}

func TestUpdateMoveChecksConflicts(t *testing.T) {
	f := setup(t)
	uc := NewUpdateAppointment(f.repo, f.log)
	actor := auth.Identity{UserID: f.doctor.ID, Role: models.RoleDoctor}

	first, _ := f.bookAt("2025-03-10", "10:00")
	if _, err := f.bookAt("2025-03-10", "13:00"); err != nil {
		t.Fatalf("book: %v", err)
	}

	clash := "12:30"
	_, err := uc.Execute(context.Background(), UpdateAppointmentInput{Actor: actor, ID: first.ID, Time: &clash})
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("expected time_conflict, got %v", err)
	}

	// moving within its own hour only compares against the other booking
	near := "10:30"
	moved, err := uc.Execute(context.Background(), UpdateAppointmentInput{Actor: actor, ID: first.ID, Time: &near})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Time != "10:30" {
		t.Fatalf("expected 10:30, got %s", moved.Time)
	}

	stranger := auth.Identity{UserID: 999, Role: models.RoleUser}
	_, err = uc.Execute(context.Background(), UpdateAppointmentInput{Actor: stranger, ID: first.ID, Time: &near})
	if kind, _ := httperr.KindOf(err); kind != httperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCompletedAppointmentIsFinal(t *testing.T) {
	f := setup(t)
	uc := NewUpdateAppointment(f.repo, f.log)
	actor := auth.Identity{UserID: f.doctor.ID, Role: models.RoleDoctor}

	ap, _ := f.bookAt("2025-03-10", "10:00")

	completed, scheduled := "completed", "scheduled"
	if _, err := uc.Execute(context.Background(), UpdateAppointmentInput{Actor: actor, ID: ap.ID, Status: &completed}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := uc.Execute(context.Background(), UpdateAppointmentInput{Actor: actor, ID: ap.ID, Status: &scheduled})
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestClearPastUsesClinicClock(t *testing.T) {
	f := setup(t)

	for _, at := range [][2]string{
		{"2025-03-09", "16:00"},
		{"2025-03-10", "10:00"},
		{"2025-03-10", "14:00"},
		{"2025-03-11", "10:00"},
	} {
		if _, err := f.bookAt(at[0], at[1]); err != nil {
			t.Fatalf("book %v: %v", at, err)
		}
	}

	loc := time.FixedZone("NPT", 5*3600+45*60)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	clinic := timezone.Fixed(loc, func() time.Time { return now.UTC() })
	uc := NewClearPastAppointments(f.repo, clinic, f.log)

	n, err := uc.Execute(context.Background(), f.patient.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}

	left, _ := f.repo.ListByUser(context.Background(), f.patient.ID)
	got := make([]string, 0, len(left))
	for _, ap := range left {
		got = append(got, ap.Date+" "+ap.Time)
	}
	if diff := cmp.Diff([]string{"2025-03-10 14:00", "2025-03-11 10:00"}, got); diff != "" {
		t.Fatalf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteRequiresParty(t *testing.T) {
	f := setup(t)
	uc := NewDeleteAppointment(f.repo, f.log)

	ap, _ := f.bookAt("2025-03-10", "10:00")

	err := uc.Execute(context.Background(), auth.Identity{UserID: 999, Role: models.RoleUser}, ap.ID)
	if kind, _ := httperr.KindOf(err); kind != httperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := uc.Execute(context.Background(), auth.Identity{UserID: 1000, Role: models.RoleAdmin}, ap.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	err = uc.Execute(context.Background(), auth.Identity{Role: models.RoleAdmin}, ap.ID)
	if !httperr.IsBusiness(err, "appointment_not_found") {
		t.Fatalf("expected appointment_not_found, got %v", err)
	}
}
