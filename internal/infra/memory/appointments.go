package memory

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Appointments struct{ s *Store }

func NewAppointments(s *Store) *Appointments { return &Appointments{s: s} }

var _ appointment.Repository = (*Appointments)(nil)

func (r *Appointments) Transaction(ctx context.Context, fn func(repo appointment.Repository) error) error {
	return r.s.transaction(ctx, func() error { return fn(r) })
}

// LockDoctorDay is covered by Transaction.
func (r *Appointments) LockDoctorDay(context.Context, uint, string) error { return nil }

func (r *Appointments) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u := r.s.userRef(id)
	if u == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *Appointments) ListForDoctorOnDate(_ context.Context, doctorID uint, date string) ([]models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.listAppointments(func(ap models.Appointment) bool {
		return ap.DoctorID == doctorID && ap.Date == date
	}, false), nil
}

func (r *Appointments) Create(_ context.Context, ap *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ap.Status == "" {
		ap.Status = string(appointment.StatusScheduled)
	}
	if err := r.s.checkSlot(ap); err != nil {
		return err
	}

	ap.ID = r.s.nextID()
	ap.CreatedAt = r.s.now()
	ap.UpdatedAt = ap.CreatedAt
	r.s.appointments[ap.ID] = stripParties(*ap)
	return nil
}

func (r *Appointments) Get(_ context.Context, id uint) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ap, ok := r.s.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ap, nil
}

func (r *Appointments) Update(_ context.Context, ap *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[ap.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := r.s.checkSlot(ap); err != nil {
		return err
	}
	ap.UpdatedAt = r.s.now()
	r.s.appointments[ap.ID] = stripParties(*ap)
	return nil
}

func (r *Appointments) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

func (r *Appointments) List(_ context.Context) ([]models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listAppointments(func(models.Appointment) bool { return true }, false), nil
}

func (r *Appointments) ListByUser(_ context.Context, userID uint) ([]models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.listAppointments(func(ap models.Appointment) bool {
		return ap.DoctorID == userID || ap.PatientID == userID
	}, true), nil
}

func (r *Appointments) DeleteByIDs(_ context.Context, ids []uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.s.appointments[id]; ok {
			delete(r.s.appointments, id)
			n++
		}
	}
	return n, nil
}

func (r *Appointments) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.appointments)), nil
}

// checkSlot mirrors idx_appointments_doctor_slot.
func (s *Store) checkSlot(ap *models.Appointment) error {
	if !appointment.Status(ap.Status).Blocks() {
		return nil
	}
	for _, other := range s.appointments {
		if other.ID == ap.ID || !appointment.Status(other.Status).Blocks() {
			continue
		}
		if other.DoctorID == ap.DoctorID && other.Date == ap.Date && other.Time == ap.Time {
			return uniqueViolation("idx_appointments_doctor_slot")
		}
	}
	return nil
}

func (s *Store) listAppointments(keep func(models.Appointment) bool, parties bool) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, ap := range s.appointments {
		if !keep(ap) {
			continue
		}
		if parties {
			ap.Doctor = s.userRef(ap.DoctorID)
			ap.Patient = s.userRef(ap.PatientID)
		}
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func stripParties(ap models.Appointment) models.Appointment {
	ap.Doctor = nil
	ap.Patient = nil
	return ap
}
