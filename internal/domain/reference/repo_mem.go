package reference

import (
	"context"
	"sync"
)

// MemoryStore is a Store held in process memory. It backs STORE=memory and
// the package tests of its callers.
type MemoryStore struct {
	mu          sync.RWMutex
	patients    map[int64]Patient
	clinicians  map[string]Clinician
	medications map[string]Medication
	nextID      map[Kind]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:    make(map[int64]Patient),
		clinicians:  make(map[string]Clinician),
		medications: make(map[string]Medication),
		nextID:      make(map[Kind]int64),
	}
}

// assignID keeps explicit ids and hands out the next free one otherwise.
// Callers hold mu.
func (s *MemoryStore) assignID(kind Kind, id int64) int64 {
	if id == 0 {
		id = s.nextID[kind] + 1
	}
	if id > s.nextID[kind] {
		s.nextID[kind] = id
	}
	return id
}

func (s *MemoryStore) AddPatient(p Patient) Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.assignID(KindPatient, p.ID)
	s.patients[p.ID] = p
	return p
}

// AddClinician stores c, replacing any clinician with the same
// registration id.
func (s *MemoryStore) AddClinician(c Clinician) Clinician {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.assignID(KindClinician, c.ID)
	s.clinicians[c.RegistrationID] = c
	return c
}

// AddMedication stores m, replacing any medication with the same code.
func (s *MemoryStore) AddMedication(m Medication) Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.assignID(KindMedication, m.ID)
	s.medications[m.Code] = m
	return m
}

func (s *MemoryStore) FindPatientByID(_ context.Context, id int64) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) FindClinicianByRegistrationID(_ context.Context, registrationID string) (*Clinician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clinicians[registrationID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) FindMedicationByCode(_ context.Context, code string) (*Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.medications[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}
