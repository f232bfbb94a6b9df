package reference

import "cloud.google.com/go/civil"

// Demo rows, identical to migrations/002_seed.sql.
var (
	DemoPatients = []Patient{
		{ID: 1, FirstName: "John", LastName: "Doe", DateOfBirth: civil.Date{Year: 1990, Month: 1, Day: 15}, Sex: SexMale},
		{ID: 2, FirstName: "Jane", LastName: "Smith", DateOfBirth: civil.Date{Year: 1985, Month: 6, Day: 22}, Sex: SexFemale},
	}
	DemoClinicians = []Clinician{
		{ID: 1, FirstName: "Dr", LastName: "House", RegistrationID: "MD12345"},
		{ID: 2, FirstName: "Dr", LastName: "Wilson", RegistrationID: "MD67890"},
	}
	DemoMedications = []Medication{
		{ID: 1, Code: "PARA500", CodeName: "Paracetamol", CodeSystem: "SNOMED-CT", StrengthValue: 500, StrengthUnit: "mg", Form: FormTablet},
		{ID: 2, Code: "IBUP400", CodeName: "Ibuprofen", CodeSystem: "SNOMED-CT", StrengthValue: 400, StrengthUnit: "mg", Form: FormCapsule},
	}
)

// LoadDemoData adds the demo patients, clinicians and medications to s.
func LoadDemoData(s *MemoryStore) {
	for _, p := range DemoPatients {
		s.AddPatient(p)
	}
	for _, c := range DemoClinicians {
		s.AddClinician(c)
	}
	for _, m := range DemoMedications {
		s.AddMedication(m)
	}
}
