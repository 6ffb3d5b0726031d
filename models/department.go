// File: /models/department.go
package models

// Department is static reference data seeded at first initialization.
type Department struct {
	ID   string `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	Name string `json:"name" bson:"name" gorm:"not null;size:255"`
	Code string `json:"code" bson:"code" gorm:"size:10"`
}

// SeedDepartments returns the six fixed departments every backend starts with.
func SeedDepartments() []Department {
	return []Department{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "Alpes-de-Haute-Provence", Code: "04"},
		{ID: "22222222-2222-2222-2222-222222222222", Name: "Hautes-Alpes", Code: "05"},
		{ID: "33333333-3333-3333-3333-333333333333", Name: "Alpes-Maritimes", Code: "06"},
		{ID: "44444444-4444-4444-4444-444444444444", Name: "Bouches-du-Rhône", Code: "13"},
		{ID: "55555555-5555-5555-5555-555555555555", Name: "Var", Code: "83"},
		{ID: "66666666-6666-6666-6666-666666666666", Name: "Vaucluse", Code: "84"},
	}
}
