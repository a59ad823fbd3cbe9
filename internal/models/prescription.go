package models

// Prescription is a medication course. Dates are naive local calendar dates ("2006-01-02").
type Prescription struct {
	ID         string  `json:"id" db:"id"`
	UserID     string  `json:"user_id" db:"user_id"`
	Medication string  `json:"medication" db:"medication"`
	Dosage     string  `json:"dosage" db:"dosage"`
	Frequency  string  `json:"frequency" db:"frequency"`
	Doctor     *string `json:"doctor,omitempty" db:"doctor"`
	StartDate  string  `json:"start_date" db:"start_date"`
	EndDate    *string `json:"end_date,omitempty" db:"end_date"`
}
