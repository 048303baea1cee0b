package models

import "time"

// ChargerStatus is the availability state of a physical charger.
type ChargerStatus string

// Charger availability states.
const (
	ChargerAvailable ChargerStatus = "AVAILABLE"
	ChargerBooked    ChargerStatus = "BOOKED"
	ChargerBlocked   ChargerStatus = "BLOCKED"
	ChargerCharging  ChargerStatus = "CHARGING"
)

// Valid reports whether the status is one of the known states.
func (s ChargerStatus) Valid() bool {
	switch s {
	case ChargerAvailable, ChargerBooked, ChargerBlocked, ChargerCharging:
		return true
	}
	return false
}

// Charger represents one controllable physical unit hosted by a user.
type Charger struct {
	ID            int64         `db:"id" json:"id"`
	HostName      string        `db:"host_name" json:"host_name"`
	Location      string        `db:"location" json:"location"`
	Brand         string        `db:"brand" json:"brand"`
	Type          string        `db:"type" json:"type"`
	AvailableDate time.Time     `db:"available_date" json:"available_date"`
	Duration      int           `db:"duration" json:"duration"`
	Status        ChargerStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
