package model

import "time"

// AvailableSlot — свободное окно [Start, End). Не хранится, считается на лету.
type AvailableSlot struct {
	Start time.Time
	End   time.Time
}
