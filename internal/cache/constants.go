package cache

import (
	"fmt"
	"time"
)

// key names definition
const (
	ShowtimeSeatMapKey = "showtime:%s:seatmap" // seat availability payload, '%s' is showtime id
)

// The seat map is a read cache only: it may be a few seconds stale and is
// invalidated whenever holds or tickets for the showtime change. It is
// never consulted by the locking path, which always goes to the store.
const SeatMapTTL = 15 * time.Second

func MakeShowtimeSeatMapKey(showtimeID string) string {
	return fmt.Sprintf("showtime:%s:seatmap", showtimeID)
}
