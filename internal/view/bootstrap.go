package view

import (
	"context"
	"log"

	"backend-mapty/internal/shared/geo"
)

const positionNotice = "Could not get your position"

// Bootstrap asks the locator for the user's position and initializes the
// map there. Without a position the map stays uninitialized and a notice is
// shown; the rest of the app keeps working.
func Bootstrap(ctx context.Context, locator geo.Locator, s *Sync, alerts *AlertBox) error {
	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		log.Printf("geolocation failed: %v", err)
		alerts.Notice(positionNotice)
		return err
	}
	s.Initialize(pos)
	return nil
}
