package view

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Service wires the canvas, the sync and the alert box around one topic.
type Service struct {
	Canvas *Canvas
	Sync   *Sync
	Alerts *AlertBox
	source func() []workout.Workout
}

type Snapshot struct {
	View  State      `json:"view"`
	Alert AlertState `json:"alert"`
}

func NewService(pub Publisher, topic string, zoom int, alertTimeout time.Duration, source func() []workout.Workout) *Service {
	canvas := NewCanvas(pub, topic)
	return &Service{
		Canvas: canvas,
		Sync:   NewSync(canvas, canvas, zoom),
		Alerts: NewAlertBox(pub, topic, alertTimeout),
		source: source,
	}
}

// Start renders the current collection and locates the user in the
// background. Only map initialization waits for the position.
func (s *Service) Start(ctx context.Context, locator geo.Locator) <-chan error {
	s.Sync.Load(s.source())
	done := make(chan error, 1)
	go func() {
		done <- Bootstrap(ctx, locator, s.Sync, s.Alerts)
	}()
	return done
}

// Resync reconciles the rendered view with the collection.
func (s *Service) Resync() {
	s.Sync.Resync(s.source())
}

func (s *Service) Snapshot() Snapshot {
	return Snapshot{View: s.Canvas.Snapshot(), Alert: s.Alerts.State()}
}

// SnapshotFrame is the first frame sent to a newly connected client.
func (s *Service) SnapshotFrame(_ string) []byte {
	payload, err := json.Marshal(Frame{Type: "snapshot", Data: s.Snapshot()})
	if err != nil {
		log.Printf("snapshot frame: %v", err)
		return nil
	}
	return payload
}
