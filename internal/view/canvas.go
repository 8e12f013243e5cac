package view

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"backend-mapty/internal/shared/geo"
)

var ErrMapNotReady = errors.New("map is not initialized")

// Publisher sends a frame to every client watching topic.
type Publisher interface {
	Broadcast(topic string, payload []byte)
}

type Frame struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Marker  *Marker     `json:"marker,omitempty"`
	Entry   *Entry      `json:"entry,omitempty"`
	Center  *geo.Coords `json:"center,omitempty"`
	Zoom    int         `json:"zoom,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// Emitter encodes frames and publishes them on one topic.
type Emitter struct {
	pub   Publisher
	topic string
}

func NewEmitter(pub Publisher, topic string) Emitter {
	return Emitter{pub: pub, topic: topic}
}

func (e Emitter) Emit(f Frame) {
	if e.pub == nil {
		return
	}
	payload, err := json.Marshal(f)
	if err != nil {
		log.Printf("view frame %s: %v", f.Type, err)
		return
	}
	e.pub.Broadcast(e.topic, payload)
}

// Canvas is the server side copy of what the browser shows: the map with
// its markers and the workout list. Each change is pushed as a Frame.
type Canvas struct {
	mu          sync.RWMutex
	out         Emitter
	initialized bool
	center      geo.Coords
	zoom        int
	markers     []Marker
	entries     []Entry
	onClick     ClickHandler
}

type State struct {
	Initialized bool       `json:"initialized"`
	Center      geo.Coords `json:"center"`
	Zoom        int        `json:"zoom"`
	Markers     []Marker   `json:"markers"`
	Entries     []Entry    `json:"entries"`
}

func NewCanvas(pub Publisher, topic string) *Canvas {
	return &Canvas{out: Emitter{pub: pub, topic: topic}}
}

func (c *Canvas) Initialize(center geo.Coords, zoom int) {
	c.mu.Lock()
	c.initialized, c.center, c.zoom = true, center, zoom
	c.mu.Unlock()
	c.out.Emit(Frame{Type: "map_initialized", Center: &center, Zoom: zoom})
}

func (c *Canvas) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

func (c *Canvas) AddMarker(m Marker) {
	c.mu.Lock()
	c.markers = append(c.markers, m)
	c.mu.Unlock()
	c.out.Emit(Frame{Type: "marker_added", Marker: &m})
}

func (c *Canvas) RemoveMarker(id string) {
	c.mu.Lock()
	removed := false
	for i, m := range c.markers {
		if m.ID == id {
			c.markers = append(c.markers[:i], c.markers[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()
	if removed {
		c.out.Emit(Frame{Type: "marker_removed", ID: id})
	}
}

func (c *Canvas) OnClick(handler ClickHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClick = handler
}

func (c *Canvas) PanTo(center geo.Coords, zoom int) {
	c.mu.Lock()
	c.center, c.zoom = center, zoom
	c.mu.Unlock()
	c.out.Emit(Frame{Type: "map_moved", Center: &center, Zoom: zoom})
}

// Click forwards a click on the map to the registered handler.
func (c *Canvas) Click(at geo.Coords) error {
	c.mu.RLock()
	ready, handler := c.initialized, c.onClick
	c.mu.RUnlock()

	if !ready {
		return ErrMapNotReady
	}
	if handler == nil {
		return nil
	}
	return handler(at)
}

func (c *Canvas) Insert(e Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
	c.out.Emit(Frame{Type: "entry_inserted", Entry: &e})
}

func (c *Canvas) Update(e Entry) {
	c.mu.Lock()
	found := false
	for i := range c.entries {
		if c.entries[i].ID == e.ID {
			c.entries[i] = e
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.out.Emit(Frame{Type: "entry_updated", Entry: &e})
	}
}

func (c *Canvas) Remove(id string) {
	c.mu.Lock()
	removed := false
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()
	if removed {
		c.out.Emit(Frame{Type: "entry_removed", ID: id})
	}
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	c.out.Emit(Frame{Type: "entries_cleared"})
}

// Snapshot returns a copy of the current view.
func (c *Canvas) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Initialized: c.initialized,
		Center:      c.center,
		Zoom:        c.zoom,
		Markers:     append([]Marker{}, c.markers...),
		Entries:     append([]Entry{}, c.entries...),
	}
}
