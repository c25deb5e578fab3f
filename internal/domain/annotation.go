package domain

// Annotation model shared with clients. The server relays annotation traffic
// as opaque payloads; these types exist for the endpoint-side overlay and for
// tests, not for the relay path.

type AnnotationKind string

const (
	AnnotationPointer  AnnotationKind = "pointer"
	AnnotationArrow    AnnotationKind = "arrow"
	AnnotationCircle   AnnotationKind = "circle"
	AnnotationFreehand AnnotationKind = "freehand"
	AnnotationText     AnnotationKind = "text"
)

// Point is a coordinate normalized to the video frame, 0..1 on both axes.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation is one drawn overlay element. Ephemeral: scoped to the session
// it was drawn in, gone when the session ends.
type Annotation struct {
	ID        string         `json:"id"`
	Kind      AnnotationKind `json:"kind"`
	Points    []Point        `json:"points,omitempty"`
	Color     string         `json:"color,omitempty"`
	Width     float64        `json:"width,omitempty"`
	Text      string         `json:"text,omitempty"`
	Animation string         `json:"animation,omitempty"`
	CreatedAt int64          `json:"created_at"` // epoch ms
}

// FrozenFrame is exchanged on resume so the peer reconstructs the overlay
// state instead of starting from empty.
type FrozenFrame struct {
	CapturedAt  int64        `json:"captured_at"` // epoch ms
	Annotations []Annotation `json:"annotations"`
}
