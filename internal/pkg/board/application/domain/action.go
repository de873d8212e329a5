package board

import (
	"time"

	"github.com/google/uuid"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wire labels for the action variants. Used only by the JSON codec;
// in-process dispatch is always a type switch over the concrete types.
const (
	KindStroke = "stroke"
	KindShape  = "shape"
	KindText   = "text"
	KindImage  = "image"
	KindFill   = "fill"
	KindClear  = "clear"
)

// SystemAuthorID is the author recorded on synthetic actions such as Clear.
const SystemAuthorID = "system"

// Base carries the fields every action shares. Actions are referenced
// across the wire only by ID (e.g. for undo acknowledgement).
type Base struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	LayerID   string    `json:"layerId,omitempty"`
}

// Ref exposes the shared fields without a type switch.
func (b *Base) Ref() *Base { return b }

// Action is one committed unit of drawing history. The variant set is
// closed: Stroke, Shape, Text, Image, Fill, Clear.
type Action interface {
	Ref() *Base
	Kind() string
	isAction()
}

// Stroke is a freehand line. Its Points grow in place while the stroke is
// in progress; the record is immutable once the author ends it.
type Stroke struct {
	Base
	Tool      string  `json:"tool"`
	BrushType string  `json:"brushType,omitempty"`
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Points    []Point `json:"points"`
}

// Shape is a fully formed geometric primitive (rect, ellipse, line, ...).
type Shape struct {
	Base
	ShapeType string  `json:"shapeType"`
	From      Point   `json:"from"`
	To        Point   `json:"to"`
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	Filled    bool    `json:"filled,omitempty"`
}

// Text is a text placement.
type Text struct {
	Base
	Body     string  `json:"text"`
	At       Point   `json:"at"`
	Color    string  `json:"color"`
	FontSize float64 `json:"fontSize"`
}

// Image is an image placement referenced by URL.
type Image struct {
	Base
	URL    string  `json:"url"`
	At     Point   `json:"at"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Fill is a flood-fill request at a point. The geometry is resolved by
// renderers; the log only records the intent.
type Fill struct {
	Base
	At    Point  `json:"at"`
	Color string `json:"color"`
}

// Clear marks a full-canvas wipe. It is a reversible log entry, not an
// erasure: replaying consumers discard everything before it.
type Clear struct {
	Base
}

func (*Stroke) Kind() string { return KindStroke }
func (*Shape) Kind() string  { return KindShape }
func (*Text) Kind() string   { return KindText }
func (*Image) Kind() string  { return KindImage }
func (*Fill) Kind() string   { return KindFill }
func (*Clear) Kind() string  { return KindClear }

func (*Stroke) isAction() {}
func (*Shape) isAction()  {}
func (*Text) isAction()   {}
func (*Image) isAction()  {}
func (*Fill) isAction()   {}
func (*Clear) isAction()  {}

// NewBase stamps a fresh Base for an author, generating the id when the
// caller did not supply one (clients may pre-assign ids for optimistic
// local echo).
func NewBase(id string, authorID string, layerID string) Base {
	if id == "" {
		id = uuid.NewString()
	}
	return Base{
		ID:        id,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
		LayerID:   layerID,
	}
}

// CloneAction returns a deep copy, so snapshots never alias a stroke whose
// point list is still growing.
func CloneAction(a Action) Action {
	switch v := a.(type) {
	case *Stroke:
		c := *v
		c.Points = append([]Point(nil), v.Points...)
		return &c
	case *Shape:
		c := *v
		return &c
	case *Text:
		c := *v
		return &c
	case *Image:
		c := *v
		return &c
	case *Fill:
		c := *v
		return &c
	case *Clear:
		c := *v
		return &c
	}
	return a
}
