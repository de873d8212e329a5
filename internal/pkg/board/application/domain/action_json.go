package board

import (
	"encoding/json"
	"fmt"
	"time"
)

// actionEnvelope is the flat kind-tagged wire form of an Action. It exists
// only at the serialization boundary; nothing inside the process dispatches
// on the Kind string.
type actionEnvelope struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	LayerID   string    `json:"layerId,omitempty"`

	Tool      string  `json:"tool,omitempty"`
	BrushType string  `json:"brushType,omitempty"`
	Color     string  `json:"color,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Points    []Point `json:"points,omitempty"`

	ShapeType string `json:"shapeType,omitempty"`
	From      *Point `json:"from,omitempty"`
	To        *Point `json:"to,omitempty"`
	Filled    bool   `json:"filled,omitempty"`

	Body     string  `json:"text,omitempty"`
	At       *Point  `json:"at,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	URL string  `json:"url,omitempty"`
	W   float64 `json:"w,omitempty"`
	H   float64 `json:"h,omitempty"`
}

func encodeAction(a Action) actionEnvelope {
	b := a.Ref()
	env := actionEnvelope{
		Kind:      a.Kind(),
		ID:        b.ID,
		AuthorID:  b.AuthorID,
		CreatedAt: b.CreatedAt,
		LayerID:   b.LayerID,
	}
	switch v := a.(type) {
	case *Stroke:
		env.Tool = v.Tool
		env.BrushType = v.BrushType
		env.Color = v.Color
		env.Width = v.Width
		env.Points = v.Points
	case *Shape:
		from, to := v.From, v.To
		env.ShapeType = v.ShapeType
		env.From = &from
		env.To = &to
		env.Color = v.Color
		env.Width = v.Width
		env.Filled = v.Filled
	case *Text:
		at := v.At
		env.Body = v.Body
		env.At = &at
		env.Color = v.Color
		env.FontSize = v.FontSize
	case *Image:
		at := v.At
		env.URL = v.URL
		env.At = &at
		env.W = v.Width
		env.H = v.Height
	case *Fill:
		at := v.At
		env.At = &at
		env.Color = v.Color
	case *Clear:
	}
	return env
}

func (env actionEnvelope) decode() (Action, error) {
	base := Base{ID: env.ID, AuthorID: env.AuthorID, CreatedAt: env.CreatedAt, LayerID: env.LayerID}
	switch env.Kind {
	case KindStroke:
		return &Stroke{Base: base, Tool: env.Tool, BrushType: env.BrushType, Color: env.Color, Width: env.Width, Points: env.Points}, nil
	case KindShape:
		s := &Shape{Base: base, ShapeType: env.ShapeType, Color: env.Color, Width: env.Width, Filled: env.Filled}
		if env.From != nil {
			s.From = *env.From
		}
		if env.To != nil {
			s.To = *env.To
		}
		return s, nil
	case KindText:
		t := &Text{Base: base, Body: env.Body, Color: env.Color, FontSize: env.FontSize}
		if env.At != nil {
			t.At = *env.At
		}
		return t, nil
	case KindImage:
		i := &Image{Base: base, URL: env.URL, Width: env.W, Height: env.H}
		if env.At != nil {
			i.At = *env.At
		}
		return i, nil
	case KindFill:
		f := &Fill{Base: base, Color: env.Color}
		if env.At != nil {
			f.At = *env.At
		}
		return f, nil
	case KindClear:
		return &Clear{Base: base}, nil
	}
	return nil, fmt.Errorf("unknown action kind %q", env.Kind)
}

// MarshalAction serializes a single action in its envelope form.
func MarshalAction(a Action) ([]byte, error) {
	return json.Marshal(encodeAction(a))
}

// UnmarshalAction parses a single enveloped action.
func UnmarshalAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.decode()
}

func encodeActions(actions []Action) []actionEnvelope {
	out := make([]actionEnvelope, 0, len(actions))
	for _, a := range actions {
		out = append(out, encodeAction(a))
	}
	return out
}

func decodeActions(envs []actionEnvelope) ([]Action, error) {
	out := make([]Action, 0, len(envs))
	for _, env := range envs {
		a, err := env.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
