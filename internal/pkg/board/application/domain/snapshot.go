package board

import "encoding/json"

// RoomSnapshot is a consistent point-in-time copy of a room's drawing
// state. It is what newly joined connections receive, and (minus the
// in-progress map) what gets persisted.
type RoomSnapshot struct {
	Version    uint64
	Actions    []Action
	RedoStack  []Action
	InProgress map[string]*Stroke // authorID -> unterminated stroke
}

type snapshotEnvelope struct {
	Version    uint64                    `json:"version"`
	Actions    []actionEnvelope          `json:"actions"`
	RedoStack  []actionEnvelope          `json:"redoStack"`
	InProgress map[string]actionEnvelope `json:"inProgress,omitempty"`
}

func (s RoomSnapshot) MarshalJSON() ([]byte, error) {
	env := snapshotEnvelope{
		Version:   s.Version,
		Actions:   encodeActions(s.Actions),
		RedoStack: encodeActions(s.RedoStack),
	}
	if len(s.InProgress) > 0 {
		env.InProgress = make(map[string]actionEnvelope, len(s.InProgress))
		for author, stroke := range s.InProgress {
			env.InProgress[author] = encodeAction(stroke)
		}
	}
	return json.Marshal(env)
}

func (s *RoomSnapshot) UnmarshalJSON(data []byte) error {
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	actions, err := decodeActions(env.Actions)
	if err != nil {
		return err
	}
	redo, err := decodeActions(env.RedoStack)
	if err != nil {
		return err
	}
	s.Version = env.Version
	s.Actions = actions
	s.RedoStack = redo
	s.InProgress = nil
	for author, strokeEnv := range env.InProgress {
		a, err := strokeEnv.decode()
		if err != nil {
			return err
		}
		stroke, ok := a.(*Stroke)
		if !ok {
			continue
		}
		if s.InProgress == nil {
			s.InProgress = make(map[string]*Stroke, len(env.InProgress))
		}
		s.InProgress[author] = stroke
	}
	return nil
}
