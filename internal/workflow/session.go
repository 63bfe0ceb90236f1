package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/store"
)

// SessionKey is the settings entry holding the active capture.
const SessionKey = "capture_session"

var (
	ErrNoSession     = errors.New("no capture in progress")
	ErrSessionActive = errors.New("a capture is already in progress")
	ErrNotCleared    = errors.New("capture saved but session not cleared")
)

// Session keeps the single active capture in the settings store.
type Session struct {
	settings store.Settings
	log      *slog.Logger
}

// NewSession creates a Session backed by settings.
func NewSession(settings store.Settings, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{settings: settings, log: log}
}

// Begin starts a new capture. It refuses while another one is active.
func (s *Session) Begin(ctx context.Context, categories []model.Category, form Form, now time.Time) (State, error) {
	if _, ok, err := s.settings.GetSetting(ctx, SessionKey); err != nil {
		return State{}, err
	} else if ok {
		return State{}, ErrSessionActive
	}

	st, err := Start(categories, form, now)
	if err != nil {
		return State{}, err
	}
	if err := s.Save(ctx, st); err != nil {
		return State{}, err
	}
	s.log.Info("capture started", "session", st.SessionID, "categories", len(st.Categories))
	return st, nil
}

// Load returns the active capture.
func (s *Session) Load(ctx context.Context) (State, error) {
	raw, ok, err := s.settings.GetSetting(ctx, SessionKey)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrNoSession
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("decode capture session: %w", err)
	}
	if len(st.Categories) == 0 || st.Step < 0 || st.Step >= len(st.Categories) {
		return State{}, fmt.Errorf("decode capture session: step %d of %d categories", st.Step, len(st.Categories))
	}
	if st.Slots == nil {
		st.Slots = model.Slots{}
	}
	return st, nil
}

// Save replaces the active capture with st.
func (s *Session) Save(ctx context.Context, st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode capture session: %w", err)
	}
	return s.settings.PutSetting(ctx, SessionKey, string(b))
}

// Abandon discards the active capture. Saved records are not touched.
func (s *Session) Abandon(ctx context.Context) error {
	return s.settings.DeleteSetting(ctx, SessionKey)
}

// Commit saves st and clears the session. A failed save keeps the session so
// the commit can be retried. When the record is saved but the session cannot
// be cleared, the session is marked saved so a retry cannot store it twice,
// and the returned record comes with an error wrapping ErrNotCleared.
func (s *Session) Commit(ctx context.Context, st State, saver Saver, now time.Time) (model.Record, error) {
	r, err := Commit(ctx, st, saver, now)
	if err != nil {
		return model.Record{}, err
	}
	if err := s.Abandon(ctx); err != nil {
		s.log.Warn("clear capture session", "session", st.SessionID, "record", r.ID, "error", err)
		st.SavedRecord = r.ID
		if serr := s.Save(ctx, st); serr != nil {
			s.log.Error("mark capture session saved", "session", st.SessionID, "record", r.ID, "error", serr)
		}
		return r, fmt.Errorf("%w: record %d: %w", ErrNotCleared, r.ID, err)
	}
	s.log.Info("capture committed", "session", st.SessionID, "record", r.ID, "photos", r.PhotoCount())
	return r, nil
}
