// Package session runs one measurement-entry form: header, party, rows,
// area deductions, history, leave guard and submission. Every exported method
// is serialized by one mutex; network calls run in goroutines outside it and
// merge their results back in.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/innovadoor/sitemeasure/internal/events"
	"github.com/innovadoor/sitemeasure/internal/history"
	"github.com/innovadoor/sitemeasure/internal/model"
	"github.com/innovadoor/sitemeasure/internal/sheet"
)

// Backend is the remote side of a session.
type Backend interface {
	NextSerialNumber(ctx context.Context) (string, error)
	NextMeasurementNumber(ctx context.Context) (string, error)
	Parties(ctx context.Context) ([]model.Party, error)
	Products(ctx context.Context, category string) ([]model.Product, error)
	Designs(ctx context.Context) ([]model.Design, error)
	SubmitMeasurement(ctx context.Context, m model.Measurement) (int64, error)
}

// Product categories loaded on open.
const (
	CategoryFrame   = "Frame"
	CategoryShutter = "Shutter"
)

var (
	ErrNoParty       = errors.New("please select a party")
	ErrNoRows        = errors.New("please add at least one measurement item with data")
	ErrUnknownParty  = errors.New("unknown party")
	ErrUnknownHeader = errors.New("unknown header field")
	ErrInvalidKind   = errors.New("invalid measurement kind")
	ErrNoRemoval     = errors.New("no row removal pending")
	ErrSubmitting    = errors.New("a submission is already in progress")
	ErrClosed        = errors.New("session closed")
)

// State is the dirty-tracking state of the form.
type State int

const (
	StateLoading State = iota
	StateClean
	StateDirty
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	default:
		return "loading"
	}
}

// Config configures a Session. Backend is required.
type Config struct {
	Backend      Backend
	Kind         model.Kind
	Areas        model.AreaMinusConfig
	HistoryDepth int
	Debounce     time.Duration
	Clock        history.Clock
	Bus          *events.Bus
	Logger       *zap.Logger
	Now          func() time.Time
}

// Session is one open measurement form.
type Session struct {
	mu sync.Mutex

	backend Backend
	logger  *zap.Logger
	bus     *events.Bus
	now     func() time.Time

	sheet   *sheet.Sheet
	areas   model.AreaMinusConfig
	header  model.Header
	partyID int64

	parties  []model.Party
	products map[string][]model.Product
	designs  []model.Design

	history  *history.History[Snapshot]
	debounce *history.Debouncer
	baseline Snapshot
	state    State

	pendingRemoval int
	attachments    []upload
	notices        []string
	lastErr        string
	advisory       sheet.Advisory
	submitting     bool

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
	closed      bool
}

// New builds a session in the loading state. Call Open to load reference
// data and start tracking changes.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewBus()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Areas == nil {
		cfg.Areas = model.AreaMinusConfig{}
	}
	if !cfg.Kind.Valid() {
		cfg.Kind = model.KindRegularShutter
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		backend:        cfg.Backend,
		logger:         cfg.Logger,
		bus:            cfg.Bus,
		now:            cfg.Now,
		areas:          cfg.Areas,
		products:       make(map[string][]model.Product),
		history:        history.New(cfg.HistoryDepth, Snapshot.Clone),
		pendingRemoval: -1,
		ctx:            ctx,
		cancel:         cancel,
	}
	s.sheet = sheet.New(cfg.Kind, s.areas, cfg.Logger)
	s.header.MeasurementDate = cfg.Now()
	s.debounce = history.NewDebouncer(cfg.Clock, cfg.Debounce, s.save)
	s.unsubscribe = s.bus.Subscribe(s.handleEvent, events.UndoRequestedEvent, events.RedoRequestedEvent)
	return s
}

// Open loads parties, products, designs and the next measurement number
// concurrently. A failed load leaves its list empty and records a notice;
// Open itself only fails when the session is closed.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	var (
		parties  []model.Party
		frames   []model.Product
		shutters []model.Product
		designs  []model.Design
		number   string

		noticeMu sync.Mutex
		notices  []string
	)
	degrade := func(what string, err error) {
		s.logger.Warn("reference data unavailable", zap.String("what", what), zap.Error(err))
		noticeMu.Lock()
		notices = append(notices, fmt.Sprintf("failed to load %s: %v", what, err))
		noticeMu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		p, err := s.backend.Parties(ctx)
		if err != nil {
			degrade("parties", err)
			return nil
		}
		parties = p
		return nil
	})
	g.Go(func() error {
		p, err := s.backend.Products(ctx, CategoryFrame)
		if err != nil {
			degrade("frame products", err)
			return nil
		}
		frames = p
		return nil
	})
	g.Go(func() error {
		p, err := s.backend.Products(ctx, CategoryShutter)
		if err != nil {
			degrade("shutter products", err)
			return nil
		}
		shutters = p
		return nil
	})
	g.Go(func() error {
		d, err := s.backend.Designs(ctx)
		if err != nil {
			degrade("designs", err)
			return nil
		}
		designs = d
		return nil
	})
	g.Go(func() error {
		n, err := s.backend.NextMeasurementNumber(ctx)
		if err != nil {
			degrade("measurement number", err)
			return nil
		}
		number = n
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.parties = parties
	s.products[CategoryFrame] = frames
	s.products[CategoryShutter] = shutters
	s.designs = designs
	s.notices = append(s.notices, notices...)
	if s.header.MeasurementNumber == "" {
		s.header.MeasurementNumber = number
	}

	for _, r := range s.sheet.Rows() {
		if r.Serial.Status == model.SerialPending {
			s.requestSerialLocked(r.ID)
		}
	}

	s.baseline = s.snapshotLocked()
	s.history.Clear()
	s.history.Push(s.baseline)
	s.state = StateClean
	s.logger.Info("session opened",
		zap.String("kind", string(s.sheet.Kind())),
		zap.Int("parties", len(parties)),
		zap.String("measurement_number", s.header.MeasurementNumber))
	return nil
}

// Close cancels in-flight requests and waits for their goroutines.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.debounce.Cancel()
	s.cancel()
	s.wg.Wait()
}

// requestSerialLocked fetches a serial for rowID in the background.
func (s *Session) requestSerialLocked(rowID string) {
	if s.closed || s.backend == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		serial, err := s.backend.NextSerialNumber(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if s.sheet.FailSerial(rowID, err) {
				s.logger.Warn("serial request failed", zap.String("row", rowID), zap.Error(err))
			}
			return
		}
		if s.sheet.AssignSerial(rowID, serial) {
			s.logger.Debug("serial assigned", zap.String("row", rowID), zap.String("serial", serial))
		}
	}()
}

// changedLocked is called after every user-visible state change.
func (s *Session) changedLocked() {
	if s.state == StateLoading {
		return
	}
	s.refreshStateLocked()
	s.debounce.Trigger()
}

func (s *Session) refreshStateLocked() {
	if s.state == StateLoading {
		return
	}
	if len(s.attachments) == 0 && s.snapshotLocked().SameContent(s.baseline) {
		s.state = StateClean
	} else {
		s.state = StateDirty
	}
}

// State returns the dirty-tracking state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Kind returns the active measurement kind.
func (s *Session) Kind() model.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Kind()
}

// Header returns the header fields.
func (s *Session) Header() model.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// PartyID returns the selected party, 0 when none.
func (s *Session) PartyID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partyID
}

// Rows returns a copy of the sheet rows.
func (s *Session) Rows() []model.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Rows()
}

// Parties returns the loaded parties.
func (s *Session) Parties() []model.Party {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Party(nil), s.parties...)
}

// Products returns the loaded products of a category.
func (s *Session) Products(category string) []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Product(nil), s.products[category]...)
}

// Designs returns the loaded designs.
func (s *Session) Designs() []model.Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Design(nil), s.designs...)
}

// Notices returns messages about degraded reference data.
func (s *Session) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// LastError returns the inline error text of the last failed action.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Advisory returns the advisory raised by the last edit.
func (s *Session) Advisory() sheet.Advisory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisory
}

// SetHeader sets one header field. Dates accept RFC 3339 or the
// "2006-01-02T15:04" form of a datetime input.
func (s *Session) SetHeader(field model.HeaderField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case model.HeaderMeasurementNumber:
		s.header.MeasurementNumber = value
	case model.HeaderSiteLocation:
		s.header.SiteLocation = value
	case model.HeaderNotes:
		s.header.Notes = value
	case model.HeaderMeasurementDate:
		d, err := parseDate(value)
		if err != nil {
			return err
		}
		s.header.MeasurementDate = d
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHeader, field)
	}
	s.changedLocked()
	return nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid measurement date %q", v)
}

// SelectParty chooses the party the measurement is for. When parties were
// loaded the id must be one of them; 0 clears the selection.
func (s *Session) SelectParty(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != 0 && len(s.parties) > 0 {
		if _, ok := s.partyLocked(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownParty, id)
		}
	}
	s.partyID = id
	s.changedLocked()
	return nil
}

func (s *Session) partyLocked(id int64) (model.Party, bool) {
	for _, p := range s.parties {
		if p.ID == id {
			return p, true
		}
	}
	return model.Party{}, false
}

// ChangeKind switches the measurement kind and resets the sheet to one
// empty row.
func (s *Session) ChangeKind(k model.Kind) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, k)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.sheet.ChangeKind(k)
	s.pendingRemoval = -1
	if s.state != StateLoading {
		s.requestSerialLocked(r.ID)
	}
	s.logger.Debug("kind changed", zap.String("kind", string(k)))
	s.changedLocked()
	return nil
}
