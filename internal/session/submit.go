package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/innovadoor/sitemeasure/internal/events"
	"github.com/innovadoor/sitemeasure/internal/model"
)

// MaxAttachmentSize is the largest accepted attachment in bytes.
const MaxAttachmentSize = 10 * 1024 * 1024

// maxSerialRounds bounds how often Submit fetches serials for rows that were
// filled in during the previous fetch.
const maxSerialRounds = 3

var (
	ErrSerialsPending = errors.New("rows were added while serial numbers were assigned, please submit again")
	ErrAttachmentType = errors.New("not a valid image, PDF, Excel, or audio file")
	ErrAttachmentSize = errors.New("exceeds the maximum size of 10MB")
)

var (
	imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	excelExts = []string{".xls", ".xlsx", ".xlsm"}
	audioExts = []string{".mp3", ".wav", ".ogg", ".m4a", ".aac", ".flac", ".webm"}
)

type upload struct {
	name string
	mime string
	data []byte
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// acceptedAttachment checks the MIME type, falling back to the file name.
func acceptedAttachment(name, mime string) bool {
	mime = strings.ToLower(mime)
	switch {
	case strings.HasPrefix(mime, "image/") || hasExt(name, imageExts):
		return true
	case mime == "application/pdf" || hasExt(name, []string{".pdf"}):
		return true
	case strings.Contains(mime, "spreadsheet") || strings.Contains(mime, "excel") || hasExt(name, excelExts):
		return true
	case strings.HasPrefix(mime, "audio/") || hasExt(name, audioExts):
		return true
	}
	return false
}

// AddAttachment queues a file to send with the measurement.
func (s *Session) AddAttachment(name, mime string, data []byte) error {
	if !acceptedAttachment(name, mime) {
		return fmt.Errorf("file %q: %w", name, ErrAttachmentType)
	}
	if len(data) > MaxAttachmentSize {
		return fmt.Errorf("file %q: %w", name, ErrAttachmentSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments = append(s.attachments, upload{name: name, mime: mime, data: append([]byte(nil), data...)})
	s.refreshStateLocked()
	return nil
}

// RemoveAttachment drops the queued attachment at index i.
func (s *Session) RemoveAttachment(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.attachments) {
		return false
	}
	s.attachments = append(s.attachments[:i:i], s.attachments[i+1:]...)
	s.refreshStateLocked()
	return true
}

// Attachments returns the names of queued attachments.
func (s *Session) Attachments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.attachments))
	for i, a := range s.attachments {
		names[i] = a.name
	}
	return names
}

// SubmitResult describes a successful submission.
type SubmitResult struct {
	ID          int64
	Measurement model.Measurement
}

func (s *Session) failLocked(err error) error {
	s.lastErr = err.Error()
	return err
}

// Draft returns the payload as it stands, without assigning missing serials
// or attachments.
func (s *Session) Draft() model.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	party, _ := s.partyLocked(s.partyID)
	party.ID = s.partyID
	return model.NewMeasurement(s.sheet.Kind(), s.header, party, s.sheet.Items())
}

// Submit validates the form, assigns serials to rows that still lack one,
// encodes attachments and sends the measurement. On success history is
// cleared and the form is clean; on failure state and history are kept and
// the error text is recorded.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SubmitResult{}, ErrClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitting
	}
	s.lastErr = ""
	if s.partyID == 0 {
		err := s.failLocked(ErrNoParty)
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	if len(s.sheet.Items()) == 0 {
		err := s.failLocked(ErrNoRows)
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	s.submitting = true

	// Rows filled in during a fetch are picked up by the next round.
	for round := 1; ; round++ {
		missing := s.sheet.WithoutSerial()
		if len(missing) == 0 {
			break
		}
		if round > maxSerialRounds {
			s.submitting = false
			err := s.failLocked(ErrSerialsPending)
			s.mu.Unlock()
			s.logger.Warn("submit aborted", zap.Int("rows", len(missing)))
			return SubmitResult{}, err
		}
		s.mu.Unlock()

		serials, serialErr := s.fetchSerials(ctx, len(missing))

		s.mu.Lock()
		for i, id := range missing {
			if serials[i] != "" {
				s.sheet.AssignSerial(id, serials[i])
			}
		}
		if serialErr != nil {
			s.submitting = false
			err := s.failLocked(serialErr)
			s.mu.Unlock()
			s.logger.Warn("submit aborted", zap.Error(serialErr))
			return SubmitResult{}, err
		}
	}

	party, _ := s.partyLocked(s.partyID)
	party.ID = s.partyID
	m := model.NewMeasurement(s.sheet.Kind(), s.header, party, s.sheet.Items())
	for _, a := range s.attachments {
		mime := a.mime
		if mime == "" {
			mime = "application/octet-stream"
		}
		m.Attachments = append(m.Attachments, model.Attachment{
			Name:    a.name,
			Content: base64.StdEncoding.EncodeToString(a.data),
			Type:    mime,
		})
	}
	submitted := s.snapshotLocked()
	s.mu.Unlock()

	id, err := s.backend.SubmitMeasurement(ctx, m)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		err = s.failLocked(fmt.Errorf("submit measurement: %w", err))
		s.mu.Unlock()
		s.logger.Warn("submit failed", zap.Error(err))
		return SubmitResult{}, err
	}
	s.debounce.Cancel()
	s.history.Clear()
	s.baseline = submitted
	s.history.Push(submitted)
	if cur := s.snapshotLocked(); !cur.SameContent(submitted) {
		s.history.Push(cur)
	}
	s.attachments = nil
	s.refreshStateLocked()
	s.mu.Unlock()

	s.logger.Info("measurement submitted",
		zap.Int64("id", id),
		zap.String("kind", string(m.Type)),
		zap.Int("items", len(m.Items)))
	s.bus.Publish(events.NewEvent(events.SubmittedEvent, id))
	return SubmitResult{ID: id, Measurement: m}, nil
}

// fetchSerials requests n serial numbers concurrently. Serials that arrived
// before a failure are still returned.
func (s *Session) fetchSerials(ctx context.Context, n int) ([]string, error) {
	serials := make([]string, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range serials {
		i := i
		g.Go(func() error {
			serial, err := s.backend.NextSerialNumber(gctx)
			if err != nil {
				return fmt.Errorf("generate serial number: %w", err)
			}
			serials[i] = serial
			return nil
		})
	}
	return serials, g.Wait()
}

// LeaveDecision is the answer to a navigation request.
type LeaveDecision int

const (
	LeaveProceed LeaveDecision = iota
	LeavePrompt
)

// LeaveChoice is the user's answer to the unsaved-changes prompt.
type LeaveChoice int

const (
	SaveAndLeave LeaveChoice = iota
	DiscardAndLeave
	Stay
)

// RequestLeave reports whether leaving needs the three-way prompt.
func (s *Session) RequestLeave() LeaveDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDirty {
		return LeavePrompt
	}
	return LeaveProceed
}

// ResolveLeave acts on the prompt answer and reports whether navigation may
// proceed. Save-and-leave stays put when the submission fails.
func (s *Session) ResolveLeave(ctx context.Context, choice LeaveChoice) (bool, error) {
	switch choice {
	case SaveAndLeave:
		if _, err := s.Submit(ctx); err != nil {
			return false, err
		}
		return true, nil
	case DiscardAndLeave:
		s.mu.Lock()
		defer s.mu.Unlock()
		s.debounce.Cancel()
		s.history.Clear()
		s.attachments = nil
		s.baseline = s.snapshotLocked()
		s.state = StateClean
		return true, nil
	default:
		return false, nil
	}
}

// BlocksUnload reports whether closing the window should be intercepted.
func (s *Session) BlocksUnload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateDirty
}
