// Package ledger records content violations against users and answers whether
// a user is currently muted or banned.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tutorchat/backend/internal/config"
	"tutorchat/backend/internal/models"
)

// ErrNotRecordable is returned when a violation below high severity is recorded.
var ErrNotRecordable = errors.New("only high and critical violations are recorded")

// Store is the persistence the ledger needs.
type Store interface {
	// GetRestrictingViolations returns the user's rows with action mute_24h, mute_7d or ban,
	// expired ones included.
	GetRestrictingViolations(ctx context.Context, userID string) ([]models.Violation, error)
	GetViolationsForUser(ctx context.Context, userID string) ([]models.Violation, error)
	SaveViolation(ctx context.Context, v *models.Violation) error
}

// Block describes whether a sender may post right now.
type Block struct {
	Blocked bool
	// Reason is "ban" or "mute" when Blocked.
	Reason string
	// Until is the end of a mute; nil for bans.
	Until *time.Time
}

const (
	ReasonBan  = "ban"
	ReasonMute = "mute"
)

// Entry is a single violation to record.
type Entry struct {
	UserID           string
	ConversationID   string
	FlaggedMessageID string
	Type             string
	Severity         models.Severity
}

type Service struct {
	Storage Store
	Now     func() time.Time
}

func NewService(s Store) *Service {
	return &Service{Storage: s, Now: time.Now}
}

// IsSenderBlocked evaluates the user's restrictions at now. A ban wins over any
// mute; among mutes the furthest expiry is reported. Rows whose expiry has passed
// are ignored but stay in storage.
func (s *Service) IsSenderBlocked(ctx context.Context, userID string, now time.Time) (Block, error) {
	rows, err := s.Storage.GetRestrictingViolations(ctx, userID)
	if err != nil {
		return Block{}, fmt.Errorf("load restrictions for %s: %w", userID, err)
	}

	var active []models.Violation
	for _, v := range rows {
		if IsActive(v, now) {
			active = append(active, v)
		}
	}

	for _, v := range active {
		if v.Action == models.ActionBan {
			return Block{Blocked: true, Reason: ReasonBan}, nil
		}
	}

	var until *time.Time
	for _, v := range active {
		exp := EffectiveExpiry(v)
		if exp == nil {
			continue
		}
		if until == nil || exp.After(*until) {
			until = exp
		}
	}
	if until != nil {
		return Block{Blocked: true, Reason: ReasonMute, Until: until}, nil
	}
	return Block{}, nil
}

// RecordViolation stores a ledger entry whose action follows config.EscalationPolicy,
// based on the user's prior high/critical violations inside config.EscalationWindow.
func (s *Service) RecordViolation(ctx context.Context, e Entry) (*models.Violation, error) {
	if !e.Severity.Recordable() {
		return nil, ErrNotRecordable
	}
	now := s.Now().UTC()

	history, err := s.Storage.GetViolationsForUser(ctx, e.UserID)
	if err != nil {
		return nil, fmt.Errorf("load violation history for %s: %w", e.UserID, err)
	}

	since := now.Add(-config.EscalationWindow)
	prior := 0
	for _, v := range history {
		// Moderator restrictions stand on their own and do not advance escalation.
		if v.Type == ManualType {
			continue
		}
		if v.Severity.Recordable() && v.CreatedAt.After(since) {
			prior++
		}
	}

	action := DecideAction(e.Severity, prior)
	v := &models.Violation{
		UserID:           e.UserID,
		ConversationID:   e.ConversationID,
		FlaggedMessageID: e.FlaggedMessageID,
		Type:             e.Type,
		Severity:         e.Severity,
		Action:           action,
		CreatedAt:        now,
	}
	if d, ok := config.ActionDurations[action]; ok {
		exp := now.Add(d)
		v.ExpiresAt = &exp
	}

	if err := s.Storage.SaveViolation(ctx, v); err != nil {
		return nil, fmt.Errorf("save violation for %s: %w", e.UserID, err)
	}

	if action.Restricts() {
		log.Printf("INFO: User %s restricted with %s after %d prior violations (%s/%s).", e.UserID, action, prior, e.Type, e.Severity)
	}
	return v, nil
}

// ManualType tags restrictions entered by a moderator.
const ManualType = "manual"

// Restrict appends a moderator-chosen restriction. The ledger is append-only, so a
// restriction is never edited; a shorter one recorded later does not lift a longer one.
func (s *Service) Restrict(ctx context.Context, userID, conversationID string, action models.ViolationAction) (*models.Violation, error) {
	if !action.Restricts() {
		return nil, fmt.Errorf("action %q does not restrict", action)
	}
	now := s.Now().UTC()

	v := &models.Violation{
		UserID:         userID,
		ConversationID: conversationID,
		Type:           ManualType,
		Severity:       models.SeverityCritical,
		Action:         action,
		CreatedAt:      now,
	}
	if d, ok := config.ActionDurations[action]; ok {
		exp := now.Add(d)
		v.ExpiresAt = &exp
	}

	if err := s.Storage.SaveViolation(ctx, v); err != nil {
		return nil, fmt.Errorf("save restriction for %s: %w", userID, err)
	}
	log.Printf("INFO: User %s manually restricted with %s.", userID, action)
	return v, nil
}

// DecideAction looks up the escalation table; counts past its end repeat the last action.
func DecideAction(sev models.Severity, prior int) models.ViolationAction {
	steps, ok := config.EscalationPolicy[sev]
	if !ok || len(steps) == 0 {
		return models.ActionNone
	}
	if prior < 0 {
		prior = 0
	}
	if prior >= len(steps) {
		return steps[len(steps)-1]
	}
	return steps[prior]
}

// EffectiveExpiry is the stored expiry, or CreatedAt plus the action's window when
// none was stored. Bans never expire.
func EffectiveExpiry(v models.Violation) *time.Time {
	if v.Action == models.ActionBan {
		return nil
	}
	if v.ExpiresAt != nil {
		return v.ExpiresAt
	}
	if d, ok := config.ActionDurations[v.Action]; ok {
		exp := v.CreatedAt.Add(d)
		return &exp
	}
	return nil
}

// IsActive reports whether a restricting violation still applies at now.
func IsActive(v models.Violation, now time.Time) bool {
	if !v.Action.Restricts() {
		return false
	}
	exp := EffectiveExpiry(v)
	return exp == nil || exp.After(now)
}
