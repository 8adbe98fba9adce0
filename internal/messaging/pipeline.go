package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"tutorchat/backend/internal/analysis"
	"tutorchat/backend/internal/apperr"
	"tutorchat/backend/internal/config"
	"tutorchat/backend/internal/ledger"
	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"
	"tutorchat/backend/internal/storage"

	"gorm.io/datatypes"
)

// Store is the persistence the pipeline writes to.
type Store interface {
	ConversationStore
	SaveFlaggedMessage(ctx context.Context, f *models.FlaggedMessage) error
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
}

// Ledger is the violation ledger as seen by the pipeline.
type Ledger interface {
	IsSenderBlocked(ctx context.Context, userID string, now time.Time) (ledger.Block, error)
	RecordViolation(ctx context.Context, e ledger.Entry) (*models.Violation, error)
}

type ContentClassifier interface {
	Classify(text, senderID, conversationID string) analysis.Result
}

// Notifier queues a notification without blocking.
type Notifier interface {
	Enqueue(ev notify.MessageEvent) bool
}

// Idempotency dedupes submissions that carry a client token.
type Idempotency interface {
	Reserve(ctx context.Context, key string) (bool, string, error)
	Complete(ctx context.Context, key, messageID string) error
	Release(ctx context.Context, key string) error
}

// SendRequest is one message submission by an authenticated sender.
type SendRequest struct {
	ConversationID string
	SenderID       string
	Content        string
	ClientToken    string
}

// SendResult is the admitted message and the flags raised against it.
type SendResult struct {
	Message *models.Message `json:"message"`
	Flags   []analysis.Flag `json:"flags"`
	// Duplicate is set when the result is the message created by an earlier
	// submission with the same client token.
	Duplicate bool `json:"duplicate,omitempty"`
}

type Pipeline struct {
	Store       Store
	Gate        *Gate
	Ledger      Ledger
	Classifier  ContentClassifier
	Notifier    Notifier
	Idempotency Idempotency
	Now         func() time.Time
}

// NewPipeline wires a pipeline. notifier and idem may be nil.
func NewPipeline(s Store, l Ledger, c ContentClassifier, notifier Notifier, idem Idempotency) *Pipeline {
	return &Pipeline{
		Store:       s,
		Gate:        NewGate(s),
		Ledger:      l,
		Classifier:  c,
		Notifier:    notifier,
		Idempotency: idem,
		Now:         time.Now,
	}
}

// Send runs one submission through validation, the gate, the ledger and the
// classifier, then persists either a blocked attempt or the message.
func (p *Pipeline) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	content := strings.TrimSpace(req.Content)
	conversationID := strings.TrimSpace(req.ConversationID)
	switch {
	case conversationID == "":
		return nil, apperr.InvalidInput("conversationId is required")
	case content == "":
		return nil, apperr.InvalidInput("message content is required")
	case utf8.RuneCountInString(content) > config.MaxMessageLength:
		return nil, apperr.InvalidInput("message is too long")
	}

	if req.ClientToken == "" || p.Idempotency == nil {
		return p.admit(ctx, conversationID, req.SenderID, content)
	}

	key := storage.IdempotencyKey(conversationID, req.SenderID, req.ClientToken)
	reserved, existingID, err := p.Idempotency.Reserve(ctx, key)
	switch {
	case err != nil:
		log.Printf("WARNING: idempotency check unavailable, sending without it: %v", err)
		return p.admit(ctx, conversationID, req.SenderID, content)
	case !reserved && existingID == "":
		return nil, apperr.New(apperr.CodeConflict, "a message with this client token is still being processed")
	case !reserved && existingID == storage.BlockedMarker:
		return nil, p.replayBlocked(conversationID, req.SenderID, content)
	case !reserved:
		return p.replay(ctx, existingID)
	}

	res, err := p.admit(ctx, conversationID, req.SenderID, content)
	if err != nil {
		// A blocked attempt is final for its token; a retry must not record the violations again.
		if apperr.Is(err, apperr.CodeBlocked) {
			if doneErr := p.Idempotency.Complete(ctx, key, storage.BlockedMarker); doneErr != nil {
				log.Printf("WARNING: failed to mark idempotency key %s as blocked: %v", key, doneErr)
			}
			return nil, err
		}
		if relErr := p.Idempotency.Release(ctx, key); relErr != nil {
			log.Printf("WARNING: failed to release idempotency key %s: %v", key, relErr)
		}
		return nil, err
	}
	if err := p.Idempotency.Complete(ctx, key, res.Message.ID); err != nil {
		log.Printf("WARNING: failed to complete idempotency key %s: %v", key, err)
	}
	return res, nil
}

func (p *Pipeline) replay(ctx context.Context, messageID string) (*SendResult, error) {
	msg, err := p.Store.GetMessageByID(ctx, messageID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("message not found")
	}
	if err != nil {
		return nil, apperr.Storage("failed to load message", err)
	}
	return &SendResult{Message: msg, Flags: []analysis.Flag{}, Duplicate: true}, nil
}

// replayBlocked answers a retried blocked submission without writing anything.
func (p *Pipeline) replayBlocked(conversationID, senderID, content string) error {
	result := p.Classifier.Classify(content, senderID, conversationID)
	if top, ok := result.MostSevere(); ok && !result.Allowed {
		return apperr.Blocked(top.Reason, result.Types())
	}
	return apperr.New(apperr.CodeConflict, "this client token was already used by a blocked message")
}

func (p *Pipeline) admit(ctx context.Context, conversationID, senderID, content string) (*SendResult, error) {
	now := p.Now().UTC()

	conv, err := p.Gate.Check(ctx, conversationID, senderID, now)
	if err != nil {
		return nil, err
	}

	block, err := p.Ledger.IsSenderBlocked(ctx, senderID, now)
	if err != nil {
		return nil, apperr.Storage("failed to check sender restrictions", err)
	}
	if block.Blocked {
		if block.Reason == ledger.ReasonBan {
			return nil, apperr.Banned()
		}
		return nil, apperr.Muted(block.Until)
	}

	result := p.Classifier.Classify(content, senderID, conv.ID)

	if !result.Allowed {
		return nil, p.block(ctx, conv, senderID, content, result)
	}

	msg := &models.Message{
		ConversationID:   conv.ID,
		SenderID:         senderID,
		Content:          content,
		ModerationStatus: models.ModerationApproved,
	}

	if len(result.Flags) > 0 {
		flagged, err := p.saveFlagged(ctx, conv.ID, senderID, content, result, models.FlaggedReview)
		if err != nil {
			return nil, err
		}
		if err := p.recordViolations(ctx, conv.ID, senderID, flagged.ID, result); err != nil {
			return nil, err
		}

		reason := strings.Join(result.Types(), ",")
		msg.ModerationStatus = models.ModerationPending
		msg.FilterReason = &reason
	}

	if err := p.Store.SaveMessage(ctx, msg); err != nil {
		return nil, apperr.Storage("failed to save message", err)
	}

	if err := p.Store.TouchConversation(ctx, conv.ID, now); err != nil {
		log.Printf("ERROR: Message %s saved but conversation %s watermark not updated: %v", msg.ID, conv.ID, err)
		return nil, apperr.Storage("failed to update conversation", err)
	}

	if !result.HasSeverity(models.SeverityCritical) {
		p.notify(conv, msg)
	}

	flags := result.Flags
	if flags == nil {
		flags = []analysis.Flag{}
	}
	return &SendResult{Message: msg, Flags: flags}, nil
}

// block stores the rejected attempt and its ledger entries, then reports the
// most severe finding. Writes that succeed before a failure are kept.
func (p *Pipeline) block(ctx context.Context, conv *models.Conversation, senderID, content string, result analysis.Result) error {
	flagged, err := p.saveFlagged(ctx, conv.ID, senderID, content, result, models.FlaggedBlocked)
	if err != nil {
		return err
	}
	if err := p.recordViolations(ctx, conv.ID, senderID, flagged.ID, result); err != nil {
		return err
	}

	top, _ := result.MostSevere()
	log.Printf("INFO: Blocked message from %s in conversation %s (%s).", senderID, conv.ID, top.Type)
	return apperr.Blocked(top.Reason, result.Types())
}

func (p *Pipeline) saveFlagged(ctx context.Context, conversationID, senderID, content string, result analysis.Result, status models.FlaggedStatus) (*models.FlaggedMessage, error) {
	raw, err := json.Marshal(result.Flags)
	if err != nil {
		return nil, apperr.Storage("failed to encode flags", err)
	}

	flagged := &models.FlaggedMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Flags:          datatypes.JSON(raw),
		Status:         status,
	}
	if err := p.Store.SaveFlaggedMessage(ctx, flagged); err != nil {
		return nil, apperr.Storage("failed to save flagged message", err)
	}
	return flagged, nil
}

func (p *Pipeline) recordViolations(ctx context.Context, conversationID, senderID, flaggedID string, result analysis.Result) error {
	for _, f := range result.Flags {
		if !f.Severity.Recordable() {
			continue
		}
		_, err := p.Ledger.RecordViolation(ctx, ledger.Entry{
			UserID:           senderID,
			ConversationID:   conversationID,
			FlaggedMessageID: flaggedID,
			Type:             f.Type,
			Severity:         f.Severity,
		})
		if err != nil {
			log.Printf("ERROR: Flagged message %s kept without its %s violation: %v", flaggedID, f.Type, err)
			return apperr.Storage("failed to record violation", err)
		}
	}
	return nil
}

func (p *Pipeline) notify(conv *models.Conversation, msg *models.Message) {
	if p.Notifier == nil {
		return
	}
	recipient := conv.Counterpart(msg.SenderID)
	if recipient == "" {
		return
	}
	p.Notifier.Enqueue(notify.MessageEvent{
		ConversationID: conv.ID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		RecipientID:    recipient,
		Content:        msg.Content,
	})
}
