package worker

import (
	"context"
	"errors"
	"fmt"

	"moneypaz/internal/amqp"
	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/sheets"
)

// ErrNoUser is returned when a message carries no user id and the worker
// has no default one.
var ErrNoUser = errors.New("change message has no user id")

// AdminMirror is the part of the admin store the worker writes to.
type AdminMirror interface {
	UpsertProfile(ctx context.Context, p core.Profile) error
	MirrorMovement(ctx context.Context, userID string, m core.Movement) error
	RemoveMirroredMovement(ctx context.Context, userID, movementID string) error
	ClearMovements(ctx context.Context, userID string) error
}

// MirrorWorker applies change events to the admin store and, when
// configured, to a spreadsheet mirror.
type MirrorWorker struct {
	admin         AdminMirror
	sheet         sheets.Mirror
	defaultUserID string
	logger        *log.Logger
}

// NewMirrorWorker builds a worker. sheet may be nil.
func NewMirrorWorker(admin AdminMirror, sheet sheets.Mirror, defaultUserID string, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		admin:         admin,
		sheet:         sheet,
		defaultUserID: defaultUserID,
		logger:        logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes a single change message from AMQP. A returned error
// makes the consumer requeue the message, so every step is idempotent.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	userID := msg.UserID
	if userID == "" {
		userID = w.defaultUserID
	}
	if userID == "" {
		w.logger.WarnContext(ctx, "Dropping change event without user",
			log.FieldEvent, string(msg.Event), log.FieldRevision, msg.Revision)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldEvent, string(msg.Event),
		log.FieldRevision, msg.Revision,
		log.FieldUserID, userID)

	profile := core.Profile{UserID: userID}
	if msg.Event == core.EventUserNameSet {
		profile.DisplayName = msg.UserName
	}
	if err := w.admin.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if msg.Event.IsMovementEvent() && msg.Movement == nil {
		w.logger.WarnContext(ctx, "Dropping movement event without movement", log.FieldEvent, string(msg.Event))
		return nil
	}

	switch msg.Event {
	case core.EventMovementAdded:
		return w.movementAdded(ctx, userID, *msg.Movement)
	case core.EventMovementDeleted:
		return w.movementDeleted(ctx, userID, msg.Movement.ID)
	case core.EventStateReset:
		return w.stateReset(ctx, userID)
	default:
		w.logger.DebugContext(ctx, "Nothing to mirror for event", log.FieldEvent, string(msg.Event))
		return nil
	}
}

func (w *MirrorWorker) movementAdded(ctx context.Context, userID string, m core.Movement) error {
	if err := w.admin.MirrorMovement(ctx, userID, m); err != nil {
		return fmt.Errorf("mirror movement: %w", err)
	}
	if w.sheet == nil {
		return nil
	}
	ref, err := w.sheet.AppendMovement(ctx, m)
	if err != nil {
		return fmt.Errorf("append movement to sheet: %w", err)
	}
	w.logger.InfoContext(ctx, "Movement mirrored",
		log.NewFields().
			WithOperation(log.OpMirror).
			WithMovement(m.ID, m.Type.String(), m.Amount.String(), m.Category.ID, m.IsRecurring).
			ToSlice()...)
	w.logger.DebugContext(ctx, "Sheet row written", log.FieldMovementID, m.ID, "row_ref", ref)
	return nil
}

func (w *MirrorWorker) movementDeleted(ctx context.Context, userID, id string) error {
	if err := w.admin.RemoveMirroredMovement(ctx, userID, id); err != nil {
		return fmt.Errorf("remove mirrored movement: %w", err)
	}
	if w.sheet == nil {
		return nil
	}
	if err := w.sheet.DeleteMovement(ctx, id); err != nil {
		return fmt.Errorf("delete movement from sheet: %w", err)
	}
	return nil
}

func (w *MirrorWorker) stateReset(ctx context.Context, userID string) error {
	if err := w.admin.ClearMovements(ctx, userID); err != nil {
		return fmt.Errorf("clear mirrored movements: %w", err)
	}
	if w.sheet == nil {
		return nil
	}
	if err := w.sheet.ClearMovements(ctx); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirror cleared after reset", log.FieldUserID, userID)
	return nil
}
