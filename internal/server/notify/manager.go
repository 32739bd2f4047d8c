package notify

import (
	"context"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/logging"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/users"
)

// Messenger is the slice of the messaging client the manager needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) (int64, error)
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// Manager maintains the two notification surfaces: a single replaced
// pending-list message on the main channel and append-only event
// messages on the archive channel. An empty chat id disables that
// channel; enabled false disables both.
type Manager struct {
	messenger Messenger
	enabled   bool
	mainChat  string
	archChat  string
	pointer   *MessagePointer
	guests    guests.Repository
	users     users.Repository
	siteTZ    *time.Location
	log       logging.Logger
}

func NewManager(messenger Messenger, enabled bool, mainChatID, archiveChatID string,
	pointer *MessagePointer, guestRepo guests.Repository, userRepo users.Repository,
	siteTZ *time.Location, log logging.Logger) *Manager {
	return &Manager{
		messenger: messenger,
		enabled:   enabled,
		mainChat:  mainChatID,
		archChat:  archiveChatID,
		pointer:   pointer,
		guests:    guestRepo,
		users:     userRepo,
		siteTZ:    siteTZ,
		log:       log,
	}
}

func (m *Manager) canSendMain() bool {
	return m.enabled && m.messenger != nil && m.mainChat != ""
}

func (m *Manager) canSendArchive() bool {
	return m.enabled && m.messenger != nil && m.archChat != ""
}

// RefreshPendingList replaces the aggregate channel message: delete the
// previous one (best effort), post the current pending roster, persist
// the new id. The pointer is only overwritten after a successful send,
// so a failed run leaves the old message alone for the next attempt.
func (m *Manager) RefreshPendingList(ctx context.Context) {
	if !m.canSendMain() {
		m.log.Debug(ctx, "main channel not configured, skipping pending list refresh")
		return
	}

	if oldID, ok := m.pointer.Read(); ok {
		if err := m.messenger.DeleteMessage(ctx, m.mainChat, oldID); err != nil {
			m.log.Warn(ctx, "previous pending list delete failed", "message_id", oldID, "error", err)
		}
	}

	pending, err := m.guests.ListPending(ctx)
	if err != nil {
		m.log.Error(ctx, "pending list query failed", "error", err)
		return
	}

	text := renderPendingList(pending, time.Now().In(m.siteTZ))
	newID, err := m.messenger.SendMessage(ctx, m.mainChat, text)
	if err != nil {
		m.log.Error(ctx, "pending list send failed", "error", err)
		return
	}
	if err := m.pointer.Write(newID); err != nil {
		m.log.Error(ctx, "pending list pointer save failed", "message_id", newID, "error", err)
		return
	}
	m.log.Info(ctx, "pending list refreshed", "message_id", newID, "pending", len(pending))
}

// EmitArchiveEvent posts one append-only event message. It never
// deletes or tracks ids, and any failure is logged and dropped.
func (m *Manager) EmitArchiveEvent(ctx context.Context, g *guests.Guest, event guests.Event, actingUserID int64) {
	if !m.canSendArchive() {
		m.log.Debug(ctx, "archive channel not configured, skipping event", "event", event)
		return
	}

	actingName := ""
	if actingUserID != 0 {
		if u, err := m.users.GetByID(ctx, actingUserID); err == nil {
			actingName = u.FullName
		} else {
			m.log.Warn(ctx, "acting user lookup failed", "user_id", actingUserID, "error", err)
		}
	}

	text := renderEvent(g, event, actingName, time.Now().In(m.siteTZ))
	if _, err := m.messenger.SendMessage(ctx, m.archChat, text); err != nil {
		m.log.Error(ctx, "archive event send failed", "event", event, "guest_id", g.ID, "error", err)
		return
	}
	m.log.Info(ctx, "archive event sent", "event", event, "guest_id", g.ID)
}
