package channel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"wikinotify/internal/render"
	"wikinotify/internal/wiki"
)

// Matrix delivers change events as m.notice messages to one room on a
// homeserver, with an HTML formatted body and a tag-stripped fallback.
type Matrix struct {
	server   string
	mxid     string
	password string
	room     id.RoomID
	log      zerolog.Logger

	client *mautrix.Client
}

// NewMatrix creates an unconnected Matrix channel.
func NewMatrix(server, mxid, password, room string, log zerolog.Logger) *Matrix {
	return &Matrix{
		server:   server,
		mxid:     mxid,
		password: password,
		room:     id.RoomID(room),
		log:      log,
	}
}

// Connect logs in to the homeserver with the configured account.
func (m *Matrix) Connect(ctx context.Context) error {
	client, err := mautrix.NewClient(m.server, "", "")
	if err != nil {
		return fmt.Errorf("matrix client for %s: %w", m.server, err)
	}
	m.log.Info().Str("server", m.server).Str("mxid", m.mxid).Msg("logging in to matrix")
	_, err = client.Login(ctx, &mautrix.ReqLogin{
		Type:             mautrix.AuthTypePassword,
		Identifier:       mautrix.UserIdentifier{Type: mautrix.IdentifierTypeUser, User: m.mxid},
		Password:         m.password,
		StoreCredentials: true,
	})
	if err != nil {
		return fmt.Errorf("matrix login as %s: %w", m.mxid, err)
	}
	m.client = client
	return nil
}

// Send posts the event to the configured room. The plain-text body is the
// HTML rendering with tags stripped, for clients that ignore formatting.
func (m *Matrix) Send(ctx context.Context, ev wiki.ChangeEvent) error {
	if m.client == nil {
		return &DeliveryError{Channel: "matrix", Err: fmt.Errorf("not connected")}
	}
	formatted := render.Message(ev, render.HTML)
	m.log.Info().Int64("rcid", ev.ID).Stringer("room", m.room).Msg("sending matrix notice")

	content := event.MessageEventContent{
		MsgType:       event.MsgNotice,
		Body:          render.StripTags(formatted),
		Format:        event.FormatHTML,
		FormattedBody: formatted,
	}
	if _, err := m.client.SendMessageEvent(ctx, m.room, event.EventMessage, &content); err != nil {
		return &DeliveryError{Channel: "matrix", Err: err}
	}
	return nil
}

// Run drives the homeserver sync loop. An unrecoverable sync failure is
// returned to the caller, which treats it as fatal.
func (m *Matrix) Run(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("matrix: run called before connect")
	}
	if err := m.client.SyncWithContext(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("matrix sync: %w", err)
	}
	return ctx.Err()
}

// Close releases the transport session.
func (m *Matrix) Close() error {
	if m.client != nil {
		m.client.StopSync()
		m.client.Client.CloseIdleConnections()
	}
	return nil
}
