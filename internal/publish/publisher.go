// Package publish emits completed assessments as NATS events so other
// parts of the vault application (notification service, audit pipeline)
// can react without polling the engine.
package publish

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/vaultsentry/vaultsentry/internal/engine"
)

// SubjectPrefix is the root of all assessment subjects; the vault id is
// appended per message.
const SubjectPrefix = "vaultsentry.assessments"

// Publisher publishes assessments to NATS. A nil Publisher is safe to
// call and does nothing, so the service can run without a broker.
type Publisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// New creates a Publisher on an established NATS connection.
func New(conn *nats.Conn, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// PublishAssessment emits one assessment on
// "vaultsentry.assessments.<vault_id>" with identifying headers so
// subscribers can filter without unmarshalling.
func (p *Publisher) PublishAssessment(a *engine.Assessment) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection not available")
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}

	headers := nats.Header{}
	headers.Set("x-assessment-id", a.ID.String())
	headers.Set("x-vault-id", a.VaultID.String())
	headers.Set("x-level", a.Level.String())
	headers.Set("x-action", string(a.SelectedAction))

	msg := &nats.Msg{
		Subject: SubjectPrefix + "." + a.VaultID.String(),
		Data:    payload,
		Header:  headers,
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish assessment: %w", err)
	}

	p.logger.Debug("published assessment",
		zap.String("assessment_id", a.ID.String()),
		zap.String("vault_id", a.VaultID.String()),
		zap.String("level", a.Level.String()),
	)
	return nil
}
