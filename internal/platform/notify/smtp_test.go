package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"SIMAPRO-backend/internal/platform/config"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func newTestMailer(s sender) *Mailer {
	return &Mailer{
		cfg:    config.SMTPConfig{FromAddress: "noreply@example.com", FromName: "SIMAPRO", BaseURL: "https://simapro.example.com"},
		dialer: s,
	}
}

func sampleDecision(approved bool) Decision {
	return Decision{
		RequestCode:   "REQ000013",
		TrackingToken: "01J0000000000000000000TOKN",
		BorrowerName:  "Siti <Admin>",
		AssetName:     "Projector",
		Approved:      approved,
		Reason:        "Asset reserved for audit",
		StartDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestNilMailerDropsMessages(t *testing.T) {
	var m *Mailer
	assert.NoError(t, m.SendDecision(context.Background(), "a@example.com", sampleDecision(true)))
	assert.Nil(t, NewMailer(config.SMTPConfig{}))
}

func TestSendDecisionRejected(t *testing.T) {
	cs := &captureSender{}
	m := newTestMailer(cs)

	require.NoError(t, m.SendDecision(context.Background(), "siti@example.com", sampleDecision(false)))
	require.Len(t, cs.sent, 1)
	assert.Equal(t, []string{"siti@example.com"}, cs.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Loan request REQ000013 rejected"}, cs.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := cs.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Asset reserved for audit")
	assert.Contains(t, buf.String(), "Siti &lt;Admin&gt;")
}

func TestSendDecisionWithoutAddressIsSkipped(t *testing.T) {
	cs := &captureSender{}
	require.NoError(t, newTestMailer(cs).SendDecision(context.Background(), "", sampleDecision(true)))
	assert.Empty(t, cs.sent)
}

func TestSendDecisionWrapsTransportError(t *testing.T) {
	cs := &captureSender{err: errors.New("connection refused")}
	err := newTestMailer(cs).SendDecision(context.Background(), "a@example.com", sampleDecision(true))
	assert.ErrorContains(t, err, "send email")
}

type blockingSender struct{ release chan struct{} }

func (b blockingSender) DialAndSend(...*gomail.Message) error {
	<-b.release
	return nil
}

func TestSendDecisionStopsAtDeadline(t *testing.T) {
	b := blockingSender{release: make(chan struct{})}
	defer close(b.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := newTestMailer(b).SendDecision(ctx, "a@example.com", sampleDecision(true))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
