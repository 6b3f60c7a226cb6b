package notify

import (
	"bufio"
	"context"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// parse reads a rendered message back and decodes its body.
func parse(t *testing.T, data []byte) (*mail.Message, string) {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(string(data)))
	require.NoError(t, err)
	var r io.Reader = msg.Body
	if strings.EqualFold(msg.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
		r = quotedprintable.NewReader(msg.Body)
	}
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	return msg, string(body)
}

// address returns the bare address of a single-address header.
func address(t *testing.T, msg *mail.Message, header string) string {
	t.Helper()
	value := msg.Header.Get(header)
	if value == "" {
		return ""
	}
	addr, err := mail.ParseAddress(value)
	require.NoError(t, err, "%s: %q", header, value)
	return addr.Address
}

func TestMessage_Bytes(t *testing.T) {
	data, err := message{
		From:    "medichat@clinic.org",
		To:      "dr@clinic.org",
		ReplyTo: "patient@example.com",
		Subject: "MediChat Pro Analysis Report – ümlaut",
		Body:    "Glucose: 5.4 mmol/L\nHbA1c = 6.1%\n" + strings.Repeat("long line ", 20),
		Date:    fixedNow,
	}.bytes()
	require.NoError(t, err)

	msg, body := parse(t, data)
	assert.Equal(t, "medichat@clinic.org", address(t, msg, "From"))
	assert.Equal(t, "dr@clinic.org", address(t, msg, "To"))
	assert.Equal(t, "patient@example.com", address(t, msg, "Reply-To"))
	assert.Equal(t, "quoted-printable", msg.Header.Get("Content-Transfer-Encoding"))
	assert.Contains(t, msg.Header.Get("Message-Id"), "@medichat>")

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "MediChat Pro Analysis Report – ümlaut", subject)

	date, err := msg.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(fixedNow))
	assert.Contains(t, body, "HbA1c = 6.1%")
	assert.Contains(t, body, "Glucose: 5.4 mmol/L")
}

func TestMessage_InvalidAddress(t *testing.T) {
	_, err := message{From: "a@b.com", To: "not an address", Subject: "s", Body: "b", Date: fixedNow}.bytes()
	assert.Error(t, err)
}

func TestMessage_NoReplyTo(t *testing.T) {
	data, err := message{From: "a@b.com", To: "c@d.com", Subject: "s", Body: "b", Date: fixedNow}.bytes()
	require.NoError(t, err)
	msg, _ := parse(t, data)
	assert.Empty(t, msg.Header.Get("Reply-To"))
}

// ==================== Outbox ====================

func readOutbox(t *testing.T, dir string) []*mail.Message {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var msgs []*mail.Message
	for _, e := range entries {
		require.True(t, strings.HasSuffix(e.Name(), ".eml"))
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		msg, _ := parse(t, data)
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestOutboxNotifier(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "outbox")
	outbox, err := NewOutboxNotifier(dir, "", "ops@clinic.org")
	require.NoError(t, err)
	outbox.now = func() time.Time { return fixedNow }
	assert.Equal(t, dir, outbox.Dir())

	require.NoError(t, outbox.SendReport(ctx, "Report", "body", "dr@clinic.org"))
	require.NoError(t, outbox.SendTicket(ctx, "Ticket", "help", "patient@example.com"))

	msgs := readOutbox(t, dir)
	require.Len(t, msgs, 2)

	byTo := map[string]*mail.Message{}
	for _, m := range msgs {
		byTo[address(t, m, "To")] = m
	}
	require.Contains(t, byTo, "dr@clinic.org")
	require.Contains(t, byTo, "ops@clinic.org")
	assert.Equal(t, "medichat@localhost", address(t, byTo["ops@clinic.org"], "From"))
	assert.Equal(t, "patient@example.com", address(t, byTo["ops@clinic.org"], "Reply-To"))
	assert.Equal(t, "ops@clinic.org", outbox.TicketRecipient())
}

func TestOutboxNotifier_DefaultOperator(t *testing.T) {
	dir := t.TempDir()
	outbox, err := NewOutboxNotifier(dir, "", "")
	require.NoError(t, err)
	assert.Equal(t, "operator@localhost", outbox.TicketRecipient())

	require.NoError(t, outbox.SendTicket(context.Background(), "Ticket", "help", ""))
	msgs := readOutbox(t, dir)
	require.Len(t, msgs, 1)
	assert.Equal(t, outbox.TicketRecipient(), address(t, msgs[0], "To"))
}

func TestOutboxNotifier_RejectsInvalidRecipient(t *testing.T) {
	dir := t.TempDir()
	outbox, err := NewOutboxNotifier(dir, "a@b.com", "")
	require.NoError(t, err)

	err = outbox.SendReport(context.Background(), "s", "b", "user@com")
	assert.ErrorIs(t, err, domain.ErrInvalidEmailAddress)
	assert.Empty(t, readOutbox(t, dir))
}

func TestOutboxNotifier_CancelledContext(t *testing.T) {
	outbox, err := NewOutboxNotifier(t.TempDir(), "", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, outbox.SendTicket(ctx, "s", "b", ""), context.Canceled)
}

// ==================== SMTP ====================

// fakeSMTP is a minimal SMTP server advertising AUTH PLAIN without STARTTLS.
type fakeSMTP struct {
	ln net.Listener

	mu       sync.Mutex
	authed   bool
	from     string
	rcpt     []string
	data     []string
	rejectTo string
}

func newFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeSMTP) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = io.WriteString(conn, s+"\r\n") }

	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			reply("250-fake")
			reply("250 AUTH PLAIN")
		case strings.HasPrefix(cmd, "AUTH PLAIN"):
			f.mu.Lock()
			f.authed = true
			f.mu.Unlock()
			reply("235 ok")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			f.mu.Lock()
			f.from = line[len("MAIL FROM:"):]
			f.mu.Unlock()
			reply("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			to := line[len("RCPT TO:"):]
			f.mu.Lock()
			reject := f.rejectTo != "" && strings.Contains(to, f.rejectTo)
			if !reject {
				f.rcpt = append(f.rcpt, to)
			}
			f.mu.Unlock()
			if reject {
				reply("550 no such user")
				continue
			}
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			f.mu.Lock()
			f.data = append(f.data, sb.String())
			f.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func newTestSMTP(t *testing.T, fake *fakeSMTP) *SMTPNotifier {
	t.Helper()
	n, err := NewSMTPNotifier(SMTPConfig{
		Server:   "127.0.0.1",
		Port:     fake.port(),
		Sender:   "medichat@clinic.org",
		Password: "app-password",
		Operator: "ops@clinic.org",
	})
	require.NoError(t, err)
	n.now = func() time.Time { return fixedNow }
	return n
}

func TestNewSMTPNotifier_Validates(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{Port: 587, Sender: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewSMTPNotifier(SMTPConfig{Server: "smtp.gmail.com", Port: 587, Sender: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSMTPNotifier_SendReport(t *testing.T) {
	fake := newFakeSMTP(t)
	n := newTestSMTP(t, fake)

	require.NoError(t, n.SendReport(context.Background(), "Report", "Glucose 5.4", "dr@clinic.org"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.authed)
	assert.Contains(t, fake.from, "<medichat@clinic.org>")
	require.Len(t, fake.rcpt, 1)
	assert.Contains(t, fake.rcpt[0], "<dr@clinic.org>")
	require.Len(t, fake.data, 1)
	_, body := parse(t, []byte(fake.data[0]))
	assert.Contains(t, body, "Glucose 5.4")
}

func TestSMTPNotifier_SendTicket(t *testing.T) {
	fake := newFakeSMTP(t)
	n := newTestSMTP(t, fake)

	require.NoError(t, n.SendTicket(context.Background(), "Ticket", "help", "patient@example.com"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.rcpt, 1)
	assert.Contains(t, fake.rcpt[0], "<ops@clinic.org>")
	msg, _ := parse(t, []byte(fake.data[0]))
	assert.Equal(t, "patient@example.com", address(t, msg, "Reply-To"))
	assert.Equal(t, "ops@clinic.org", n.TicketRecipient())
}

func TestSMTPNotifier_TicketNeedsOperator(t *testing.T) {
	n, err := NewSMTPNotifier(SMTPConfig{Server: "127.0.0.1", Port: 2525, Sender: "a@b.com"})
	require.NoError(t, err)
	assert.Empty(t, n.TicketRecipient())

	err = n.SendTicket(context.Background(), "s", "b", "")
	assert.ErrorIs(t, err, domain.ErrNotifierUnavailable)
}

func TestSMTPNotifier_RecipientRejected(t *testing.T) {
	fake := newFakeSMTP(t)
	fake.rejectTo = "ghost"
	n := newTestSMTP(t, fake)

	err := n.SendReport(context.Background(), "s", "b", "ghost@clinic.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost@clinic.org")
	assert.NotErrorIs(t, err, domain.ErrNotifierUnavailable)
}

func TestSMTPNotifier_InvalidRecipient(t *testing.T) {
	fake := newFakeSMTP(t)
	n := newTestSMTP(t, fake)

	err := n.SendReport(context.Background(), "s", "b", "userexample.com")
	assert.ErrorIs(t, err, domain.ErrInvalidEmailAddress)
}

func TestSMTPNotifier_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n, err := NewSMTPNotifier(SMTPConfig{Server: "127.0.0.1", Port: port, Sender: "a@b.com", Operator: "c@d.com"})
	require.NoError(t, err)

	err = n.SendTicket(context.Background(), "s", "b", "")
	assert.ErrorIs(t, err, domain.ErrNotifierUnavailable)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}
