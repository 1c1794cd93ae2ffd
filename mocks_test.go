package lyricsync

import (
	"sync"

	"github.com/ngrok/lyricsync/multicast"
)

type lyricResult struct {
	text string
	err  error
}

// mockSource replays results; once they run out it keeps returning the last.
type mockSource struct {
	mu      sync.Mutex
	results []lyricResult
	calls   int
	closed  int
}

func (m *mockSource) CurrentLyric() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.results) == 0 {
		return "", nil
	}
	r := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return r.text, r.err
}

func (m *mockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// mockNetwork delivers every published envelope to each attached slave's
// mailbox, like a lossless multicast group.
type mockNetwork struct {
	mu     sync.Mutex
	slaves []*mockTransport
}

func (n *mockNetwork) transport(role multicast.Role) *mockTransport {
	t := &mockTransport{role: role, net: n, mailbox: multicast.NewMailbox(multicast.DefaultMailboxSize)}
	if role == multicast.RoleSlave {
		n.mu.Lock()
		n.slaves = append(n.slaves, t)
		n.mu.Unlock()
	}
	return t
}

type mockTransport struct {
	role    multicast.Role
	net     *mockNetwork
	mailbox *multicast.Mailbox

	mu         sync.Mutex
	published  []multicast.Envelope
	publishErr []error
	closed     int
}

func (t *mockTransport) Publish(env multicast.Envelope) error {
	if t.role != multicast.RoleMaster {
		return multicast.ErrWrongRole
	}
	t.mu.Lock()
	if len(t.publishErr) > 0 {
		err := t.publishErr[0]
		t.publishErr = t.publishErr[1:]
		t.mu.Unlock()
		return err
	}
	t.published = append(t.published, env)
	t.mu.Unlock()

	if t.net != nil {
		t.net.mu.Lock()
		defer t.net.mu.Unlock()
		for _, s := range t.net.slaves {
			s.mailbox.Push(env)
		}
	}
	return nil
}

func (t *mockTransport) Poll() (multicast.Envelope, bool, error) {
	if t.role != multicast.RoleSlave {
		return multicast.Envelope{}, false, multicast.ErrWrongRole
	}
	env, ok := t.mailbox.Poll()
	return env, ok, nil
}

func (t *mockTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	t.mailbox.Close()
	return nil
}

func (t *mockTransport) publishedTexts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	texts := make([]string, 0, len(t.published))
	for _, env := range t.published {
		texts = append(texts, env.Text)
	}
	return texts
}

type shownLyric struct {
	text       string
	durationMs uint32
}

// recorder is a LyricHandler that remembers what it was shown.
type recorder struct {
	mu    sync.Mutex
	shown []shownLyric
	c     chan shownLyric
}

func newRecorder() *recorder {
	return &recorder{c: make(chan shownLyric, 16)}
}

func (r *recorder) handle(text string, durationMs uint32) {
	r.mu.Lock()
	r.shown = append(r.shown, shownLyric{text, durationMs})
	r.mu.Unlock()
	r.c <- shownLyric{text, durationMs}
}

func (r *recorder) all() []shownLyric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shownLyric(nil), r.shown...)
}
