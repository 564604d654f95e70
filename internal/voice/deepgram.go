package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/rbright/hoteladvisor/internal/transcript"
)

// Deepgram streams audio live over a websocket and keeps final segments.
type Deepgram struct {
	endpoint string
	model    string
	apiKey   string
	dialer   *websocket.Dialer
}

func NewDeepgram(apiKey string, endpoint string, model string) *Deepgram {
	return &Deepgram{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		dialer:   websocket.DefaultDialer,
	}
}

func (d *Deepgram) Name() string { return "deepgram" }

type deepgramMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (d *Deepgram) Begin(ctx context.Context, settings Settings) (Stream, error) {
	target, err := d.listenURL(settings)
	if err != nil {
		return nil, err
	}

	header := http.Header{"Authorization": {"Token " + d.apiKey}}
	conn, resp, err := d.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial deepgram: HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}

	stream := &deepgramStream{conn: conn, done: make(chan struct{})}
	go stream.readLoop()
	return stream, nil
}

func (d *Deepgram) listenURL(settings Settings) (string, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse deepgram url: %w", err)
	}
	q := u.Query()
	if d.model != "" {
		q.Set("model", d.model)
	}
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(audio.SampleRate))
	q.Set("channels", strconv.Itoa(audio.Channels))
	q.Set("punctuate", "true")
	q.Set("interim_results", strconv.FormatBool(settings.InterimResults))
	if settings.Language != "" {
		q.Set("language", settings.Language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type deepgramStream struct {
	conn *websocket.Conn
	done chan struct{}

	mu       sync.Mutex
	segments []string
	readErr  error
	closed   bool
}

func (s *deepgramStream) readLoop() {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.mu.Lock()
				if !s.closed {
					s.readErr = err
				}
				s.mu.Unlock()
			}
			return
		}

		var msg deepgramMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
			continue
		}
		text := msg.Channel.Alternatives[0].Transcript
		if text == "" {
			continue
		}
		s.mu.Lock()
		s.segments = append(s.segments, text)
		s.mu.Unlock()
	}
}

func (s *deepgramStream) Send(chunk []byte) error {
	return s.conn.WriteMessage(websocket.BinaryMessage, chunk)
}

// Finish asks the server to flush and waits until it closes the socket.
func (s *deepgramStream) Finish(ctx context.Context) (string, error) {
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.Cancel()
		return "", fmt.Errorf("close deepgram stream: %w", err)
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		s.Cancel()
		return "", ctx.Err()
	}

	s.mu.Lock()
	s.closed = true
	segments := append([]string(nil), s.segments...)
	readErr := s.readErr
	s.mu.Unlock()
	_ = s.conn.Close()

	if readErr != nil && len(segments) == 0 {
		return "", fmt.Errorf("read deepgram results: %w", readErr)
	}
	return transcript.Assemble(segments), nil
}

func (s *deepgramStream) Cancel() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	_ = s.conn.Close()
}
