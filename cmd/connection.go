// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/lidarkit/sickpls/pkg/pls"
)

// wsReadWindow bounds a single bridge read so the stream monitor's
// read loop stays responsive to shutdown, matching the short-blocking
// behavior of the serial transport.
const wsReadWindow = 50 * time.Millisecond

// WebSocketTransport speaks the telegram protocol through a
// serial-to-WebSocket bridge. The bridge owns the physical line, so
// the host cannot change the baud rate through it.
//
// gorilla/websocket makes an expired read deadline fatal to the
// connection, so a background pump blocks on ReadMessage instead and
// Read drains its channel within a short window.
type WebSocketTransport struct {
	conn      *websocket.Conn
	messages  chan []byte
	readErr   chan error
	buf       []byte
	bufOffset int
	failed    error
}

func newWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	w := &WebSocketTransport{
		conn:     conn,
		messages: make(chan []byte, 16),
		readErr:  make(chan error, 1),
	}
	go w.pump()
	return w
}

// pump moves bridge messages into the channel until the connection
// fails or closes.
func (w *WebSocketTransport) pump() {
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.readErr <- err
			return
		}
		// Only binary messages carry telegram bytes
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.messages <- data
	}
}

func (w *WebSocketTransport) Read(p []byte) (int, error) {
	if w.failed != nil {
		return 0, w.failed
	}

	// Drain buffered bridge data first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	select {
	case data := <-w.messages:
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	case err := <-w.readErr:
		w.failed = err
		return 0, err
	case <-time.After(wsReadWindow):
		return 0, nil
	}
}

func (w *WebSocketTransport) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetBaud always fails: the bridge owns the line rate.
func (w *WebSocketTransport) SetBaud(baud int) error {
	return pls.ErrBaudFixed
}

func (w *WebSocketTransport) Close() error {
	return w.conn.Close()
}

// OpenWebSocketTransport dials a serial-to-WebSocket bridge with HTTP
// Basic auth.
func OpenWebSocketTransport(wsURL, username, password string, skipSSLVerify bool) (*WebSocketTransport, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return newWebSocketTransport(conn), nil
}

// GetPassword retrieves the bridge password from the environment or
// prompts for it.
func GetPassword() (string, error) {
	if pw := os.Getenv("PLS_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// openTransport opens either a serial or WebSocket transport based on
// the merged settings.
func openTransport(s *settings) (pls.Transport, string, error) {
	if s.url != "" {
		password := ""
		if s.username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		t, err := OpenWebSocketTransport(s.url, s.username, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("WebSocket: %s", s.url), nil
	}

	if s.port != "" {
		t, err := pls.OpenSerial(s.port, int(pls.DefaultBaud))
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("Serial: %s", s.port), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// openDevice builds a Device over the configured transport and brings
// the session up at the requested baud rate. The caller owns teardown
// through Uninitialize.
func openDevice() (*pls.Device, string, error) {
	logger := newLogger()
	s, err := loadSettings(logger)
	if err != nil {
		return nil, "", err
	}

	transport, connInfo, err := openTransport(s)
	if err != nil {
		return nil, "", err
	}

	dev := pls.NewDevice(transport, s.engine)
	if err := dev.Initialize(s.baud); err != nil {
		dev.Uninitialize()
		return nil, "", fmt.Errorf("failed to initialize scanner: %w", err)
	}

	return dev, fmt.Sprintf("%s @ %s baud", connInfo, dev.SessionBaud()), nil
}
