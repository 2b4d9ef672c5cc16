package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type BaseWebsocketSuite struct {
	suite.Suite
	Config  Config
	timeout time.Duration
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWebsocketSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.Addr == "" {
		s.T().Skip("LIVECHAT_ADDR not set, skipping end to end suite")
	}
	s.timeout, err = time.ParseDuration(s.Config.Timeout)
	s.Require().NoError(err)
}

// Step prints a colorized header for a scenario step
func (s *BaseWebsocketSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dial opens a websocket connection closed at the end of the test
func (s *BaseWebsocketSuite) Dial(name string) *websocket.Conn {
	s.Step("Connecting " + name)
	u := url.URL{Scheme: "ws", Host: s.Config.Addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to "+u.String())
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *BaseWebsocketSuite) Send(conn *websocket.Conn, event string, data any) {
	frame := Frame{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		s.Require().NoError(err)
		frame.Data = raw
	}
	raw, err := json.Marshal(frame)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		s.T().Logf("SEND %s", raw)
	}
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, raw))
}

// Expect reads frames until one matches the event name and decodes its data into out
func (s *BaseWebsocketSuite) Expect(conn *websocket.Conn, event string, out any) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(s.timeout)))
	for {
		_, raw, err := conn.ReadMessage()
		s.Require().NoError(err, "waiting for "+event)
		if s.Config.DebugJSON {
			s.T().Logf("RECV %s", raw)
		}
		var frame Frame
		s.Require().NoError(json.Unmarshal(raw, &frame))
		if frame.Event != event {
			continue
		}
		if out != nil {
			s.Require().NoError(json.Unmarshal(frame.Data, out))
		}
		return
	}
}
