package e2e

import (
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type presence struct {
	Identity    string `json:"identity"`
	OnlineCount int    `json:"onlineCount"`
}

type receivedMessage struct {
	From string `json:"from"`
	To   string `json:"to"`
	Msg  string `json:"msg"`
	Time string `json:"time"`
}

type testChatSuite struct {
	BaseWebsocketSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestJoinTalkLeave() {
	// Unique names so the suite can run against a shared server
	alice := "alice-" + uuid.NewString()[:8]
	bob := "bob-" + uuid.NewString()[:8]
	body := "hi " + uuid.NewString()

	aliceConn := s.Dial(alice)
	var bobConn *websocket.Conn
	var joined presence

	s.Run("Step 1: Both users join", func() {
		s.Send(aliceConn, "join", alice)
		s.Expect(aliceConn, "user-joined", &joined)
		s.Require().Equal(alice, joined.Identity)
		before := joined.OnlineCount

		bobConn = s.Dial(bob)
		s.Send(bobConn, "join", bob)
		s.Expect(bobConn, "user-joined", &joined)
		s.Require().Equal(bob, joined.Identity)
		s.Require().Equal(before+1, joined.OnlineCount)
	})

	s.Run("Step 2: Typing reaches the other user", func() {
		s.Send(aliceConn, "typing", nil)
		var typist string
		s.Expect(bobConn, "user-typing", &typist)
		s.Require().Equal(alice, typist)
		s.Send(aliceConn, "stop-typing", nil)
		s.Expect(bobConn, "user-stop-typing", nil)
	})

	s.Run("Step 3: A message is broadcast to both", func() {
		s.Send(aliceConn, "send-message", map[string]string{"to": bob, "msg": body})
		for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
			var received receivedMessage
			s.Expect(conn, "receive-message", &received)
			s.Require().Equal(alice, received.From)
			s.Require().Equal(bob, received.To)
			s.Require().Equal(body, received.Msg)
			s.Require().NotEmpty(received.Time)
		}
	})

	s.Run("Step 4: Bob leaves", func() {
		s.Require().NoError(bobConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
		var left presence
		for left.Identity != bob {
			s.Expect(aliceConn, "user-left", &left)
		}
		s.Require().Equal(joined.OnlineCount-1, left.OnlineCount)
	})
}
