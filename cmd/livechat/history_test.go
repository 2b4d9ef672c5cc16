package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"livechat/domain"
	"livechat/mocks"
	"livechat/repositories"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRenderHistory(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	at := time.Date(2024, 5, 1, 19, 5, 0, 0, time.UTC)

	renderHistory(&out, []domain.Message{
		{ID: uuid.New(), Sender: "Alice", Recipient: "Bob", Body: "hi", CreatedAt: at},
		{ID: uuid.New(), Recipient: "Bob", Body: "who am I", CreatedAt: at.Add(-time.Hour)},
	}, time.UTC)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	req.Len(lines, 3)
	req.Contains(string(lines[1]), "7:05 PM")
	req.Contains(string(lines[1]), "Alice")
	req.Contains(string(lines[2]), "6:05 PM")
	req.Contains(string(lines[2]), "(anonymous)")
}

func TestHistoryQuery(t *testing.T) {
	req := require.New(t)
	flagTo, flagLimit, flagCursor = "", 0, ""
	t.Cleanup(func() { flagTo, flagLimit, flagCursor = "", 50, "" })

	req.Equal(domain.HistoryQuery{}, historyQuery())

	flagTo, flagLimit, flagCursor = "Bob", 10, "abc"
	query := historyQuery()
	req.Equal("Bob", *query.To)
	req.Equal(10, *query.Limit)
	req.Equal("abc", *query.Cursor)
}

func TestMessageMapper(t *testing.T) {
	req := require.New(t)
	raw, err := json.Marshal(repositories.DiskMessage{ID: uuid.New(), From: "Alice", To: "Bob", Msg: "hi"})
	req.NoError(err)

	row := MessageMapper("msg:0000000000000000001:id", raw)
	req.Equal("MESSAGE", row.Type)
	req.Equal("Alice -> Bob: hi", row.Detail)

	row = MessageMapper("msg:broken", []byte("{"))
	req.Equal("Error: unmarshal failed", row.Detail)
}

func TestReadHistory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	at := time.Date(2024, 5, 1, 19, 5, 0, 0, time.UTC)
	stored := repositories.DiskMessage{ID: uuid.New(), From: "Alice", To: "Bob", Msg: "hi", CreatedAt: at}

	t.Run("Query is forwarded and records are mapped", func(t *testing.T) {
		repository.EXPECT().
			GetMessages(repositories.MessageQuery{To: lo.ToPtr("Bob"), Limit: lo.ToPtr(10)}).
			Return([]repositories.DiskMessage{stored}, lo.ToPtr("next"), nil)

		messages, cursor, err := readHistory(repository, domain.HistoryQuery{To: lo.ToPtr("Bob"), Limit: lo.ToPtr(10)})
		req.NoError(err)
		req.Equal("next", *cursor)
		req.Equal([]domain.Message{{ID: stored.ID, Sender: "Alice", Recipient: "Bob", Body: "hi", CreatedAt: at}}, messages)
	})

	t.Run("Store failure is wrapped", func(t *testing.T) {
		failure := fmt.Errorf("disk unavailable")
		repository.EXPECT().GetMessages(gomock.Any()).Return(nil, nil, failure)

		_, _, err := readHistory(repository, domain.HistoryQuery{})
		req.ErrorIs(err, failure)
	})
}
