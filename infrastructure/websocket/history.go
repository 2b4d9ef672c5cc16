package websocket

import (
	"encoding/json"
	"fmt"
	"livechat/domain"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// HistoryMessage is one stored message as served on /chats.
type HistoryMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Msg       string    `json:"msg"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryPage lists messages newest first. Cursor resumes after the last one.
type HistoryPage struct {
	Messages []HistoryMessage `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

// chats serves the stored history, newest first.
// Optional query parameters: to, limit, cursor.
func (s *Server) chats(w http.ResponseWriter, r *http.Request) {
	query, err := parseHistoryQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	messages, cursor, err := s.service.GetMessages(query)
	if err != nil {
		s.log.Error("Unable to read history", "error", err)
		http.Error(w, "unable to read history", http.StatusInternalServerError)
		return
	}

	page := HistoryPage{
		Messages: lo.Map(messages, func(m domain.Message, _ int) HistoryMessage {
			return HistoryMessage{
				ID:        m.ID.String(),
				From:      string(m.Sender),
				To:        m.Recipient,
				Msg:       m.Body,
				Time:      m.DisplayTime(s.opts.Location),
				CreatedAt: m.CreatedAt,
			}
		}),
	}
	if len(messages) > 0 {
		page.Cursor = cursor
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(page); err != nil {
		s.log.Debug("Unable to write history", "addr", r.RemoteAddr, "error", err)
	}
}

func parseHistoryQuery(r *http.Request) (domain.HistoryQuery, error) {
	var query domain.HistoryQuery
	values := r.URL.Query()
	if to := values.Get("to"); to != "" {
		query.To = lo.ToPtr(to)
	}
	if cursor := values.Get("cursor"); cursor != "" {
		query.Cursor = lo.ToPtr(cursor)
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return domain.HistoryQuery{}, fmt.Errorf("limit must be a positive integer, got %q", raw)
		}
		query.Limit = lo.ToPtr(limit)
	}
	return query, nil
}
