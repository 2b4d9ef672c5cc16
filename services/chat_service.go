//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"livechat/contract"
	"livechat/domain"
	"livechat/runtime"
)

// IChatService is what the transport needs from the engine, one call per client event.
type IChatService interface {
	Connect(ctx context.Context, sink contract.EventSink) (domain.ConnectionID, error)
	Join(ctx context.Context, connectionID domain.ConnectionID, identity domain.Identity) error
	SendMessage(ctx context.Context, connectionID domain.ConnectionID, to, body string) error
	Typing(ctx context.Context, connectionID domain.ConnectionID) error
	StopTyping(ctx context.Context, connectionID domain.ConnectionID) error
	Disconnect(ctx context.Context, connectionID domain.ConnectionID) error
	GetMessages(query domain.HistoryQuery) ([]domain.Message, *string, error)
	OnlineCount() int
}

type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Connect(ctx context.Context, sink contract.EventSink) (domain.ConnectionID, error) {
	return s.orchestrator.Connect(ctx, sink)
}

func (s *ChatService) Join(ctx context.Context, connectionID domain.ConnectionID, identity domain.Identity) error {
	return s.orchestrator.Join(ctx, connectionID, identity)
}

func (s *ChatService) SendMessage(ctx context.Context, connectionID domain.ConnectionID, to, body string) error {
	return s.orchestrator.SendMessage(ctx, connectionID, to, body)
}

func (s *ChatService) Typing(ctx context.Context, connectionID domain.ConnectionID) error {
	return s.orchestrator.Typing(ctx, connectionID)
}

func (s *ChatService) StopTyping(ctx context.Context, connectionID domain.ConnectionID) error {
	return s.orchestrator.StopTyping(ctx, connectionID)
}

func (s *ChatService) Disconnect(ctx context.Context, connectionID domain.ConnectionID) error {
	return s.orchestrator.Disconnect(ctx, connectionID)
}

func (s *ChatService) GetMessages(query domain.HistoryQuery) ([]domain.Message, *string, error) {
	return s.orchestrator.GetMessages(query)
}

func (s *ChatService) OnlineCount() int {
	return s.orchestrator.OnlineCount()
}
