package logics

import (
	"context"
	"time"

	"contaula-server/configs"
	"contaula-server/internal/auth"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// tutorSystemPrompt frames every forwarded question. The assistant teaches,
// it does not hand out answer keys for the graded exercises.
const tutorSystemPrompt = `Eres un tutor de contabilidad introductoria. ` +
	`Respondes en español, con ejemplos numéricos breves, sobre valoración de ` +
	`inventarios (promedio ponderado, FIFO) y depreciación de activos (línea ` +
	`recta, doble saldo decreciente, suma de dígitos, unidades de producción). ` +
	`No resuelvas los ejercicios evaluados del curso; explica el método.`

const chatTimeout = 60 * time.Second

// ChatService forwards natural-language questions to the configured
// OpenAI-compatible endpoint. It is a collaborator of the core: it only
// requires that an authenticated session exists.
type ChatService struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewChatService(logger *zap.Logger) *ChatService {
	cfg := configs.Configs.LLM

	opts := []option.RequestOption{option.WithAPIKey(cfg.ApiKey)}
	if cfg.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseUrl))
	}

	return &ChatService{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}
}

// Ask forwards one question and returns the completion text.
func (s *ChatService) Ask(ctx context.Context, username, question string) (string, error) {
	if question == "" {
		return "", auth.NewAuthError(auth.ErrInvalidField, "question is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	traceID := uuid.NewString()
	s.logger.Info("Forwarding chat question",
		zap.String("username", username),
		zap.String("traceId", traceID),
		zap.Int("questionLen", len(question)))

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(s.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(tutorSystemPrompt),
			openai.UserMessage(question),
		}),
	})
	if err != nil {
		s.logger.Error("LLM request failed", zap.String("traceId", traceID), zap.Error(err))
		return "", auth.NewAuthErrorWithCause(auth.ErrInternal, "llm request failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", auth.NewAuthError(auth.ErrInternal, "llm returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
