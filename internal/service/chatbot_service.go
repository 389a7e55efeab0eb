package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/metrics"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gateway"
	"ai-chatbot-be/pkg/rag/executor"
	"ai-chatbot-be/pkg/rag/intent"
	"ai-chatbot-be/pkg/rag/response"
	"ai-chatbot-be/pkg/rag/session"

	"github.com/google/uuid"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	Ask(ctx context.Context, userId *uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error)
	// Answer runs the full pipeline for one question. It never fails: errors
	// and panics become the generic apology.
	Answer(ctx context.Context, userId *uuid.UUID, question, sessionId string) *AnswerResult
	Ping(ctx context.Context) *dto.PingResponse
}

// BackendSelector picks the generation backend for one request.
type BackendSelector interface {
	Select() gateway.Backend
}

// KnowledgePipeline answers ACCEPT questions from the knowledge base.
type KnowledgePipeline interface {
	Execute(ctx context.Context, backend gateway.Backend, question string, sessionHistory []string) (*executor.ExecutionResult, error)
}

// AnswerResult is the orchestrator outcome including internal tags.
type AnswerResult struct {
	Answer       string
	SessionID    string
	Intent       intent.Intent
	Status       llm.Status
	Backend      string
	KnowledgeHit bool
}

type chatbotService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessions       *session.Manager
	backends       BackendSelector
	classifier     *intent.Classifier
	pipeline       KnowledgePipeline
	replies        *response.Picker
	eventPublisher events.Publisher
	logger         logger.ILogger
	llmLogger      logger.ILogger
}

// NewChatbotService wires the conversation orchestrator. llmLogger receives
// the question/answer trace and may be the main logger.
func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *session.Manager,
	backends BackendSelector,
	classifier *intent.Classifier,
	pipeline KnowledgePipeline,
	replies *response.Picker,
	eventPublisher events.Publisher,
	log logger.ILogger,
	llmLogger logger.ILogger,
) IChatbotService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	if llmLogger == nil {
		llmLogger = log
	}
	return &chatbotService{
		uowFactory:     uowFactory,
		sessions:       sessions,
		backends:       backends,
		classifier:     classifier,
		pipeline:       pipeline,
		replies:        replies,
		eventPublisher: eventPublisher,
		logger:         log,
		llmLogger:      llmLogger,
	}
}

func (cs *chatbotService) Ask(ctx context.Context, userId *uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error) {
	res := cs.Answer(ctx, userId, request.Question, request.SessionId)
	return &dto.AskResponse{
		Answer:    res.Answer,
		SessionId: res.SessionID,
	}, nil
}

func (cs *chatbotService) Ping(ctx context.Context) *dto.PingResponse {
	return &dto.PingResponse{Message: constant.PingMessage}
}

func (cs *chatbotService) Answer(ctx context.Context, userId *uuid.UUID, question, sessionId string) (out *AnswerResult) {
	// A client disconnect must not abort a half-written turn.
	ctx = context.WithoutCancel(ctx)

	sessionId = strings.TrimSpace(sessionId)
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	// Serializes whole turns per session so Q/A lines never interleave.
	unlock := cs.sessions.LockTurn(ctx, sessionId)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			out = cs.fail(ctx, sessionId, fmt.Errorf("panic: %v", r), string(debug.Stack()))
		}
	}()

	res, err := cs.answer(ctx, userId, question, sessionId)
	if err != nil {
		return cs.fail(ctx, sessionId, err, "")
	}
	return res
}

func (cs *chatbotService) answer(ctx context.Context, userId *uuid.UUID, question, sessionId string) (*AnswerResult, error) {
	start := time.Now()

	// 1. Session bookkeeping
	if _, err := cs.sessions.GetOrCreate(ctx, sessionId); err != nil {
		return nil, err
	}
	state, err := cs.sessions.Append(ctx, sessionId, constant.HistoryQuestionPrefix+question)
	if err != nil {
		return nil, err
	}
	if err := cs.sessions.Touch(ctx, sessionId); err != nil {
		return nil, err
	}
	cs.incr(ctx, sessionId, constant.CounterQuestions)

	// 2. One backend for the whole request
	backend := cs.backends.Select()
	label := cs.classifier.Classify(ctx, backend, question)
	metrics.IntentsTotal.WithLabelValues(string(label)).Inc()

	out := &AnswerResult{
		SessionID: sessionId,
		Intent:    label,
		Status:    llm.StatusOK,
		Backend:   backend.Name(),
	}

	// 3. Branch on intent
	switch label {
	case intent.Accept:
		exec, err := cs.pipeline.Execute(ctx, backend, question, state.History)
		if err != nil {
			return nil, err
		}
		out.Answer = exec.Result.Text
		out.Status = exec.Result.Status
		out.KnowledgeHit = exec.KnowledgeHit()
		if !out.KnowledgeHit {
			cs.incr(ctx, sessionId, constant.CounterKBMisses)
			metrics.KnowledgeMissesTotal.Inc()
		}
		if exec.Result.Reason != "" {
			cs.logger.Warn("ORCHESTRATOR", "Generation did not complete normally", map[string]interface{}{
				"session_id": sessionId,
				"backend":    exec.Result.Backend,
				"status":     exec.Result.Status.String(),
				"reason":     exec.Result.Reason,
			})
		}
	case intent.Switch:
		out.Answer = cs.replies.HandOff()
		cs.incr(ctx, sessionId, constant.CounterHandOffs)
	default:
		out.Answer = cs.replies.Refusal()
		cs.incr(ctx, sessionId, constant.CounterRefused)
	}

	// 4. Close the turn
	if _, err := cs.sessions.Append(ctx, sessionId, constant.HistoryAnswerPrefix+out.Answer); err != nil {
		return nil, err
	}

	cs.llmLogger.Info("ORCHESTRATOR", "Question answered", map[string]interface{}{
		"session_id":    sessionId,
		"intent":        string(out.Intent),
		"backend":       out.Backend,
		"status":        out.Status.String(),
		"knowledge_hit": out.KnowledgeHit,
		"question":      question,
		"answer":        out.Answer,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	// 5. Best-effort side effects
	cs.saveRecord(ctx, userId, question, out)
	cs.publishAnswered(ctx, userId, out)

	return out, nil
}

// fail logs err, closes the turn with the apology when possible and returns it.
func (cs *chatbotService) fail(ctx context.Context, sessionId string, err error, stack string) *AnswerResult {
	metrics.OrchestratorFailuresTotal.Inc()

	details := map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
	}
	if stack != "" {
		details["stack"] = stack
	}
	cs.logger.Error("ORCHESTRATOR", "Failed to answer question", details)

	if s, found, getErr := cs.sessionSnapshot(ctx, sessionId); getErr == nil && found && awaitingAnswer(s) {
		if _, appendErr := cs.sessions.Append(ctx, sessionId, constant.HistoryAnswerPrefix+constant.GenericApologyMessage); appendErr != nil {
			cs.logger.Warn("ORCHESTRATOR", "Failed to close turn after error", map[string]interface{}{
				"session_id": sessionId,
				"error":      appendErr.Error(),
			})
		}
	}

	return &AnswerResult{
		Answer:    constant.GenericApologyMessage,
		SessionID: sessionId,
		Status:    llm.StatusFailed,
	}
}

func (cs *chatbotService) sessionSnapshot(ctx context.Context, sessionId string) (history []string, found bool, err error) {
	s, found, err := cs.sessions.Snapshot(ctx, sessionId)
	if err != nil || !found {
		return nil, found, err
	}
	return s.History, true, nil
}

// awaitingAnswer reports whether the last history line is an unanswered question.
func awaitingAnswer(history []string) bool {
	return len(history) > 0 && strings.HasPrefix(history[len(history)-1], constant.HistoryQuestionPrefix)
}

func (cs *chatbotService) incr(ctx context.Context, sessionId, counter string) {
	if err := cs.sessions.Incr(ctx, sessionId, counter); err != nil {
		cs.logger.Warn("ORCHESTRATOR", "Failed to update session counter", map[string]interface{}{
			"session_id": sessionId,
			"counter":    counter,
			"error":      err.Error(),
		})
	}
}

func (cs *chatbotService) saveRecord(ctx context.Context, userId *uuid.UUID, question string, out *AnswerResult) {
	now := time.Now()
	record := &entity.ChatRecord{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: out.SessionID,
		Question:  question,
		Answer:    out.Answer,
		Metadata: map[string]interface{}{
			"intent":        string(out.Intent),
			"backend":       out.Backend,
			"status":        out.Status.String(),
			"knowledge_hit": out.KnowledgeHit,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatRecordRepository().Create(ctx, record); err != nil {
		cs.logger.Error("ORCHESTRATOR", "Failed to save chat record", map[string]interface{}{
			"session_id": out.SessionID,
			"error":      err.Error(),
		})
	}
}

func (cs *chatbotService) publishAnswered(ctx context.Context, userId *uuid.UUID, out *AnswerResult) {
	data := map[string]interface{}{
		"session_id":    out.SessionID,
		"intent":        string(out.Intent),
		"backend":       out.Backend,
		"status":        out.Status.String(),
		"knowledge_hit": out.KnowledgeHit,
	}
	if userId != nil {
		data["user_id"] = userId.String()
	}

	if err := cs.eventPublisher.Publish(ctx, events.New(constant.EventChatAnswered, data)); err != nil {
		cs.logger.Warn("ORCHESTRATOR", "Failed to publish CHAT_ANSWERED event", map[string]interface{}{
			"session_id": out.SessionID,
			"error":      err.Error(),
		})
	}
}
