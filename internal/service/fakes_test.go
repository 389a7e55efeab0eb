package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/gateway"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the database behind a unit of work.
type fakeStore struct {
	mu        sync.Mutex
	documents map[uuid.UUID]*entity.Document
	segments  map[uuid.UUID]*entity.Segment
	order     []uuid.UUID
	records   []*entity.ChatRecord
	configs   map[string]*entity.AiConfiguration

	recordErr error
	configErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[uuid.UUID]*entity.Document),
		segments:  make(map[uuid.UUID]*entity.Segment),
		configs:   make(map[string]*entity.AiConfiguration),
	}
}

func (s *fakeStore) addSegment(content string, vec []float32) *entity.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg := &entity.Segment{Id: uuid.New(), DocumentId: uuid.New(), Content: content, Vector: vec}
	s.segments[seg.Id] = seg
	s.order = append(s.order, seg.Id)
	return seg
}

func (s *fakeStore) chatRecords() []*entity.ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.ChatRecord(nil), s.records...)
}

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: s}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepository{store: u.store}
}

func (u *fakeUnitOfWork) SegmentRepository() contract.SegmentRepository {
	return &fakeSegmentRepository{store: u.store}
}

func (u *fakeUnitOfWork) ChatRecordRepository() contract.ChatRecordRepository {
	return &fakeChatRecordRepository{store: u.store}
}

func (u *fakeUnitOfWork) AiConfigRepository() contract.IAiConfigRepository {
	return &fakeAiConfigRepository{store: u.store}
}

type fakeDocumentRepository struct {
	store *fakeStore
}

func (r *fakeDocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d := *document
	r.store.documents[d.Id] = &d
	return nil
}

func (r *fakeDocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if d, found := r.store.documents[byID.ID]; found {
				c := *d
				return &c, nil
			}
		}
	}
	return nil, nil
}

type fakeSegmentRepository struct {
	store *fakeStore
}

func (r *fakeSegmentRepository) Create(ctx context.Context, segment *entity.Segment) error {
	return r.CreateBulk(ctx, []*entity.Segment{segment})
}

func (r *fakeSegmentRepository) CreateBulk(ctx context.Context, segments []*entity.Segment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, seg := range segments {
		c := *seg
		r.store.segments[c.Id] = &c
		r.store.order = append(r.store.order, c.Id)
	}
	return nil
}

func (r *fakeSegmentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Segment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if seg, found := r.store.segments[byID.ID]; found {
				c := *seg
				return &c, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeSegmentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Segment, error) {
	withVector := false
	for _, spec := range specs {
		if _, ok := spec.(specification.WithVector); ok {
			withVector = true
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Segment
	for _, id := range r.store.order {
		seg := r.store.segments[id]
		if withVector && !seg.HasVector() {
			continue
		}
		c := *seg
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeSegmentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Segment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Segment
	for _, id := range ids {
		if seg, found := r.store.segments[id]; found {
			c := *seg
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeSegmentRepository) FindByDocumentID(ctx context.Context, documentId uuid.UUID) ([]*entity.Segment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Segment
	for _, id := range r.store.order {
		seg := r.store.segments[id]
		if seg.DocumentId == documentId {
			c := *seg
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeSegmentRepository) UpdateVector(ctx context.Context, id uuid.UUID, vec []float32) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seg, found := r.store.segments[id]
	if !found {
		return errors.New("record not found")
	}
	seg.Vector = append([]float32(nil), vec...)
	return nil
}

func (r *fakeSegmentRepository) ClearVector(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if seg, found := r.store.segments[id]; found {
		seg.Vector = nil
	}
	return nil
}

func (r *fakeSegmentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeSegmentRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredSegment, error) {
	return nil, errors.New("pgvector is not available")
}

type fakeChatRecordRepository struct {
	store *fakeStore
}

func (r *fakeChatRecordRepository) Create(ctx context.Context, record *entity.ChatRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.recordErr != nil {
		return r.store.recordErr
	}
	c := *record
	r.store.records = append(r.store.records, &c)
	return nil
}

func (r *fakeChatRecordRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRecord, error) {
	return r.store.chatRecords(), nil
}

type fakeAiConfigRepository struct {
	store *fakeStore
}

func (r *fakeAiConfigRepository) FindAllConfigurations(ctx context.Context, specs ...specification.Specification) ([]*entity.AiConfiguration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.AiConfiguration
	for _, c := range r.store.configs {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAiConfigRepository) FindConfigurationByKey(ctx context.Context, key string) (*entity.AiConfiguration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.configErr != nil {
		return nil, r.store.configErr
	}
	c, found := r.store.configs[key]
	if !found {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeAiConfigRepository) Upsert(ctx context.Context, config *entity.AiConfiguration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.configErr != nil {
		return r.store.configErr
	}
	cp := *config
	r.store.configs[cp.Key] = &cp
	return nil
}

// bagOfWordsProvider embeds text as word counts over a fixed vocabulary.
type bagOfWordsProvider struct {
	vocabulary []string
	err        error

	mu    sync.Mutex
	calls int
}

func newBagOfWordsProvider(vocabulary ...string) *bagOfWordsProvider {
	return &bagOfWordsProvider{vocabulary: vocabulary}
}

func (p *bagOfWordsProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}

	vec := make([]float32, len(p.vocabulary))
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,?!")
		for i, v := range p.vocabulary {
			if word == v {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func (p *bagOfWordsProvider) Name() string {
	return "bag-of-words"
}

// scriptedBackend answers Complete from a per-question label function and
// Generate from the first knowledge fragment.
type scriptedBackend struct {
	name  string
	label func(prompt string) string
	panic bool

	mu       sync.Mutex
	requests []gateway.GenerationRequest
}

func (b *scriptedBackend) Name() string {
	return b.name
}

func (b *scriptedBackend) Complete(ctx context.Context, prompt string) llm.Result {
	if b.label == nil {
		return llm.OK(b.name, "ACCEPT")
	}
	return llm.OK(b.name, b.label(prompt))
}

func (b *scriptedBackend) Generate(ctx context.Context, req gateway.GenerationRequest) llm.Result {
	if b.panic {
		panic("generation exploded")
	}
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	if len(req.Knowledge) == 0 {
		return llm.OK(b.name, "I am not sure.")
	}
	return llm.OK(b.name, "From the knowledge base: "+req.Knowledge[0])
}

func (b *scriptedBackend) lastRequest() gateway.GenerationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

type staticSelector struct {
	backend gateway.Backend
}

func (s staticSelector) Select() gateway.Backend {
	return s.backend
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) ofType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
