package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// Session is the per-login workspace. All assistant state lives here and
// dies with the session; nothing is persisted.
type Session struct {
	ID        string
	User      entity.User
	CreatedAt time.Time

	mu        sync.Mutex
	messages  []entity.Message
	audit     *entity.PipelineResult
	vatReport *VATReport
	template  *TemplateArtifacts
}

// VATReport is the outcome of the last registry batch run in a session.
type VATReport struct {
	Results []entity.VATResult
	XLSX    []byte
}

// TemplateArtifacts holds the outputs of the last template fill run.
type TemplateArtifacts struct {
	FilledDOCX    []byte
	AnnotatedXLSX []byte
}

// Append adds a message and drops the oldest entries beyond max.
func (s *Session) Append(msg entity.Message, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	if max > 0 && len(s.messages) > max {
		s.messages = s.messages[len(s.messages)-max:]
	}
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the conversation log. Pipeline results are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
}

func (s *Session) SetAuditResult(result *entity.PipelineResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = result
}

func (s *Session) AuditResult() (*entity.PipelineResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.audit, s.audit != nil
}

func (s *Session) SetVATReport(report *VATReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vatReport = report
}

func (s *Session) VATReport() (*VATReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.vatReport, s.vatReport != nil
}

func (s *Session) SetTemplateArtifacts(artifacts *TemplateArtifacts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.template = artifacts
}

func (s *Session) TemplateArtifacts() (*TemplateArtifacts, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.template, s.template != nil
}

// Store keeps sessions in memory with a sliding TTL.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Create opens a session for a verified user and returns its token.
func (s *Store) Create(user entity.User) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: time.Now(),
	}
	s.cache.Set(sess.ID, sess, s.ttl)
	return sess
}

// Get resolves a token and refreshes its expiry.
func (s *Store) Get(token string) (*Session, error) {
	value, found := s.cache.Get(token)
	if !found {
		return nil, entity.ErrSessionNotFound
	}
	sess := value.(*Session)
	s.cache.Set(token, sess, s.ttl)
	return sess, nil
}

// Delete drops a session; resolving its token afterwards fails.
func (s *Store) Delete(token string) {
	s.cache.Delete(token)
}
