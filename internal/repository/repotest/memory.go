// Package repotest provides in-memory repositories that keep the same
// invariants as the Postgres schema. Used by service and handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
)

type Store struct {
	mu sync.Mutex

	Now func() time.Time

	unavailable bool

	users         map[uuid.UUID]*domain.User
	sessions      map[uuid.UUID]*domain.UserSession
	skills        map[uuid.UUID]*domain.Skill
	conversations map[uuid.UUID]*domain.Conversation
	messages      []*domain.Message
	exchanges     map[uuid.UUID]*domain.SkillExchange
	ratings       []*domain.UserRating
	audit         []*domain.AuditLog
	counters      map[string]int64
	nextMessageID int64
}

func NewStore() *Store {
	return &Store{
		Now:           time.Now,
		users:         make(map[uuid.UUID]*domain.User),
		sessions:      make(map[uuid.UUID]*domain.UserSession),
		skills:        make(map[uuid.UUID]*domain.Skill),
		conversations: make(map[uuid.UUID]*domain.Conversation),
		exchanges:     make(map[uuid.UUID]*domain.SkillExchange),
		counters:      make(map[string]int64),
	}
}

// Repositories собирает все in-memory репозитории в агрегат
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &UserRepository{s},
		Skill:        &SkillRepository{s},
		Conversation: &ConversationRepository{s},
		Message:      &MessageRepository{s},
		Exchange:     &ExchangeRepository{s},
		Rating:       &RatingRepository{s},
		Audit:        &AuditRepository{s},
		RateLimit:    &RateLimitRepository{s},
	}
}

// SetUnavailable заставляет все операции возвращать ErrStoreUnavailable
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

func (s *Store) check() error {
	if s.unavailable {
		return apperrors.StoreUnavailable(errors.New("connection refused"))
	}
	return nil
}

// AddUser кладет пользователя напрямую, для подготовки тестов
func (s *Store) AddUser(firstName, lastName string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     strings.ToLower(firstName) + "." + uuid.NewString()[:8] + "@example.com",
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *Store) ConversationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) ExchangeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exchanges)
}

func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Store) AuditEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]string, 0, len(s.audit))
	for _, a := range s.audit {
		events = append(events, a.EventType)
	}
	return events
}

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) profile(id uuid.UUID) *domain.PublicProfile {
	if u, ok := s.users[id]; ok {
		p := u.Profile()
		return &p
	}
	return &domain.PublicProfile{ID: id}
}

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email || u.ID == user.ID {
			return apperrors.ErrUserAlreadyExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) CreateIfNotExists(ctx context.Context, user *domain.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return false, err
	}
	if _, ok := r.s.users[user.ID]; ok {
		return false, nil
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return false, apperrors.ErrUserAlreadyExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return true, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) GetWithStats(ctx context.Context, id uuid.UUID) (*domain.UserWithStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	stats := &domain.UserWithStats{User: &cp}

	var sum, n int
	for _, rating := range r.s.ratings {
		if rating.RatedUserID == id {
			sum += rating.Rating
			n++
		}
	}
	if n > 0 {
		stats.AvgRating = float64(sum) / float64(n)
	}
	for _, e := range r.s.exchanges {
		if e.HasParticipant(id) && e.Status == domain.ExchangeStatusCompleted {
			stats.TotalExchanges++
		}
	}
	for _, sk := range r.s.skills {
		if sk.UserID == id && sk.IsActive {
			stats.SkillsCount++
		}
	}
	return stats, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	user.UpdatedAt = r.s.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) CreateSession(ctx context.Context, session *domain.UserSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r *UserRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	now := r.s.Now()
	for _, sess := range r.s.sessions {
		if sess.RefreshTokenHash == tokenHash && sess.RevokedAt == nil && sess.ExpiresAt.After(now) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (r *UserRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	if sess, ok := r.s.sessions[sessionID]; ok {
		now := r.s.Now()
		sess.RevokedAt = &now
		sess.RevokedReason = &reason
	}
	return nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return 0, err
	}
	var deleted int64
	for id, sess := range r.s.sessions {
		if sess.ExpiresAt.Before(before) || sess.RevokedAt != nil {
			delete(r.s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

type SkillRepository struct{ s *Store }

func (r *SkillRepository) Create(ctx context.Context, skill *domain.Skill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	if _, ok := r.s.users[skill.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *skill
	r.s.skills[skill.ID] = &cp
	return nil
}

func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	sk, ok := r.s.skills[id]
	if !ok {
		return nil, apperrors.ErrSkillNotFound
	}
	cp := *sk
	cp.User = r.s.profile(sk.UserID)
	return &cp, nil
}

func (r *SkillRepository) List(ctx context.Context, filter domain.SkillFilter) ([]*domain.Skill, error) {
	search := strings.ToLower(filter.Search)
	return r.list(func(sk *domain.Skill) bool {
		if filter.Category != "" && sk.Category != filter.Category {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sk.Title), search) &&
			!strings.Contains(strings.ToLower(sk.Description), search) {
			return false
		}
		return true
	})
}

func (r *SkillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Skill, error) {
	return r.list(func(sk *domain.Skill) bool { return sk.UserID == userID })
}

func (r *SkillRepository) list(match func(*domain.Skill) bool) ([]*domain.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	skills := make([]*domain.Skill, 0)
	for _, sk := range r.s.skills {
		if sk.IsActive && match(sk) {
			cp := *sk
			cp.User = r.s.profile(sk.UserID)
			skills = append(skills, &cp)
		}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].CreatedAt.After(skills[j].CreatedAt) })
	return skills, nil
}

func (r *SkillRepository) Update(ctx context.Context, skill *domain.Skill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	if _, ok := r.s.skills[skill.ID]; !ok {
		return apperrors.ErrSkillNotFound
	}
	skill.UpdatedAt = r.s.Now()
	cp := *skill
	cp.User = nil
	r.s.skills[skill.ID] = &cp
	return nil
}

func (r *SkillRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	sk, ok := r.s.skills[id]
	if !ok {
		return apperrors.ErrSkillNotFound
	}
	sk.IsActive = false
	return nil
}

type ConversationRepository struct{ s *Store }

func samePair(c *domain.Conversation, a, b uuid.UUID) bool {
	return (c.ParticipantAID == a && c.ParticipantBID == b) || (c.ParticipantAID == b && c.ParticipantBID == a)
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	for _, c := range r.s.conversations {
		if samePair(c, conv.ParticipantAID, conv.ParticipantBID) {
			return apperrors.ErrConflict
		}
	}
	cp := *conv
	r.s.conversations[conv.ID] = &cp
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *ConversationRepository) FindByParticipants(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	for _, c := range r.s.conversations {
		if samePair(c, a, b) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	summaries := make([]*domain.ConversationSummary, 0)
	for _, c := range r.s.conversations {
		if !c.HasParticipant(userID) {
			continue
		}
		s := &domain.ConversationSummary{
			Conversation: *c,
			ParticipantA: *r.s.profile(c.ParticipantAID),
			ParticipantB: *r.s.profile(c.ParticipantBID),
		}
		for _, m := range sortedMessages(r.s.messages, c.ID) {
			cp := *m
			cp.Sender = r.s.profile(m.SenderID)
			s.LastMessage = &cp
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivityAt.After(summaries[j].LastActivityAt)
	})
	return summaries, nil
}

type MessageRepository struct{ s *Store }

func sortedMessages(all []*domain.Message, conversationID uuid.UUID) []*domain.Message {
	var out []*domain.Message
	for _, m := range all {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Create атомарен: сообщение и last activity меняются под одной блокировкой
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	conv, ok := r.s.conversations[message.ConversationID]
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	r.s.nextMessageID++
	message.ID = r.s.nextMessageID
	message.CreatedAt = r.s.Now()

	cp := *message
	cp.Sender = nil
	r.s.messages = append(r.s.messages, &cp)
	conv.LastActivityAt = message.CreatedAt
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	messages := make([]*domain.Message, 0)
	for _, m := range sortedMessages(r.s.messages, conversationID) {
		cp := *m
		cp.Sender = r.s.profile(m.SenderID)
		messages = append(messages, &cp)
	}
	return messages, nil
}

type ExchangeRepository struct{ s *Store }

func (r *ExchangeRepository) Create(ctx context.Context, e *domain.SkillExchange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	cp := *e
	r.s.exchanges[e.ID] = &cp
	return nil
}

func (r *ExchangeRepository) withProfiles(e *domain.SkillExchange) *domain.SkillExchange {
	cp := *e
	cp.Requester = r.s.profile(e.RequesterID)
	cp.Provider = r.s.profile(e.ProviderID)
	return &cp
}

func (r *ExchangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SkillExchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	e, ok := r.s.exchanges[id]
	if !ok {
		return nil, apperrors.ErrExchangeNotFound
	}
	return r.withProfiles(e), nil
}

func (r *ExchangeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SkillExchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	exchanges := make([]*domain.SkillExchange, 0)
	for _, e := range r.s.exchanges {
		if e.HasParticipant(userID) {
			exchanges = append(exchanges, r.withProfiles(e))
		}
	}
	sort.Slice(exchanges, func(i, j int) bool { return exchanges[i].CreatedAt.After(exchanges[j].CreatedAt) })
	return exchanges, nil
}

func (r *ExchangeRepository) UpdateStatus(ctx context.Context, e *domain.SkillExchange, fromStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	stored, ok := r.s.exchanges[e.ID]
	if !ok || stored.Status != fromStatus {
		return apperrors.ErrConflict
	}
	stored.Status = e.Status
	stored.CompletedAt = e.CompletedAt
	stored.UpdatedAt = r.s.Now()
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *ExchangeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	delete(r.s.exchanges, id)
	return nil
}

type RatingRepository struct{ s *Store }

func (r *RatingRepository) Create(ctx context.Context, rating *domain.UserRating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	if rating.ExchangeID != nil {
		for _, existing := range r.s.ratings {
			if existing.RaterID == rating.RaterID && existing.ExchangeID != nil && *existing.ExchangeID == *rating.ExchangeID {
				return apperrors.ErrConflict
			}
		}
	}
	cp := *rating
	r.s.ratings = append(r.s.ratings, &cp)
	return nil
}

func (r *RatingRepository) ListByRatedUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return nil, err
	}
	ratings := make([]*domain.UserRating, 0)
	for i := len(r.s.ratings) - 1; i >= 0; i-- {
		if rt := r.s.ratings[i]; rt.RatedUserID == userID {
			cp := *rt
			cp.Rater = r.s.profile(rt.RaterID)
			ratings = append(ratings, &cp)
		}
	}
	return ratings, nil
}

type AuditRepository struct{ s *Store }

func (r *AuditRepository) CreateLog(ctx context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(); err != nil {
		return err
	}
	log.ID = int64(len(r.s.audit) + 1)
	cp := *log
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

// RateLimitRepository считает запросы без окна; для тестов этого достаточно
type RateLimitRepository struct{ s *Store }

func (r *RateLimitRepository) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.counters[key] < int64(limit), nil
}

func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[key]++
	return r.s.counters[key], nil
}
