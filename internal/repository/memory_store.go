package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// MemoryRetention bounds the in-memory submission and feedback lists; the oldest entries go first.
const MemoryRetention = 100

// MemoryStore is the non-durable, single process fallback used when no database is configured.
type MemoryStore struct {
	mu          sync.Mutex
	now         func() time.Time
	sessions    []models.Session
	submissions []models.Submission
	feedback    []models.SessionFeedback
	nextSession uint
	nextSubmit  uint
	nextFeed    uint
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Sessions exposes the store as a SessionRepository.
func (m *MemoryStore) Sessions() SessionRepository { return memorySessions{m} }

// Submissions exposes the store as a SubmissionRepository.
func (m *MemoryStore) Submissions() SubmissionRepository { return memorySubmissions{m} }

// Feedback exposes the store as a FeedbackRepository.
func (m *MemoryStore) Feedback() FeedbackRepository { return memoryFeedback{m} }

// Schema exposes the store as a SchemaRepository.
func (m *MemoryStore) Schema() SchemaRepository { return memorySchema{m} }

func (m *MemoryStore) stamp(created time.Time) time.Time {
	if created.IsZero() {
		return m.now()
	}
	return created
}

type memorySessions struct{ m *MemoryStore }

func (r memorySessions) Create(_ context.Context, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.insertSessionLocked(session)
	return nil
}

func (m *MemoryStore) insertSessionLocked(session *models.Session) {
	m.nextSession++
	session.ID = m.nextSession
	session.CreatedAt = m.stamp(session.CreatedAt)
	m.sessions = append(m.sessions, *session)
}

func (r memorySessions) List(_ context.Context) ([]models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sessions := append([]models.Session(nil), r.m.sessions...)
	sort.SliceStable(sessions, func(i, j int) bool {
		return newerFirst(sessions[i].CreatedAt, sessions[i].ID, sessions[j].CreatedAt, sessions[j].ID)
	})
	return sessions, nil
}

func (r memorySessions) Active(ctx context.Context) (models.Session, error) {
	sessions, _ := r.List(ctx)
	for _, session := range sessions {
		if session.IsOpen {
			return session, nil
		}
	}
	return models.Session{}, gorm.ErrRecordNotFound
}

func (r memorySessions) GetByID(_ context.Context, id uint) (models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, session := range r.m.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return models.Session{}, gorm.ErrRecordNotFound
}

func (r memorySessions) Update(_ context.Context, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.replaceSessionLocked(session)
}

func (m *MemoryStore) replaceSessionLocked(session *models.Session) error {
	for i := range m.sessions {
		if m.sessions[i].ID == session.ID {
			m.sessions[i] = *session
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memorySessions) SaveExclusive(_ context.Context, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if session.ID == 0 {
		r.m.insertSessionLocked(session)
	} else if err := r.m.replaceSessionLocked(session); err != nil {
		return err
	}
	if session.IsOpen {
		for i := range r.m.sessions {
			if r.m.sessions[i].ID != session.ID {
				r.m.sessions[i].IsOpen = false
			}
		}
	}
	return nil
}

type memorySubmissions struct{ m *MemoryStore }

func (r memorySubmissions) Create(_ context.Context, submission *models.Submission) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextSubmit++
	submission.ID = r.m.nextSubmit
	submission.CreatedAt = r.m.stamp(submission.CreatedAt)
	r.m.submissions = append(r.m.submissions, *submission)
	if overflow := len(r.m.submissions) - MemoryRetention; overflow > 0 {
		r.m.submissions = append([]models.Submission(nil), r.m.submissions[overflow:]...)
	}
	return nil
}

func (r memorySubmissions) List(_ context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]models.Submission, 0, len(r.m.submissions))
	for i := len(r.m.submissions) - 1; i >= 0; i-- {
		submission := r.m.submissions[i]
		if filter.SessionID != nil && submission.SessionID != *filter.SessionID {
			continue
		}
		result = append(result, submission)
	}
	return result, nil
}

func (r memorySubmissions) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if index := r.m.submissionIndexLocked(id); index >= 0 {
		return r.m.submissions[index], nil
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r memorySubmissions) LatestByPrompt(_ context.Context, prompt string) (models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := len(r.m.submissions) - 1; i >= 0; i-- {
		if r.m.submissions[i].Prompt == prompt {
			return r.m.submissions[i], nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r memorySubmissions) SetRating(_ context.Context, id uint, rating int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	index := r.m.submissionIndexLocked(id)
	if index < 0 {
		return gorm.ErrRecordNotFound
	}
	if r.m.submissions[index].UserRating != nil {
		return ErrRatingAlreadySet
	}
	value := rating
	r.m.submissions[index].UserRating = &value
	return nil
}

func (m *MemoryStore) submissionIndexLocked(id uint) int {
	for i := range m.submissions {
		if m.submissions[i].ID == id {
			return i
		}
	}
	return -1
}

type memoryFeedback struct{ m *MemoryStore }

func (r memoryFeedback) Create(_ context.Context, feedback *models.SessionFeedback) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextFeed++
	feedback.ID = r.m.nextFeed
	feedback.CreatedAt = r.m.stamp(feedback.CreatedAt)
	r.m.feedback = append(r.m.feedback, *feedback)
	if overflow := len(r.m.feedback) - MemoryRetention; overflow > 0 {
		r.m.feedback = append([]models.SessionFeedback(nil), r.m.feedback[overflow:]...)
	}
	return nil
}

func (r memoryFeedback) List(_ context.Context, sessionID *uint) ([]models.SessionFeedback, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]models.SessionFeedback, 0, len(r.m.feedback))
	for i := len(r.m.feedback) - 1; i >= 0; i-- {
		item := r.m.feedback[i]
		if sessionID != nil && (item.SessionID == nil || *item.SessionID != *sessionID) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

type memorySchema struct{ m *MemoryStore }

func (memorySchema) Ping(context.Context) error    { return nil }
func (memorySchema) Migrate(context.Context) error { return nil }

func (r memorySchema) SeedDefaultSession(_ context.Context, session models.Session) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if len(r.m.sessions) > 0 {
		return false, nil
	}
	r.m.insertSessionLocked(&session)
	return true, nil
}

func (r memorySchema) BackfillCriteria(_ context.Context, stage1, stage2 []models.Criterion) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var updated int64
	for i := range r.m.sessions {
		changed := false
		if len(r.m.sessions[i].Stage1Criteria) == 0 {
			r.m.sessions[i].Stage1Criteria = append([]models.Criterion(nil), stage1...)
			changed = true
		}
		if len(r.m.sessions[i].Stage2Criteria) == 0 {
			r.m.sessions[i].Stage2Criteria = append([]models.Criterion(nil), stage2...)
			changed = true
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

func (memorySchema) MigrateLegacyScores(context.Context) (int64, error) { return 0, nil }

func (r memorySchema) Stats(_ context.Context) (SchemaStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stats := SchemaStats{
		SessionsTable:      true,
		SubmissionsTable:   true,
		FeedbackTable:      true,
		Sessions:           int64(len(r.m.sessions)),
		Submissions:        int64(len(r.m.submissions)),
		Feedback:           int64(len(r.m.feedback)),
		HasDynamicCriteria: true,
	}
	for _, session := range r.m.sessions {
		if session.IsOpen {
			stats.OpenSessions++
		}
	}
	return stats, nil
}

func newerFirst(aCreated time.Time, aID uint, bCreated time.Time, bID uint) bool {
	if aCreated.Equal(bCreated) {
		return aID > bID
	}
	return aCreated.After(bCreated)
}
