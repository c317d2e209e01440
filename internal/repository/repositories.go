package repository

import "gorm.io/gorm"

// Repositories bundles the stores used by the services.
type Repositories struct {
	Sessions    SessionRepository
	Submissions SubmissionRepository
	Feedback    FeedbackRepository
	Schema      SchemaRepository
	// Durable is false when the records live in the process memory store.
	Durable bool
}

// NewRepositories returns gorm backed repositories, or the memory store when db is nil.
func NewRepositories(db *gorm.DB) Repositories {
	if db == nil {
		store := NewMemoryStore()
		return Repositories{
			Sessions:    store.Sessions(),
			Submissions: store.Submissions(),
			Feedback:    store.Feedback(),
			Schema:      store.Schema(),
		}
	}

	return Repositories{
		Sessions:    NewSessionRepository(db),
		Submissions: NewSubmissionRepository(db),
		Feedback:    NewFeedbackRepository(db),
		Schema:      NewSchemaRepository(db),
		Durable:     true,
	}
}
