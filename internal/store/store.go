// Package store holds the session-lifetime client state: processing status,
// recent jobs, chat transcript, selected service and last generated image.
package store

import (
	"sync"

	"ai-showcase-client/internal/domain/model"
)

// DefaultJobCap bounds the recent-jobs list.
const DefaultJobCap = 20

// State is an immutable view of the store taken right after a mutation.
// Version grows by one per mutation; since listeners run outside the lock,
// a consumer that must not go backwards compares versions.
type State struct {
	Version            uint64                 `json:"version"`
	ProcessingStatus   model.ProcessingStatus `json:"processingStatus"`
	RecentJobs         []model.AIJob          `json:"recentJobs"`
	ChatMessages       []model.ChatMessage    `json:"chatMessages"`
	CurrentService     string                 `json:"currentService"`
	LastGeneratedImage *string                `json:"lastGeneratedImage"`
}

// Listener receives the post-mutation state. It runs on the mutating
// goroutine, outside the store lock.
type Listener func(State)

type Option func(*Store)

// WithJobCap overrides DefaultJobCap. Non-positive values are ignored.
func WithJobCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.jobCap = n
		}
	}
}

// WithMutationHook is called with the operation name after every mutation
// (used for metrics).
func WithMutationHook(fn func(op string, s State)) Option {
	return func(s *Store) { s.hook = fn }
}

// Store is the single source of truth for client state. Every mutation is a
// full replace-or-merge under one lock, so no two mutations interleave.
type Store struct {
	mu      sync.RWMutex
	jobCap  int
	version uint64

	processing     model.ProcessingStatus
	jobs           []model.AIJob
	chat           []model.ChatMessage
	currentService string
	lastImage      *string

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]Listener
	hook      func(op string, s State)
}

func New(opts ...Option) *Store {
	s := &Store{
		jobCap:         DefaultJobCap,
		processing:     model.Idle(),
		jobs:           []model.AIJob{},
		chat:           []model.ChatMessage{},
		currentService: string(model.ServiceGenerate),
		subs:           map[int]Listener{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// mutate applies fn under the write lock and, if fn reports a change,
// publishes the resulting state.
func (s *Store) mutate(op string, fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var st State
	if changed {
		s.version++
		st = s.snapshotLocked()
	}
	s.mu.Unlock()
	if !changed {
		return
	}
	if s.hook != nil {
		s.hook(op, st)
	}
	s.publish(st)
}

func (s *Store) publish(st State) {
	s.subMu.Lock()
	ls := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		ls = append(ls, l)
	}
	s.subMu.Unlock()
	for _, l := range ls {
		l(st)
	}
}

// ---- processing ----

// SetProcessingStatus replaces the whole status. No validation is done.
func (s *Store) SetProcessingStatus(status model.ProcessingStatus) {
	s.mutate("set_processing_status", func() bool {
		s.processing = status
		return true
	})
}

func (s *Store) ProcessingStatus() model.ProcessingStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

// ---- jobs ----

// SetRecentJobs replaces the list, e.g. when hydrating from the server.
// Entries past the cap are dropped.
func (s *Store) SetRecentJobs(jobs []model.AIJob) {
	s.mutate("set_recent_jobs", func() bool {
		n := len(jobs)
		if n > s.jobCap {
			n = s.jobCap
		}
		s.jobs = cloneJobs(jobs[:n])
		return true
	})
}

// AddJob prepends job and truncates to the cap. The oldest entry by insertion
// order is evicted; ids are not de-duplicated.
func (s *Store) AddJob(job model.AIJob) {
	s.mutate("add_job", func() bool {
		n := len(s.jobs) + 1
		if n > s.jobCap {
			n = s.jobCap
		}
		next := make([]model.AIJob, 0, n)
		next = append(next, job.Clone())
		next = append(next, s.jobs[:n-1]...)
		s.jobs = next
		return true
	})
}

// UpdateJob merges patch into the job with the given id. Unknown ids are a
// silent no-op and publish nothing.
func (s *Store) UpdateJob(id model.ID, patch model.AIJobPatch) {
	s.mutate("update_job", func() bool {
		idx := -1
		for i := range s.jobs {
			if s.jobs[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		next := make([]model.AIJob, len(s.jobs))
		copy(next, s.jobs)
		patch.Apply(&next[idx])
		s.jobs = next
		return true
	})
}

func (s *Store) RecentJobs() []model.AIJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneJobs(s.jobs)
}

// Job finds a job by id.
func (s *Store) Job(id model.ID) (model.AIJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j.Clone(), true
		}
	}
	return model.AIJob{}, false
}

// ---- chat ----

func (s *Store) SetChatMessages(msgs []model.ChatMessage) {
	s.mutate("set_chat_messages", func() bool {
		s.chat = append([]model.ChatMessage{}, msgs...)
		return true
	})
}

// AddChatMessage appends msg. The transcript has no cap.
func (s *Store) AddChatMessage(msg model.ChatMessage) {
	s.mutate("add_chat_message", func() bool {
		next := make([]model.ChatMessage, len(s.chat), len(s.chat)+1)
		copy(next, s.chat)
		s.chat = append(next, msg)
		return true
	})
}

func (s *Store) ChatMessages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatMessage{}, s.chat...)
}

// ---- ui ----

func (s *Store) SetCurrentService(id string) {
	s.mutate("set_current_service", func() bool {
		s.currentService = id
		return true
	})
}

func (s *Store) CurrentService() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentService
}

// SetLastGeneratedImage sets the last image url; nil clears it.
func (s *Store) SetLastGeneratedImage(url *string) {
	s.mutate("set_last_generated_image", func() bool {
		if url == nil {
			s.lastImage = nil
		} else {
			u := *url
			s.lastImage = &u
		}
		return true
	})
}

func (s *Store) LastGeneratedImage() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastImage == nil {
		return nil
	}
	u := *s.lastImage
	return &u
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := State{
		Version:          s.version,
		ProcessingStatus: s.processing,
		RecentJobs:       cloneJobs(s.jobs),
		ChatMessages:     append([]model.ChatMessage{}, s.chat...),
		CurrentService:   s.currentService,
	}
	if s.lastImage != nil {
		u := *s.lastImage
		st.LastGeneratedImage = &u
	}
	return st
}

func cloneJobs(in []model.AIJob) []model.AIJob {
	out := make([]model.AIJob, len(in))
	for i, j := range in {
		out[i] = j.Clone()
	}
	return out
}
