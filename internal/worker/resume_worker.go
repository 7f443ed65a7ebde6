package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/datatypes"

	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/storage"
)

// ResumeParser turns a resume file into a structured JSON document
type ResumeParser interface {
	Parse(ctx context.Context, fileName string, content io.Reader) (json.RawMessage, error)
}

// fileMetadata is recorded when no parser is configured
type fileMetadata struct {
	FileName string    `json:"fileName"`
	Size     int64     `json:"size"`
	Parsed   bool      `json:"parsed"`
	StoredAt time.Time `json:"storedAt"`
}

// ResumeWorker consumes resume parse tasks and stores the result on the user.
// Delivery is at-most-once: every message is acked whatever the outcome.
type ResumeWorker struct {
	subscriber message.Subscriber
	users      repositories.UserRepository
	store      *storage.FileStore
	parser     ResumeParser
	logger     *slog.Logger
	timeout    time.Duration
}

// NewResumeWorker builds a worker. A nil parser records file metadata only.
func NewResumeWorker(subscriber message.Subscriber, users repositories.UserRepository, store *storage.FileStore, parser ResumeParser, logger *slog.Logger) *ResumeWorker {
	return &ResumeWorker{
		subscriber: subscriber,
		users:      users,
		store:      store,
		parser:     parser,
		logger:     logger.With("component", "resume_worker"),
		timeout:    2 * time.Minute,
	}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (w *ResumeWorker) Run(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, events.TopicResumeParse)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicResumeParse, err)
	}

	w.logger.Info("Resume worker started", "topic", events.TopicResumeParse, "parser_enabled", w.parser != nil)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Resume worker stopped")
			return nil
		case msg, ok := <-messages:
			if !ok {
				w.logger.Info("Resume subscription closed")
				return nil
			}
			w.handle(ctx, msg)
			msg.Ack()
		}
	}
}

func (w *ResumeWorker) handle(ctx context.Context, msg *message.Message) {
	var task models.ResumeParseTask
	if _, err := events.DecodeEvent(msg.Payload, &task); err != nil {
		w.logger.Warn("Dropping malformed resume task", "message_uuid", msg.UUID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.Process(ctx, task); err != nil {
		w.logger.Error("Resume task failed", "user_id", task.UserID, "error", err)
		return
	}
	w.logger.Info("Resume task processed", "user_id", task.UserID)
}

// Process parses one resume and writes the document onto the user.
func (w *ResumeWorker) Process(ctx context.Context, task models.ResumeParseTask) error {
	if task.UserID == "" || task.ResumePath == "" {
		return fmt.Errorf("incomplete task %+v", task)
	}

	file, err := w.store.Open(task.ResumePath)
	if err != nil {
		return fmt.Errorf("open resume: %w", err)
	}
	defer file.Close()

	var document []byte
	if w.parser == nil {
		document, err = w.metadata(file, task)
	} else {
		var parsed json.RawMessage
		parsed, err = w.parser.Parse(ctx, filepath.Base(task.ResumePath), file)
		document = parsed
	}
	if err != nil {
		return err
	}

	if err := w.users.SetParsedResume(ctx, task.UserID, datatypes.JSON(document)); err != nil {
		return fmt.Errorf("store parsed resume: %w", err)
	}
	return nil
}

func (w *ResumeWorker) metadata(file io.Reader, task models.ResumeParseTask) ([]byte, error) {
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	return json.Marshal(fileMetadata{
		FileName: filepath.Base(task.ResumePath),
		Size:     size,
		Parsed:   false,
		StoredAt: task.QueuedAt,
	})
}
