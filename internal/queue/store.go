package queue

import (
	"log/slog"
	"os"

	"feebump/internal/fileutil"
	"feebump/internal/logging"
	"feebump/internal/services"
)

// Store reads and replaces the queue document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store bound to path. A nil logger discards output.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "queue"),
	}
}

// Path returns the queue file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole queue. A missing, unreadable, or malformed file is a
// *services.StorageError.
func (s *Store) Load() (Queue, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, services.NewStorageError("load", s.path, err)
	}
	requests, err := decodeDocument(data)
	if err != nil {
		return nil, services.NewStorageError("load", s.path, err)
	}
	s.logger.Debug("queue loaded",
		logging.String("path", s.path),
		logging.Int("request_count", len(requests)),
		logging.Int("eligible_count", requests.Eligible()))
	return requests, nil
}

// Save replaces the queue file with q. The write goes to a sibling temp file
// which is synced and renamed over the target, so a failed Save leaves the
// previous contents in place.
func (s *Store) Save(q Queue) error {
	data, err := encodeDocument(q)
	if err != nil {
		return services.NewStorageError("save", s.path, err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data); err != nil {
		return services.NewStorageError("save", s.path, err)
	}
	s.logger.Debug("queue saved",
		logging.String("path", s.path),
		logging.Int("request_count", len(q)))
	return nil
}
