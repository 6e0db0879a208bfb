package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// FileHook writes every entry to w using an uncolored text formatter, so the
// log file stays readable regardless of the console format.
type FileHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
}

// NewFileHook returns a hook writing to w.
func NewFileHook(w io.Writer) *FileHook {
	return &FileHook{
		w: w,
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	}
}

// Levels implements logrus.Hook.
func (h *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *FileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}
