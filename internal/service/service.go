package service

import (
	"errors"
	"strconv"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	notesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "watermelon",
		Name:      "notes_created_total",
		Help:      "Notes created and persisted.",
	})
	notesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "watermelon",
		Name:      "notes_deleted_total",
		Help:      "Notes deleted and persisted.",
	})
	flushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watermelon",
		Name:      "note_flush_total",
		Help:      "Pending content flushes by result.",
	}, []string{"result"})
	storageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watermelon",
		Name:      "storage_errors_total",
		Help:      "Repository failures by operation.",
	}, []string{"op"})
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watermelon",
		Name:      "commands_total",
		Help:      "Commands dispatched by name and error kind.",
	}, []string{"command", "kind"})
	notesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "watermelon",
		Name:      "notes",
		Help:      "Notes in the canonical list.",
	})
)

// storageError wraps a repository failure into the given storage code
// storageError 把仓储错误包装为存储错误码
func storageError(c *code.Code, op string, err error) error {
	storageErrorsTotal.WithLabelValues(op).Inc()
	return c.WithCause(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func asCode(err error, target **code.Code) bool {
	return errors.As(err, target)
}

func uint64String(v uint64) string {
	return strconv.FormatUint(v, 10)
}
