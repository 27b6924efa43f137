// Package serialqueue runs submitted functions one at a time on a single worker goroutine
// Package serialqueue 在单个 worker goroutine 上逐个执行提交的函数
package serialqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrQueueFull 队列已满
	ErrQueueFull = errors.New("serial queue is full")
	// ErrQueueClosed 队列已关闭
	ErrQueueClosed = errors.New("serial queue is closed")
	// ErrTimeout 等待执行结果超时
	ErrTimeout = errors.New("serial queue operation timeout")
)

// Config 队列配置
type Config struct {
	// Capacity pending operations, default 100 // 等待中的操作数量，默认 100
	Capacity int
	// Timeout how long Execute waits for a result, default 30s // Execute 等待结果的时长，默认 30 秒
	Timeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Capacity: 100,
		Timeout:  30 * time.Second,
	}
}

type op struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// Queue owns one worker goroutine; functions run in FIFO order and never overlap
// Queue 持有一个 worker goroutine；函数按 FIFO 顺序执行，互不重叠
type Queue struct {
	config Config
	logger *zap.Logger

	ch   chan op
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New 创建队列并启动 worker
func New(cfg *Config, logger *zap.Logger) *Queue {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.Capacity > 0 {
			c.Capacity = cfg.Capacity
		}
		if cfg.Timeout > 0 {
			c.Timeout = cfg.Timeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	q := &Queue{
		config: c,
		logger: logger,
		ch:     make(chan op, c.Capacity),
		done:   make(chan struct{}),
	}
	go q.worker()

	q.logger.Debug("serial queue started",
		zap.Int("capacity", c.Capacity),
		zap.Duration("timeout", c.Timeout))
	return q
}

// Execute submits fn and waits for its result
// Execute 提交 fn 并等待执行结果
func (q *Queue) Execute(ctx context.Context, fn func(context.Context) error) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}

	result := make(chan error, 1)
	select {
	case q.ch <- op{ctx: ctx, fn: fn, result: result}:
	default:
		q.mu.RUnlock()
		return ErrQueueFull
	}
	q.mu.RUnlock()

	timeout := q.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTimeout
	}
}

// Len 等待中的操作数量
func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) worker() {
	defer close(q.done)
	for o := range q.ch {
		q.run(o)
	}
}

func (q *Queue) run(o op) {
	select {
	case <-o.ctx.Done():
		o.result <- o.ctx.Err()
		return
	default:
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error("serial queue operation panic", zap.Any("panic", r), zap.Stack("stack"))
				err = fmt.Errorf("serial queue operation panic: %v", r)
			}
		}()
		err = o.fn(o.ctx)
	}()

	select {
	case o.result <- err:
	default:
	}
}

// Shutdown stops accepting work and waits until every queued operation has run
// Shutdown 停止接收新操作，等待已入队的操作执行完毕
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	select {
	case <-q.done:
		q.logger.Debug("serial queue drained")
		return nil
	case <-ctx.Done():
		q.logger.Warn("serial queue shutdown timeout", zap.Int("pending", len(q.ch)))
		return ctx.Err()
	}
}
