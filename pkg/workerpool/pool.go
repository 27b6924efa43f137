// Package workerpool bounds how many CPU-heavy jobs (note preview rendering) run at once
// Package workerpool 限制同时运行的 CPU 密集任务（笔记预览渲染）数量
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// 错误定义
var (
	// ErrPoolFull 任务队列已满
	ErrPoolFull = errors.New("worker pool queue is full")
	// ErrPoolClosed 已关闭
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	// Workers concurrent jobs, default 4 // 并发任务数，默认 4
	Workers int
	// QueueSize waiting jobs, default 64 // 等待队列大小，默认 64
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Workers: 4, QueueSize: 64}
}

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool fixed set of workers reading from one job channel
// Pool 固定数量的 worker 从同一个任务通道读取
type Pool struct {
	config Config
	logger *zap.Logger

	jobs chan job
	wg   sync.WaitGroup

	active atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建 Worker Pool
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.Workers > 0 {
			c.Workers = cfg.Workers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
	}
	for i := 0; i < c.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Debug("worker pool started",
		zap.Int("workers", c.Workers),
		zap.Int("queueSize", c.QueueSize))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	p.active.Add(1)
	defer p.active.Add(-1)

	var err error
	if err = j.ctx.Err(); err == nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("worker pool job panic", zap.Any("panic", r), zap.Stack("stack"))
					err = fmt.Errorf("worker pool job panic: %v", r)
				}
			}()
			err = j.fn(j.ctx)
		}()
	}
	j.done <- err
}

// Submit 提交任务并等待完成
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	done := make(chan error, 1)
	select {
	case p.jobs <- job{ctx: ctx, fn: fn, done: done}:
	default:
		p.mu.RUnlock()
		return ErrPoolFull
	}
	p.mu.RUnlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the pool and hands back its value
// Do 在池中执行 fn 并返回其结果
func Do[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Submit(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Stats 当前指标
type Stats struct {
	Workers int
	Active  int64
	Queued  int
	Closed  bool
}

// Stats 获取当前指标
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	return Stats{
		Workers: p.config.Workers,
		Active:  p.active.Load(),
		Queued:  len(p.jobs),
		Closed:  closed,
	}
}

// Shutdown 关闭 Worker Pool，等待已提交任务完成
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debug("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int64("active", p.active.Load()))
		return ctx.Err()
	}
}
