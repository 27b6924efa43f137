// Package safe_close coordinates the long running parts of the service: each part runs until
// the shared close signal fires, and the first failure or explicit signal stops all of them.
// Package safe_close 协调服务中长时间运行的组件：任一组件失败或显式发送关闭信号时，全部组件停止
package safe_close

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type SafeClose struct {
	root   context.Context
	cancel context.CancelCauseFunc
	ctx    context.Context
	group  *errgroup.Group
}

func NewSafeClose() *SafeClose {
	root, cancel := context.WithCancelCause(context.Background())
	group, ctx := errgroup.WithContext(root)
	return &SafeClose{root: root, cancel: cancel, ctx: ctx, group: group}
}

// Attach runs fn in its own goroutine. closeSignal closes when shutdown starts;
// a non-nil error returned by fn starts shutdown too.
// Attach 在独立 goroutine 中运行 fn；关闭开始时 closeSignal 关闭，fn 返回错误同样触发关闭
func (s *SafeClose) Attach(fn func(closeSignal <-chan struct{}) error) {
	s.group.Go(func() error {
		return fn(s.ctx.Done())
	})
}

// SendCloseSignal starts shutdown; err, if not nil, is reported by WaitClosed.
// Only the first signal counts.
// SendCloseSignal 发送关闭信号；只有第一次调用生效
func (s *SafeClose) SendCloseSignal(err error) {
	s.cancel(err)
}

// Closed closes once shutdown has started
// Closed 关闭开始后关闭
func (s *SafeClose) Closed() <-chan struct{} {
	return s.ctx.Done()
}

// WaitClosed blocks until every attached func returned.
// It reports the first error of an attached func, otherwise the error passed to SendCloseSignal.
// WaitClosed 等待所有组件退出，返回第一个组件错误或关闭信号携带的错误
func (s *SafeClose) WaitClosed() error {
	if err := s.group.Wait(); err != nil {
		return err
	}
	if cause := context.Cause(s.root); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}
