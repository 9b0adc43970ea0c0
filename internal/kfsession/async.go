package kfsession

import "context"

// Future 持有一次在独立 goroutine 中执行的调用结果。
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Async 在新的 goroutine 中执行 fn，取消与超时由 ctx 传递给底层请求。
//
//	f := kfsession.Async(ctx, func(ctx context.Context) (*kfsession.SessionStatus, error) {
//		return svc.GetSession(ctx, openID)
//	})
//	status, err := f.Wait()
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait 阻塞直到调用完成。
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}
