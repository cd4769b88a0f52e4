// Package parallel 用固定数量的 worker 处理一批任务
package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task 处理单个任务,workerID 从 0 开始
type Task[T any] func(ctx context.Context, workerID int, item T) error

// Run 启动 min(workers, len(items)) 个 worker 消费 items。
// ctx 取消后 worker 不再领取新任务;所有任务的错误合并返回。
func Run[T any](ctx context.Context, logger *zap.Logger, items []T, workers int, task Task[T]) error {
	if len(items) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	itemCh := make(chan T, len(items))
	for _, item := range items {
		itemCh <- item
	}
	close(itemCh)

	errCh := make(chan error, len(items))
	wg := sync.WaitGroup{}
	for i := range min(workers, len(items)) {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					logger.Debug("worker 取消执行,退出", zap.Int("worker", workerID))
					return
				case item, ok := <-itemCh:
					if !ok {
						return
					}
					if err := task(ctx, workerID, item); err != nil {
						errCh <- err
					}
				}
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d 个任务失败: %w", len(errs), errors.Join(errs...))
	}
	return nil
}
