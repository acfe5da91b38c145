// Package async runs independent tasks concurrently.
//
// It is used for read-only backend queries that have no ordering
// dependency, such as the state reader's bucket, catalog, and crawler
// sub-queries. Mutating operations stay sequential.
package async

import (
	"context"
	"fmt"
)

// Task is a named operation to run concurrently with its peers.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts all tasks concurrently and waits for every one to
// finish. The first error observed is returned, wrapped with the failing
// task's name; the remaining tasks still run to completion.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	results := make(chan result, len(tasks))
	for _, task := range tasks {
		task := task
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstErr error
	for i := 0; i < len(tasks); i++ {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", res.name, res.err)
		}
	}
	return firstErr
}
