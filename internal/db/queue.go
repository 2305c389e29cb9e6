package db

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("db queue closed")

type DBTask struct {
	Exec func(*sql.DB) (any, error)
	Resp chan DBResult
}

type DBResult struct {
	Data any
	Err  error
}

// DBQueue serializes every statement through one worker goroutine so the
// sqlite file only ever sees a single writer. Failed tasks are retried with a
// linear backoff; sql.ErrNoRows is a result, not a failure, and is returned
// immediately.
type DBQueue struct {
	tasks      chan DBTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	linear     bool

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDBQueue(db *sql.DB) *DBQueue {
	return newDBQueue(db, 100*time.Millisecond, true)
}

func NewDBQueueForTest(db *sql.DB) *DBQueue {
	return newDBQueue(db, time.Millisecond, false)
}

func newDBQueue(db *sql.DB, retryDelay time.Duration, linear bool) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan DBTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
		linear:     linear,
		done:       make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *DBQueue) Execute(task func(*sql.DB) (any, error)) (any, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	resp := make(chan DBResult, 1)
	q.tasks <- DBTask{Exec: task, Resp: resp}
	q.mu.RUnlock()

	result := <-resp
	return result.Data, result.Err
}

// Run executes task on the queue and returns its typed result.
func Run[T any](q *DBQueue, task func(*sql.DB) (T, error)) (T, error) {
	data, err := q.Execute(func(db *sql.DB) (any, error) {
		return task(db)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return data.(T), nil
}

// Exec runs a task that only reports an error.
func (q *DBQueue) Exec(task func(*sql.DB) error) error {
	_, err := q.Execute(func(db *sql.DB) (any, error) {
		return nil, task(db)
	})
	return err
}

func (q *DBQueue) worker() {
	defer close(q.done)
	for task := range q.tasks {
		task.Resp <- q.executeWithRetry(task)
	}
}

func (q *DBQueue) executeWithRetry(task DBTask) DBResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := task.Exec(q.db)
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			return DBResult{Data: data, Err: err}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			if q.linear {
				time.Sleep(time.Duration(attempt+1) * q.retryDelay)
			} else {
				time.Sleep(q.retryDelay)
			}
		}
	}
	return DBResult{Err: lastErr}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (q *DBQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	<-q.done
}

func (q *DBQueue) DB() *sql.DB {
	return q.db
}

// Tx runs fn inside a transaction on the queue worker.
func (q *DBQueue) Tx(fn func(*sql.Tx) error) error {
	return q.Exec(func(db *sql.DB) error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}
