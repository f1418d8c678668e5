package service

import (
	"context"

	apperrors "station_chat/pkg/errors"
	"station_chat/pkg/logger"
)

// Dispatcher - единственная горутина, владеющая состоянием чата.
// Репозитории, ограничитель и каталог сессий вызываются только из нее,
// поэтому порядок сообщений одной сессии сохраняется без блокировок.
type Dispatcher struct {
	jobs    chan func()
	stopped chan struct{}
	log     logger.Logger
}

func NewDispatcher(queueSize int, log logger.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		jobs:    make(chan func(), queueSize),
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Run обрабатывает задачи до отмены контекста
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.stopped)

	d.log.Info("Chat dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Chat dispatcher stopped", "pending", len(d.jobs))
			return
		case job := <-d.jobs:
			d.execute(job)
		}
	}
}

func (d *Dispatcher) execute(job func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Recovered panic in chat dispatcher", "panic", r)
		}
	}()
	job()
}

// Submit ставит задачу в очередь, не дожидаясь выполнения
func (d *Dispatcher) Submit(fn func()) error {
	select {
	case <-d.stopped:
		return apperrors.ErrPipelineStopped
	default:
	}

	select {
	case d.jobs <- fn:
		return nil
	case <-d.stopped:
		return apperrors.ErrPipelineStopped
	}
}

// Do выполняет fn в горутине диспетчера и ждет завершения.
// Контекст ограничивает только постановку в очередь: принятая задача
// всегда выполняется, и Do возвращает ее итог.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case d.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return apperrors.ErrPipelineStopped
	}

	select {
	case <-done:
		return nil
	case <-d.stopped:
		select {
		case <-done:
			return nil
		default:
			return apperrors.ErrPipelineStopped
		}
	}
}
