package queue

import (
	"context"
	"time"
)

// Task - фоновая задача: тип и непрозрачный payload
type Task struct {
	Type    string
	Payload []byte
}

// Handler обрабатывает задачу; ошибка означает повтор по политике адаптера
type Handler func(ctx context.Context, task Task) error

// EnqueueOption - параметры постановки, нулевые значения не задают ничего
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	MaxRetry  int
	Timeout   time.Duration
}

type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server блокируется в Run до отмены контекста
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
}
