package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"noteally/internal/app"
	"noteally/internal/model"
)

// SummaryWorker consumes summary jobs, runs the summarization pipeline on the
// note's stored PDF and writes the result back onto the note. One attempt per
// job; a failed job is logged and dropped.
type SummaryWorker struct {
	conn        *amqp.Connection
	summarizer  app.Summarizer
	noteService *app.NoteService
	queueName   string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSummaryWorker(conn *amqp.Connection, summarizer app.Summarizer, noteService *app.NoteService, queueName string) *SummaryWorker {
	return &SummaryWorker{
		conn:        conn,
		summarizer:  summarizer,
		noteService: noteService,
		queueName:   queueName,
	}
}

func (w *SummaryWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job model.SummaryJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					log.Printf("worker decode summary job failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.process(workerCtx, job); err != nil {
					log.Printf("worker summarize note %d failed: %v", job.NoteID, err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *SummaryWorker) process(ctx context.Context, job model.SummaryJob) error {
	result, err := w.summarizer.Summarize(ctx, app.SummarizeInput{PDFURL: job.PDFURL})
	if err != nil {
		return err
	}
	if err := w.noteService.CompleteSummary(ctx, job.NoteID, result); err != nil {
		return err
	}
	log.Printf("worker saved summary for note %d", job.NoteID)
	return nil
}

func (w *SummaryWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
