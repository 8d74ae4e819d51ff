package podcast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"docqa/internal/catalog"
	"docqa/internal/llm"
	"docqa/internal/vectorindex"
)

// maxScriptChunks bounds how much document text feeds the script.
const maxScriptChunks = 15

// AudioSynthesizer converts a finished script into an audio file and
// returns its path. Implementations live outside this core; a nil
// synthesizer means jobs finish at the script stage.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, jobID, script string) (string, error)
}

// Worker consumes podcast jobs from an in-process queue. Jobs move
// through an explicit state machine rather than running as
// fire-and-forget goroutines, so status polls always see a consistent
// state.
type Worker struct {
	store    *Store
	catalog  *catalog.Store
	index    *vectorindex.Index
	provider llm.Provider
	model    string
	audio    AudioSynthesizer

	queue chan queued
	wg    sync.WaitGroup
	once  sync.Once
}

type queued struct {
	jobID  string
	userID string
}

// NewWorker creates a Worker. audio may be nil.
func NewWorker(store *Store, cat *catalog.Store, index *vectorindex.Index, provider llm.Provider, model string, audio AudioSynthesizer) *Worker {
	return &Worker{
		store:    store,
		catalog:  cat,
		index:    index,
		provider: llm.Serialize(provider),
		model:    model,
		audio:    audio,
		queue:    make(chan queued, 64),
	}
}

// Jobs returns the underlying job store for status reads.
func (w *Worker) Jobs() *Store { return w.store }

// Start launches the background consumer. It returns immediately.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-w.queue:
				if !ok {
					return
				}
				w.process(ctx, q)
			}
		}
	}()
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.once.Do(func() { close(w.queue) })
	w.wg.Wait()
}

// Enqueue creates a pending job for the document and schedules it.
// Ownership of the document is verified before the job is created.
func (w *Worker) Enqueue(ctx context.Context, documentID, userID string, speakers int) (*Job, error) {
	if _, err := w.catalog.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}

	job := &Job{DocumentID: documentID, UserID: userID, Speakers: speakers}
	if err := w.store.Create(ctx, job); err != nil {
		return nil, err
	}

	select {
	case w.queue <- queued{jobID: job.ID, userID: userID}:
		return job, nil
	default:
		fail := w.store.transition(ctx, job.ID, StatusPending, StatusError,
			map[string]string{"error": ErrQueueFull.Error()})
		if fail != nil {
			log.Printf("podcast: marking job %s failed: %v", job.ID, fail)
		}
		return nil, ErrQueueFull
	}
}

// process runs one job through the state machine.
func (w *Worker) process(ctx context.Context, q queued) {
	if err := w.store.transition(ctx, q.jobID, StatusPending, StatusRunning, nil); err != nil {
		log.Printf("podcast: job %s not runnable: %v", q.jobID, err)
		return
	}

	job, err := w.store.Get(ctx, q.jobID, q.userID)
	if err != nil {
		w.fail(ctx, q.jobID, err)
		return
	}

	script, err := w.generateScript(ctx, job)
	if err != nil {
		w.fail(ctx, q.jobID, err)
		return
	}

	// Persist the script immediately; the UI can show it while audio
	// generation is still pending.
	if err := w.store.transition(ctx, q.jobID, StatusRunning, StatusScriptReady,
		map[string]string{"script": script}); err != nil {
		log.Printf("podcast: job %s: %v", q.jobID, err)
		return
	}

	if w.audio == nil {
		if err := w.store.transition(ctx, q.jobID, StatusScriptReady, StatusDone, nil); err != nil {
			log.Printf("podcast: job %s: %v", q.jobID, err)
		}
		return
	}

	audioPath, err := w.audio.Synthesize(ctx, q.jobID, script)
	if err != nil {
		// The script is still usable; leave the job at script_ready.
		log.Printf("podcast: audio synthesis failed for job %s: %v", q.jobID, err)
		return
	}

	if err := w.store.transition(ctx, q.jobID, StatusScriptReady, StatusDone,
		map[string]string{"audio_path": audioPath}); err != nil {
		log.Printf("podcast: job %s: %v", q.jobID, err)
	}
}

func (w *Worker) generateScript(ctx context.Context, job *Job) (string, error) {
	handle, err := w.index.Load(ctx, job.DocumentID)
	if err != nil {
		return "", err
	}
	if handle == nil || handle.Count() == 0 {
		return "", fmt.Errorf("document %s has no indexed content", job.DocumentID)
	}

	texts := handle.Texts()
	if len(texts) > maxScriptChunks {
		texts = texts[:maxScriptChunks]
	}

	resp, err := w.provider.Complete(ctx, llm.CompletionRequest{
		Model: w.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: scriptPrompt(strings.Join(texts, "\n"), job.Speakers)},
		},
		MaxTokens:   1200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("script generation: %w", err)
	}

	script := strings.TrimSpace(resp.Content)
	if script == "" {
		return "", fmt.Errorf("model returned an empty script")
	}
	return script, nil
}

// fail moves a running job to the error state.
func (w *Worker) fail(ctx context.Context, jobID string, cause error) {
	log.Printf("podcast: job %s failed: %v", jobID, cause)
	if err := w.store.transition(ctx, jobID, StatusRunning, StatusError,
		map[string]string{"error": cause.Error()}); err != nil {
		log.Printf("podcast: recording failure for job %s: %v", jobID, err)
	}
}
