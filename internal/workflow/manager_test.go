package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
	"reelforge/internal/testsupport"
	"reelforge/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type recordingNotifier struct {
	mu             sync.Mutex
	queueStarts    []int
	queueCompletes int
	errorTitles    []string
	reviewReasons  []string
}

func (r *recordingNotifier) NotifyFetchStarted(context.Context, string) error   { return nil }
func (r *recordingNotifier) NotifyFetchCompleted(context.Context, string) error { return nil }
func (r *recordingNotifier) NotifyClipCompleted(context.Context, string) error  { return nil }
func (r *recordingNotifier) NotifyClipReady(context.Context, string, string) error {
	return nil
}

func (r *recordingNotifier) NotifyQueueStarted(_ context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueStarts = append(r.queueStarts, count)
	return nil
}

func (r *recordingNotifier) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueCompletes++
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, _ error, context string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorTitles = append(r.errorTitles, context)
	return nil
}

func (r *recordingNotifier) NotifyReviewRequired(_ context.Context, _, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewReasons = append(r.reviewReasons, reason)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if item.Status == want {
			return item
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func fullStageSet() (workflow.StageSet, *stubStage, *stubStage, *stubStage, *stubStage) {
	fetcher := newStubStage("fetcher")
	clipper := newStubStage("clipper")
	captioner := newStubStage("captioner")
	publisher := newStubStage("publisher")
	set := workflow.StageSet{
		Fetcher:   fetcher,
		Clipper:   clipper,
		Captioner: captioner,
		Publisher: publisher,
	}
	return set, fetcher, clipper, captioner, publisher
}

func TestManagerProcessesItemThroughPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	set, fetcher, _, captioner, _ := fullStageSet()
	fetcher.executeHook = func(item *queue.Item) {
		item.DownloadedFile = "/tmp/source.mp4"
	}
	captioner.executeHook = func(item *queue.Item) {
		item.Caption = "stub caption"
	}

	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(set)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item, err := store.NewVideo(ctx, "https://youtu.be/pipeline")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}

	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if final.DownloadedFile != "/tmp/source.mp4" {
		t.Fatalf("fetch output not persisted: %q", final.DownloadedFile)
	}
	if final.Caption != "stub caption" {
		t.Fatalf("caption not persisted: %q", final.Caption)
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("progress percent = %f", final.ProgressPercent)
	}

	notifier.mu.Lock()
	starts := len(notifier.queueStarts)
	notifier.mu.Unlock()
	if starts != 1 {
		t.Fatalf("queue start notifications = %d, want 1", starts)
	}
}

func TestManagerRoutesValidationFailuresToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	set, fetcher, _, _, _ := fullStageSet()
	fetcher.executeErr = services.Wrap(
		services.ErrValidation,
		"fetching",
		"validate inputs",
		"Source is not a video",
		nil,
	)

	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(set)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item, err := store.NewVideo(ctx, "https://youtu.be/notvideo")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}

	final := waitForStatus(t, store, item.ID, queue.StatusReview)
	if !final.NeedsReview {
		t.Fatal("needs_review not set")
	}
	if final.ReviewReason == "" {
		t.Fatal("review reason empty")
	}

	notifier.mu.Lock()
	reviews := len(notifier.reviewReasons)
	notifier.mu.Unlock()
	if reviews == 0 {
		t.Fatal("expected a review notification")
	}
}

func TestManagerMovesReviewClipsOutOfStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	set, _, _, captioner, _ := fullStageSet()
	captioner.executeErr = services.Wrap(
		services.ErrValidation,
		"captioning",
		"validate inputs",
		"Clip is unreadable",
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	item, err := store.NewFile(ctx, "/media/source.mp4")
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	clipPath := testsupport.WriteFile(t, cfg.Paths.StagingDir, fmt.Sprintf("queue-%d/clip.mp4", item.ID), []byte("clip data"))
	item.Status = queue.StatusClipped
	item.ClipFile = clipPath
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	mgr.ConfigureStages(set)
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	final := waitForStatus(t, store, item.ID, queue.StatusReview)
	if !strings.HasPrefix(final.ClipFile, cfg.Paths.ReviewDir) {
		t.Fatalf("clip file = %q, want inside %q", final.ClipFile, cfg.Paths.ReviewDir)
	}
	if _, err := os.Stat(final.ClipFile); err != nil {
		t.Fatalf("relocated clip missing: %v", err)
	}
	if _, err := os.Stat(clipPath); !os.IsNotExist(err) {
		t.Fatalf("clip left in staging: %v", err)
	}
}

func TestManagerMarksExternalFailuresFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	set, _, clipper, _, _ := fullStageSet()
	clipper.executeErr = services.Wrap(
		services.ErrExternalTool,
		"clipping",
		"render",
		"ffmpeg failed to render the clip",
		errors.New("exit status 1"),
	)

	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(set)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item, err := store.NewFile(ctx, "/media/source.mp4")
	if err != nil {
		t.Fatalf("new file: %v", err)
	}

	final := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if final.ErrorMessage == "" {
		t.Fatal("error message empty")
	}

	notifier.mu.Lock()
	errCount := len(notifier.errorTitles)
	notifier.mu.Unlock()
	if errCount == 0 {
		t.Fatal("expected an error notification")
	}
}

func TestManagerSkipsCaptionerWhenAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	fetcher := newStubStage("fetcher")
	clipper := newStubStage("clipper")
	publisher := newStubStage("publisher")
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	mgr.ConfigureStages(workflow.StageSet{
		Fetcher:   fetcher,
		Clipper:   clipper,
		Publisher: publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item, err := store.NewVideo(ctx, "https://youtu.be/nocaption")
	if err != nil {
		t.Fatalf("new video: %v", err)
	}

	waitForStatus(t, store, item.ID, queue.StatusCompleted)
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error without configured stages")
	}
}

func TestManagerStatusReportsStageHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	set, _, clipper, _, _ := fullStageSet()
	clipper.health = stage.Unhealthy("clipper", "ffmpeg not found")

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	mgr.ConfigureStages(set)

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	health, ok := summary.StageHealth["clipper"]
	if !ok {
		t.Fatal("clipper health missing")
	}
	if health.Ready {
		t.Fatal("clipper should be unhealthy")
	}
}
