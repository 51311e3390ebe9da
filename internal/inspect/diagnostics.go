package inspect

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quillrt/quill/internal/scheduler"
)

// snapshotStruct builds the wire payload for Snapshot from the
// scheduler's last published task table and the heap's own stats
// counters, as a structpb.Struct — the well-known, already-generated
// protobuf message type this service uses as its wire schema so that
// serving it needs no codegen step of its own.
func snapshotStruct(sched *scheduler.Scheduler) (*structpb.Struct, error) {
	tasks := make([]any, 0)
	for _, t := range sched.LastSnapshot() {
		tasks = append(tasks, map[string]any{
			"id":     t.ID,
			"status": t.Status,
			"failed": t.Failed,
		})
	}

	stats := sched.Heap.StatsSnapshot()
	return structpb.NewStruct(map[string]any{
		"tasks":            tasks,
		"live_objects":     float64(stats.LastLive),
		"total_allocated":  float64(stats.TotalAllocated),
		"total_freed":      float64(stats.TotalFreed),
		"sweeps":           float64(stats.Sweeps),
		"last_sweep_freed": float64(stats.LastSweepFreed),
	})
}
