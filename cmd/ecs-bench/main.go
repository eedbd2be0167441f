// Profiling:
// go build ./cmd/ecs-bench
// ./ecs-bench -profile mem
// go tool pprof -http=":8000" ./ecs-bench mem.pprof

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/core"
	"github.com/lixenwraith/marrow/engine"
)

var (
	entities = flag.Int("entities", 10000, "Entities created per round")
	rounds   = flag.Int("rounds", 50, "Create/query/remove rounds")
	workload = flag.String("workload", "all", "Workload: ecs|animation|all")
	mode     = flag.String("profile", "none", "Profile: cpu|mem|none")
	path     = flag.String("path", ".", "Profile output directory")
)

// result is one workload's timing
type result struct {
	name       string
	operations int
	elapsed    time.Duration
}

func main() {
	flag.Parse()

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath(*path), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*path), profile.NoShutdownHook)
	case "none":
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *mode)
		os.Exit(2)
	}

	var results []result
	switch *workload {
	case "ecs":
		results = append(results, runECS(*rounds, *entities))
	case "animation":
		results = append(results, runAnimation(*rounds, *entities))
	case "all":
		results = append(results, runECS(*rounds, *entities), runAnimation(*rounds, *entities))
	default:
		fmt.Fprintf(os.Stderr, "unknown workload %q\n", *workload)
		os.Exit(2)
	}

	if p != nil {
		p.Stop()
	}
	report(results)
}

// runECS creates entities with mixed component sets, iterates the linked
// view, then destroys every entity through the type-erased eraser path
func runECS(rounds, n int) result {
	rigid := []engine.ComponentType{engine.TypeOf[component.Transform](), engine.TypeOf[component.Mesh]()}
	renderable := append(rigid[:len(rigid):len(rigid)], engine.TypeOf[component.Skin]())

	start := time.Now()
	ops := 0
	for range rounds {
		w := engine.NewWorld()
		created := make([]core.Entity, 0, n)
		for i := 0; i < n; i++ {
			eb := w.NewEntity()
			engine.With(eb, component.NewTransform(mgl32.Vec3{float32(i), 0, 0}))
			engine.With(eb, component.Mesh{ID: uint32(i%4 + 1)})
			if i%2 == 0 {
				eb.WithDefault(engine.TypeOf[component.Skin]())
			}
			created = append(created, eb.Build())
		}

		transforms := engine.StoreOf[component.Transform](w.Components)
		for _, e := range engine.CollectLinked3[component.Transform, component.Mesh, component.Skin](w.Components) {
			tr := transforms.Get(e)
			tr.Position = tr.Position.Add(mgl32.Vec3{0, 1, 0})
		}
		// rigid meshes: Transform and Mesh without a Skin
		unique := w.Components.CollectUniqueLinked(rigid, renderable)

		for _, e := range created {
			w.DestroyEntity(e)
		}
		ops += 2*n + len(unique)
	}
	return result{name: "ecs", operations: ops, elapsed: time.Since(start)}
}

// runAnimation advances and evaluates n tentacle instances per round
func runAnimation(rounds, n int) result {
	model, err := asset.NewTentacle(8)
	if err != nil {
		panic(err)
	}
	clip := model.Clips[0]
	ev := animation.NewEvaluator()
	cursors := make([]component.AnimationCursor, n)
	var pose animation.Pose

	start := time.Now()
	for range rounds {
		for i := range cursors {
			animation.Advance(&cursors[i], clip.FrameTimes, 1.0/60)
			ev.Evaluate(model.Skeleton, clip, int(cursors[i].CurrentFrame), &pose)
		}
	}
	return result{name: "animation", operations: rounds * n, elapsed: time.Since(start)}
}

func report(results []result) {
	fmt.Printf("Benchmark Results:\n")
	for _, r := range results {
		per := time.Duration(0)
		if r.operations > 0 {
			per = r.elapsed / time.Duration(r.operations)
		}
		fmt.Printf("  %-10s %10d ops  %12v  %8v/op\n", r.name, r.operations, r.elapsed, per)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("  Total Alloc:  %d bytes\n", m.TotalAlloc)
	fmt.Printf("  Mallocs:      %d\n", m.Mallocs)
}
