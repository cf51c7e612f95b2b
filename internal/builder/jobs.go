package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// compileJob represents a single compilation job
type compileJob struct {
	cc   string
	src  string
	obj  string
	dep  string // make-style depfile written by the compiler
	pre  []string
	post []string
}

// linkJob represents the shared library link
type linkJob struct {
	cc   string
	objs []string
	out  string
	pre  []string
	post []string
}

// runJobs runs jobs in parallel, at most limit at a time. The first failure wins.
func runJobs[T any](jobs []T, jobfunc func(job T) error, limit int) error {
	if len(jobs) == 0 {
		return nil
	}

	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(limit)

	for _, job := range jobs {
		eg.Go(func() error {
			return jobfunc(job)
		})
	}

	return eg.Wait()
}

func (job compileJob) args() []string {
	args := make([]string, 0, len(job.pre)+len(job.post)+7)
	args = append(args, job.pre...)
	args = append(args, "-c", job.src, "-o", job.obj)
	if job.dep != "" {
		args = append(args, "-MMD", "-MF", job.dep)
	}
	args = append(args, job.post...)
	return args
}

// runCompileJob runs a single compilation job
func runCompileJob(job compileJob) error {
	if err := os.MkdirAll(filepath.Dir(job.obj), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	cmd := exec.Command(job.cc, job.args()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Printf("CC %s\n", job.src)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", job.src, err)
	}
	return nil
}

func (job linkJob) args() []string {
	args := make([]string, 0, len(job.pre)+len(job.objs)+len(job.post)+2)
	args = append(args, job.pre...)
	args = append(args, job.objs...)
	args = append(args, "-o", job.out)
	args = append(args, job.post...)
	return args
}

// runLinkJob links the objects into the shared library
func runLinkJob(job linkJob) error {
	cmd := exec.Command(job.cc, job.args()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Printf("LINK %s\n", job.out)
	return cmd.Run()
}
