package oracle

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// doneSuffix names the pipe a tool answers on: requests go to <pipe>, completion comes back on
// <pipe>_done.
const doneSuffix = "_done"

// Workspace is the scratch directory shared with the external tools, and the names of the two
// request pipes inside it. Each request pipe has a completion pipe next to it.
type Workspace struct {
	Dir       string
	BlissPipe string
	MorphPipe string
}

func (w Workspace) path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

func donePipe(pipe string) string { return pipe + doneSuffix }

// Prepare creates the scratch directory, both request pipes and their completion pipes.
// Existing pipes are reused.
func (w Workspace) Prepare() error {
	if err := os.MkdirAll(w.Dir, 0o777); err != nil {
		return errors.Wrapf(err, "creating work dir %s", w.Dir)
	}
	for _, name := range []string{w.BlissPipe, w.MorphPipe} {
		for _, p := range []string{name, donePipe(name)} {
			if err := mkfifo(w.path(p)); err != nil {
				return err
			}
		}
	}
	return nil
}

func mkfifo(path string) error {
	err := unix.Mkfifo(path, 0o777)
	if err == nil || errors.Is(err, unix.EEXIST) {
		return nil
	}
	return errors.Wrapf(err, "creating pipe %s", path)
}

// signal writes message as one line to the request pipe. It blocks until the tool opens the
// pipe for reading, or ctx ends.
func (w Workspace) signal(ctx context.Context, pipe, message string) error {
	name := w.path(pipe)
	err := blocking(ctx, name, os.O_RDONLY, func() error {
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteString(message + "\n")
		return err
	})
	return errors.Wrapf(err, "writing to pipe %s", pipe)
}

// await blocks until the tool writes a line to the completion pipe of pipe, or ctx ends.
func (w Workspace) await(ctx context.Context, pipe string) error {
	name := w.path(donePipe(pipe))
	err := blocking(ctx, name, os.O_WRONLY, func() error {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errors.New("closed without answering")
		}
		return nil
	})
	return errors.Wrapf(err, "waiting on pipe %s", donePipe(pipe))
}

// blocking runs op until it returns or ctx ends. On cancellation the FIFO at name is opened
// without blocking with the given flag, so that an op stuck opening the other end can finish.
func blocking(ctx context.Context, name string, flag int, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if f, err := os.OpenFile(name, flag|unix.O_NONBLOCK, 0); err == nil {
			f.Close()
		}
		return ctx.Err()
	}
}
