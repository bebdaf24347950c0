package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/sanverite/echo-client/internal/command"
	"github.com/sanverite/echo-client/internal/core"
)

// runShell reads commands from in until quit, end of input or ctx is
// cancelled. Every command runs on the calling goroutine; in is read on a
// helper goroutine so cancellation does not wait for the next line.
// Errors are printed as "! <err>" and the loop continues.
func runShell(ctx context.Context, sess *core.Session, in io.Reader, out io.Writer, prompt string) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stopped:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for !sess.Killed() {
		fmt.Fprint(out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			cmd, err := command.Parse(line)
			if err == nil {
				err = command.Run(ctx, sess, cmd, out)
			}
			if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
	return nil
}
