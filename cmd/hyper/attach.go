package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hyper/internal/errors"
	"github.com/vango-dev/hyper/pkg/client"
)

type attachFlags struct {
	frames  uint64
	clicks  []string
	timeout time.Duration
}

func attachCmd() *cobra.Command {
	var f attachFlags

	cmd := &cobra.Command{
		Use:   "attach <url>",
		Short: "Follow a session and print its HTML after every frame",
		Long: `Open a session against a running server and keep a local mirror of
its document. The mirror HTML is printed after every patch frame.

--click takes element ids, clicked one per frame in order.

Examples:
  hyper attach ws://localhost:8080/ws
  hyper attach ws://localhost:8080/ws --click inc --click inc --frames 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if f.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, f.timeout)
				defer cancel()
			}
			return runAttach(ctx, args[0], f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Uint64VarP(&f.frames, "frames", "n", 0, "Exit after this many frames (0 follows until closed)")
	cmd.Flags().StringSliceVar(&f.clicks, "click", nil, "Element id to click after a frame (repeatable)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Give up after this long")

	return cmd
}

func runAttach(ctx context.Context, url string, f attachFlags, out io.Writer) error {
	c, err := client.Dial(ctx, url)
	if err != nil {
		return errors.New("E161").WithDetail("Could not attach to " + url).Wrap(err)
	}
	defer c.Close()

	fmt.Fprintf(out, "# session %s\n", c.SessionID())

	var printed uint64
	var reported int
	clicks := f.clicks
	for {
		changed := c.Changed()

		if errs := c.Errors(); len(errs) > reported {
			for _, em := range errs[reported:] {
				fmt.Fprintf(out, "# error: %v\n", em)
			}
			reported = len(errs)
		}

		if n := c.Frames(); n > printed {
			printed = n
			fmt.Fprintf(out, "# frame %d\n%s\n", n, c.HTML())
			if f.frames > 0 && n >= f.frames {
				return nil
			}
			if len(clicks) > 0 {
				id := clicks[0]
				clicks = clicks[1:]
				node := c.Document().GetElementByID(id)
				if node == nil {
					return errors.Newf(errors.CategoryCLI, "no element with id %q", id)
				}
				if err := c.Click(node.HID); err != nil {
					return err
				}
			}
		}

		select {
		case <-changed:
		case <-c.Done():
			fmt.Fprintln(out, "# closed")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
