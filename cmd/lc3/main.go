// Command lc3 loads one or more object images and runs them on a simulated LC-3 machine using the
// controlling terminal as console I/O.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mprast/lc3vm/internal/trap"
	"github.com/mprast/lc3vm/internal/tty"
	"github.com/mprast/lc3vm/internal/vm"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "lc3 IMAGE [IMAGE...]",
		Short:         "Run LC-3 object images on a simulated machine",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          run,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, images []string) error {
	if len(images) == 0 {
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		os.Exit(2)
	}

	console, err := tty.NewConsole(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("lc3: %w", err)
	}
	defer console.Restore()

	machine := vm.New(
		vm.Host{In: console, Out: console.Writer()},
		vm.WithTrapHandler(trap.Table()),
	)

	loader := vm.NewLoader(machine)

	for _, path := range images {
		f, err := os.Open(path)
		if err != nil {
			console.Restore()
			fmt.Fprintf(os.Stderr, "failed to load image: %s\n", path)
			os.Exit(1)
		}

		_, err = loader.Load(f)
		f.Close()

		if err != nil {
			console.Restore()
			fmt.Fprintf(os.Stderr, "failed to load image: %s\n", path)
			os.Exit(1)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- machine.Run() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("lc3: %w", err)
		}
		return nil
	case <-sig:
		console.Restore()
		os.Exit(254)
		return nil
	}
}
