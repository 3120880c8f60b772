// Package main provides the vmad CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/vmad/autodiff"
	"github.com/born-ml/vmad/linalg"
	"github.com/born-ml/vmad/model"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("vmad %s\n", version)
		return
	}

	fmt.Println("vmad - Tape-Based Automatic Differentiation for Go")
	fmt.Printf("Version: %s\n\n", version)

	if err := demo(); err != nil {
		fmt.Fprintln(os.Stderr, "demo failed:", err)
		os.Exit(1)
	}
}

// demo builds c = sum((x_i^2)^2), executes it with a recording tape at
// x = [0..9], and prints c together with its reverse-mode gradient.
func demo() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := model.New()
	x := m.Input("x")
	y, err := linalg.Mul(x, x)
	if err != nil {
		return err
	}
	c, err := linalg.ToScalar(y)
	if err != nil {
		return err
	}
	if err := m.Output("c", c); err != nil {
		return err
	}

	init := map[string]any{"x": model.Arange(10)}
	r, tape, err := model.NewContext(init).Compute(m, []string{"c"},
		model.WithTape(), model.WithMonitor(model.LogMonitor(logger)))
	if err != nil {
		return err
	}
	fmt.Println("c  =", r["c"])

	grad, err := autodiff.VJP(tape)
	if err != nil {
		return err
	}
	g, err := grad.Compute(map[string]any{"_c": 1.0}, []string{"_x"})
	if err != nil {
		return err
	}
	fmt.Println("_x =", g["_x"])
	return nil
}
