// SPDX-License-Identifier: EPL-2.0

package bridge_test

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/blockbridge/bridge"
	"github.com/ik5/blockbridge/engine"
	"github.com/ik5/blockbridge/internal/enginetest"
)

func ExampleNode() {
	eng := enginetest.New(32, 1, 1)
	eng.Render = func(block int, in, out []float64) {
		for i := range out {
			out[i] = in[i] * 0.5
		}
	}

	n, err := bridge.NewNode(eng, 1, 1, bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer n.Destroy()

	if err := n.CompileProgram("instr 1\n out inch(1) * 0.5\nendin"); err != nil {
		fmt.Println(err)
		return
	}
	if err := n.Start(); err != nil {
		fmt.Println(err)
		return
	}

	in := [][]float32{make([]float32, 64)}
	out := [][]float32{make([]float32, 64)}
	for i := range in[0] {
		in[0][i] = 1
	}

	n.Process(in, out)

	// The first block is rendered before any input arrived.
	fmt.Println(out[0][0], out[0][32])
	fmt.Println(eng.Performed, "blocks")
	// Output:
	// 0 0.5
	// 2 blocks
}

func ExampleAudioBridge_Cursor() {
	eng := enginetest.New(32, 0, 1)
	_ = eng.CompileProgram("instr 1\nendin")

	b := bridge.NewAudioBridge(engine.NewBlockSource(eng), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := b.Start(); err != nil {
		fmt.Println(err)
		return
	}

	var cursors []int
	for range 4 {
		b.Process(nil, [][]float32{make([]float32, 20)})
		cursors = append(cursors, b.Cursor())
	}
	fmt.Println(cursors)
	// Output:
	// [20 8 28 16]
}
