package main

import "github.com/fastbayes/fastbayes/cmd"

// TODO: run multiple independent chains per fit and report R-hat across
//       them instead of the single-chain split-half score

// TODO: checkpointing for chains (so we can freeze and continue) - the
//       saved fit would need the sampler state and generator position

func main() {
	cmd.Execute()
}
