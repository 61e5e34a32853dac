package main

import "github.com/giantswarm/pipeline-replicator/cmd/replicatord/cmd"

func main() {
	cmd.Execute()
}
