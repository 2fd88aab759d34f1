// Command modelinfo loads a model and prints its discovered inputs and
// outputs with shapes and element types.
//
// Usage:
//
//	modelinfo -model PATH [-config session.yaml]
//
// PATH is a SavedModel directory or a frozen graph ".pb" file. The optional
// yaml config file sets the GPU session options (allow_growth,
// per_process_gpu_memory_fraction, visible_device_list).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tfbridge/tfbridge"
)

func main() {
	var modelPath, configPath string
	flag.StringVar(&modelPath, "model", "", "SavedModel directory or frozen graph .pb file")
	flag.StringVar(&configPath, "config", "", "optional yaml session config file")
	flag.Parse()

	if modelPath == "" && flag.NArg() > 0 {
		modelPath = flag.Arg(0)
	}
	if modelPath == "" {
		fmt.Fprintln(os.Stderr, "usage: modelinfo -model PATH [-config session.yaml]")
		os.Exit(2)
	}

	opts := tfbridge.DefaultOptions()
	if configPath != "" {
		cfg, err := tfbridge.LoadSessionConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts.Config = cfg
	}

	model, err := tfbridge.Load(modelPath, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer model.Close()

	fmt.Printf("%s (%s)\n\n", modelPath, tfbridge.Detect(modelPath))
	fmt.Println(model.Info())
}
