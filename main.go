package main

import (
	"fmt"
	"os"
	"strings"

	"quill/config"
	"quill/service"
)

const CliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain parses os.Args, runs the command and exits with its status.
func RealMain() {
	if len(os.Args) < 2 {
		service.PrintHelp()
		exit(1)
		return
	}

	switch strings.ToLower(os.Args[1]) {
	case "help", "-h", "--help":
		service.PrintHelp()
		exit(0)
		return
	case "version":
		fmt.Printf("quill version %s\n", CliVersion)
		exit(0)
		return
	}

	cfg, err := config.Load(config.GetBasePath())
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		exit(1)
		return
	}
	config.InitLogger(cfg.Logging)

	exit(service.HandleCommand(os.Args[1:], cfg))
}
