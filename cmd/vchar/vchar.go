package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pcharconfig"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/vchar"
	"golang.org/x/sys/unix"
)

const usage = "usage: vchar [--config <file>] [--devices <n>] [--capacity <bytes>] [--log-level <level>]"

func main() {
	// 0. read flags
	configFile := flag.String("config", "", "specify the config file")
	devices := flag.Int("devices", 0, "number of devices (overrides the config file)")
	capacity := flag.Int("capacity", 0, "initial buffer size of each device (overrides the config file)")
	level := flag.String("log-level", "", "debug, info, warn or error (overrides the config file)")
	flag.Parse()

	// parse config file, if any
	config := pcharconfig.Default()
	if *configFile != "" {
		var err error
		config, err = pcharconfig.ParseConfig(*configFile)
		if err != nil {
			fmt.Println(err)
			fmt.Println(usage)
			os.Exit(1)
		}
	}
	if *devices != 0 {
		config.Devices = *devices
	}
	if *capacity != 0 {
		config.Capacity = *capacity
	}
	if *level != "" {
		if err := config.LogLevel.UnmarshalText([]byte(*level)); err != nil {
			fmt.Println(err)
			fmt.Println(usage)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     config.LogLevel,
	}))
	slog.SetDefault(logger)
	pchar.SetLogger(logger)
	vchar.SetLogger(logger)

	// 1. create the devices
	v, err := vchar.New(config)
	if err != nil {
		fmt.Println(err)
		fmt.Println(usage)
		os.Exit(1)
	}

	// 2. on termination stop the repl; the terminal is restored and the
	// devices are torn down below, releasing blocked callers
	r := v.Repl()
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, unix.SIGTERM, unix.SIGHUP)
	go func() {
		sig := <-sigC
		logger.Info("shutting down", "signal", sig)
		r.Close()
	}()

	// 3. run the repl
	if err := r.Run("> "); err != nil {
		fmt.Println(err)
	}
	v.Close()
}
