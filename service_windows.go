//go:build windows

// Windows service support: lets aigen run under the service control manager
// and exposes install/uninstall/start/stop/restart/status commands.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kardianos/service"
	"go.uber.org/zap"

	"aigen/commands"
)

// stopTimeout is how long Stop waits for a clean shutdown before reporting
// failure to the service manager. Generous because in-flight video
// generation is drained first.
const stopTimeout = 90 * time.Second

// program implements service.Interface by running the serve command.
type program struct {
	app    *commands.App
	cancel context.CancelFunc
	exit   chan struct{}
}

func (p *program) Start(s service.Service) error {
	var ctx context.Context
	ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})

	go func() {
		defer close(p.exit)
		cfg := p.app.Config
		if err := commands.RunServe(ctx, p.app, cfg.WebHost, cfg.WebPort); err != nil {
			p.app.Logger.Error("service run failed", zap.Error(err))
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.cancel()
	select {
	case <-p.exit:
		return nil
	case <-time.After(stopTimeout):
		return fmt.Errorf("timeout waiting for service to stop")
	}
}

func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "aigen",
		DisplayName: "AI Generation Service",
		Description: "Local AI image and video generation with a web dashboard.",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

func newService(app *commands.App) (service.Service, error) {
	return service.New(&program{app: app}, serviceConfig())
}

// RunAsService runs under the service control manager when the process was
// started by it. Returns false when running interactively.
func RunAsService(app *commands.App) (bool, error) {
	s, err := newService(app)
	if err != nil {
		return false, fmt.Errorf("create service: %w", err)
	}

	if service.Interactive() {
		return false, nil
	}

	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}
	return true, nil
}

// HandleServiceCommand dispatches service management arguments. Returns
// true when a service command was handled and the process should exit.
func HandleServiceCommand(args []string) bool {
	if len(args) < 2 {
		return false
	}

	var action func(service.Service) error
	switch args[1] {
	case "install":
		action = service.Service.Install
	case "uninstall", "remove":
		action = service.Service.Uninstall
	case "start":
		action = service.Service.Start
	case "stop":
		action = service.Service.Stop
	case "restart":
		action = service.Service.Restart
	case "status":
		action = printServiceStatus
	default:
		return false
	}

	// Management commands never run the program, so no app is needed.
	s, err := newService(nil)
	if err == nil {
		err = action(s)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if args[1] != "status" {
		fmt.Printf("Service %s: done\n", args[1])
	}
	return true
}

func printServiceStatus(s service.Service) error {
	status, err := s.Status()
	if err != nil {
		return err
	}
	switch status {
	case service.StatusRunning:
		fmt.Println("Service is running")
	case service.StatusStopped:
		fmt.Println("Service is stopped")
	default:
		fmt.Println("Service status unknown")
	}
	return nil
}
