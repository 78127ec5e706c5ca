// Package platform holds OS-facing helpers for the desktop app.
package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
// The running instance has been asked to show its window.
var ErrAlreadyRunning = errors.New("instance already running")

const activateCommand = "activate"

// Instance holds the single-instance lock and listens for activation
// requests from later launches.
type Instance struct {
	listener   net.Listener
	address    string
	onActivate func()
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Acquire binds a localhost port derived from appName. When the port is
// held by a running instance, it is sent an activation request and
// ErrAlreadyRunning is returned. Any other bind failure is returned as is.
func Acquire(appName string, onActivate func(), logger *slog.Logger) (*Instance, error) {
	return acquireAt(fmt.Sprintf("127.0.0.1:%d", portFromName(appName)), onActivate, logger)
}

func acquireAt(address string, onActivate func(), logger *slog.Logger) (*Instance, error) {
	if logger == nil {
		logger = slog.Default()
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if notifyErr := notify(address); notifyErr != nil {
			logger.Warn("could not reach running instance", "address", address, "error", notifyErr)
			return nil, fmt.Errorf("listen %s: %w", address, err)
		}
		return nil, ErrAlreadyRunning
	}

	instance := &Instance{
		listener:   listener,
		address:    address,
		onActivate: onActivate,
		logger:     logger,
		done:       make(chan struct{}),
	}
	go instance.serve()
	return instance, nil
}

// Address returns the bound address.
func (instance *Instance) Address() string {
	if instance == nil {
		return ""
	}
	return instance.address
}

// Release frees the lock and stops serving activation requests.
func (instance *Instance) Release() error {
	if instance == nil {
		return nil
	}
	instance.mu.Lock()
	if instance.closed {
		instance.mu.Unlock()
		return nil
	}
	instance.closed = true
	instance.mu.Unlock()

	err := instance.listener.Close()
	<-instance.done
	return err
}

func (instance *Instance) serve() {
	defer close(instance.done)
	for {
		conn, err := instance.listener.Accept()
		if err != nil {
			instance.mu.Lock()
			closed := instance.closed
			instance.mu.Unlock()
			if !closed {
				instance.logger.Warn("single instance listener stopped", "error", err)
			}
			return
		}
		instance.handle(conn)
	}
}

func (instance *Instance) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		instance.logger.Debug("ignored activation request", "error", err)
		return
	}
	if strings.TrimSpace(line) != activateCommand {
		return
	}
	instance.logger.Info("activation requested by second instance")
	if instance.onActivate != nil {
		instance.onActivate()
	}
}

func notify(address string) error {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = fmt.Fprintln(conn, activateCommand)
	return err
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
