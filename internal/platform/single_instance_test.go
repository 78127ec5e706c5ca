package platform

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSecondAcquireActivatesFirst(t *testing.T) {
	appName := fmt.Sprintf("obscount-test-%d", time.Now().UnixNano())
	activated := make(chan struct{}, 1)

	first, err := Acquire(appName, func() { activated <- struct{}{} }, nil)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	t.Cleanup(func() { _ = first.Release() })

	second, err := Acquire(appName, nil, nil)
	if !errors.Is(err, ErrAlreadyRunning) {
		if second != nil {
			_ = second.Release()
		}
		t.Fatalf("second acquire err = %v want ErrAlreadyRunning", err)
	}

	select {
	case <-activated:
	case <-time.After(2 * time.Second):
		t.Fatalf("first instance was not activated")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	appName := fmt.Sprintf("obscount-release-%d", time.Now().UnixNano())
	instance, err := Acquire(appName, nil, nil)
	if err != nil {
		t.Skipf("port unavailable: %v", err)
	}
	if err := instance.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := instance.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	var nilInstance *Instance
	if err := nilInstance.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}

func TestPortFromNameIsStable(t *testing.T) {
	port := portFromName("obscount")
	if port != portFromName("obscount") {
		t.Fatalf("port not deterministic")
	}
	if port < 20000 || port > 39999 {
		t.Fatalf("port %d out of range", port)
	}
}

func TestAcquireReportsBindFailure(t *testing.T) {
	instance, err := acquireAt("127.0.0.1:99999", nil, nil)
	if err == nil {
		_ = instance.Release()
		t.Fatalf("acquire on an invalid port succeeded")
	}
	if errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("bind failure reported as ErrAlreadyRunning: %v", err)
	}
	if !strings.Contains(err.Error(), "127.0.0.1:99999") {
		t.Fatalf("error does not name the address: %v", err)
	}
}
