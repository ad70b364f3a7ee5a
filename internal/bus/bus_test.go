package bus

import (
	"sync"
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()

	var got []float64
	b.Subscribe("cmd_position", func(msg any) {
		got = append(got, msg.(CommandPosition).MotorAngle)
	})

	b.Publish("cmd_position", CommandPosition{MotorAngle: 0.5})
	b.Publish("cmd_position", CommandPosition{MotorAngle: -0.2})
	b.Publish("other", CommandTorque{Torque: 9.0})

	if len(got) != 2 || got[0] != 0.5 || got[1] != -0.2 {
		t.Errorf("delivery wrong: %v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	calls := 0
	unsub := b.Subscribe("t", func(any) { calls++ })

	b.Publish("t", CommandTorque{Torque: 1})
	unsub()
	b.Publish("t", CommandTorque{Torque: 2})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	// Must not panic.
	b.Publish("nobody", CommandPosition{MotorAngle: 1})
}

func TestConcurrentPublishers(t *testing.T) {
	b := New()

	var mu sync.Mutex
	count := 0
	b.Subscribe("t", func(any) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish("t", CommandTorque{Torque: float64(j)})
			}
		}()
	}
	wg.Wait()

	if count != 800 {
		t.Errorf("count = %d, want 800", count)
	}
}
