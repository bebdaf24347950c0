package core

import (
	"context"
	"log"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"

	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/wire"
)

// WakePayload is sent to the server during shutdown so its echo unblocks
// a receiver parked in Receive. It is not a protocol message.
var WakePayload = []byte("Bye!")

// arrivalCapacity bounds the arrival queue. The signal is level-triggered:
// a full queue already means "something arrived", so extra tokens are dropped.
const arrivalCapacity = 4

// arrivedToken is the pre-allocated value enqueued on every arrival.
var arrivedToken = true

// arrival is the "something arrived" signal between the receiver (sole
// producer) and the foreground (sole consumer).
type arrival struct {
	q lfq.SPSC[bool]
}

func newArrival() *arrival {
	a := &arrival{}
	a.q.Init(arrivalCapacity)
	return a
}

// signal marks an arrival. Producer side only.
func (a *arrival) signal() {
	_ = a.q.Enqueue(&arrivedToken)
}

// reset discards stale arrivals. Consumer side only.
func (a *arrival) reset() {
	for {
		if _, err := a.q.Dequeue(); err != nil {
			return
		}
	}
}

// wait blocks until an arrival is observed, the receiver exits, or ctx is
// done. Polls with adaptive backoff past iox.ErrWouldBlock.
func (a *arrival) wait(ctx context.Context, rxDone <-chan struct{}) error {
	var bo iox.Backoff
	for {
		_, err := a.q.Dequeue()
		if err == nil {
			return nil
		}
		if !iox.IsWouldBlock(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rxDone:
			// One last look: the receiver may have signaled right before exiting.
			if _, err := a.q.Dequeue(); err == nil {
				return nil
			}
			return ErrReceiverStopped
		default:
		}
		bo.Wait()
	}
}

// receiver is the background loop of one connection. It is the sole
// producer of inbox appends and arrival signals.
type receiver struct {
	tr      Transport
	deliver func(message.Message)
	signal  func()
	logger  *log.Logger

	// stop counts stop requests; non-zero means the loop must exit.
	stop atomix.Uint32
	done chan struct{}
}

func newReceiver(tr Transport, deliver func(message.Message), signal func(), logger *log.Logger) *receiver {
	return &receiver{
		tr:      tr,
		deliver: deliver,
		signal:  signal,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (r *receiver) run() {
	defer close(r.done)
	for !r.stopping() {
		payload, err := r.tr.Receive()
		if err != nil {
			if !r.stopping() {
				r.logger.Printf("core: receiver exiting: %v", err)
			}
			return
		}
		if r.stopping() && !wire.IsProtocol(payload) {
			// Echo of the wake payload (or other non-protocol noise) after a stop request.
			return
		}
		r.deliver(wire.Decode(payload))
		r.signal()
	}
}

func (r *receiver) requestStop() {
	r.stop.Add(1)
}

func (r *receiver) stopping() bool {
	return r.stop.Load() != 0
}

func (r *receiver) exited() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// isWake reports whether m is what the wake payload decodes to.
func isWake(m message.Message) bool {
	return m == wire.Decode(WakePayload)
}
