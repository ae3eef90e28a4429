// Package msr605 drives the MSR605X magnetic-stripe reader/writer over USB.
// Commands go out as chunked HID set-report control transfers; responses
// arrive as chunked reports on the interrupt IN endpoint and are reassembled
// into logical packets.
package msr605

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gousb"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

const (
	VendorID  = 0x0801 // MagTek / clone HID readers
	ProductID = 0x0003 // MSR605X

	// Report framing: 1-byte chunk header, up to 63 payload bytes, padded
	// to the fixed 64-byte transfer size.
	reportSize    = 64
	maxChunk      = 63
	hdrStartValid = 0x80
	hdrFinal      = 0x40
	hdrLengthMask = 0x3f

	// HID class SET_REPORT control transfer.
	ctrlRequestType = 0x21
	ctrlRequest     = 0x09
	ctrlValue       = 0x0300

	esc = 0x1b
)

// Command bytes following the escape marker.
const (
	cmdReset       = 'a' // reset; also takes the device out of read mode
	cmdCommTest    = 'e'
	cmdReadRaw     = 'm'
	cmdWriteRaw    = 'n'
	cmdFirmware    = 'v'
	cmdSetBPC      = 'o'
	cmdSetBPI      = 'b'
	cmdHiCo        = 'x'
	cmdLoCo        = 'y'
	cmdLeadingZero = 'z'
	cmdErase       = 'c'
)

// Response codes following the escape marker.
const (
	ackOK         = 0x30
	respCommTest  = 'y'
	respTrackData = 's'
)

const (
	ackDeadline = 3 * time.Second
	ackSubWait  = 500 * time.Millisecond
	drainQuiet  = 50 * time.Millisecond
)

// Settings holds the per-track configuration applied by Initialize.
type Settings struct {
	HiCo        bool
	BPI         [3]int // bits per inch per track, 75 or 210
	BPC         [3]int // bits per character per track
	LeadingZero [2]int // leading zero count for tracks 1&3, track 2
}

// DefaultSettings returns the standard ISO configuration.
func DefaultSettings() Settings {
	return Settings{
		HiCo:        true,
		BPI:         [3]int{210, 75, 210},
		BPC:         [3]int{7, 5, 5},
		LeadingZero: [2]int{61, 22},
	}
}

// Client is one connected MSR605X session.
type Client struct {
	Settings Settings

	usbCtx *gousb.Context
	dev    *gousb.Device
	done   func()
	ep     *gousb.InEndpoint

	queue *packetQueue
	asm   reassembler

	// sendMu gives outgoing transfers their total order: a second logical
	// packet begins only after the previous one finished or failed.
	sendMu sync.Mutex

	connected  atomic.Bool
	cancelling atomic.Bool

	stopListen context.CancelFunc
	listenDone chan struct{}
	releaseUSB sync.Once

	log zerolog.Logger
}

func init() {
	device.Register(VendorID, ProductID, func() (device.StripeReader, error) {
		return Connect()
	})
}

// Connect finds the reader, claims its interface and starts the endpoint
// listener. The caller owns the session and must Close it.
func Connect() (*Client, error) {
	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == VendorID && uint16(desc.Product) == ProductID
	})
	if err != nil {
		for _, d := range devs {
			d.Close()
		}
		ctx.Close()
		if isAccessError(err) {
			return nil, fmt.Errorf("open MSR605X: %w", device.ErrAccessDenied)
		}
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("MSR605X (VID=0x%04X PID=0x%04X): %w",
			VendorID, ProductID, device.ErrNotFound)
	}

	// Use the first matching device; multi-device sessions are unsupported.
	dev := devs[0]
	for i := 1; i < len(devs); i++ {
		devs[i].Close()
	}

	// The kernel HID driver holds the interface until detached.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to enable kernel driver detach: %w", err)
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		if isAccessError(err) {
			return nil, fmt.Errorf("claim MSR605X config: %w", device.ErrAccessDenied)
		}
		return nil, fmt.Errorf("failed to get config 1: %w", err)
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		if isAccessError(err) {
			return nil, fmt.Errorf("claim MSR605X interface: %w", device.ErrAccessDenied)
		}
		return nil, fmt.Errorf("failed to claim interface 0: %w", err)
	}
	done := func() {
		intf.Close()
		cfg.Close()
	}

	// The input endpoint is not at a fixed address across firmware
	// revisions; take the first interrupt IN endpoint on the interface.
	epNum, found := -1, false
	for _, ed := range intf.Setting.Endpoints {
		if ed.Direction == gousb.EndpointDirectionIn && ed.TransferType == gousb.TransferTypeInterrupt {
			epNum = ed.Number
			found = true
			break
		}
	}
	if !found {
		done()
		dev.Close()
		ctx.Close()
		return nil, errors.New("no interrupt IN endpoint on interface 0")
	}
	ep, err := intf.InEndpoint(epNum)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to open interrupt IN endpoint %d: %w", epNum, err)
	}

	c := &Client{
		Settings:   DefaultSettings(),
		usbCtx:     ctx,
		dev:        dev,
		done:       done,
		ep:         ep,
		queue:      newPacketQueue(),
		listenDone: make(chan struct{}),
		log:        log.With().Str("session", uuid.NewString()).Logger(),
	}
	c.connected.Store(true)

	lctx, cancel := context.WithCancel(context.Background())
	c.stopListen = cancel
	go c.listen(lctx)

	c.log.Debug().Int("endpoint", epNum).Msg("MSR605X connected")
	return c, nil
}

// Cancel aborts the in-flight operation: blocked packet waits fail with
// ErrAborted immediately and further read-oriented calls fail fast until
// Reset clears the flag. An outgoing transfer already on the wire is not
// interrupted.
func (c *Client) Cancel() {
	c.cancelling.Store(true)
	c.queue.cancelAll(device.ErrAborted)
	c.log.Debug().Msg("operation cancelled")
}

// Reset clears a previous Cancel and nudges the device out of read mode.
// The reset command is best effort; its failure is ignored.
func (c *Client) Reset() error {
	c.cancelling.Store(false)
	c.queue.clearCancel()
	if !c.connected.Load() {
		return device.ErrDisconnected
	}
	_ = c.sendCommand(cmdReset)
	return nil
}

// Close shuts the session down: the device leaves read mode, endpoint
// polling stops, outstanding waiters resolve to ErrDisconnected and the
// claimed interface is released.
func (c *Client) Close() error {
	if c.connected.Load() {
		_ = c.sendCommand(cmdReset)
	}
	c.stopListen()
	<-c.listenDone
	c.shutdown(nil)
	return nil
}

// shutdown tears the session down from either Close or a listener failure.
// Safe to call more than once.
func (c *Client) shutdown(cause error) {
	c.connected.Store(false)
	c.queue.cancelAll(device.ErrDisconnected)
	c.releaseUSB.Do(func() {
		c.done()
		c.dev.Close()
		c.usbCtx.Close()
	})
	if cause != nil {
		c.log.Warn().Err(cause).Msg("session closed on endpoint error")
	}
}

// listen pumps interrupt IN reports through the reassembler until the
// session context is cancelled or the endpoint fails.
func (c *Client) listen(ctx context.Context) {
	defer close(c.listenDone)
	buf := make([]byte, reportSize)
	for {
		n, err := c.ep.ReadContext(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return // graceful shutdown
			}
			c.shutdown(err)
			return
		}
		pkt, err := c.asm.feed(buf[:n])
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping fragment")
			c.queue.failOldest(err)
			continue
		}
		if pkt != nil {
			c.log.Debug().Int("len", len(pkt)).Msg("packet reassembled")
			c.queue.deliver(pkt)
		}
	}
}

// drain absorbs stray packets the device emits after configuration commands:
// backlog and any half-built packet go first, then arrivals are discarded
// until a short quiet period passes.
func (c *Client) drain() {
	c.queue.discardBacklog()
	c.asm.reset()
	for {
		if _, err := c.queue.next(drainQuiet); err != nil {
			return
		}
	}
}

func isAccessError(err error) bool {
	return errors.Is(err, gousb.ErrorAccess) || errors.Is(err, gousb.ErrorBusy)
}
