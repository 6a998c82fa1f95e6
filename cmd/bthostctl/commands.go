package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/linux"
	"github.com/rigado/bthost/linux/l2cap"
	"github.com/urfave/cli"
)

const startTimeout = 10 * time.Second

// startStack builds a stack from the configuration and brings it up.
func startStack(c *cli.Context) (*linux.Stack, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyLogLevels(); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	log := bthost.ModuleLogger("bthostctl")
	opts = append(opts,
		bthost.OptErrorHandler(func(err error) { log.Errorf("stack: %v", err) }),
		bthost.OptDeviceStatusHandler(func(up bool) { log.Infof("controller up: %v", up) }),
	)
	s, err := linux.NewStack(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := s.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "can't start stack")
	}
	return s, nil
}

// withSigHandler cancels ctx on SIGINT or SIGTERM.
func withSigHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func run(c *cli.Context) error {
	s, err := startStack(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := withSigHandler(context.Background())
	defer cancel()
	log := bthost.ModuleLogger("bthostctl")

	err = s.RegisterFixed(ctx, l2cap.CIDATT, l2cap.FixedCallbacks{
		Connected: func(cid uint16, addr bthost.BDAddr, connected bool, reason uint8, t bthost.Transport) {
			log.Infof("%v %v: connected %v reason 0x%02X", t, addr, connected, reason)
		},
		DataInd: func(cid uint16, addr bthost.BDAddr, p []byte) {
			log.Debugf("%v att: %X", addr, p)
		},
	})
	if err != nil {
		return errors.Wrap(err, "can't register att channel")
	}
	if err := s.SetConnUpdateHandler(ctx, func(addr bthost.BDAddr, status uint8, p bthost.ConnParams) {
		log.Infof("%v: connection update status 0x%02X %+v", addr, status, p)
	}); err != nil {
		return err
	}
	if err := s.SetRoleSwitchListener(ctx, func(addr bthost.BDAddr, role bthost.Role, status uint8) {
		log.Infof("%v: role %v status 0x%02X", addr, role, status)
	}); err != nil {
		return err
	}

	for _, psm := range c.IntSlice("psm") {
		if err := s.Register(ctx, uint16(psm), acceptAll(s, uint16(psm), log)); err != nil {
			return errors.Wrapf(err, "can't register psm 0x%04X", psm)
		}
		log.Infof("accepting channels on psm 0x%04X", psm)
	}

	<-ctx.Done()
	return nil
}

// acceptAll accepts every channel to psm and logs what arrives on it.
// Callbacks run on the stack loop, so answers go out from a goroutine.
func acceptAll(s *linux.Stack, psm uint16, log bthost.Logger) l2cap.Registration {
	return l2cap.Registration{
		Callbacks: l2cap.Callbacks{
			ConnectInd: func(addr bthost.BDAddr, lcid, psm uint16, id uint8) {
				log.Infof("%v: channel 0x%04X on psm 0x%04X", addr, lcid, psm)
				go func() {
					if err := s.ConnectRsp(context.Background(), addr, id, lcid, l2cap.ConnOK, l2cap.ConnStatusNone); err != nil {
						log.Warnf("accept 0x%04X: %v", lcid, err)
					}
				}()
			},
			ConnectCfm: func(lcid, result uint16) {
				log.Infof("channel 0x%04X connect result 0x%04X", lcid, result)
			},
			ConfigCfm: func(lcid uint16, cfg *l2cap.ConfigInfo) {
				log.Infof("channel 0x%04X configured", lcid)
			},
			DisconnectInd: func(lcid uint16, ackNeeded bool) {
				log.Infof("channel 0x%04X disconnected", lcid)
			},
			DataInd: func(lcid uint16, p []byte) {
				log.Debugf("channel 0x%04X: %X", lcid, p)
			},
			Congestion: func(lcid uint16, congested bool) {
				log.Debugf("channel 0x%04X congested %v", lcid, congested)
			},
		},
	}
}

func echo(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("echo needs one address")
	}
	addr, err := bthost.ParseBDAddr(c.Args().First())
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(c.String("data"))
	if err != nil {
		return errors.Wrap(err, "bad echo data")
	}

	s, err := startStack(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := withSigHandler(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, c.Duration("tmo"))
	defer cancel()

	start := time.Now()
	result, rsp, err := s.Ping(ctx, addr, data)
	if err != nil {
		return err
	}
	switch result {
	case l2cap.EchoOK:
		fmt.Fprintf(c.App.Writer, "%v: %X in %v\n", addr, rsp, time.Since(start).Round(time.Millisecond))
		return nil
	case l2cap.EchoTimeout:
		return errors.Errorf("%v: no echo response", addr)
	case l2cap.EchoNoLink:
		return errors.Errorf("%v: no link", addr)
	default:
		return errors.Errorf("%v: echo rejected", addr)
	}
}

func printConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	b, err := cfg.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(b))
	return nil
}
