// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tunnel forwards a local port to a host reachable from an SSH bastion.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/canonical/utill/internal/logging"
)

const localhost = "127.0.0.1"

type Config struct {
	Host    string
	Port    int
	User    string
	KeyPath string

	// KnownHosts is a known_hosts file. Host keys are not verified when empty.
	KnownHosts string
	// LocalPort is chosen by the kernel when zero.
	LocalPort int
}

type Tunnel struct {
	client   *ssh.Client
	listener net.Listener
	target   string

	wg   sync.WaitGroup
	once sync.Once

	logger logging.LoggerInterface
}

// Addr returns the local host and port to connect to.
func (t *Tunnel) Addr() (string, int) {
	addr := t.listener.Addr().(*net.TCPAddr)
	return localhost, addr.Port
}

func (t *Tunnel) serve() {
	defer t.wg.Done()

	for {
		local, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.logger.Errorf("tunnel accept failed: %v", err)
			}
			return
		}

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.forward(local)
		}()
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.target)
	if err != nil {
		t.logger.Errorf("failed to reach %s through the tunnel: %v", t.target, err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	pipe := func(dst, src net.Conn) {
		_, _ = io.Copy(dst, src)
		done <- struct{}{}
	}
	go pipe(remote, local)
	go pipe(local, remote)
	<-done
}

// Close stops accepting connections and tears down the SSH session.
func (t *Tunnel) Close() error {
	var err error
	t.once.Do(func() {
		err = errors.Join(t.listener.Close(), t.client.Close())
		t.wg.Wait()
	})
	return err
}

func clientConfig(cfg Config) (*ssh.ClientConfig, error) {
	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key %s: %w", cfg.KeyPath, err)
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		if hostKeys, err = knownhosts.New(cfg.KnownHosts); err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
	}, nil
}

// Open dials the bastion and forwards a local port to targetHost:targetPort.
func Open(ctx context.Context, cfg Config, targetHost string, targetPort int, logger logging.LoggerInterface) (*Tunnel, error) {
	sshCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	bastion := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", bastion)
	if err != nil {
		return nil, fmt.Errorf("failed to reach bastion %s: %w", bastion, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, bastion, sshCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", bastion, err)
	}
	client := ssh.NewClient(c, chans, reqs)

	listener, err := net.Listen("tcp", net.JoinHostPort(localhost, strconv.Itoa(cfg.LocalPort)))
	if err != nil {
		client.Close()
		return nil, err
	}

	t := new(Tunnel)
	t.client = client
	t.listener = listener
	t.target = net.JoinHostPort(targetHost, strconv.Itoa(targetPort))
	t.logger = logger

	t.wg.Add(1)
	go t.serve()

	host, port := t.Addr()
	logger.Debugf("Tunnel established: %s --> %s@%s --> %s:%d", t.target, cfg.User, bastion, host, port)

	return t, nil
}
