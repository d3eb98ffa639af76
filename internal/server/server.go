// Package server accepts chat connections over TCP, runs the password
// handshake, and hands authenticated sessions to the chat core.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/sonnybell/linechat/internal/chat"
	"github.com/sonnybell/linechat/internal/config"
	"github.com/sonnybell/linechat/internal/logging"
)

// Server is the TCP accept loop for line-protocol chat clients.
type Server struct {
	cfg      config.ServerConfig
	registry *chat.Registry
	router   *chat.Router
	game     chat.GameControl
	logger   *logging.Logger

	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a TCP chat server.
func New(cfg config.ServerConfig, registry *chat.Registry, router *chat.Router, game chat.GameControl, logger *logging.Logger) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		router:   router,
		game:     game,
		logger:   logger,
	}
}

// ListenAndServe accepts connections until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Info("chat server listening", "addr", addr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}

	s.wg.Wait()
	return nil
}

// handleConn runs the password loop and name intake, then hands the
// connection to a chat session.
func (s *Server) handleConn(conn net.Conn) {
	t := newLineTransport(conn)
	logger := s.logger.WithFields(map[string]any{"remote": conn.RemoteAddr().String()})

	if !s.authenticate(t, logger) {
		t.Close()
		return
	}

	name, err := t.ReadLine()
	if err != nil {
		logger.Debug("client disconnected before sending a name")
		t.Close()
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		t.WriteLine("SERVER: A display name is required.")
		t.Close()
		return
	}

	sess := chat.NewSession(name, t, s.registry, s.router, s.game, s.logger)
	if err := sess.Run(); err != nil {
		if errors.Is(err, chat.ErrNameTaken) {
			t.WriteLine("SERVER: The name '" + name + "' is already in use. Please reconnect with another.")
		}
		t.Close()
	}
}

// authenticate loops until the client sends the correct password or hangs up.
func (s *Server) authenticate(t *lineTransport, logger *logging.Logger) bool {
	for {
		password, err := t.ReadLine()
		if err != nil {
			logger.Debug("client disconnected before entering a password")
			return false
		}

		if password == s.cfg.Password {
			if err := t.WriteLine("OK"); err != nil {
				return false
			}
			return true
		}

		if err := t.WriteLine("Incorrect password. Please try again."); err != nil {
			return false
		}
	}
}
